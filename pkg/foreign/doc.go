// SPDX-License-Identifier: MPL-2.0

// Package foreign describes the capability used to reach objects owned by the
// host's managed runtime.
//
// The package only defines handles, typed call values and the two interfaces a
// runtime binding must implement: VM (process-wide, thread attachment) and Env
// (per-thread method dispatch). Concrete bindings live outside this module; the
// in-process simulator in internal/hostsim implements both for tests and the CLI
// sandbox.
//
// An Env is bound to the OS thread that obtained it. Object handles returned by an
// Env are local references and never outlive the attachment that produced them.
package foreign
