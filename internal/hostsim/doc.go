// SPDX-License-Identifier: MPL-2.0

// Package hostsim is an in-process stand-in for the managed runtime and the root
// activity. It implements foreign.VM and foreign.Env over a handle table, checks
// thread affinity and method descriptors the way the real runtime would, records
// every primitive call, and lets tests inject failures and queue completion
// records. The intentkit CLI uses it to exercise intent chains off-device.
package hostsim
