// SPDX-License-Identifier: MPL-2.0

// Package osthread identifies the OS thread the calling goroutine runs on.
//
// The value is only stable while the goroutine is locked with runtime.LockOSThread.
package osthread
