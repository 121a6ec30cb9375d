// SPDX-License-Identifier: MPL-2.0

package foreign

import (
	"errors"
	"sync"
)

var (
	// ErrNoHostContext is returned when no host context has been installed.
	ErrNoHostContext = errors.New("host context not initialized")
	// ErrIncompleteHostContext is returned when an installed context lacks a VM or activity.
	ErrIncompleteHostContext = errors.New("host context is incomplete")

	hostMu  sync.RWMutex
	current *HostContext
)

// HostContext is the native execution context published by the host at startup:
// the runtime entry point and the root activity object that launches intents.
type HostContext struct {
	VM       VM
	Activity Object
}

// Validate reports whether the context is usable.
func (c HostContext) Validate() error {
	if c.VM == nil || c.Activity.IsNull() {
		return ErrIncompleteHostContext
	}
	return nil
}

// InstallHost publishes ctx as the process-wide host context. The host glue calls
// it once, before any intent work; installing again replaces the previous context.
func InstallHost(ctx HostContext) {
	hostMu.Lock()
	defer hostMu.Unlock()
	c := ctx
	current = &c
}

// ResetHost clears the process-wide host context.
func ResetHost() {
	hostMu.Lock()
	defer hostMu.Unlock()
	current = nil
}

// CurrentHost returns the installed host context.
func CurrentHost() (HostContext, error) {
	hostMu.RLock()
	defer hostMu.RUnlock()
	if current == nil {
		return HostContext{}, ErrNoHostContext
	}
	if err := current.Validate(); err != nil {
		return HostContext{}, err
	}
	return *current, nil
}
