// SPDX-License-Identifier: MPL-2.0

package intent_test

import (
	"io"
	"sync"
	"testing"

	"github.com/invowk/intentkit/internal/hostsim"
	"github.com/invowk/intentkit/pkg/intent"

	"github.com/charmbracelet/log"
)

type recordingObserver struct {
	mu         sync.Mutex
	failures   []error
	dispatches []dispatch
	polls      []intent.PollOutcome
}

type dispatch struct {
	action  intent.Action
	tracked bool
	err     error
}

func (o *recordingObserver) ChainFailed(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, err)
}

func (o *recordingObserver) Dispatched(action intent.Action, tracked bool, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dispatches = append(o.dispatches, dispatch{action, tracked, err})
}

func (o *recordingObserver) ResultPolled(outcome intent.PollOutcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.polls = append(o.polls, outcome)
}

// setup attaches the test goroutine to a fresh simulated host.
func setup(t *testing.T, opts ...intent.Option) (*hostsim.Host, *intent.Accessor) {
	t.Helper()
	h := hostsim.New(hostsim.Options{})
	opts = append([]intent.Option{
		intent.WithHost(h.Context()),
		intent.WithLogger(log.New(io.Discard)),
	}, opts...)

	envr, err := intent.Acquire(opts...)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	acc, err := envr.Attach()
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	t.Cleanup(func() {
		if err := acc.Release(); err != nil {
			t.Errorf("Release() error = %v", err)
		}
	})
	return h, acc
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s did not panic", name)
		}
	}()
	fn()
}
