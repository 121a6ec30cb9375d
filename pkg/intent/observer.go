// SPDX-License-Identifier: MPL-2.0

package intent

// Observer receives notifications about chain failures, launches and polls.
// Implementations must be safe for concurrent use.
type Observer interface {
	// ChainFailed is called once per chain, with the first error recorded.
	ChainFailed(err error)
	// Dispatched is called after every StartActivity* call; err is nil on success.
	Dispatched(action Action, tracked bool, err error)
	// ResultPolled is called after every NextRecord or PollResult call.
	ResultPolled(outcome PollOutcome)
}

type nopObserver struct{}

func (nopObserver) ChainFailed(error)              {}
func (nopObserver) Dispatched(Action, bool, error) {}
func (nopObserver) ResultPolled(PollOutcome)       {}
