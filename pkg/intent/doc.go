// SPDX-License-Identifier: MPL-2.0

// Package intent builds intent messages on the host runtime, launches them
// through the root activity and collects their completion records.
//
// A session starts by acquiring the process Environment and attaching an
// Accessor to the calling OS thread. Intents are then built with a fluent,
// fallible chain:
//
//	err := intent.WithCurrentEnv(func(acc *intent.Accessor) error {
//		return intent.New(acc, intent.ActionSend).
//			WithExtra(intent.ExtraText, "Hello World!").
//			WithType("text/plain").
//			StartActivityForResult(42)
//	})
//
// Each step is skipped once an earlier step has failed; the first error is kept
// and surfaced by the terminal call (StartActivity, StartActivityForResult) or by
// Err. No foreign call is made after the chain has failed.
//
// Completions are read with PollResult, which distinguishes an empty queue
// (ErrNoPendingResult), a record without payload (nil, nil) and a record with a
// payload intent. AwaitResult repeats the poll on a rate-limited schedule.
//
// An Accessor and every Intent built on it belong to the thread that attached.
// Using them from another thread is a programming error and panics.
package intent
