// SPDX-License-Identifier: MPL-2.0

package intent

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// KindEnvironment means the runtime or the host context is unavailable.
	KindEnvironment Kind = iota + 1
	// KindResolution means a symbolic name, class or URI could not be resolved.
	KindResolution
	// KindAllocation means a foreign object could not be constructed.
	KindAllocation
	// KindMutation means a foreign call that mutates the intent failed.
	KindMutation
	// KindDispatch means the intent could not be handed to the host.
	KindDispatch
	// KindRetrieval means a completion record could not be read.
	KindRetrieval
)

var (
	// ErrEnvironment is matched by errors of KindEnvironment.
	ErrEnvironment = errors.New("environment unavailable")
	// ErrResolution is matched by errors of KindResolution.
	ErrResolution = errors.New("resolution failed")
	// ErrAllocation is matched by errors of KindAllocation.
	ErrAllocation = errors.New("allocation failed")
	// ErrMutation is matched by errors of KindMutation.
	ErrMutation = errors.New("mutation failed")
	// ErrDispatch is matched by errors of KindDispatch.
	ErrDispatch = errors.New("dispatch failed")
	// ErrRetrieval is matched by errors of KindRetrieval.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrNoPendingResult is returned by PollResult and NextRecord when the host has
	// no completion record queued. It is a normal condition, not a failure.
	ErrNoPendingResult = errors.New("no pending result")
	// ErrConsumed is the chain state of an intent whose handle went to the host.
	ErrConsumed = errors.New("intent already dispatched")

	// ErrUnknownName is the cause of resolution errors for names outside the catalog.
	ErrUnknownName = errors.New("not in catalog")
	// ErrMalformedURI is the cause of resolution errors for unparsable target URIs.
	ErrMalformedURI = errors.New("malformed uri")

	errNullObject = errors.New("host returned null")
)

type (
	// Kind classifies an Error.
	Kind uint8

	// Error is a classified failure of an intent operation. Op names the builder or
	// terminal step, Name the symbol, class or field involved (optional), and Err
	// the underlying cause, usually a *foreign.CallError.
	Error struct {
		Kind Kind
		Op   string
		Name string
		Err  error
	}
)

func newError(kind Kind, op, name string, err error) *Error {
	return &Error{Kind: kind, Op: op, Name: name, Err: err}
}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindEnvironment:
		return "environment"
	case KindResolution:
		return "resolution"
	case KindAllocation:
		return "allocation"
	case KindMutation:
		return "mutation"
	case KindDispatch:
		return "dispatch"
	case KindRetrieval:
		return "retrieval"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindEnvironment:
		return ErrEnvironment
	case KindResolution:
		return ErrResolution
	case KindAllocation:
		return ErrAllocation
	case KindMutation:
		return ErrMutation
	case KindDispatch:
		return ErrDispatch
	case KindRetrieval:
		return ErrRetrieval
	default:
		return nil
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("intent: ")
	sb.WriteString(e.Op)
	if e.Name != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Name)
	}
	if s := e.Kind.sentinel(); s != nil {
		sb.WriteString(": ")
		sb.WriteString(s.Error())
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the outermost *Error in err's chain, or zero.
func KindOf(err error) Kind {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return 0
}
