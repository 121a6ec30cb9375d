// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/invowk/intentkit/internal/issue"
	"github.com/invowk/intentkit/pkg/foreign"
	"github.com/invowk/intentkit/pkg/intent"
)

func TestClassifyIntentError(t *testing.T) {
	t.Parallel()

	cause := errors.New("host exception")
	chainErr := func(kind intent.Kind, err error) error {
		return &intent.Error{Kind: kind, Op: "step", Err: err}
	}

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"no host context", chainErr(intent.KindEnvironment, foreign.ErrNoHostContext), issue.HostContextMissingId},
		{"incomplete host context", chainErr(intent.KindEnvironment, foreign.ErrIncompleteHostContext), issue.HostContextMissingId},
		{"invalid classes", chainErr(intent.KindEnvironment, &intent.InvalidClassesError{Field: "uri", Value: "a.b"}), issue.InvalidClassesId},
		{"attach failure", chainErr(intent.KindEnvironment, cause), issue.AttachFailedId},
		{"malformed uri inside dispatch", chainErr(intent.KindDispatch, chainErr(intent.KindResolution, intent.ErrMalformedURI)), issue.MalformedURIId},
		{"unknown name", chainErr(intent.KindResolution, intent.ErrUnknownName), issue.UnknownSymbolId},
		{"resolution", chainErr(intent.KindResolution, cause), issue.UnknownSymbolId},
		{"allocation", chainErr(intent.KindAllocation, cause), issue.AllocationFailedId},
		{"mutation", chainErr(intent.KindMutation, cause), issue.MutationFailedId},
		{"dispatch", chainErr(intent.KindDispatch, cause), issue.DispatchFailedId},
		{"retrieval", chainErr(intent.KindRetrieval, cause), issue.RetrievalFailedId},
		{"timeout", fmt.Errorf("await result: %w", context.DeadlineExceeded), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got, _ := classifyIntentError(tt.err); got != tt.want {
				t.Errorf("classifyIntentError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIntentFailure(t *testing.T) {
	t.Parallel()

	cause := &intent.Error{Kind: intent.KindDispatch, Op: "start activity", Name: "ACTION_SEND", Err: errors.New("rejected")}
	err := intentFailure("send intent", "ACTION_SEND", cause)

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("intentFailure() = %T, want *issue.ActionableError", err)
	}
	if ae.Issue != issue.DispatchFailedId {
		t.Errorf("Issue = %d, want %d", ae.Issue, issue.DispatchFailedId)
	}
	if !errors.Is(err, intent.ErrDispatch) {
		t.Error("the intent error is not reachable through the actionable error")
	}
}
