// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"

	"github.com/invowk/intentkit/internal/issue"
	"github.com/invowk/intentkit/pkg/foreign"
	"github.com/invowk/intentkit/pkg/intent"
)

// intentFailure wraps a bridge error into an ActionableError pointing at the
// matching issue catalog entry.
func intentFailure(op, resource string, err error) error {
	ctx := issue.NewErrorContext().
		WithOperation(op).
		WithResource(resource).
		Wrap(err)

	id, suggestions := classifyIntentError(err)
	if id != 0 {
		ctx.WithIssue(id)
	}
	return ctx.WithSuggestions(suggestions...).BuildError()
}

// classifyIntentError picks the catalog entry for err. Specific causes win over
// the error kind, so a launch that failed because of an unknown category points
// at the catalog rather than at dispatch.
func classifyIntentError(err error) (issue.Id, []string) {
	switch {
	case errors.Is(err, foreign.ErrNoHostContext), errors.Is(err, foreign.ErrIncompleteHostContext):
		return issue.HostContextMissingId, nil
	case errors.Is(err, intent.ErrInvalidClasses):
		return issue.InvalidClassesId, []string{"Check the host.* class names in your configuration"}
	case errors.Is(err, intent.ErrMalformedURI):
		return issue.MalformedURIId, []string{"Use an absolute URI with a scheme, such as content://media/external/images/1"}
	case errors.Is(err, intent.ErrUnknownName):
		return issue.UnknownSymbolId, []string{"Run 'intentkit catalog' to list known names"}
	}

	switch intent.KindOf(err) {
	case intent.KindEnvironment:
		return issue.AttachFailedId, nil
	case intent.KindResolution:
		return issue.UnknownSymbolId, []string{"Run 'intentkit catalog' to list known names"}
	case intent.KindAllocation:
		return issue.AllocationFailedId, nil
	case intent.KindMutation:
		return issue.MutationFailedId, nil
	case intent.KindDispatch:
		return issue.DispatchFailedId, nil
	case intent.KindRetrieval:
		return issue.RetrievalFailedId, nil
	default:
		return 0, []string{"Raise poll.timeout if the host answers slowly"}
	}
}
