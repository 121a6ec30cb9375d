// SPDX-License-Identifier: MPL-2.0

package intent

import (
	"errors"
	"fmt"

	"github.com/invowk/intentkit/pkg/foreign"
)

// StartActivity hands the intent to the root activity without tracking a result.
//
// A chain that already failed yields an ErrDispatch error wrapping the chain
// error; the host is not called. Either way the intent is consumed: its handle
// belongs to the host afterwards and later calls on it fail with ErrConsumed.
func (in *Intent) StartActivity() error {
	return in.start("start activity", nil)
}

// StartActivityForResult is StartActivity with requestCode registered as the
// correlation token of the eventual completion record.
//
// Request codes are not checked for uniqueness. Two outstanding launches with the
// same code cannot be told apart when their completions arrive; callers that need
// distinct codes can draw them from a RequestCodes sequence.
func (in *Intent) StartActivityForResult(requestCode int32) error {
	return in.start("start activity for result", &requestCode)
}

func (in *Intent) start(op string, requestCode *int32) error {
	tracked := requestCode != nil
	log := in.acc.logger()
	if tracked {
		log.Debug(op, "action", in.action, "request_code", *requestCode)
	} else {
		log.Debug(op, "action", in.action)
	}

	if in.err != nil {
		err := newError(KindDispatch, op, string(in.action), in.err)
		in.consume()
		in.acc.observer().Dispatched(in.action, tracked, err)
		return err
	}

	env := in.acc.checked()
	activity := in.acc.envr.host.Activity
	sigs := in.sigs()

	var err error
	if tracked {
		_, err = env.CallMethod(activity, "startActivityForResult", sigs.startForResult,
			foreign.Ref(in.obj), foreign.Int(*requestCode))
	} else {
		_, err = env.CallMethod(activity, "startActivity", sigs.startActivity, foreign.Ref(in.obj))
	}
	action := in.action
	env.DeleteLocalRef(in.obj)
	in.consume()

	if err != nil {
		err = newError(KindDispatch, op, string(action), err)
	}
	in.acc.observer().Dispatched(action, tracked, err)
	return err
}

// consume ends the intent's life. A chain error is kept behind ErrConsumed so Err
// still reports the original cause.
func (in *Intent) consume() {
	in.obj = foreign.Null
	switch {
	case in.err == nil:
		in.err = ErrConsumed
	case !errors.Is(in.err, ErrConsumed):
		in.err = fmt.Errorf("%w: %w", ErrConsumed, in.err)
	}
}

// Release deletes the intent's host handle without dispatching it, for intents
// that are only read, such as the Data of a CompletedIntent. The intent is
// consumed afterwards. Releasing twice, or after dispatch, does nothing.
func (in *Intent) Release() {
	if in.err == nil && !in.obj.IsNull() {
		in.acc.checked().DeleteLocalRef(in.obj)
	}
	in.consume()
}
