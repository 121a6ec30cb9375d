// SPDX-License-Identifier: MPL-2.0

package foreign

import (
	"errors"
	"fmt"
	"strings"
)

// Call operations reported in CallError.Op.
const (
	OpFindClass        Op = "find_class"
	OpNewObject        Op = "new_object"
	OpCallMethod       Op = "call_method"
	OpCallStaticMethod Op = "call_static_method"
	OpGetStaticField   Op = "get_static_field"
	OpGetField         Op = "get_field"
	OpNewString        Op = "new_string"
	OpGetString        Op = "get_string"
	OpAttach           Op = "attach_current_thread"
	OpDetach           Op = "detach_current_thread"
)

// ErrCall is the sentinel wrapped by every CallError.
var ErrCall = errors.New("foreign call failed")

type (
	// Op names a primitive foreign operation.
	Op string

	// Env dispatches calls into the host runtime on behalf of one attached thread.
	// Implementations must not be used from any other thread.
	Env interface {
		FindClass(name string) (Class, error)
		NewObject(class Class, sig string, args ...Value) (Object, error)
		CallMethod(obj Object, name, sig string, args ...Value) (Value, error)
		CallStaticMethod(class Class, name, sig string, args ...Value) (Value, error)
		GetStaticField(class Class, name, sig string) (Value, error)
		GetField(obj Object, name, sig string) (Value, error)
		NewString(s string) (Object, error)
		// GetString copies the content of a host string object.
		GetString(obj Object) (string, error)
		// DeleteLocalRef releases a local reference early. Releasing Null is a no-op.
		DeleteLocalRef(obj Object)
	}

	// VM is the process-wide runtime entry point. Attachment state is per OS thread.
	VM interface {
		// GetEnv returns the Env of the calling thread if it is attached.
		GetEnv() (Env, bool)
		// AttachCurrentThread attaches the calling thread and returns its Env.
		AttachCurrentThread() (Env, error)
		// DetachCurrentThread detaches the calling thread.
		DetachCurrentThread() error
	}

	// CallError is the uniform failure of a foreign call. Target names the class,
	// method or field involved; Cause carries the runtime's own error, if any.
	CallError struct {
		Op     Op
		Target string
		Cause  error
	}
)

// NewCallError builds a CallError for op on target.
func NewCallError(op Op, target string, cause error) *CallError {
	return &CallError{Op: op, Target: target, Cause: cause}
}

// Error implements the error interface for CallError.
func (e *CallError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Op))
	if e.Target != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Target)
	}
	sb.WriteString(": foreign call failed")
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	return sb.String()
}

// Is reports ErrCall for errors.Is() compatibility.
func (e *CallError) Is(target error) bool { return target == ErrCall }

// Unwrap returns the runtime's underlying cause.
func (e *CallError) Unwrap() error { return e.Cause }
