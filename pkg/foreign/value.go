// SPDX-License-Identifier: MPL-2.0

package foreign

import (
	"errors"
	"fmt"
)

// Null is the zero object handle.
const Null Object = 0

const (
	// KindVoid is the value of a method returning nothing.
	KindVoid Kind = iota
	// KindInt is a 32-bit signed integer.
	KindInt
	// KindObject is an object reference (possibly Null).
	KindObject
)

// ErrValueKind is returned when a Value is read as a kind it does not hold.
var ErrValueKind = errors.New("unexpected value kind")

type (
	// Object is an opaque reference to an object owned by the host runtime.
	Object uintptr

	// Class is a reference to a host class object.
	Class Object

	// Kind tags the content of a Value.
	Kind uint8

	// Value is an argument to, or result of, a foreign call.
	Value struct {
		kind Kind
		i    int32
		l    Object
	}

	// ValueKindError reports a read of a Value with the wrong accessor.
	// It wraps ErrValueKind for errors.Is() compatibility.
	ValueKindError struct {
		Want Kind
		Got  Kind
	}
)

// IsNull reports whether o is the null reference.
func (o Object) IsNull() bool { return o == Null }

// String returns a short diagnostic form of the handle.
func (o Object) String() string {
	if o.IsNull() {
		return "null"
	}
	return fmt.Sprintf("obj#%d", uintptr(o))
}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Void is the result of a void method.
func Void() Value { return Value{kind: KindVoid} }

// Int wraps a 32-bit integer argument or result.
func Int(v int32) Value { return Value{kind: KindInt, i: v} }

// Ref wraps an object reference argument or result.
func Ref(o Object) Value { return Value{kind: KindObject, l: o} }

// NullRef is an explicit null object argument.
func NullRef() Value { return Value{kind: KindObject} }

// Kind returns the tag of the value.
func (v Value) Kind() Kind { return v.kind }

// AsInt returns the integer payload, failing if the value is not an int.
func (v Value) AsInt() (int32, error) {
	if v.kind != KindInt {
		return 0, &ValueKindError{Want: KindInt, Got: v.kind}
	}
	return v.i, nil
}

// AsObject returns the object payload, failing if the value is not an object.
func (v Value) AsObject() (Object, error) {
	if v.kind != KindObject {
		return Null, &ValueKindError{Want: KindObject, Got: v.kind}
	}
	return v.l, nil
}

// String renders the value for logs.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("int(%d)", v.i)
	case KindObject:
		return v.l.String()
	default:
		return v.kind.String()
	}
}

// Error implements the error interface for ValueKindError.
func (e *ValueKindError) Error() string {
	return fmt.Sprintf("unexpected value kind: want %s, got %s", e.Want, e.Got)
}

// Unwrap returns ErrValueKind for errors.Is() compatibility.
func (e *ValueKindError) Unwrap() error { return ErrValueKind }
