// SPDX-License-Identifier: MPL-2.0

package intent

import (
	"fmt"
	"net/url"

	"github.com/invowk/intentkit/pkg/foreign"
)

// Intent is a fallible builder over one host intent object.
//
// Mutators apply their change in place and return the receiver, so a chain never
// leaves a stale pre-mutation value behind. Once a step fails, the Intent holds
// that error and every later step returns immediately without touching the host.
type Intent struct {
	acc    *Accessor
	obj    foreign.Object
	action Action
	err    error
}

// New creates an intent for action. The action is looked up as a static field of
// the intent class; an unknown name fails with ErrResolution, a failed
// construction with ErrAllocation.
func New(acc *Accessor, action Action) *Intent {
	in := &Intent{acc: acc, action: action}
	env := acc.checked()

	act, err := in.staticString(env, "new", string(action))
	if err != nil {
		return in.fail(err)
	}
	defer env.DeleteLocalRef(act)
	return in.construct(env, acc.envr.sigs.ctorAction, foreign.Ref(act))
}

// NewWithTarget creates an intent for action targeting uri. A malformed uri fails
// with ErrResolution before anything is allocated on the host.
func NewWithTarget(acc *Accessor, action Action, uri string) *Intent {
	in := &Intent{acc: acc, action: action}
	if err := checkURI(uri); err != nil {
		return in.fail(newError(KindResolution, "new", uri, err))
	}
	env := acc.checked()

	target, err := in.parseURI(env, uri)
	if err != nil {
		return in.fail(err)
	}
	defer env.DeleteLocalRef(target)
	act, err := in.staticString(env, "new", string(action))
	if err != nil {
		return in.fail(err)
	}
	defer env.DeleteLocalRef(act)
	return in.construct(env, acc.envr.sigs.ctorActionURI, foreign.Ref(act), foreign.Ref(target))
}

// FromObject wraps an existing host intent, such as the payload of a completion.
func FromObject(acc *Accessor, obj foreign.Object) *Intent {
	in := &Intent{acc: acc, obj: obj}
	if obj.IsNull() {
		return in.fail(newError(KindAllocation, "from object", "", errNullObject))
	}
	return in
}

// WithExtra puts a string extra. A repeated key overwrites the earlier value.
func (in *Intent) WithExtra(key Extra, value string) *Intent {
	return in.apply(func(env foreign.Env) error {
		k, err := in.newString(env, "with extra", string(key))
		if err != nil {
			return err
		}
		defer env.DeleteLocalRef(k)
		v, err := in.newString(env, "with extra", value)
		if err != nil {
			return err
		}
		defer env.DeleteLocalRef(v)

		return in.mutate(env, "putExtra", in.sigs().putExtra, foreign.Ref(k), foreign.Ref(v))
	})
}

// WithType sets the MIME type, replacing any previous one.
func (in *Intent) WithType(mime string) *Intent {
	return in.apply(func(env foreign.Env) error {
		t, err := in.newString(env, "with type", mime)
		if err != nil {
			return err
		}
		defer env.DeleteLocalRef(t)

		return in.mutate(env, "setType", in.sigs().setType, foreign.Ref(t))
	})
}

// AddFlags resolves every bit of flags and applies the combined mask with a
// single addFlags call. If any bit cannot be resolved nothing is applied.
// An empty set still issues addFlags(0).
func (in *Intent) AddFlags(flags Flags) *Intent {
	return in.apply(func(env foreign.Env) error {
		var mask int32
		for _, bit := range flags.Bits() {
			name, ok := bit.Name()
			if !ok {
				return newError(KindResolution, "add flags", fmt.Sprintf("%#x", uint32(bit)), ErrUnknownName)
			}
			v, err := in.staticField(env, "add flags", flagPrefix+name, sigInt)
			if err != nil {
				return err
			}
			n, err := v.AsInt()
			if err != nil {
				return newError(KindResolution, "add flags", flagPrefix+name, err)
			}
			mask |= n
		}
		return in.mutate(env, "addFlags", in.sigs().addFlags, foreign.Int(mask))
	})
}

// AddCategory adds a category. Adding one twice has no further effect.
func (in *Intent) AddCategory(category Category) *Intent {
	return in.apply(func(env foreign.Env) error {
		c, err := in.staticString(env, "add category", string(category))
		if err != nil {
			return err
		}
		defer env.DeleteLocalRef(c)
		return in.mutate(env, "addCategory", in.sigs().addCategory, foreign.Ref(c))
	})
}

// IntoChooser wraps the intent in a chooser without a title.
func (in *Intent) IntoChooser() *Intent {
	return in.intoChooser(nil)
}

// IntoChooserWithTitle wraps the intent in a chooser showing title. The wrapped
// intent's handle is released; the Intent now refers to the chooser.
func (in *Intent) IntoChooserWithTitle(title string) *Intent {
	return in.intoChooser(&title)
}

func (in *Intent) intoChooser(title *string) *Intent {
	return in.apply(func(env foreign.Env) error {
		titleArg := foreign.NullRef()
		if title != nil {
			t, err := in.newString(env, "into chooser", *title)
			if err != nil {
				return err
			}
			defer env.DeleteLocalRef(t)
			titleArg = foreign.Ref(t)
		}

		cls, err := in.intentClass(env, "into chooser")
		if err != nil {
			return err
		}
		v, err := env.CallStaticMethod(cls, "createChooser", in.sigs().createChooser, foreign.Ref(in.obj), titleArg)
		if err != nil {
			return newError(KindAllocation, "into chooser", "createChooser", err)
		}
		chooser, err := v.AsObject()
		if err != nil {
			return newError(KindAllocation, "into chooser", "createChooser", err)
		}
		if chooser.IsNull() {
			return newError(KindAllocation, "into chooser", "createChooser", errNullObject)
		}

		env.DeleteLocalRef(in.obj)
		in.obj = chooser
		in.action = ActionChooser
		return nil
	})
}

// StringExtra reads a string extra. The bool is false when the key is absent.
func (in *Intent) StringExtra(key Extra) (string, bool, error) {
	if in.err != nil {
		return "", false, in.err
	}
	env := in.acc.checked()

	k, err := env.NewString(string(key))
	if err != nil {
		return "", false, newError(KindRetrieval, "string extra", string(key), err)
	}
	defer env.DeleteLocalRef(k)

	v, err := env.CallMethod(in.obj, "getStringExtra", in.sigs().getStringExtra, foreign.Ref(k))
	if err != nil {
		return "", false, newError(KindRetrieval, "string extra", string(key), err)
	}
	return in.readString(env, "string extra", string(key), v)
}

// DataString reads the intent's target URI. The bool is false when it has none.
func (in *Intent) DataString() (string, bool, error) {
	if in.err != nil {
		return "", false, in.err
	}
	env := in.acc.checked()

	v, err := env.CallMethod(in.obj, "getDataString", in.sigs().getDataString)
	if err != nil {
		return "", false, newError(KindRetrieval, "data string", "", err)
	}
	return in.readString(env, "data string", "", v)
}

// Action returns the action the intent was created with, ActionChooser after
// wrapping, or "" for intents adopted with FromObject.
func (in *Intent) Action() Action { return in.action }

// Err returns the chain error, or nil while the chain is healthy.
func (in *Intent) Err() error { return in.err }

// Object returns the current host handle, or foreign.Null once failed or consumed.
func (in *Intent) Object() foreign.Object {
	if in.err != nil {
		return foreign.Null
	}
	return in.obj
}

func (in *Intent) apply(step func(env foreign.Env) error) *Intent {
	if in.err != nil {
		return in
	}
	if err := step(in.acc.checked()); err != nil {
		return in.fail(err)
	}
	return in
}

// fail moves the chain into its error state. The live handle, if any, is released
// here since Object no longer exposes it.
func (in *Intent) fail(err error) *Intent {
	if !in.obj.IsNull() {
		in.acc.checked().DeleteLocalRef(in.obj)
		in.obj = foreign.Null
	}
	in.err = err
	in.acc.logger().Debug("intent chain failed", "action", in.action, "error", err)
	in.acc.observer().ChainFailed(err)
	return in
}

func (in *Intent) sigs() *signatures { return &in.acc.envr.sigs }

func (in *Intent) construct(env foreign.Env, sig string, args ...foreign.Value) *Intent {
	cls, err := in.intentClass(env, "new")
	if err != nil {
		return in.fail(err)
	}
	obj, err := env.NewObject(cls, sig, args...)
	if err != nil {
		return in.fail(newError(KindAllocation, "new", in.acc.envr.classes.Intent, err))
	}
	if obj.IsNull() {
		return in.fail(newError(KindAllocation, "new", in.acc.envr.classes.Intent, errNullObject))
	}
	in.obj = obj
	return in
}

func (in *Intent) mutate(env foreign.Env, method, sig string, args ...foreign.Value) error {
	if _, err := env.CallMethod(in.obj, method, sig, args...); err != nil {
		return newError(KindMutation, method, "", err)
	}
	return nil
}

func (in *Intent) intentClass(env foreign.Env, op string) (foreign.Class, error) {
	name := in.acc.envr.classes.Intent
	cls, err := env.FindClass(name)
	if err != nil {
		return 0, newError(KindResolution, op, name, err)
	}
	return cls, nil
}

func (in *Intent) staticField(env foreign.Env, op, field, sig string) (foreign.Value, error) {
	in.acc.logger().Debug("get static field", "class", in.acc.envr.classes.Intent, "field", field, "type", sig)

	cls, err := in.intentClass(env, op)
	if err != nil {
		return foreign.Value{}, err
	}
	v, err := env.GetStaticField(cls, field, sig)
	if err != nil {
		return foreign.Value{}, newError(KindResolution, op, field, err)
	}
	return v, nil
}

func (in *Intent) staticString(env foreign.Env, op, field string) (foreign.Object, error) {
	v, err := in.staticField(env, op, field, sigString)
	if err != nil {
		return foreign.Null, err
	}
	obj, err := v.AsObject()
	if err != nil {
		return foreign.Null, newError(KindResolution, op, field, err)
	}
	if obj.IsNull() {
		return foreign.Null, newError(KindResolution, op, field, errNullObject)
	}
	return obj, nil
}

func (in *Intent) newString(env foreign.Env, op, s string) (foreign.Object, error) {
	obj, err := env.NewString(s)
	if err != nil {
		return foreign.Null, newError(KindAllocation, op, "string", err)
	}
	return obj, nil
}

func (in *Intent) parseURI(env foreign.Env, uri string) (foreign.Object, error) {
	s, err := in.newString(env, "new", uri)
	if err != nil {
		return foreign.Null, err
	}
	defer env.DeleteLocalRef(s)

	name := in.acc.envr.classes.URI
	cls, err := env.FindClass(name)
	if err != nil {
		return foreign.Null, newError(KindResolution, "new", name, err)
	}
	v, err := env.CallStaticMethod(cls, "parse", in.sigs().uriParse, foreign.Ref(s))
	if err != nil {
		return foreign.Null, newError(KindResolution, "new", uri, err)
	}
	obj, err := v.AsObject()
	if err != nil {
		return foreign.Null, newError(KindResolution, "new", uri, err)
	}
	if obj.IsNull() {
		return foreign.Null, newError(KindResolution, "new", uri, errNullObject)
	}
	return obj, nil
}

func (in *Intent) readString(env foreign.Env, op, name string, v foreign.Value) (string, bool, error) {
	obj, err := v.AsObject()
	if err != nil {
		return "", false, newError(KindRetrieval, op, name, err)
	}
	if obj.IsNull() {
		return "", false, nil
	}
	defer env.DeleteLocalRef(obj)
	s, err := env.GetString(obj)
	if err != nil {
		return "", false, newError(KindRetrieval, op, name, err)
	}
	return s, true, nil
}

// checkURI rejects text that does not parse as a URI reference with a scheme.
func checkURI(uri string) error {
	u, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedURI, err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("%w: missing scheme", ErrMalformedURI)
	}
	return nil
}
