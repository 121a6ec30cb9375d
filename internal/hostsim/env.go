// SPDX-License-Identifier: MPL-2.0

package hostsim

import (
	"fmt"
	"net/url"

	"github.com/invowk/intentkit/internal/osthread"
	"github.com/invowk/intentkit/pkg/foreign"

	"golang.org/x/exp/slices"
)

type (
	// Env is the per-thread call surface of a Host.
	Env struct {
		host   *Host
		thread uint64
	}

	sigTable struct {
		intent         string
		ctorAction     string
		ctorActionURI  string
		uriParse       string
		intentSelf     string
		getStringExtra string
		getDataString  string
		createChooser  string
		startActivity  string
		startForResult string
		nextResult     string
	}
)

const (
	sigString = "Ljava/lang/String;"
	sigInt    = "I"
)

func newSigTable(o Options) sigTable {
	in := "L" + o.IntentClass + ";"
	uri := "L" + o.URIClass + ";"
	return sigTable{
		intent:         in,
		ctorAction:     "(" + sigString + ")V",
		ctorActionURI:  "(" + sigString + uri + ")V",
		uriParse:       "(" + sigString + ")" + uri,
		intentSelf:     ")" + in,
		getStringExtra: "(" + sigString + ")" + sigString,
		getDataString:  "()" + sigString,
		createChooser:  "(" + in + "Ljava/lang/CharSequence;)" + in,
		startActivity:  "(" + in + ")V",
		startForResult: "(" + in + "I)V",
		nextResult:     "()L" + o.ResultClass + ";",
	}
}

// enter records the call and rejects it when the thread or an injected fault says so.
// The caller holds h.mu.
func (e *Env) enter(op foreign.Op, target string) error {
	h := e.host
	id := osthread.ID()
	h.calls = append(h.calls, Call{Op: op, Target: target, Thread: id})
	if id != e.thread {
		return foreign.NewCallError(op, target, ErrWrongThread)
	}
	if h.threads[e.thread] != e {
		return foreign.NewCallError(op, target, ErrDetached)
	}
	if err := h.faultFor(op, target); err != nil {
		return foreign.NewCallError(op, target, err)
	}
	return nil
}

// FindClass resolves a class by slash-separated name.
func (e *Env) FindClass(name string) (foreign.Class, error) {
	h := e.host
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := e.enter(foreign.OpFindClass, name); err != nil {
		return 0, err
	}
	obj, ok := h.classes[name]
	if !ok {
		return 0, foreign.NewCallError(foreign.OpFindClass, name, fmt.Errorf("%w: NoClassDefFoundError", ErrNoSuchMember))
	}
	return foreign.Class(obj), nil
}

// NewObject runs a constructor. Only the intent class is constructible.
func (e *Env) NewObject(cls foreign.Class, sig string, args ...foreign.Value) (foreign.Object, error) {
	h := e.host
	h.mu.Lock()
	defer h.mu.Unlock()
	c, err := e.class(cls)
	target := ""
	if c != nil {
		target = c.name
	}
	if eerr := e.enter(foreign.OpNewObject, target); eerr != nil {
		return foreign.Null, eerr
	}
	if err != nil {
		return foreign.Null, foreign.NewCallError(foreign.OpNewObject, target, err)
	}
	if c.name != h.opts.IntentClass {
		return foreign.Null, e.noSuch(foreign.OpNewObject, c.name+".<init>"+sig)
	}

	in := &intentObj{extras: map[string]string{}}
	switch sig {
	case h.sigs.ctorAction:
		action, err := e.stringArg(args, 0)
		if err != nil {
			return foreign.Null, foreign.NewCallError(foreign.OpNewObject, target, err)
		}
		in.action = action
	case h.sigs.ctorActionURI:
		action, err := e.stringArg(args, 0)
		if err != nil {
			return foreign.Null, foreign.NewCallError(foreign.OpNewObject, target, err)
		}
		u, err := e.uriArg(args, 1)
		if err != nil {
			return foreign.Null, foreign.NewCallError(foreign.OpNewObject, target, err)
		}
		in.action = action
		in.data = &u
	default:
		return foreign.Null, e.noSuch(foreign.OpNewObject, c.name+".<init>"+sig)
	}
	return h.newLocal(in), nil
}

// CallMethod invokes an instance method of an intent or of the activity.
func (e *Env) CallMethod(obj foreign.Object, name, sig string, args ...foreign.Value) (foreign.Value, error) {
	h := e.host
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := e.enter(foreign.OpCallMethod, name); err != nil {
		return foreign.Value{}, err
	}
	recv, err := h.lookup(obj)
	if err != nil {
		return foreign.Value{}, foreign.NewCallError(foreign.OpCallMethod, name, err)
	}

	switch r := recv.(type) {
	case *intentObj:
		return e.callIntent(obj, r, name, sig, args)
	case *activityObj:
		return e.callActivity(name, sig, args)
	default:
		return foreign.Value{}, e.noSuch(foreign.OpCallMethod, name+sig)
	}
}

// CallStaticMethod invokes Uri.parse or Intent.createChooser.
func (e *Env) CallStaticMethod(cls foreign.Class, name, sig string, args ...foreign.Value) (foreign.Value, error) {
	h := e.host
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := e.enter(foreign.OpCallStaticMethod, name); err != nil {
		return foreign.Value{}, err
	}
	c, err := e.class(cls)
	if err != nil {
		return foreign.Value{}, foreign.NewCallError(foreign.OpCallStaticMethod, name, err)
	}

	switch {
	case c.name == h.opts.URIClass && name == "parse" && sig == h.sigs.uriParse:
		s, err := e.stringArg(args, 0)
		if err != nil {
			return foreign.Value{}, foreign.NewCallError(foreign.OpCallStaticMethod, name, err)
		}
		if _, perr := url.Parse(s); perr != nil {
			return foreign.Value{}, foreign.NewCallError(foreign.OpCallStaticMethod, name, perr)
		}
		return foreign.Ref(h.newLocal(&uriObj{s: s})), nil

	case c.name == h.opts.IntentClass && name == "createChooser" && sig == h.sigs.createChooser:
		target, err := e.intentArg(args, 0)
		if err != nil {
			return foreign.Value{}, foreign.NewCallError(foreign.OpCallStaticMethod, name, err)
		}
		chooser := &intentObj{
			action: "android.intent.action.CHOOSER",
			extras: map[string]string{},
			target: target.clone(),
		}
		if len(args) > 1 {
			t, err := e.optionalStringArg(args, 1)
			if err != nil {
				return foreign.Value{}, foreign.NewCallError(foreign.OpCallStaticMethod, name, err)
			}
			chooser.title = t
		}
		return foreign.Ref(h.newLocal(chooser)), nil

	default:
		return foreign.Value{}, e.noSuch(foreign.OpCallStaticMethod, c.name+"."+name+sig)
	}
}

// GetStaticField reads a static string (sig String) or int (sig I) field.
func (e *Env) GetStaticField(cls foreign.Class, name, sig string) (foreign.Value, error) {
	h := e.host
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := e.enter(foreign.OpGetStaticField, name); err != nil {
		return foreign.Value{}, err
	}
	c, err := e.class(cls)
	if err != nil {
		return foreign.Value{}, foreign.NewCallError(foreign.OpGetStaticField, name, err)
	}
	v, ok := c.statics[name]
	if !ok {
		return foreign.Value{}, e.noSuch(foreign.OpGetStaticField, c.name+"."+name)
	}
	switch tv := v.(type) {
	case string:
		if sig != sigString {
			return foreign.Value{}, e.noSuch(foreign.OpGetStaticField, c.name+"."+name+":"+sig)
		}
		return foreign.Ref(h.newLocal(&stringObj{s: tv})), nil
	case int32:
		if sig != sigInt {
			return foreign.Value{}, e.noSuch(foreign.OpGetStaticField, c.name+"."+name+":"+sig)
		}
		return foreign.Int(tv), nil
	default:
		return foreign.Value{}, e.noSuch(foreign.OpGetStaticField, c.name+"."+name)
	}
}

// GetField reads a field of a result record.
func (e *Env) GetField(obj foreign.Object, name, sig string) (foreign.Value, error) {
	h := e.host
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := e.enter(foreign.OpGetField, name); err != nil {
		return foreign.Value{}, err
	}
	v, err := h.lookup(obj)
	if err != nil {
		return foreign.Value{}, foreign.NewCallError(foreign.OpGetField, name, err)
	}
	rec, ok := v.(*recordObj)
	if !ok {
		return foreign.Value{}, e.noSuch(foreign.OpGetField, name)
	}
	switch {
	case name == "requestCode" && sig == sigInt:
		return foreign.Int(rec.requestCode), nil
	case name == "resultCode" && sig == sigInt:
		return foreign.Int(rec.resultCode), nil
	case name == "data" && sig == h.sigs.intent:
		if rec.data == nil {
			return foreign.NullRef(), nil
		}
		return foreign.Ref(h.newLocal(rec.data.clone())), nil
	default:
		return foreign.Value{}, e.noSuch(foreign.OpGetField, name+":"+sig)
	}
}

// NewString allocates a host string.
func (e *Env) NewString(s string) (foreign.Object, error) {
	h := e.host
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := e.enter(foreign.OpNewString, ""); err != nil {
		return foreign.Null, err
	}
	return h.newLocal(&stringObj{s: s}), nil
}

// GetString copies a host string.
func (e *Env) GetString(obj foreign.Object) (string, error) {
	h := e.host
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := e.enter(foreign.OpGetString, ""); err != nil {
		return "", err
	}
	v, err := h.lookup(obj)
	if err != nil {
		return "", foreign.NewCallError(foreign.OpGetString, "", err)
	}
	s, ok := v.(*stringObj)
	if !ok {
		return "", foreign.NewCallError(foreign.OpGetString, "", errBadArgument)
	}
	return s.s, nil
}

// DeleteLocalRef invalidates a local reference. Null and global handles are ignored.
func (e *Env) DeleteLocalRef(obj foreign.Object) {
	h := e.host
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, Call{Op: OpDeleteLocalRef, Thread: osthread.ID()})
	if obj.IsNull() || h.globals[obj] {
		return
	}
	delete(h.objects, obj)
}

func (e *Env) callIntent(self foreign.Object, in *intentObj, name, sig string, args []foreign.Value) (foreign.Value, error) {
	h := e.host
	fail := func(err error) (foreign.Value, error) {
		return foreign.Value{}, foreign.NewCallError(foreign.OpCallMethod, name, err)
	}

	switch {
	case name == "putExtra" && sig == "("+sigString+sigString+h.sigs.intentSelf:
		k, err := e.stringArg(args, 0)
		if err != nil {
			return fail(err)
		}
		v, err := e.stringArg(args, 1)
		if err != nil {
			return fail(err)
		}
		in.extras[k] = v
	case name == "setType" && sig == "("+sigString+h.sigs.intentSelf:
		t, err := e.stringArg(args, 0)
		if err != nil {
			return fail(err)
		}
		in.mime = t
	case name == "addFlags" && sig == "("+sigInt+h.sigs.intentSelf:
		if len(args) < 1 {
			return fail(errBadArgument)
		}
		n, err := args[0].AsInt()
		if err != nil {
			return fail(err)
		}
		in.flags |= n
	case name == "addCategory" && sig == "("+sigString+h.sigs.intentSelf:
		c, err := e.stringArg(args, 0)
		if err != nil {
			return fail(err)
		}
		if !slices.Contains(in.categories, c) {
			in.categories = append(in.categories, c)
		}
	case name == "getStringExtra" && sig == h.sigs.getStringExtra:
		k, err := e.stringArg(args, 0)
		if err != nil {
			return fail(err)
		}
		v, ok := in.extras[k]
		if !ok {
			return foreign.NullRef(), nil
		}
		return foreign.Ref(h.newLocal(&stringObj{s: v})), nil
	case name == "getDataString" && sig == h.sigs.getDataString:
		if in.data == nil {
			return foreign.NullRef(), nil
		}
		return foreign.Ref(h.newLocal(&stringObj{s: *in.data})), nil
	default:
		return foreign.Value{}, e.noSuch(foreign.OpCallMethod, name+sig)
	}
	return foreign.Ref(self), nil
}

func (e *Env) callActivity(name, sig string, args []foreign.Value) (foreign.Value, error) {
	h := e.host
	fail := func(err error) (foreign.Value, error) {
		return foreign.Value{}, foreign.NewCallError(foreign.OpCallMethod, name, err)
	}

	switch {
	case name == "startActivity" && sig == h.sigs.startActivity:
		in, err := e.intentArg(args, 0)
		if err != nil {
			return fail(err)
		}
		h.launches = append(h.launches, Launch{Intent: in.snapshot()})
		return foreign.Void(), nil

	case name == "startActivityForResult" && sig == h.sigs.startForResult:
		in, err := e.intentArg(args, 0)
		if err != nil {
			return fail(err)
		}
		if len(args) < 2 {
			return fail(errBadArgument)
		}
		code, err := args[1].AsInt()
		if err != nil {
			return fail(err)
		}
		l := Launch{Intent: in.snapshot(), RequestCode: code, Tracked: true}
		h.launches = append(h.launches, l)
		if h.responder != nil {
			if c, ok := h.responder(l); ok {
				h.queue = append(h.queue, c)
			}
		}
		return foreign.Void(), nil

	case name == "getNextIntentResult" && sig == h.sigs.nextResult:
		if len(h.queue) == 0 {
			return foreign.NullRef(), nil
		}
		c := h.queue[0]
		h.queue = h.queue[1:]
		rec := &recordObj{
			requestCode: c.RequestCode,
			resultCode:  c.ResultCode,
			data:        fromSnapshot(c.Data),
		}
		return foreign.Ref(h.newLocal(rec)), nil

	default:
		return foreign.Value{}, e.noSuch(foreign.OpCallMethod, ActivityClass+"."+name+sig)
	}
}

func (e *Env) noSuch(op foreign.Op, what string) error {
	return foreign.NewCallError(op, what, ErrNoSuchMember)
}

func (e *Env) class(cls foreign.Class) (*class, error) {
	v, err := e.host.lookup(foreign.Object(cls))
	if err != nil {
		return nil, err
	}
	c, ok := v.(*classObj)
	if !ok {
		return nil, errBadArgument
	}
	return c.c, nil
}

func (e *Env) arg(args []foreign.Value, i int) (any, error) {
	if i >= len(args) {
		return nil, errBadArgument
	}
	obj, err := args[i].AsObject()
	if err != nil {
		return nil, err
	}
	return e.host.lookup(obj)
}

func (e *Env) stringArg(args []foreign.Value, i int) (string, error) {
	v, err := e.arg(args, i)
	if err != nil {
		return "", err
	}
	s, ok := v.(*stringObj)
	if !ok {
		return "", errBadArgument
	}
	return s.s, nil
}

func (e *Env) optionalStringArg(args []foreign.Value, i int) (*string, error) {
	obj, err := args[i].AsObject()
	if err != nil {
		return nil, err
	}
	if obj.IsNull() {
		return nil, nil
	}
	s, err := e.stringArg(args, i)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (e *Env) uriArg(args []foreign.Value, i int) (string, error) {
	v, err := e.arg(args, i)
	if err != nil {
		return "", err
	}
	u, ok := v.(*uriObj)
	if !ok {
		return "", errBadArgument
	}
	return u.s, nil
}

func (e *Env) intentArg(args []foreign.Value, i int) (*intentObj, error) {
	v, err := e.arg(args, i)
	if err != nil {
		return nil, err
	}
	in, ok := v.(*intentObj)
	if !ok {
		return nil, errBadArgument
	}
	return in, nil
}
