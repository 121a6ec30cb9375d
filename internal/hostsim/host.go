// SPDX-License-Identifier: MPL-2.0

package hostsim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/invowk/intentkit/internal/osthread"
	"github.com/invowk/intentkit/pkg/foreign"
)

const (
	// ActivityClass is the class of the root activity object.
	ActivityClass = "android/app/Activity"

	// ResultOK and ResultCanceled are the host's standard result codes.
	ResultOK       int32 = -1
	ResultCanceled int32 = 0

	// OpDeleteLocalRef is recorded for DeleteLocalRef calls.
	OpDeleteLocalRef foreign.Op = "delete_local_ref"
)

var (
	// ErrStaleReference is the cause of calls on deleted or unknown handles.
	ErrStaleReference = errors.New("stale object reference")
	// ErrWrongThread is the cause of calls on an Env from a thread other than its own.
	ErrWrongThread = errors.New("env used from a foreign thread")
	// ErrDetached is the cause of calls on an Env whose thread has been detached.
	ErrDetached = errors.New("env used after detach")
	// ErrNoSuchMember is the cause of lookups of unknown classes, methods or fields.
	ErrNoSuchMember = errors.New("no such member")
	// ErrInjected is a ready-made cause for FailOn.
	ErrInjected = errors.New("injected failure")

	errNullPointer = errors.New("NullPointerException")
	errBadArgument = errors.New("IllegalArgumentException")
)

type (
	// Options names the simulated classes. Zero fields take the stock names.
	Options struct {
		IntentClass string
		URIClass    string
		ResultClass string
	}

	// Call is one recorded primitive call.
	Call struct {
		Op     foreign.Op
		Target string
		Thread uint64
	}

	fault struct {
		op     foreign.Op
		target string
		err    error
		once   bool
	}

	// Host is a simulated runtime and activity host. It is safe for concurrent use.
	Host struct {
		mu sync.Mutex

		opts     Options
		sigs     sigTable
		next     foreign.Object
		objects  map[foreign.Object]any
		globals  map[foreign.Object]bool
		classes  map[string]foreign.Object
		activity foreign.Object

		threads  map[uint64]*Env
		attaches int
		detaches int

		calls  []Call
		faults []fault

		launches  []Launch
		queue     []Completion
		responder Responder
	}
)

// New creates a host with the stock intent, uri and result-record classes.
func New(opts Options) *Host {
	if opts.IntentClass == "" {
		opts.IntentClass = "android/content/Intent"
	}
	if opts.URIClass == "" {
		opts.URIClass = "android/net/Uri"
	}
	if opts.ResultClass == "" {
		opts.ResultClass = "com/invowk/intentkit/NativeIntentResult"
	}

	h := &Host{
		opts:    opts,
		sigs:    newSigTable(opts),
		objects: make(map[foreign.Object]any),
		globals: make(map[foreign.Object]bool),
		classes: make(map[string]foreign.Object),
		threads: make(map[uint64]*Env),
	}

	h.defineClass(opts.IntentClass, intentStatics())
	h.defineClass(opts.URIClass, nil)
	h.defineClass(opts.ResultClass, nil)
	h.defineClass(ActivityClass, nil)
	h.activity = h.newGlobal(&activityObj{})
	return h
}

// Context returns the host context to install or pass to intent.WithHost.
func (h *Host) Context() foreign.HostContext {
	return foreign.HostContext{VM: h, Activity: h.activity}
}

// Install publishes the host as the process-wide host context.
func (h *Host) Install() {
	foreign.InstallHost(h.Context())
}

// --- foreign.VM ---

// GetEnv returns the calling thread's Env if it is attached.
func (h *Host) GetEnv() (foreign.Env, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	env, ok := h.threads[osthread.ID()]
	if !ok {
		return nil, false
	}
	return env, true
}

// AttachCurrentThread attaches the calling thread. Attaching an attached thread
// returns its existing Env.
func (h *Host) AttachCurrentThread() (foreign.Env, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := osthread.ID()
	h.calls = append(h.calls, Call{Op: foreign.OpAttach, Thread: id})
	if err := h.faultFor(foreign.OpAttach, ""); err != nil {
		return nil, foreign.NewCallError(foreign.OpAttach, "", err)
	}
	if env, ok := h.threads[id]; ok {
		return env, nil
	}
	env := &Env{host: h, thread: id}
	h.threads[id] = env
	h.attaches++
	return env, nil
}

// DetachCurrentThread detaches the calling thread.
func (h *Host) DetachCurrentThread() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := osthread.ID()
	h.calls = append(h.calls, Call{Op: foreign.OpDetach, Thread: id})
	if err := h.faultFor(foreign.OpDetach, ""); err != nil {
		return foreign.NewCallError(foreign.OpDetach, "", err)
	}
	if _, ok := h.threads[id]; !ok {
		return foreign.NewCallError(foreign.OpDetach, "", ErrDetached)
	}
	delete(h.threads, id)
	h.detaches++
	return nil
}

// --- instrumentation ---

// Attached reports whether the calling thread is attached.
func (h *Host) Attached() bool {
	_, ok := h.GetEnv()
	return ok
}

// AttachedThreads returns the number of attached threads.
func (h *Host) AttachedThreads() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.threads)
}

// AttachCounts returns how many attaches and detaches took effect.
func (h *Host) AttachCounts() (attaches, detaches int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.attaches, h.detaches
}

// Calls returns a copy of the recorded calls.
func (h *Host) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Call, len(h.calls))
	copy(out, h.calls)
	return out
}

// CallCount returns the number of recorded calls.
func (h *Host) CallCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}

// Count returns the number of calls of op on target. An empty target matches all.
func (h *Host) Count(op foreign.Op, target string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, c := range h.calls {
		if c.Op == op && (target == "" || c.Target == target) {
			n++
		}
	}
	return n
}

// ResetCalls clears the call log.
func (h *Host) ResetCalls() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = nil
}

// FailOn makes every call of op on target fail with err until ClearFaults.
// An empty target matches every target of op.
func (h *Host) FailOn(op foreign.Op, target string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.faults = append(h.faults, fault{op: op, target: target, err: err})
}

// FailOnce makes the next matching call fail with err.
func (h *Host) FailOnce(op foreign.Op, target string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.faults = append(h.faults, fault{op: op, target: target, err: err, once: true})
}

// ClearFaults removes all injected failures.
func (h *Host) ClearFaults() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.faults = nil
}

// SetStaticField defines or replaces a static field (string or int32) of class.
func (h *Host) SetStaticField(className, field string, value any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c := h.classByName(className); c != nil {
		c.statics[field] = value
	}
}

// RemoveStaticField makes field of class unresolvable.
func (h *Host) RemoveStaticField(className, field string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c := h.classByName(className); c != nil {
		delete(c.statics, field)
	}
}

// Live reports whether obj is a valid handle.
func (h *Host) Live(obj foreign.Object) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.objects[obj]
	return ok
}

// LocalRefs returns the number of live local references.
func (h *Host) LocalRefs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.objects) - len(h.globals)
}

// Snapshot returns the state of a live intent handle.
func (h *Host) Snapshot(obj foreign.Object) (IntentSnapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	in, ok := h.objects[obj].(*intentObj)
	if !ok {
		return IntentSnapshot{}, false
	}
	return in.snapshot(), true
}

// Launches returns the launches seen so far.
func (h *Host) Launches() []Launch {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Launch, len(h.launches))
	copy(out, h.launches)
	return out
}

// SetResponder installs the responder for tracked launches; nil removes it.
func (h *Host) SetResponder(r Responder) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responder = r
}

// Complete queues a completion record.
func (h *Host) Complete(c Completion) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queue = append(h.queue, c)
}

// Pending returns the number of queued completion records.
func (h *Host) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue)
}

// --- internals; callers hold h.mu ---

func (h *Host) defineClass(name string, statics map[string]any) {
	if statics == nil {
		statics = map[string]any{}
	}
	h.classes[name] = h.newGlobal(&classObj{c: &class{name: name, statics: statics}})
}

func (h *Host) classByName(name string) *class {
	obj, ok := h.classes[name]
	if !ok {
		return nil
	}
	return h.objects[obj].(*classObj).c
}

func (h *Host) newLocal(v any) foreign.Object {
	h.next++
	h.objects[h.next] = v
	return h.next
}

func (h *Host) newGlobal(v any) foreign.Object {
	obj := h.newLocal(v)
	h.globals[obj] = true
	return obj
}

func (h *Host) faultFor(op foreign.Op, target string) error {
	for i, f := range h.faults {
		if f.op != op || (f.target != "" && f.target != target) {
			continue
		}
		if f.once {
			h.faults = append(h.faults[:i], h.faults[i+1:]...)
		}
		return f.err
	}
	return nil
}

func (h *Host) lookup(obj foreign.Object) (any, error) {
	if obj.IsNull() {
		return nil, errNullPointer
	}
	v, ok := h.objects[obj]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStaleReference, obj)
	}
	return v, nil
}

func intentStatics() map[string]any {
	return map[string]any{
		"ACTION_SEND":                     "android.intent.action.SEND",
		"ACTION_EDIT":                     "android.intent.action.EDIT",
		"ACTION_CHOOSER":                  "android.intent.action.CHOOSER",
		"ACTION_GET_CONTENT":              "android.intent.action.GET_CONTENT",
		"ACTION_VIEW":                     "android.intent.action.VIEW",
		"CATEGORY_OPENABLE":               "android.intent.category.OPENABLE",
		"CATEGORY_DEFAULT":                "android.intent.category.DEFAULT",
		"EXTRA_TEXT":                      "android.intent.extra.TEXT",
		"EXTRA_SUBJECT":                   "android.intent.extra.SUBJECT",
		"EXTRA_TITLE":                     "android.intent.extra.TITLE",
		"EXTRA_INTENT":                    "android.intent.extra.INTENT",
		"FLAG_GRANT_READ_URI_PERMISSION":  int32(0x00000001),
		"FLAG_GRANT_WRITE_URI_PERMISSION": int32(0x00000002),
	}
}
