// SPDX-License-Identifier: MPL-2.0

package intent

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"runtime"

	"github.com/invowk/intentkit/internal/osthread"
	"github.com/invowk/intentkit/pkg/foreign"

	"github.com/charmbracelet/log"
)

const (
	// DefaultIntentClass is the host class of intent messages.
	DefaultIntentClass = "android/content/Intent"
	// DefaultURIClass is the host class with the static parse(String) factory.
	DefaultURIClass = "android/net/Uri"
	// DefaultResultClass is the record class returned by getNextIntentResult.
	DefaultResultClass = "com/invowk/intentkit/NativeIntentResult"
)

var (
	// ErrInvalidClasses is the sentinel wrapped by InvalidClassesError.
	ErrInvalidClasses = errors.New("invalid host classes")

	classNamePattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(/[A-Za-z_$][A-Za-z0-9_$]*)*$`)
)

type (
	// Classes names the host classes the package talks to, in slash form.
	Classes struct {
		Intent string
		URI    string
		Result string
	}

	// InvalidClassesError is returned when a Classes field is empty or not in
	// slash form. It wraps ErrInvalidClasses for errors.Is() compatibility.
	InvalidClassesError struct {
		Field string
		Value string
	}

	// Option configures Acquire.
	Option func(*Environment)

	// Environment is the process-wide attachment point to the host runtime.
	// It is safe to share between goroutines; each goroutine attaches its own
	// Accessor.
	Environment struct {
		host     foreign.HostContext
		hostSet  bool
		classes  Classes
		sigs     signatures
		logger   *log.Logger
		observer Observer
	}

	// Accessor is a thread-bound view of the runtime, valid until Release.
	// It must not be shared with other goroutines.
	Accessor struct {
		envr     *Environment
		env      foreign.Env
		thread   uint64
		attached bool
		released bool
	}
)

// DefaultClasses returns the stock host class names.
func DefaultClasses() Classes {
	return Classes{
		Intent: DefaultIntentClass,
		URI:    DefaultURIClass,
		Result: DefaultResultClass,
	}
}

// ValidClassName reports whether name is a host class name in slash form, such
// as android/content/Intent.
func ValidClassName(name string) bool { return classNamePattern.MatchString(name) }

// Validate checks every class name with ValidClassName.
func (c Classes) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"intent", c.Intent},
		{"uri", c.URI},
		{"result", c.Result},
	} {
		if !ValidClassName(f.value) {
			return &InvalidClassesError{Field: f.name, Value: f.value}
		}
	}
	return nil
}

// Error implements the error interface for InvalidClassesError.
func (e *InvalidClassesError) Error() string {
	return fmt.Sprintf("invalid %s class %q: must be a non-empty slash-separated name", e.Field, e.Value)
}

// Unwrap returns ErrInvalidClasses for errors.Is() compatibility.
func (e *InvalidClassesError) Unwrap() error { return ErrInvalidClasses }

// WithHost uses ctx instead of the process-wide host context.
func WithHost(ctx foreign.HostContext) Option {
	return func(e *Environment) {
		e.host = ctx
		e.hostSet = true
	}
}

// WithClasses overrides the host class names.
func WithClasses(c Classes) Option {
	return func(e *Environment) { e.classes = c }
}

// WithLogger sets the logger used for debug tracing of foreign calls.
func WithLogger(l *log.Logger) Option {
	return func(e *Environment) { e.logger = l }
}

// WithObserver registers an observer for launches, polls and chain failures.
func WithObserver(o Observer) Option {
	return func(e *Environment) { e.observer = o }
}

// Acquire obtains the runtime entry point and the root activity. Without
// WithHost it reads the context installed by foreign.InstallHost and fails
// with an ErrEnvironment error when none is installed yet.
func Acquire(opts ...Option) (*Environment, error) {
	e := &Environment{classes: DefaultClasses()}
	for _, opt := range opts {
		opt(e)
	}

	if !e.hostSet {
		host, err := foreign.CurrentHost()
		if err != nil {
			return nil, newError(KindEnvironment, "acquire", "", err)
		}
		e.host = host
	} else if err := e.host.Validate(); err != nil {
		return nil, newError(KindEnvironment, "acquire", "", err)
	}

	if err := e.classes.Validate(); err != nil {
		return nil, newError(KindEnvironment, "acquire", "", err)
	}
	e.sigs = e.classes.signatures()

	if e.logger == nil {
		e.logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "intent",
			Level:  log.WarnLevel,
		})
	}
	if e.observer == nil {
		e.observer = nopObserver{}
	}
	return e, nil
}

// Classes returns the host class names in use.
func (e *Environment) Classes() Classes { return e.classes }

// Attach binds the calling goroutine to its OS thread and attaches that thread to
// the runtime unless it already is. The returned Accessor must be released on the
// same goroutine. Nested accessors on one thread are allowed; only the accessor that
// performed the attach detaches, so releases must nest inside-out.
func (e *Environment) Attach() (*Accessor, error) {
	runtime.LockOSThread()

	env, ok := e.host.VM.GetEnv()
	attached := false
	if !ok {
		var err error
		env, err = e.host.VM.AttachCurrentThread()
		if err != nil {
			runtime.UnlockOSThread()
			return nil, newError(KindEnvironment, "attach", "", err)
		}
		attached = true
	}

	acc := &Accessor{
		envr:     e,
		env:      env,
		thread:   osthread.ID(),
		attached: attached,
	}
	e.logger.Debug("accessor attached", "thread", acc.thread, "attached_now", attached)
	return acc, nil
}

// WithCurrentEnv acquires the environment, attaches the calling thread, runs fn and
// releases the accessor. A release failure is reported only when fn succeeded.
func WithCurrentEnv(fn func(*Accessor) error, opts ...Option) (err error) {
	envr, err := Acquire(opts...)
	if err != nil {
		return err
	}
	acc, err := envr.Attach()
	if err != nil {
		return err
	}
	defer func() {
		if rerr := acc.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return fn(acc)
}

// Environment returns the environment the accessor was attached from.
func (a *Accessor) Environment() *Environment { return a.envr }

// Env returns the thread's foreign Env for direct calls.
func (a *Accessor) Env() foreign.Env { return a.checked() }

// Release restores the thread's prior attachment state. Calling it again is a no-op.
func (a *Accessor) Release() error {
	if a.released {
		return nil
	}
	a.assertThread()
	a.released = true

	var err error
	if a.attached {
		if derr := a.envr.host.VM.DetachCurrentThread(); derr != nil {
			err = newError(KindEnvironment, "detach", "", derr)
		}
	}
	a.envr.logger.Debug("accessor released", "thread", a.thread, "detached", a.attached)
	runtime.UnlockOSThread()
	return err
}

func (a *Accessor) checked() foreign.Env {
	if a.released {
		panic("intent: accessor used after Release")
	}
	a.assertThread()
	return a.env
}

func (a *Accessor) assertThread() {
	if id := osthread.ID(); id != a.thread {
		panic(fmt.Sprintf("intent: accessor bound to thread %d used from thread %d", a.thread, id))
	}
}

func (a *Accessor) logger() *log.Logger { return a.envr.logger }

func (a *Accessor) observer() Observer { return a.envr.observer }
