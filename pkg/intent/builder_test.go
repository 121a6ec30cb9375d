// SPDX-License-Identifier: MPL-2.0

package intent_test

import (
	"errors"
	"testing"

	"github.com/invowk/intentkit/internal/hostsim"
	"github.com/invowk/intentkit/pkg/foreign"
	"github.com/invowk/intentkit/pkg/intent"

	"golang.org/x/exp/slices"
)

func TestNewResolvesAction(t *testing.T) {
	t.Parallel()

	h, acc := setup(t)
	in := intent.New(acc, intent.ActionSend)
	if err := in.Err(); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	snap, ok := h.Snapshot(in.Object())
	if !ok {
		t.Fatal("intent handle is not live")
	}
	if snap.Action != "android.intent.action.SEND" {
		t.Errorf("Action = %q", snap.Action)
	}
	if in.Action() != intent.ActionSend {
		t.Errorf("Action() = %q", in.Action())
	}
}

func TestNewUnknownAction(t *testing.T) {
	t.Parallel()

	h, acc := setup(t)
	in := intent.New(acc, intent.Action("ACTION_TELEPORT"))
	if !errors.Is(in.Err(), intent.ErrResolution) {
		t.Fatalf("Err() = %v, want ErrResolution", in.Err())
	}
	if !errors.Is(in.Err(), hostsim.ErrNoSuchMember) {
		t.Errorf("Err() = %v, want host cause", in.Err())
	}
	if h.Count(foreign.OpNewObject, "") != 0 {
		t.Error("constructor called after failed lookup")
	}
	if !in.Object().IsNull() {
		t.Error("Object() of failed chain is not null")
	}
}

func TestNewAllocationFailure(t *testing.T) {
	t.Parallel()

	h, acc := setup(t)
	h.FailOn(foreign.OpNewObject, "", hostsim.ErrInjected)
	in := intent.New(acc, intent.ActionEdit)
	if !errors.Is(in.Err(), intent.ErrAllocation) {
		t.Errorf("Err() = %v, want ErrAllocation", in.Err())
	}
}

func TestNewWithTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		uri     string
		wantErr error
	}{
		{"content uri", "content://media/external/images/1", nil},
		{"web uri", "https://example.com/a?b=c", nil},
		{"missing scheme", "not a uri", intent.ErrResolution},
		{"bad escape", "http://%zz", intent.ErrResolution},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, acc := setup(t)
			h.ResetCalls()
			in := intent.NewWithTarget(acc, intent.ActionView, tt.uri)
			if tt.wantErr != nil {
				if !errors.Is(in.Err(), tt.wantErr) {
					t.Fatalf("Err() = %v, want %v", in.Err(), tt.wantErr)
				}
				if n := h.Count(foreign.OpNewObject, ""); n != 0 {
					t.Errorf("new_object calls = %d, want 0", n)
				}
				if n := h.CallCount(); n != 0 {
					t.Errorf("host calls = %d, want 0", n)
				}
				return
			}
			if in.Err() != nil {
				t.Fatalf("Err() = %v", in.Err())
			}
			got, ok, err := in.DataString()
			if err != nil || !ok || got != tt.uri {
				t.Errorf("DataString() = %q, %v, %v; want %q", got, ok, err, tt.uri)
			}
		})
	}
}

func TestFromObject(t *testing.T) {
	t.Parallel()

	_, acc := setup(t)
	in := intent.FromObject(acc, foreign.Null)
	if !errors.Is(in.Err(), intent.ErrAllocation) {
		t.Errorf("FromObject(Null) error = %v, want ErrAllocation", in.Err())
	}

	src := intent.New(acc, intent.ActionSend).WithExtra(intent.ExtraSubject, "s")
	adopted := intent.FromObject(acc, src.Object())
	got, ok, err := adopted.StringExtra(intent.ExtraSubject)
	if err != nil || !ok || got != "s" {
		t.Errorf("StringExtra() = %q, %v, %v", got, ok, err)
	}
	if adopted.Action() != "" {
		t.Errorf("Action() = %q, want empty", adopted.Action())
	}
}

func TestChainAppliesInOrder(t *testing.T) {
	t.Parallel()

	h, acc := setup(t)
	in := intent.New(acc, intent.ActionSend).
		WithExtra(intent.ExtraText, "first").
		WithExtra(intent.ExtraText, "second").
		WithType("text/plain").
		WithType("text/html").
		AddCategory(intent.CategoryDefault).
		AddCategory(intent.CategoryDefault).
		AddFlags(intent.FlagGrantReadURIPermission | intent.FlagGrantWriteURIPermission)
	if err := in.Err(); err != nil {
		t.Fatalf("chain error = %v", err)
	}

	snap, _ := h.Snapshot(in.Object())
	if got := snap.Extras[string(intent.ExtraText)]; got != "second" {
		t.Errorf("extra = %q, want %q", got, "second")
	}
	if snap.Type != "text/html" {
		t.Errorf("type = %q, want text/html", snap.Type)
	}
	if !slices.Equal(snap.Categories, []string{"android.intent.category.DEFAULT"}) {
		t.Errorf("categories = %v", snap.Categories)
	}
	if snap.Flags != 3 {
		t.Errorf("flags = %d, want 3", snap.Flags)
	}

	text, ok, err := in.StringExtra(intent.ExtraText)
	if err != nil || !ok || text != "second" {
		t.Errorf("StringExtra() = %q, %v, %v", text, ok, err)
	}
	if _, ok, err := in.StringExtra(intent.ExtraTitle); ok || err != nil {
		t.Errorf("StringExtra(absent) = _, %v, %v; want false, nil", ok, err)
	}
	if _, ok, err := in.DataString(); ok || err != nil {
		t.Errorf("DataString() on target-less intent = _, %v, %v", ok, err)
	}
}

func TestFailedChainShortCircuits(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	h, acc := setup(t, intent.WithObserver(obs))

	in := intent.New(acc, intent.ActionSend)
	h.FailOnce(foreign.OpCallMethod, "setType", hostsim.ErrInjected)
	in.WithType("text/plain")
	if !errors.Is(in.Err(), intent.ErrMutation) {
		t.Fatalf("Err() = %v, want ErrMutation", in.Err())
	}
	first := in.Err()

	h.ResetCalls()
	in.WithExtra(intent.ExtraText, "x").
		WithType("text/plain").
		AddFlags(intent.FlagGrantReadURIPermission).
		AddCategory(intent.CategoryOpenable).
		IntoChooser()
	if n := h.CallCount(); n != 0 {
		t.Errorf("host calls after failure = %d, want 0", n)
	}
	if in.Err() != first {
		t.Errorf("Err() changed to %v", in.Err())
	}
	if _, _, err := in.StringExtra(intent.ExtraText); err != first {
		t.Errorf("StringExtra() error = %v, want chain error", err)
	}

	err := in.StartActivity()
	if !errors.Is(err, intent.ErrDispatch) || !errors.Is(err, intent.ErrMutation) {
		t.Errorf("StartActivity() error = %v, want dispatch wrapping mutation", err)
	}
	if n := h.CallCount(); n != 0 {
		t.Errorf("host calls after dispatch of failed chain = %d, want 0", n)
	}
	if len(h.Launches()) != 0 {
		t.Error("failed chain reached the host")
	}

	if len(obs.failures) != 1 {
		t.Errorf("ChainFailed calls = %d, want 1", len(obs.failures))
	}
	if len(obs.dispatches) != 1 || obs.dispatches[0].err == nil {
		t.Errorf("dispatches = %+v", obs.dispatches)
	}
}

func TestWithExtraAllocationFailure(t *testing.T) {
	t.Parallel()

	h, acc := setup(t)
	in := intent.New(acc, intent.ActionSend)
	h.FailOnce(foreign.OpNewString, "", hostsim.ErrInjected)
	in.WithExtra(intent.ExtraText, "x")
	if !errors.Is(in.Err(), intent.ErrAllocation) {
		t.Errorf("Err() = %v, want ErrAllocation", in.Err())
	}
	if intent.KindOf(in.Err()) != intent.KindAllocation {
		t.Errorf("KindOf() = %v", intent.KindOf(in.Err()))
	}
}

func TestAddFlagsEmpty(t *testing.T) {
	t.Parallel()

	h, acc := setup(t)
	in := intent.New(acc, intent.ActionSend)
	h.ResetCalls()
	in.AddFlags(0)
	if err := in.Err(); err != nil {
		t.Fatalf("AddFlags(0) error = %v", err)
	}
	if n := h.Count(foreign.OpCallMethod, "addFlags"); n != 1 {
		t.Errorf("addFlags calls = %d, want 1", n)
	}
	if n := h.Count(foreign.OpGetStaticField, ""); n != 0 {
		t.Errorf("static field lookups = %d, want 0", n)
	}
	snap, _ := h.Snapshot(in.Object())
	if snap.Flags != 0 {
		t.Errorf("flags = %d, want 0", snap.Flags)
	}
}

func TestAddFlagsIsAtomic(t *testing.T) {
	t.Parallel()

	h, acc := setup(t)
	h.RemoveStaticField(intent.DefaultIntentClass, "FLAG_GRANT_WRITE_URI_PERMISSION")

	in := intent.New(acc, intent.ActionSend)
	in.AddFlags(intent.FlagGrantReadURIPermission | intent.FlagGrantWriteURIPermission)
	if !errors.Is(in.Err(), intent.ErrResolution) {
		t.Fatalf("Err() = %v, want ErrResolution", in.Err())
	}
	if n := h.Count(foreign.OpCallMethod, "addFlags"); n != 0 {
		t.Errorf("addFlags calls = %d, want 0", n)
	}
}

func TestAddFlagsUncataloguedBit(t *testing.T) {
	t.Parallel()

	h, acc := setup(t)
	in := intent.New(acc, intent.ActionSend).AddFlags(intent.Flags(1 << 20))
	if !errors.Is(in.Err(), intent.ErrResolution) {
		t.Errorf("Err() = %v, want ErrResolution", in.Err())
	}
	if n := h.Count(foreign.OpCallMethod, "addFlags"); n != 0 {
		t.Errorf("addFlags calls = %d, want 0", n)
	}
}

func TestAddCategoryUnknown(t *testing.T) {
	t.Parallel()

	_, acc := setup(t)
	in := intent.New(acc, intent.ActionGetContent).AddCategory(intent.Category("CATEGORY_NOPE"))
	if !errors.Is(in.Err(), intent.ErrResolution) {
		t.Errorf("Err() = %v, want ErrResolution", in.Err())
	}
}

func TestIntoChooser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title *string
	}{
		{"untitled", nil},
		{"titled", ptr("Share via")},
		{"empty title", ptr("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, acc := setup(t)
			in := intent.New(acc, intent.ActionSend).WithExtra(intent.ExtraText, "hello")
			old := in.Object()

			if tt.title == nil {
				in.IntoChooser()
			} else {
				in.IntoChooserWithTitle(*tt.title)
			}
			if err := in.Err(); err != nil {
				t.Fatalf("chooser error = %v", err)
			}
			if h.Live(old) {
				t.Error("wrapped intent handle still live")
			}
			if in.Object() == old {
				t.Error("Object() still refers to the wrapped intent")
			}
			if in.Action() != intent.ActionChooser {
				t.Errorf("Action() = %q", in.Action())
			}

			snap, _ := h.Snapshot(in.Object())
			if snap.Action != "android.intent.action.CHOOSER" {
				t.Errorf("chooser action = %q", snap.Action)
			}
			if snap.Target == nil || snap.Target.Extras[string(intent.ExtraText)] != "hello" {
				t.Errorf("chooser target = %+v", snap.Target)
			}
			if want := tt.title != nil; snap.HasTitle != want {
				t.Errorf("HasTitle = %v, want %v", snap.HasTitle, want)
			}
			if tt.title != nil && snap.Title != *tt.title {
				t.Errorf("Title = %q, want %q", snap.Title, *tt.title)
			}
		})
	}
}

func TestIntoChooserFailure(t *testing.T) {
	t.Parallel()

	h, acc := setup(t)
	in := intent.New(acc, intent.ActionSend)
	old := in.Object()
	h.FailOnce(foreign.OpCallStaticMethod, "createChooser", hostsim.ErrInjected)
	in.IntoChooser()
	if !errors.Is(in.Err(), intent.ErrAllocation) {
		t.Fatalf("Err() = %v, want ErrAllocation", in.Err())
	}
	if !h.Live(old) {
		t.Error("wrapped intent released although the chooser was not created")
	}
}

func TestAccessorUseAfterRelease(t *testing.T) {
	t.Parallel()

	h := hostsim.New(hostsim.Options{})
	envr, err := intent.Acquire(intent.WithHost(h.Context()))
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	acc, err := envr.Attach()
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if err := acc.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	mustPanic(t, "New after Release", func() { intent.New(acc, intent.ActionSend) })
}

func ptr[T any](v T) *T { return &v }
