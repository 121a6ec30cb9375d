// SPDX-License-Identifier: MPL-2.0

package intent_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/invowk/intentkit/internal/hostsim"
	"github.com/invowk/intentkit/pkg/foreign"
	"github.com/invowk/intentkit/pkg/intent"
)

func TestPollResultOutcomes(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	h, acc := setup(t, intent.WithObserver(obs))

	res, err := intent.PollResult(acc)
	if res != nil || !errors.Is(err, intent.ErrNoPendingResult) {
		t.Fatalf("PollResult(empty) = %v, %v; want nil, ErrNoPendingResult", res, err)
	}

	h.Complete(hostsim.Completion{RequestCode: 3, ResultCode: hostsim.ResultCanceled})
	res, err = intent.PollResult(acc)
	if res != nil || err != nil {
		t.Fatalf("PollResult(no data) = %v, %v; want nil, nil", res, err)
	}

	h.Complete(hostsim.Completion{
		RequestCode: 4,
		ResultCode:  hostsim.ResultOK,
		Data:        &hostsim.IntentSnapshot{Data: "content://picked/1"},
	})
	res, err = intent.PollResult(acc)
	if err != nil || res == nil {
		t.Fatalf("PollResult(data) = %v, %v", res, err)
	}
	if res.RequestCode != 4 || res.ResultCode != hostsim.ResultOK {
		t.Errorf("codes = %d, %d", res.RequestCode, res.ResultCode)
	}
	uri, ok, err := res.Data.DataString()
	if err != nil || !ok || uri != "content://picked/1" {
		t.Errorf("DataString() = %q, %v, %v", uri, ok, err)
	}

	want := []intent.PollOutcome{intent.PollEmpty, intent.PollNoData, intent.PollData}
	if len(obs.polls) != len(want) {
		t.Fatalf("polls = %v, want %v", obs.polls, want)
	}
	for i := range want {
		if obs.polls[i] != want[i] {
			t.Errorf("poll %d = %v, want %v", i, obs.polls[i], want[i])
		}
	}
}

func TestNextRecordKeepsCodes(t *testing.T) {
	t.Parallel()

	h, acc := setup(t)
	h.Complete(hostsim.Completion{RequestCode: 8, ResultCode: hostsim.ResultCanceled})

	rec, err := intent.NextRecord(acc)
	if err != nil {
		t.Fatalf("NextRecord() error = %v", err)
	}
	if rec.HasData() || rec.RequestCode != 8 || rec.ResultCode != hostsim.ResultCanceled {
		t.Errorf("NextRecord() = %+v", rec)
	}
	if h.Pending() != 0 {
		t.Error("record not consumed")
	}
}

func TestPollResultHostFailure(t *testing.T) {
	t.Parallel()

	h, acc := setup(t)
	h.FailOnce(foreign.OpCallMethod, "getNextIntentResult", hostsim.ErrInjected)
	if _, err := intent.PollResult(acc); !errors.Is(err, intent.ErrRetrieval) {
		t.Errorf("PollResult() error = %v, want ErrRetrieval", err)
	}

	h.Complete(hostsim.Completion{RequestCode: 1})
	h.FailOnce(foreign.OpGetField, "resultCode", hostsim.ErrInjected)
	if _, err := intent.PollResult(acc); !errors.Is(err, intent.ErrRetrieval) {
		t.Errorf("PollResult() field error = %v, want ErrRetrieval", err)
	}
}

func TestSendRoundTrip(t *testing.T) {
	t.Parallel()

	h, acc := setup(t)
	h.SetResponder(hostsim.Echo)

	err := intent.New(acc, intent.ActionSend).
		WithExtra(intent.ExtraText, "Hello World!").
		WithType("text/plain").
		StartActivityForResult(42)
	if err != nil {
		t.Fatalf("StartActivityForResult() error = %v", err)
	}

	res, err := intent.PollResult(acc)
	if err != nil || res == nil {
		t.Fatalf("PollResult() = %v, %v", res, err)
	}
	if res.RequestCode != 42 {
		t.Errorf("RequestCode = %d, want 42", res.RequestCode)
	}
	text, ok, err := res.Data.StringExtra(intent.ExtraText)
	if err != nil || !ok || text != "Hello World!" {
		t.Errorf("StringExtra() = %q, %v, %v", text, ok, err)
	}
}

func TestAwaitResult(t *testing.T) {
	t.Parallel()

	h, acc := setup(t)
	limiter := intent.NewPollLimiter(time.Millisecond, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res, err := intent.AwaitResult(ctx, acc, limiter)
	if err == nil || res != nil {
		t.Errorf("AwaitResult(empty) = %v, %v; want deadline error", res, err)
	}
	if errors.Is(err, intent.ErrRetrieval) {
		t.Errorf("AwaitResult(empty) error = %v, want a context error", err)
	}

	h.Complete(hostsim.Completion{
		RequestCode: 5,
		ResultCode:  hostsim.ResultOK,
		Data:        &hostsim.IntentSnapshot{Data: "content://x"},
	})
	res, err = intent.AwaitResult(context.Background(), acc, limiter)
	if err != nil || res == nil || res.RequestCode != 5 {
		t.Errorf("AwaitResult() = %+v, %v", res, err)
	}
}

func TestPollOutcomeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		o    intent.PollOutcome
		want string
	}{
		{intent.PollEmpty, "empty"},
		{intent.PollNoData, "no_data"},
		{intent.PollData, "data"},
		{intent.PollFailed, "failed"},
		{intent.PollOutcome(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.o.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.o, got, tt.want)
		}
	}
}

func TestReleaseCompletionData(t *testing.T) {
	t.Parallel()

	h, acc := setup(t)
	before := h.LocalRefs()
	h.Complete(hostsim.Completion{
		RequestCode: 5,
		ResultCode:  hostsim.ResultOK,
		Data:        &hostsim.IntentSnapshot{Data: "content://picked/2"},
	})

	res, err := intent.PollResult(acc)
	if err != nil || res == nil {
		t.Fatalf("PollResult() = %v, %v", res, err)
	}
	obj := res.Data.Object()
	if !h.Live(obj) {
		t.Fatal("completion data not live before release")
	}

	res.Data.Release()
	if h.Live(obj) {
		t.Error("completion data still live after Release")
	}
	if got := h.LocalRefs(); got != before {
		t.Errorf("LocalRefs() = %d, want %d", got, before)
	}
	if _, _, err := res.Data.DataString(); !errors.Is(err, intent.ErrConsumed) {
		t.Errorf("DataString() after Release error = %v, want ErrConsumed", err)
	}

	h.ResetCalls()
	res.Data.Release()
	if n := h.CallCount(); n != 0 {
		t.Errorf("host calls on second Release = %d, want 0", n)
	}
}
