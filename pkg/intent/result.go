// SPDX-License-Identifier: MPL-2.0

package intent

import (
	"errors"

	"github.com/invowk/intentkit/pkg/foreign"
)

// Poll outcomes reported to observers.
const (
	PollEmpty PollOutcome = iota
	PollNoData
	PollData
	PollFailed
)

type (
	// PollOutcome classifies a single poll of the result queue.
	PollOutcome uint8

	// Record is a completion record as delivered by the host. Data is nil when
	// the host reported no payload, for example because the user cancelled.
	Record struct {
		RequestCode int32
		ResultCode  int32
		Data        *Intent
	}

	// CompletedIntent is a completion carrying a payload intent.
	CompletedIntent struct {
		RequestCode int32
		ResultCode  int32
		Data        *Intent
	}
)

// String returns the outcome name.
func (o PollOutcome) String() string {
	switch o {
	case PollEmpty:
		return "empty"
	case PollNoData:
		return "no_data"
	case PollData:
		return "data"
	case PollFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// HasData reports whether the record carries a payload intent.
func (r Record) HasData() bool { return r.Data != nil }

// NextRecord takes the next completion record from the host queue. It returns
// ErrNoPendingResult when the queue is empty. The record is consumed by the read.
func NextRecord(acc *Accessor) (Record, error) {
	rec, err := nextRecord(acc)
	switch {
	case errors.Is(err, ErrNoPendingResult):
		acc.observer().ResultPolled(PollEmpty)
	case err != nil:
		acc.observer().ResultPolled(PollFailed)
	case rec.HasData():
		acc.observer().ResultPolled(PollData)
	default:
		acc.observer().ResultPolled(PollNoData)
	}
	return rec, err
}

// PollResult reads at most one completion:
//
//   - nil, ErrNoPendingResult: nothing is queued
//   - nil, nil: a record arrived without a payload
//   - completion, nil: a record arrived with a payload
//
// Failures of the host call are ErrRetrieval errors.
func PollResult(acc *Accessor) (*CompletedIntent, error) {
	rec, err := NextRecord(acc)
	if err != nil {
		return nil, err
	}
	if !rec.HasData() {
		return nil, nil
	}
	return &CompletedIntent{
		RequestCode: rec.RequestCode,
		ResultCode:  rec.ResultCode,
		Data:        rec.Data,
	}, nil
}

func nextRecord(acc *Accessor) (Record, error) {
	const op = "poll result"
	env := acc.checked()
	envr := acc.envr
	envr.logger.Debug("get next intent result")

	v, err := env.CallMethod(envr.host.Activity, "getNextIntentResult", envr.sigs.nextResult)
	if err != nil {
		return Record{}, newError(KindRetrieval, op, "getNextIntentResult", err)
	}
	obj, err := v.AsObject()
	if err != nil {
		return Record{}, newError(KindRetrieval, op, "getNextIntentResult", err)
	}
	if obj.IsNull() {
		envr.logger.Debug("no pending result")
		return Record{}, ErrNoPendingResult
	}
	defer env.DeleteLocalRef(obj)

	reqCode, err := intField(env, obj, "requestCode")
	if err != nil {
		return Record{}, err
	}
	resCode, err := intField(env, obj, "resultCode")
	if err != nil {
		return Record{}, err
	}
	dv, err := env.GetField(obj, "data", envr.sigs.intentField)
	if err != nil {
		return Record{}, newError(KindRetrieval, op, "data", err)
	}
	data, err := dv.AsObject()
	if err != nil {
		return Record{}, newError(KindRetrieval, op, "data", err)
	}

	rec := Record{RequestCode: reqCode, ResultCode: resCode}
	if data.IsNull() {
		envr.logger.Debug("got null result", "request_code", reqCode, "result_code", resCode)
		return rec, nil
	}
	rec.Data = FromObject(acc, data)
	envr.logger.Debug("got non-null result", "request_code", reqCode, "result_code", resCode)
	return rec, nil
}

func intField(env foreign.Env, obj foreign.Object, name string) (int32, error) {
	v, err := env.GetField(obj, name, sigInt)
	if err != nil {
		return 0, newError(KindRetrieval, "poll result", name, err)
	}
	n, err := v.AsInt()
	if err != nil {
		return 0, newError(KindRetrieval, "poll result", name, err)
	}
	return n, nil
}
