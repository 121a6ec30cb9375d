// SPDX-License-Identifier: MPL-2.0

package hostsim

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type (
	class struct {
		name    string
		statics map[string]any // string or int32
	}

	classObj    struct{ c *class }
	stringObj   struct{ s string }
	uriObj      struct{ s string }
	activityObj struct{}

	intentObj struct {
		action     string
		data       *string
		mime       string
		extras     map[string]string
		categories []string
		flags      int32
		target     *intentObj
		title      *string
	}

	recordObj struct {
		requestCode int32
		resultCode  int32
		data        *intentObj
	}

	// IntentSnapshot is a copy of an intent's state as the host saw it.
	IntentSnapshot struct {
		Action     string
		Data       string
		Type       string
		Extras     map[string]string
		Categories []string
		Flags      int32
		// Target is the wrapped intent of a chooser.
		Target *IntentSnapshot
		// Title is the chooser title; HasTitle distinguishes "" from no title.
		Title    string
		HasTitle bool
	}

	// Launch is one startActivity or startActivityForResult call.
	Launch struct {
		Intent      IntentSnapshot
		RequestCode int32
		Tracked     bool
	}

	// Completion is a queued result record. A nil Data models a null payload.
	Completion struct {
		RequestCode int32
		ResultCode  int32
		Data        *IntentSnapshot
	}

	// Responder produces the completion for a tracked launch. Returning false
	// leaves the queue untouched.
	Responder func(Launch) (Completion, bool)
)

func (in *intentObj) clone() *intentObj {
	if in == nil {
		return nil
	}
	out := *in
	out.extras = maps.Clone(in.extras)
	out.categories = slices.Clone(in.categories)
	out.target = in.target.clone()
	return &out
}

func (in *intentObj) snapshot() IntentSnapshot {
	s := IntentSnapshot{
		Action:     in.action,
		Type:       in.mime,
		Extras:     maps.Clone(in.extras),
		Categories: slices.Clone(in.categories),
		Flags:      in.flags,
	}
	if s.Extras == nil {
		s.Extras = map[string]string{}
	}
	if in.data != nil {
		s.Data = *in.data
	}
	if in.target != nil {
		t := in.target.snapshot()
		s.Target = &t
	}
	if in.title != nil {
		s.Title = *in.title
		s.HasTitle = true
	}
	return s
}

func fromSnapshot(s *IntentSnapshot) *intentObj {
	if s == nil {
		return nil
	}
	in := &intentObj{
		action:     s.Action,
		mime:       s.Type,
		extras:     maps.Clone(s.Extras),
		categories: slices.Clone(s.Categories),
		flags:      s.Flags,
		target:     fromSnapshot(s.Target),
	}
	if in.extras == nil {
		in.extras = map[string]string{}
	}
	if s.Data != "" {
		d := s.Data
		in.data = &d
	}
	if s.HasTitle {
		t := s.Title
		in.title = &t
	}
	return in
}

// ReplyWith returns a Responder that answers every tracked launch with resultCode
// and data, echoing the launch's request code.
func ReplyWith(resultCode int32, data *IntentSnapshot) Responder {
	return func(l Launch) (Completion, bool) {
		return Completion{RequestCode: l.RequestCode, ResultCode: resultCode, Data: data}, true
	}
}

// Echo is a Responder that answers with ResultOK and a copy of the launched intent.
func Echo(l Launch) (Completion, bool) {
	data := fromSnapshot(&l.Intent).snapshot()
	return Completion{RequestCode: l.RequestCode, ResultCode: ResultOK, Data: &data}, true
}
