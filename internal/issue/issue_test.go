// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	ids := []Id{
		HostContextMissingId,
		AttachFailedId,
		UnknownSymbolId,
		MalformedURIId,
		AllocationFailedId,
		MutationFailedId,
		DispatchFailedId,
		RetrievalFailedId,
		InvalidClassesId,
		ConfigLoadFailedId,
		InvalidFlagValueId,
	}

	seen := make(map[Id]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
		if Get(id) == nil {
			t.Errorf("Get(%d) returned nil", id)
		}
	}
	if HostContextMissingId != 1 {
		t.Errorf("HostContextMissingId = %d, want 1", HostContextMissingId)
	}
	if got := len(Values()); got != len(ids) {
		t.Errorf("len(Values()) = %d, want %d", got, len(ids))
	}
}

func TestValues_Ordered(t *testing.T) {
	vals := Values()
	for i := 1; i < len(vals); i++ {
		if vals[i-1].Id() >= vals[i].Id() {
			t.Errorf("Values()[%d].Id() = %d not before %d", i-1, vals[i-1].Id(), vals[i].Id())
		}
	}
}

func TestIssue_MarkdownMsg(t *testing.T) {
	for _, is := range Values() {
		md := string(is.MarkdownMsg())
		if !strings.Contains(md, "# ") {
			t.Errorf("issue %d has no heading", is.Id())
		}
	}
}

func TestIssue_LinksAreCopies(t *testing.T) {
	is := Get(UnknownSymbolId)
	links := is.ExtLinks()
	if len(links) == 0 {
		t.Fatal("UnknownSymbolId has no external links")
	}
	links[0] = "mutated"
	if is.ExtLinks()[0] == "mutated" {
		t.Error("ExtLinks() exposes the internal slice")
	}
}

func TestIssue_Render(t *testing.T) {
	out, err := Get(MalformedURIId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "Malformed target URI") {
		t.Errorf("Render() output missing heading:\n%s", out)
	}

	out, err = Get(HostContextMissingId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "See also") {
		t.Errorf("Render() output missing links section:\n%s", out)
	}
}

func TestGet_Unknown(t *testing.T) {
	if Get(Id(999)) != nil {
		t.Error("Get(999) returned an issue")
	}
}
