// SPDX-License-Identifier: MPL-2.0

package intent

import (
	"fmt"
	"math/bits"
	"strings"

	"golang.org/x/exp/slices"
)

// Actions resolve to static String fields of the intent class.
const (
	ActionSend       Action = "ACTION_SEND"
	ActionEdit       Action = "ACTION_EDIT"
	ActionChooser    Action = "ACTION_CHOOSER"
	ActionGetContent Action = "ACTION_GET_CONTENT"
	ActionView       Action = "ACTION_VIEW"
)

// Categories resolve to static String fields of the intent class.
const (
	CategoryOpenable Category = "CATEGORY_OPENABLE"
	CategoryDefault  Category = "CATEGORY_DEFAULT"
)

// Flag bits. Each resolves to the static int field FLAG_<name> of the intent class.
const (
	FlagGrantReadURIPermission Flags = 1 << iota
	FlagGrantWriteURIPermission
)

// Well-known extra keys.
const (
	ExtraText    Extra = "android.intent.extra.TEXT"
	ExtraSubject Extra = "android.intent.extra.SUBJECT"
	ExtraTitle   Extra = "android.intent.extra.TITLE"
)

const (
	actionPrefix   = "ACTION_"
	categoryPrefix = "CATEGORY_"
	flagPrefix     = "FLAG_"
)

var (
	actions    = []Action{ActionSend, ActionEdit, ActionChooser, ActionGetContent, ActionView}
	categories = []Category{CategoryOpenable, CategoryDefault}
	extras     = []Extra{ExtraText, ExtraSubject, ExtraTitle}

	// flagNames is indexed by bit position.
	flagNames = []string{
		"GRANT_READ_URI_PERMISSION",
		"GRANT_WRITE_URI_PERMISSION",
	}
)

type (
	// Action is the symbolic name of an intent action constant.
	Action string

	// Category is the symbolic name of an intent category constant.
	Category string

	// Flags is a set of intent flag bits.
	Flags uint32

	// Extra is an extra key. Any string key is accepted by Intent.WithExtra.
	Extra string
)

// Actions returns the action catalog.
func Actions() []Action { return slices.Clone(actions) }

// Categories returns the category catalog.
func Categories() []Category { return slices.Clone(categories) }

// Extras returns the well-known extra keys.
func Extras() []Extra { return slices.Clone(extras) }

// AllFlags returns every catalogued flag bit in bit order.
func AllFlags() []Flags {
	out := make([]Flags, len(flagNames))
	for i := range flagNames {
		out[i] = Flags(1) << i
	}
	return out
}

// ParseAction accepts "send", "get-content" or the full constant name "ACTION_SEND".
func ParseAction(s string) (Action, error) {
	a := Action(canonical(actionPrefix, s))
	if !slices.Contains(actions, a) {
		return "", newError(KindResolution, "parse action", s, ErrUnknownName)
	}
	return a, nil
}

// ParseCategory accepts "openable" or the full constant name "CATEGORY_OPENABLE".
func ParseCategory(s string) (Category, error) {
	c := Category(canonical(categoryPrefix, s))
	if !slices.Contains(categories, c) {
		return "", newError(KindResolution, "parse category", s, ErrUnknownName)
	}
	return c, nil
}

// ParseFlags combines flag names such as "grant-read-uri-permission" or
// "FLAG_GRANT_READ_URI_PERMISSION".
func ParseFlags(names ...string) (Flags, error) {
	var f Flags
	for _, n := range names {
		name := strings.TrimPrefix(canonical(flagPrefix, n), flagPrefix)
		i := slices.Index(flagNames, name)
		if i < 0 {
			return 0, newError(KindResolution, "parse flags", n, ErrUnknownName)
		}
		f |= Flags(1) << i
	}
	return f, nil
}

func canonical(prefix, s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	if !strings.HasPrefix(s, prefix) {
		s = prefix + s
	}
	return s
}

// String returns the constant name.
func (a Action) String() string { return string(a) }

// IsValid reports whether the action is in the catalog.
func (a Action) IsValid() (bool, []error) {
	if slices.Contains(actions, a) {
		return true, nil
	}
	return false, []error{newError(KindResolution, "validate action", string(a), ErrUnknownName)}
}

// String returns the constant name.
func (c Category) String() string { return string(c) }

// IsValid reports whether the category is in the catalog.
func (c Category) IsValid() (bool, []error) {
	if slices.Contains(categories, c) {
		return true, nil
	}
	return false, []error{newError(KindResolution, "validate category", string(c), ErrUnknownName)}
}

// String returns the extra key.
func (e Extra) String() string { return string(e) }

// Has reports whether every bit of other is set in f.
func (f Flags) Has(other Flags) bool { return f&other == other }

// Bits returns the set bits of f, lowest first, each as a single-bit Flags.
func (f Flags) Bits() []Flags {
	out := make([]Flags, 0, bits.OnesCount32(uint32(f)))
	for rest := uint32(f); rest != 0; rest &= rest - 1 {
		out = append(out, Flags(1)<<bits.TrailingZeros32(rest))
	}
	return out
}

// Name returns the catalog name of a single-bit Flags.
func (f Flags) Name() (string, bool) {
	if bits.OnesCount32(uint32(f)) != 1 {
		return "", false
	}
	i := bits.TrailingZeros32(uint32(f))
	if i >= len(flagNames) {
		return "", false
	}
	return flagNames[i], true
}

// String renders the set as NAME|NAME, with uncatalogued bits in hex.
func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	parts := make([]string, 0, 2)
	for _, b := range f.Bits() {
		if name, ok := b.Name(); ok {
			parts = append(parts, name)
		} else {
			parts = append(parts, fmt.Sprintf("%#x", uint32(b)))
		}
	}
	return strings.Join(parts, "|")
}
