// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"
	"testing"
)

func TestCatalogCommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := runCLI(t, "catalog")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	for _, want := range []string{
		"ACTION_SEND", "send",
		"ACTION_GET_CONTENT", "get-content",
		"CATEGORY_OPENABLE", "openable",
		"FLAG_GRANT_READ_URI_PERMISSION", "bit 0",
		"FLAG_GRANT_WRITE_URI_PERMISSION", "bit 1",
		"android.intent.extra.TEXT",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("catalog output does not contain %q:\n%s", want, stdout)
		}
	}
}

func TestShortName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix, name, want string
	}{
		{"ACTION_", "ACTION_GET_CONTENT", "get-content"},
		{"CATEGORY_", "CATEGORY_DEFAULT", "default"},
		{"", "GRANT_READ_URI_PERMISSION", "grant-read-uri-permission"},
	}
	for _, tt := range tests {
		if got := shortName(tt.prefix, tt.name); got != tt.want {
			t.Errorf("shortName(%q, %q) = %q, want %q", tt.prefix, tt.name, got, tt.want)
		}
	}
}
