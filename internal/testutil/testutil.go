// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ConfigFile is the file name the config loader looks for in a config directory.
const ConfigFile = "config.cue"

// MustMkdirAll creates a directory and all parents.
// The test fails immediately if the operation fails.
func MustMkdirAll(t testing.TB, path string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(path, perm); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// MustWriteFile writes content to path, creating missing parent directories.
// The test fails immediately if the operation fails.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// WriteConfigFile writes content as the config file of dir and returns its path.
func WriteConfigFile(t testing.TB, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFile)
	MustWriteFile(t, path, content)
	return path
}
