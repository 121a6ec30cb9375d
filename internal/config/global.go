// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride allows tests to override the config directory.
var configDirOverride string

// Reset clears test overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride makes ConfigDir return dir. Intended for tests, where
// os.UserHomeDir does not reliably follow a temporary HOME.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
