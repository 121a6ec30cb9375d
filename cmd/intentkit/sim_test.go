// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"
	"testing"

	"github.com/invowk/intentkit/internal/config"
	"github.com/invowk/intentkit/internal/testutil"
)

func TestSimSend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		contains []string
		excludes []string
	}{
		{
			name: "untracked send",
			args: []string{"sim", "send", "--text", "Hello World!", "--subject", "greeting", "--extra", "k=v"},
			contains: []string{
				"action: android.intent.action.SEND",
				"type: text/plain",
				`android.intent.extra.TEXT = "Hello World!"`,
				`android.intent.extra.SUBJECT = "greeting"`,
				`k = "v"`,
			},
			excludes: []string{"request code", "Result"},
		},
		{
			name: "chooser with title",
			args: []string{"sim", "send", "--text", "hi", "--title", "Share with"},
			contains: []string{
				"action: android.intent.action.CHOOSER",
				"title: Share with",
				"target:",
				"    action: android.intent.action.SEND",
			},
		},
		{
			name: "untitled chooser",
			args: []string{"sim", "send", "--text", "hi", "--chooser"},
			contains: []string{
				"action: android.intent.action.CHOOSER",
				"target:",
			},
			excludes: []string{"title:"},
		},
		{
			name: "wait with default request code",
			args: []string{"sim", "send", "--text", "hi", "--wait"},
			contains: []string{
				"Launch (request code 1)",
				"Result",
				"request code: 1",
				"result code: -1 (OK)",
				`text: "hi"`,
			},
		},
		{
			name: "explicit request code without payload",
			args: []string{"sim", "--no-data", "send", "--text", "hi", "--request-code", "42", "--wait"},
			contains: []string{
				"Launch (request code 42)",
				"completed without data",
			},
			excludes: []string{"text:"},
		},
		{
			name: "tracked without waiting",
			args: []string{"sim", "send", "--text", "hi", "--request-code", "7"},
			contains: []string{"Launch (request code 7)"},
			excludes: []string{"Result"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stdout, stderr, err := runCLI(t, tt.args...)
			if err != nil {
				t.Fatalf("%v: %v\nstderr: %s", tt.args, err, stderr)
			}
			for _, want := range tt.contains {
				if !strings.Contains(stdout, want) {
					t.Errorf("output does not contain %q:\n%s", want, stdout)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(stdout, unwanted) {
					t.Errorf("output unexpectedly contains %q:\n%s", unwanted, stdout)
				}
			}
		})
	}
}

func TestSimSend_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		args   []string
		code   int
		stderr string
	}{
		{
			name:   "malformed extra",
			args:   []string{"sim", "send", "--text", "hi", "--extra", "novalue"},
			code:   ExitUsage,
			stderr: "--extra key=value",
		},
		{
			name:   "empty extra key",
			args:   []string{"sim", "send", "--text", "hi", "--extra", "=v"},
			code:   ExitUsage,
			stderr: "parse --extra",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, stderr, err := runCLI(t, tt.args...)
			if code := exitCode(t, err); code != tt.code {
				t.Fatalf("exit code = %d, want %d (stderr %q)", code, tt.code, stderr)
			}
			if !strings.Contains(stderr, tt.stderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.stderr)
			}
		})
	}
}

func TestSimSend_RequiresText(t *testing.T) {
	t.Parallel()

	if _, _, err := runCLI(t, "sim", "send"); err == nil {
		t.Fatal("sim send without --text succeeded")
	}
}

func TestSimView(t *testing.T) {
	t.Parallel()

	stdout, stderr, err := runCLI(t, "sim", "view", "https://example.com/a?b=c",
		"--category", "default", "--category", "openable", "--grant-read")
	if err != nil {
		t.Fatalf("sim view: %v\nstderr: %s", err, stderr)
	}
	for _, want := range []string{
		"action: android.intent.action.VIEW",
		"data: https://example.com/a?b=c",
		"categories: android.intent.category.DEFAULT, android.intent.category.OPENABLE",
		"flags: 0x1",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output does not contain %q:\n%s", want, stdout)
		}
	}
}

func TestSimView_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		args   []string
		code   int
		stderr []string
	}{
		{
			name:   "uri without scheme",
			args:   []string{"sim", "view", "example.com/page"},
			code:   ExitFailure,
			stderr: []string{"malformed uri", "absolute URI with a scheme"},
		},
		{
			name:   "unknown category",
			args:   []string{"sim", "view", "https://example.com", "--category", "bogus"},
			code:   ExitUsage,
			stderr: []string{"parse --category", "intentkit catalog"},
		},
		{
			name:   "missing uri",
			args:   []string{"sim", "view"},
			code:   -1,
			stderr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stdout, stderr, err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatalf("%v succeeded:\n%s", tt.args, stdout)
			}
			if tt.code < 0 {
				return
			}
			if code := exitCode(t, err); code != tt.code {
				t.Fatalf("exit code = %d, want %d", code, tt.code)
			}
			for _, want := range tt.stderr {
				if !strings.Contains(stderr, want) {
					t.Errorf("stderr = %q, want it to contain %q", stderr, want)
				}
			}
			if strings.Contains(stdout, "Launch") {
				t.Errorf("nothing should have been launched:\n%s", stdout)
			}
		})
	}
}

func TestSimPick(t *testing.T) {
	t.Parallel()

	stdout, stderr, err := runCLI(t, "sim", "pick", "--type", "image/png", "--request-code", "9")
	if err != nil {
		t.Fatalf("sim pick: %v\nstderr: %s", err, stderr)
	}
	for _, want := range []string{
		"Launch (request code 9)",
		"action: android.intent.action.GET_CONTENT",
		"type: image/png",
		"categories: android.intent.category.OPENABLE",
		"flags: 0x1",
		"request code: 9",
		"data: " + pickedURI,
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output does not contain %q:\n%s", want, stdout)
		}
	}
}

func TestSimPick_Canceled(t *testing.T) {
	t.Parallel()

	stdout, _, err := runCLI(t, "sim", "--result-code", "0", "pick")
	if code := exitCode(t, err); code != ExitCanceled {
		t.Fatalf("exit code = %d, want %d", code, ExitCanceled)
	}
	if !strings.Contains(stdout, "result code: 0 (CANCELED)") {
		t.Errorf("output = %s", stdout)
	}
}

func TestSim_ResultCodeFromConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Simulator.ResultCode = 5
	testutil.WriteConfigFile(t, dir, config.GenerateCUE(cfg))

	stdout, stderr, err := runCLIIn(t, dir, "sim", "send", "--text", "hi", "--wait")
	if err != nil {
		t.Fatalf("sim send: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "result code: 5") {
		t.Errorf("output = %s", stdout)
	}
}

func TestSim_Metrics(t *testing.T) {
	t.Parallel()

	stdout, stderr, err := runCLI(t, "sim", "--metrics", "send", "--text", "hi", "--wait")
	if err != nil {
		t.Fatalf("sim send: %v\nstderr: %s", err, stderr)
	}
	for _, want := range []string{
		"Metrics",
		`intentkit_dispatches_total{action="ACTION_SEND",outcome="ok",tracked="true"} 1`,
		`intentkit_result_polls_total{outcome="data"} 1`,
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output does not contain %q:\n%s", want, stdout)
		}
	}
}
