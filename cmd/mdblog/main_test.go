package main

// Notes:
// - runMain: we test command dispatch and exit codes. Rendering itself is
//   covered by render_test.go.

import (
	"context"
	"strings"
	"testing"
)

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"no command", []string{"mdblog"}, ExitUsage, "", "Usage: mdblog"},
		{"unknown command", []string{"mdblog", "publish"}, ExitUsage, "", "Unknown command: publish"},
		{"version", []string{"mdblog", "version"}, ExitSuccess, "mdblog dev", ""},
		{"version flag", []string{"mdblog", "--version"}, ExitSuccess, "mdblog dev", ""},
		{"help", []string{"mdblog", "help"}, ExitSuccess, "Commands:", ""},
		{"help flag", []string{"mdblog", "-h"}, ExitSuccess, "Commands:", ""},
		{"help topic", []string{"mdblog", "help", "render"}, ExitSuccess, "--base-url", ""},
		{"render help", []string{"mdblog", "render", "--help"}, ExitSuccess, "", "Usage: mdblog render"},
		{"render without input", []string{"mdblog", "render"}, ExitUsage, "", "error: no input specified"},
		{"strip bad flag", []string{"mdblog", "strip", "--nope"}, ExitUsage, "", "error: invalid usage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := mapEnv(nil)
			if got := runMain(context.Background(), tt.args, env); got != tt.wantCode {
				t.Errorf("runMain(%v) = %d, want %d; stderr: %s", tt.args, got, tt.wantCode, stderr.String())
			}
			if !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout missing %q: %s", tt.wantStdout, stdout.String())
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr missing %q: %s", tt.wantStderr, stderr.String())
			}
		})
	}
}

func TestRunMain_StripStdin(t *testing.T) {
	t.Parallel()

	env, stdout, _ := mapEnv(nil)
	env.Stdin = strings.NewReader("# Title\n\nBody")

	if code := runMain(context.Background(), []string{"mdblog", "strip"}, env); code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	if got := stdout.String(); got != "Title Body\n" {
		t.Errorf("stdout = %q, want %q", got, "Title Body\n")
	}
}
