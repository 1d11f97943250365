package main

// Notes:
// - runStrip: stdin and file input, each output mode, and usage errors.
//   Text reduction itself is covered by the pipeline package.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const stripSource = "---\ntitle: T\npath: [t]\n---\n\n# Heading\n\nSome **bold** [link](https://example.com).\n"

func TestRunStrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "post.md")
	if err := os.WriteFile(file, []byte(stripSource), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{"stdin plain", nil, stripSource, "Heading Some bold link.\n"},
		{"dash is stdin", []string{"-"}, stripSource, "Heading Some bold link.\n"},
		{"file plain", []string{file}, "", "Heading Some bold link.\n"},
		{"excerpt", []string{"--excerpt", "7", file}, "", "Heading...\n"},
		{"excerpt zero", []string{"--excerpt", "0", file}, "", "...\n"},
		{"reading time", []string{"--reading-time", file}, "", "1\n"},
		{"both", []string{"--excerpt", "100", "--reading-time", file}, "", "Heading Some bold link.\n1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := mapEnv(nil)
			env.Stdin = strings.NewReader(tt.stdin)

			if err := runStrip(tt.args, env); err != nil {
				t.Fatalf("runStrip() error = %v, stderr: %s", err, stderr.String())
			}
			if got := stdout.String(); got != tt.want {
				t.Errorf("stdout = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunStrip_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"two files", []string{"a.md", "b.md"}, ErrUsage},
		{"negative excerpt", []string{"--excerpt", "-1"}, ErrUsage},
		{"missing file", []string{filepath.Join(t.TempDir(), "nope.md")}, ErrReadInput},
		{"help", []string{"-h"}, errHelpShown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, _ := mapEnv(nil)
			err := runStrip(tt.args, env)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("runStrip(%v) error = %v, want %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestRunStrip_MissingFileExitCode(t *testing.T) {
	t.Parallel()

	env, _, stderr := mapEnv(nil)
	code := runMain(t.Context(), []string{"mdblog", "strip", filepath.Join(t.TempDir(), "nope.md")}, env)
	if code != ExitIO {
		t.Errorf("exit = %d, want %d; stderr: %s", code, ExitIO, stderr.String())
	}
}
