package main

// Notes:
// - parseRenderFlags: we test defaults, short flags, explicit-set tracking,
//   and format validation.
// - mergeFlags: only explicitly given flags override the config, including
//   false and zero values.

import (
	"bytes"
	"errors"
	"testing"

	"github.com/alnah/go-mdblog/internal/config"
)

// ---------------------------------------------------------------------------
// TestParseRenderFlags
// ---------------------------------------------------------------------------

func TestParseRenderFlags_Defaults(t *testing.T) {
	t.Parallel()

	f, args, err := parseRenderFlags([]string{"hello"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseRenderFlags() error = %v", err)
	}
	if len(args) != 1 || args[0] != "hello" {
		t.Errorf("args = %v, want [hello]", args)
	}
	if f.output.format != formatHTML {
		t.Errorf("format = %q, want html", f.output.format)
	}
	if len(f.changed) != 0 {
		t.Errorf("changed = %v, want empty", f.changed)
	}
}

func TestParseRenderFlags_ShortFlags(t *testing.T) {
	t.Parallel()

	f, args, err := parseRenderFlags([]string{
		"-b", "https://cdn.example.com", "-l", "en", "-t", "5s",
		"-o", "out", "-f", "json", "-w", "2", "-q", "a", "b",
	}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseRenderFlags() error = %v", err)
	}

	if f.content.baseURL != "https://cdn.example.com" {
		t.Errorf("baseURL = %q", f.content.baseURL)
	}
	if f.content.locale != "en" || f.content.timeout != "5s" {
		t.Errorf("locale/timeout = %q/%q", f.content.locale, f.content.timeout)
	}
	if f.output.path != "out" || f.output.format != formatJSON {
		t.Errorf("output = %q/%q", f.output.path, f.output.format)
	}
	if f.workers != 2 || !f.common.quiet {
		t.Errorf("workers/quiet = %d/%v", f.workers, f.common.quiet)
	}
	if len(args) != 2 {
		t.Errorf("args = %v, want 2", args)
	}
	for _, name := range []string{"base-url", "locale", "timeout", "output", "format", "workers", "quiet"} {
		if !f.set(name) {
			t.Errorf("set(%q) = false, want true", name)
		}
	}
	if f.set("ext") {
		t.Error("set(ext) = true for a flag not given")
	}
}

func TestParseRenderFlags_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"unknown flag", []string{"--nope"}, ErrUsage},
		{"bad format", []string{"-f", "xml"}, ErrUsage},
		{"standalone json", []string{"-s", "-f", "json"}, ErrUsage},
		{"bad int", []string{"-w", "many"}, ErrUsage},
		{"help", []string{"--help"}, errHelpShown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := parseRenderFlags(tt.args, &bytes.Buffer{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("parseRenderFlags(%v) error = %v, want %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMergeFlags
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	t.Run("unset flags keep config", func(t *testing.T) {
		t.Parallel()

		f, _, err := parseRenderFlags(nil, &bytes.Buffer{})
		if err != nil {
			t.Fatal(err)
		}
		cfg := config.DefaultConfig()
		cfg.Content.BaseURL = "https://cdn.example.com"
		cfg.Render.ImageCheck = true

		mergeFlags(f, cfg)

		if cfg.Content.BaseURL != "https://cdn.example.com" {
			t.Errorf("BaseURL = %q, want config value", cfg.Content.BaseURL)
		}
		if !cfg.Render.ImageCheck {
			t.Error("ImageCheck should keep config value")
		}
	})

	t.Run("explicit flags override", func(t *testing.T) {
		t.Parallel()

		f, _, err := parseRenderFlags([]string{
			"-b", "file:///content", "--ext", "mdx", "--image-check=false",
			"--excerpt-length", "0", "--diagram-engine", "command",
			"--highlight-style", "dracula", "--log-format", "json",
		}, &bytes.Buffer{})
		if err != nil {
			t.Fatal(err)
		}
		cfg := config.DefaultConfig()
		cfg.Render.ImageCheck = true

		mergeFlags(f, cfg)

		if cfg.Content.BaseURL != "file:///content" {
			t.Errorf("BaseURL = %q", cfg.Content.BaseURL)
		}
		if cfg.Content.Extension != "mdx" {
			t.Errorf("Extension = %q", cfg.Content.Extension)
		}
		if cfg.Render.ImageCheck {
			t.Error("--image-check=false should override config true")
		}
		if cfg.Excerpt.MaxLength != 0 {
			t.Errorf("MaxLength = %d, want 0", cfg.Excerpt.MaxLength)
		}
		if cfg.Diagram.Engine != "command" || cfg.Render.HighlightStyle != "dracula" || cfg.Log.Format != "json" {
			t.Errorf("engine/style/log = %q/%q/%q", cfg.Diagram.Engine, cfg.Render.HighlightStyle, cfg.Log.Format)
		}
	})
}
