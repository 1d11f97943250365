package main

// Notes:
// - runRender is exercised through runMain so exit codes are covered too.
//   Content is served from file:// temp directories or httptest servers;
//   no browser or mermaid CLI is needed (diagram engine stays "none").
// - Config tiers are verified by observable fetch targets: the render only
//   succeeds when the winning base URL holds the post.
// - Output path rules are tested through assignOutputs directly.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mdblog "github.com/alnah/go-mdblog"
	"github.com/alnah/go-mdblog/internal/config"
)

func render(t *testing.T, env *Environment, args ...string) int {
	t.Helper()
	return runMain(context.Background(), append([]string{"mdblog", "render"}, args...), env)
}

// ---------------------------------------------------------------------------
// TestRender_Stdout
// ---------------------------------------------------------------------------

func TestRender_Stdout(t *testing.T) {
	t.Parallel()

	_, base := writeContent(t, map[string]string{"ko/hello world.md": helloPost})
	env, stdout, stderr := mapEnv(nil)

	code := render(t, env, "-b", base, "hello-world")
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{"Getting Started", "First steps."} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(stderr.String(), "Created") {
		t.Errorf("stdout render should not report a created file: %s", stderr.String())
	}
}

func TestRender_HTTPSource(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posts/en/hello.mdx" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(helloPost))
	}))
	t.Cleanup(srv.Close)

	env, stdout, stderr := mapEnv(nil)
	code := render(t, env, "-b", srv.URL+"/posts", "-l", "en", "--ext", "mdx", "hello")
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "First steps.") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

// ---------------------------------------------------------------------------
// TestRender_Outputs
// ---------------------------------------------------------------------------

func TestRender_OutputDirectory(t *testing.T) {
	t.Parallel()

	_, base := writeContent(t, map[string]string{
		"ko/a.md": helloPost,
		"ko/b.md": "# B\n\nSecond.\n",
	})
	outDir := filepath.Join(t.TempDir(), "site")
	env, stdout, stderr := mapEnv(nil)

	code := render(t, env, "-b", base, "-o", outDir, "-w", "2", "a", "b")
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty with --output, got %q", stdout.String())
	}
	for _, name := range []string{"ko/a.html", "ko/b.html"} {
		data, err := os.ReadFile(filepath.Join(outDir, filepath.FromSlash(name)))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
	if !strings.Contains(stderr.String(), "2 succeeded, 0 failed") {
		t.Errorf("stderr missing summary: %s", stderr.String())
	}
}

func TestRender_OutputFileStandalone(t *testing.T) {
	t.Parallel()

	_, base := writeContent(t, map[string]string{"ko/hello.md": helloPost})
	outFile := filepath.Join(t.TempDir(), "page.html")
	env, _, stderr := mapEnv(nil)

	code := render(t, env, "-b", base, "-o", outFile, "--standalone", "--highlight-style", "dracula", "hello")
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, stderr.String())
	}
	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatal(err)
	}
	page := string(data)
	for _, want := range []string{"<!DOCTYPE html>", "<title>Hello</title>", "First steps."} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if !strings.Contains(stderr.String(), "Created "+outFile) {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRender_JSON(t *testing.T) {
	t.Parallel()

	_, base := writeContent(t, map[string]string{"ko/hello.md": helloPost})
	env, stdout, stderr := mapEnv(nil)

	code := render(t, env, "-b", base, "-f", "json", "--excerpt-length", "5", "hello")
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, stderr.String())
	}

	var doc documentJSON
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout.String())
	}
	if doc.Path != "ko/hello.md" || doc.Locale != "ko" {
		t.Errorf("path/locale = %q/%q", doc.Path, doc.Locale)
	}
	if doc.Frontmatter == nil || doc.Frontmatter.Title != "Hello" {
		t.Errorf("frontmatter = %+v", doc.Frontmatter)
	}
	if doc.ReadingTime != 1 {
		t.Errorf("readingTime = %d, want 1", doc.ReadingTime)
	}
	if doc.Excerpt != "Getti..." {
		t.Errorf("excerpt = %q, want %q", doc.Excerpt, "Getti...")
	}
	if len(doc.Headings) != 1 || doc.Headings[0].Level != 2 || doc.Headings[0].Text != "Getting Started" {
		t.Errorf("headings = %+v", doc.Headings)
	}
	if !strings.Contains(doc.HTML, "First steps.") {
		t.Errorf("html = %q", doc.HTML)
	}
}

func TestAssignOutputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		paths   []string
		output  string
		format  string
		watch   bool
		want    []string
		wantErr error
	}{
		{"single to stdout", []string{"ko/a.md"}, "", formatHTML, false, []string{""}, nil},
		{"many need output", []string{"ko/a.md", "ko/b.md"}, "", formatHTML, false, nil, ErrUsage},
		{"single file", []string{"ko/a.md"}, "out/page.html", formatHTML, false, []string{"out/page.html"}, nil},
		{"single into dir", []string{"ko/a.md"}, "out", formatHTML, false, []string{filepath.Join("out", "ko", "a.html")}, nil},
		{"json into dir", []string{"ko/a.mdx", "en/b.md"}, "out", formatJSON, false,
			[]string{filepath.Join("out", "ko", "a.json"), filepath.Join("out", "en", "b.json")}, nil},
		{"file path with many goes to dir", []string{"ko/a.md", "ko/b.md"}, "out.d", formatHTML, false,
			[]string{filepath.Join("out.d", "ko", "a.html"), filepath.Join("out.d", "ko", "b.html")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			jobs := make([]renderJob, len(tt.paths))
			for i, p := range tt.paths {
				jobs[i] = renderJob{Path: p}
			}
			err := assignOutputs(jobs, tt.output, tt.format, tt.watch)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("assignOutputs() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			for i, want := range tt.want {
				if jobs[i].OutputPath != want {
					t.Errorf("jobs[%d].OutputPath = %q, want %q", i, jobs[i].OutputPath, want)
				}
			}
		})
	}
}

func TestBuildJobs(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Content.Locale = "en-us"
	cfg.Content.Extension = "mdx"

	jobs, err := buildJobs([]string{"hello-world", "ko/explicit.md", "/about.md/"}, cfg)
	if err != nil {
		t.Fatalf("buildJobs() error = %v", err)
	}
	want := []string{"en-US/hello-world.mdx", "ko/explicit.md", "about.md"}
	for i, w := range want {
		if jobs[i].Path != w {
			t.Errorf("jobs[%d].Path = %q, want %q", i, jobs[i].Path, w)
		}
	}

	if _, err := buildJobs(nil, cfg); !errors.Is(err, ErrNoInput) {
		t.Errorf("buildJobs(nil) error = %v, want ErrNoInput", err)
	}
	if _, err := buildJobs([]string{"/"}, cfg); !errors.Is(err, ErrUsage) {
		t.Errorf("buildJobs(/) error = %v, want ErrUsage", err)
	}
}

// ---------------------------------------------------------------------------
// TestRender_ExitCodes
// ---------------------------------------------------------------------------

func TestRender_ExitCodes(t *testing.T) {
	t.Parallel()

	_, base := writeContent(t, map[string]string{
		"ko/hello.md":     helloPost,
		"ko/untitled.md":  "---\npath: [a]\n---\n\nbody\n",
		"ko/component.md": "intro\n\n<Chart />\n",
	})

	tests := []struct {
		name       string
		args       []string
		want       int
		wantStderr string
	}{
		{"missing post", []string{"-b", base, "missing"}, ExitIO, "current locale is ko"},
		{"frontmatter error", []string{"-b", base, "untitled"}, ExitContent, "title and a path"},
		{"compile error", []string{"-b", base, "component"}, ExitContent, "FAILED ko/component.md"},
		{"no input", []string{"-b", base}, ExitUsage, "no input"},
		{"many to stdout", []string{"-b", base, "a", "b"}, ExitUsage, "--output"},
		{"too many workers", []string{"-b", base, "-w", "99", "hello"}, ExitUsage, "worker"},
		{"no base URL", []string{"hello"}, ExitUsage, "FAILED"},
		{"bad locale", []string{"-b", base, "-l", "not a tag", "hello"}, ExitUsage, "locale"},
		{"bad engine", []string{"-b", base, "--diagram-engine", "gpu", "hello"}, ExitUsage, "diagram.engine"},
		{"bad flag", []string{"--bogus"}, ExitUsage, "bogus"},
		{"missing config", []string{"-c", "./nope/mdblog.yaml", "hello"}, ExitUsage, "config file not found"},
		{"help", []string{"--help"}, ExitSuccess, "Usage: mdblog render"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, stderr := mapEnv(nil)
			if got := render(t, env, tt.args...); got != tt.want {
				t.Errorf("exit = %d, want %d; stderr: %s", got, tt.want, stderr.String())
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr missing %q: %s", tt.wantStderr, stderr.String())
			}
		})
	}
}

func TestRender_PartialBatch(t *testing.T) {
	t.Parallel()

	_, base := writeContent(t, map[string]string{"ko/good.md": helloPost})
	outDir := t.TempDir()
	env, _, stderr := mapEnv(nil)

	code := render(t, env, "-b", base, "-o", outDir, "good", "gone")
	if code != ExitIO {
		t.Errorf("exit = %d, want %d", code, ExitIO)
	}
	if _, err := os.Stat(filepath.Join(outDir, "ko", "good.html")); err != nil {
		t.Errorf("good post not written: %v", err)
	}
	out := stderr.String()
	for _, want := range []string{"FAILED ko/gone.md", "1 succeeded, 1 failed", "1 of 2 render(s) failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("stderr missing %q: %s", want, out)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRender_ConfigTiers - file < env < flags
// ---------------------------------------------------------------------------

func TestRender_ConfigTiers(t *testing.T) {
	t.Parallel()

	_, fileBase := writeContent(t, map[string]string{"ko/from file.md": "file tier\n"})
	_, envBase := writeContent(t, map[string]string{"ko/from env.md": "env tier\n"})
	_, flagBase := writeContent(t, map[string]string{"ko/from flag.md": "flag tier\n"})

	cfgPath := filepath.Join(t.TempDir(), "mdblog.yaml")
	yaml := "content:\n  baseURL: " + fileBase + "\n  locale: ko\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		vars     map[string]string
		args     []string
		wantText string
	}{
		{"config file", nil, []string{"-c", cfgPath, "from-file"}, "file tier"},
		{"config from env var", map[string]string{"MDBLOG_CONFIG": cfgPath}, []string{"from-file"}, "file tier"},
		{"env over file", map[string]string{"MDBLOG_BASE_URL": envBase}, []string{"-c", cfgPath, "from-env"}, "env tier"},
		{"flag over env", map[string]string{"MDBLOG_BASE_URL": envBase}, []string{"-c", cfgPath, "-b", flagBase, "from-flag"}, "flag tier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := mapEnv(tt.vars)
			if code := render(t, env, tt.args...); code != ExitSuccess {
				t.Fatalf("exit = %d, stderr: %s", code, stderr.String())
			}
			if !strings.Contains(stdout.String(), tt.wantText) {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantText)
			}
		})
	}
}

func TestRender_About(t *testing.T) {
	t.Parallel()

	_, postsBase := writeContent(t, map[string]string{})
	_, aboutBase := writeContent(t, map[string]string{"ko/me.md": "about me\n"})
	env, stdout, stderr := mapEnv(map[string]string{
		"MDBLOG_BASE_URL":       postsBase,
		"MDBLOG_ABOUT_BASE_URL": aboutBase,
	})

	if code := render(t, env, "--about", "me"); code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "about me") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRender_UnknownEnvWarning(t *testing.T) {
	t.Parallel()

	_, base := writeContent(t, map[string]string{"ko/hello.md": helloPost})
	env, _, stderr := mapEnv(map[string]string{"MDBLOG_BASEURL": base})

	_ = render(t, env, "-b", base, "hello")
	if !strings.Contains(stderr.String(), "unknown environment variable MDBLOG_BASEURL") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestRenderBatch - Pool failures
// ---------------------------------------------------------------------------

func TestRenderBatch_FactoryError(t *testing.T) {
	t.Parallel()

	boom := errors.New("engine unavailable")
	pool := mdblog.NewRendererPool(2, func() (*mdblog.Renderer, error) { return nil, boom })
	t.Cleanup(func() { _ = pool.Close() })

	jobs := []renderJob{{Path: "ko/a.md"}, {Path: "ko/b.md"}, {Path: "ko/c.md"}}
	params := newRenderParams(config.DefaultConfig(), &renderFlags{}, newLogger(&strings.Builder{}, config.LogConfig{}, true, false))

	results := renderBatch(context.Background(), pool, jobs, params, &strings.Builder{})

	if len(results) != len(jobs) {
		t.Fatalf("got %d results, want %d", len(results), len(jobs))
	}
	for i, r := range results {
		if !errors.Is(r.Err, boom) {
			t.Errorf("results[%d].Err = %v, want %v", i, r.Err, boom)
		}
		if r.Job.Path != jobs[i].Path {
			t.Errorf("results[%d] out of order: %q", i, r.Job.Path)
		}
	}
}

func TestRenderBatch_Cancelled(t *testing.T) {
	t.Parallel()

	_, base := writeContent(t, map[string]string{"ko/a.md": "a\n"})
	cfg := config.DefaultConfig()
	cfg.Content.BaseURL = base
	params := newRenderParams(cfg, &renderFlags{}, newLogger(&strings.Builder{}, config.LogConfig{}, true, false))
	pool := mdblog.NewRendererPool(1, rendererFactory(params))
	t.Cleanup(func() { _ = pool.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := renderBatch(ctx, pool, []renderJob{{Path: "ko/a.md"}}, params, &strings.Builder{})
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", results[0].Err)
	}
}
