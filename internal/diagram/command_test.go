package diagram

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"os"
	"strings"
	"testing"
)

// fakeRunner records the invocation and writes output to the --output path.
type fakeRunner struct {
	name   string
	args   []string
	input  string
	config string
	output string
	err    error
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	r.name = name
	r.args = args
	if r.err != nil {
		return r.err
	}
	for i := 0; i+1 < len(args); i++ {
		switch args[i] {
		case "--input":
			b, _ := os.ReadFile(args[i+1])
			r.input = string(b)
		case "--configFile":
			b, _ := os.ReadFile(args[i+1])
			r.config = string(b)
		case "--output":
			if err := os.WriteFile(args[i+1], []byte(r.output), 0o600); err != nil {
				return err
			}
		}
	}
	return nil
}

func argAfter(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func TestCommandEngine_Render(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{output: "<svg>ok</svg>"}
	e := NewCommandEngine(WithCommand("mmdc-test"), WithRunner(runner))
	if err := e.Initialize(Config{Theme: "dark", SecurityLevel: "strict"}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	svg, err := e.Render(context.Background(), "mermaid-abc", "graph TD; A-->B")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if svg != "<svg>ok</svg>" {
		t.Errorf("Render() = %q, want the command output", svg)
	}
	if runner.name != "mmdc-test" {
		t.Errorf("command = %q, want mmdc-test", runner.name)
	}
	if runner.input != "graph TD; A-->B" {
		t.Errorf("input file = %q, want the diagram source", runner.input)
	}

	var cfg map[string]string
	if err := json.Unmarshal([]byte(runner.config), &cfg); err != nil {
		t.Fatalf("config file %q: %v", runner.config, err)
	}
	if want := map[string]string{"theme": "dark", "securityLevel": "strict"}; !maps.Equal(cfg, want) {
		t.Errorf("config = %v, want %v", cfg, want)
	}

	for flag, want := range map[string]string{"--svgId": "mermaid-abc", "--theme": "dark"} {
		if got := argAfter(runner.args, flag); got != want {
			t.Errorf("%s = %q, want %q", flag, got, want)
		}
	}

	for _, flag := range []string{"--output", "--input"} {
		if _, err := os.Stat(argAfter(runner.args, flag)); !os.IsNotExist(err) {
			t.Errorf("%s file not removed: %v", flag, err)
		}
	}
}

func TestCommandEngine_RenderError(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{err: errors.New("exit status 1: Parse error")}
	e := NewCommandEngine(WithRunner(runner))

	_, err := e.Render(context.Background(), "mermaid-abc", "bad")
	if err == nil {
		t.Fatal("Render() error = nil, want the command failure")
	}
	for _, want := range []string{"Parse error", DefaultCommand} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Render() error = %v, missing %q", err, want)
		}
	}
}

func TestCommandEngine_ThroughComponent(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{output: `<svg onload="x()"><script>alert(1)</script><g></g></svg>`}
	c, err := NewComponent(NewCommandEngine(WithRunner(runner)), fakeSanitizer{})
	if err != nil {
		t.Fatalf("NewComponent() error = %v", err)
	}

	st := c.SetSource(context.Background(), "graph TD")
	if st.Phase != PhaseSuccess {
		t.Fatalf("Phase = %v, want success", st.Phase)
	}
	if strings.Contains(st.SVG, "<script") {
		t.Errorf("SVG = %q, want script removed", st.SVG)
	}
}

func TestCommandEngine_Defaults(t *testing.T) {
	t.Parallel()

	e := NewCommandEngine(WithCommand(""), WithRunner(nil))
	if e.Command() != DefaultCommand {
		t.Errorf("Command() = %q, want %q", e.Command(), DefaultCommand)
	}
	if _, ok := e.runner.(ExecRunner); !ok {
		t.Errorf("runner = %T, want ExecRunner", e.runner)
	}
	if err := e.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
