package diagram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-mdblog/internal/fileutil"
)

// DefaultCommand is the mermaid CLI executable.
const DefaultCommand = "mmdc"

// CommandRunner runs an external command. Tests substitute a fake.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec. Stderr is included in errors.
type ExecRunner struct{}

// Run implements CommandRunner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- command comes from configuration
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%v: %s", err, firstLine(msg))
		}
		return err
	}
	return nil
}

// CommandOption configures a CommandEngine.
type CommandOption func(*CommandEngine)

// WithCommand sets the executable. Empty keeps DefaultCommand.
func WithCommand(name string) CommandOption {
	return func(e *CommandEngine) {
		if name != "" {
			e.command = name
		}
	}
}

// WithRunner replaces the command runner.
func WithRunner(r CommandRunner) CommandOption {
	return func(e *CommandEngine) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithCommandTimeout limits each render. Zero means no limit beyond the
// caller's context.
func WithCommandTimeout(d time.Duration) CommandOption {
	return func(e *CommandEngine) { e.timeout = d }
}

// CommandEngine renders diagrams with the mermaid CLI. Each render writes
// the source and configuration to temp files and reads the SVG back.
type CommandEngine struct {
	command string
	runner  CommandRunner
	timeout time.Duration

	mu     sync.Mutex
	config Config
}

var _ Engine = (*CommandEngine)(nil)

// NewCommandEngine creates a CommandEngine.
func NewCommandEngine(opts ...CommandOption) *CommandEngine {
	e := &CommandEngine{
		command: DefaultCommand,
		runner:  ExecRunner{},
		config:  DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Command returns the executable name.
func (e *CommandEngine) Command() string { return e.command }

// Initialize records cfg for the next render.
func (e *CommandEngine) Initialize(cfg Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.config = cfg
	return nil
}

// Render runs the CLI on source and returns the SVG it writes.
func (e *CommandEngine) Render(ctx context.Context, id, source string) (string, error) {
	e.mu.Lock()
	cfg := e.config
	e.mu.Unlock()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	input, cleanupInput, err := fileutil.WriteTempFile(source, "mmd")
	if err != nil {
		return "", err
	}
	defer cleanupInput()

	configJSON, err := json.Marshal(map[string]any{
		"theme":         cfg.Theme,
		"securityLevel": cfg.SecurityLevel,
	})
	if err != nil {
		return "", err
	}
	configPath, cleanupConfig, err := fileutil.WriteTempFile(string(configJSON), "json")
	if err != nil {
		return "", err
	}
	defer cleanupConfig()

	output := strings.TrimSuffix(input, ".mmd") + ".svg"
	defer func() { _ = os.Remove(output) }()

	args := []string{
		"--input", input,
		"--output", output,
		"--configFile", configPath,
		"--theme", cfg.Theme,
		"--svgId", id,
		"--backgroundColor", "transparent",
		"--quiet",
	}
	if err := e.runner.Run(ctx, e.command, args...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%s: %w", e.command, err)
	}

	svg, err := os.ReadFile(output) // #nosec G304 -- path derived from our own temp file
	if err != nil {
		return "", fmt.Errorf("%s: reading output: %w", e.command, err)
	}
	return string(svg), nil
}

// Close implements Engine. The CLI holds no resources between renders.
func (e *CommandEngine) Close() error { return nil }

// Available reports whether the executable is on PATH.
func (e *CommandEngine) Available() (string, bool) {
	path, err := exec.LookPath(e.command)
	return path, err == nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
