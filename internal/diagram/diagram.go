// Package diagram renders mermaid diagram sources to sanitized SVG.
//
// Each diagram on a page owns a Component. A Component runs the state
// machine loading -> success | failed, re-entered whenever its source text
// changes. Results of superseded attempts are dropped on arrival, and every
// engine result passes through the SVG sanitizer before it is committed.
package diagram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Sentinel errors.
var (
	ErrRender        = errors.New("diagram render failed")
	ErrNoSanitizer   = errors.New("diagram: sanitizer is required")
	ErrNoEngine      = errors.New("diagram: engine is required")
	ErrUnknownEngine = errors.New("diagram: unknown engine")
)

// RenderError reports an engine rejection of a diagram source.
type RenderError struct {
	ID  string
	Msg string
	Err error
}

func (e *RenderError) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%v: %s: %s", ErrRender, e.ID, msg)
}

func (e *RenderError) Is(target error) bool { return target == ErrRender }

func (e *RenderError) Unwrap() error { return e.Err }

// Phase is the state of a diagram render.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseSuccess
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "error"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// State is a committed diagram state. SVG is set in PhaseSuccess and is
// already sanitized; Err is set in PhaseFailed.
type State struct {
	Phase  Phase
	Source string
	SVG    string
	Err    error
}

// Config is passed to the engine before every render attempt.
type Config struct {
	Theme         string
	SecurityLevel string
}

// DefaultConfig is the dark theme with strict security: diagram text can
// never run script.
func DefaultConfig() Config {
	return Config{Theme: "dark", SecurityLevel: "strict"}
}

// Engine renders diagram source to SVG markup.
// Initialize must be idempotent; it is called before every attempt.
type Engine interface {
	Initialize(cfg Config) error
	Render(ctx context.Context, id, source string) (string, error)
	Close() error
}

// Sanitizer cleans engine output before it is committed.
type Sanitizer interface {
	SVG(markup string) string
}

// Option configures a Component.
type Option func(*Component)

// WithConfig sets the engine configuration.
func WithConfig(cfg Config) Option {
	return func(c *Component) { c.config = cfg }
}

// WithLogger sets the logger. Superseded results log at Debug.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Component) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithID overrides the generated instance id. The value is sanitized.
func WithID(id string) Option {
	return func(c *Component) { c.id = SanitizeID(id) }
}

// WithOnChange registers a callback invoked synchronously on every committed
// state. It runs with the component locked and must not call back into it.
func WithOnChange(fn func(State)) Option {
	return func(c *Component) { c.onChange = fn }
}

// Component is one diagram instance. It is safe for concurrent use.
type Component struct {
	id        string
	engine    Engine
	sanitizer Sanitizer
	config    Config
	logger    *slog.Logger
	onChange  func(State)

	mu      sync.Mutex
	gen     uint64
	started bool
	closed  bool
	state   State
}

// NewComponent creates a Component rendering through engine. The sanitizer
// is mandatory.
func NewComponent(engine Engine, sanitizer Sanitizer, opts ...Option) (*Component, error) {
	if engine == nil {
		return nil, ErrNoEngine
	}
	if sanitizer == nil {
		return nil, ErrNoSanitizer
	}
	c := &Component{
		engine:    engine,
		sanitizer: sanitizer,
		config:    DefaultConfig(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = NewID()
	}
	return c, nil
}

// ID returns the instance id used as the render key.
func (c *Component) ID() string { return c.id }

// State returns the committed state.
func (c *Component) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetSource renders source unless it equals the current source. It returns
// the committed state when it returns: this attempt's outcome, or the state
// of a newer attempt if this one was superseded.
func (c *Component) SetSource(ctx context.Context, source string) State {
	c.mu.Lock()
	if c.closed || (c.started && source == c.state.Source) {
		st := c.state
		c.mu.Unlock()
		return st
	}
	c.started = true
	c.gen++
	gen := c.gen
	c.commitLocked(State{Phase: PhaseLoading, Source: source})
	c.mu.Unlock()

	svg, err := c.render(ctx, source)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		c.logger.Debug("discarding stale diagram result", "id", c.id, "attempt", gen, "current", c.gen)
		return c.state
	}
	if err != nil {
		c.commitLocked(State{Phase: PhaseFailed, Source: source, Err: err})
	} else {
		c.commitLocked(State{Phase: PhaseSuccess, Source: source, SVG: svg})
	}
	return c.state
}

// Close unmounts the component. Results still in flight are dropped.
func (c *Component) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.gen++
}

func (c *Component) render(ctx context.Context, source string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &RenderError{ID: c.id, Err: err}
	}
	if err := c.engine.Initialize(c.config); err != nil {
		return "", &RenderError{ID: c.id, Msg: "initialize engine", Err: err}
	}
	raw, err := c.engine.Render(ctx, c.id, source)
	if err != nil {
		return "", &RenderError{ID: c.id, Err: err}
	}
	svg := c.sanitizer.SVG(raw)
	if strings.TrimSpace(svg) == "" {
		return "", &RenderError{ID: c.id, Msg: "engine output was empty after sanitization"}
	}
	c.logger.Debug("diagram rendered", "id", c.id, "bytes", len(svg))
	return svg, nil
}

func (c *Component) commitLocked(st State) {
	c.state = st
	if c.onChange != nil {
		c.onChange(st)
	}
}
