package diagram

import (
	"fmt"
	"log/slog"
	"time"
)

// Engine kinds accepted by NewEngine.
const (
	EngineNone    = "none"
	EngineBrowser = "browser"
	EngineCommand = "command"
)

// EngineOptions configures NewEngine.
type EngineOptions struct {
	ScriptURL string        // browser: mermaid.js location
	Command   string        // command: mermaid CLI executable
	Timeout   time.Duration // per-render limit, 0 for none
	Logger    *slog.Logger
}

// NewEngine builds the engine for kind. EngineNone (or "") returns a nil
// Engine: diagrams are left for client-side hydration.
func NewEngine(kind string, opts EngineOptions) (Engine, error) {
	switch kind {
	case "", EngineNone:
		return nil, nil
	case EngineBrowser:
		return NewBrowserEngine(
			WithScriptURL(opts.ScriptURL),
			WithBrowserTimeout(opts.Timeout),
			WithBrowserLogger(opts.Logger),
		), nil
	case EngineCommand:
		return NewCommandEngine(
			WithCommand(opts.Command),
			WithCommandTimeout(opts.Timeout),
		), nil
	}
	return nil, fmt.Errorf("%w: %q (valid: %s, %s, %s)", ErrUnknownEngine, kind, EngineNone, EngineBrowser, EngineCommand)
}
