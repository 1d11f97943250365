package mdblog

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alnah/go-mdblog/internal/diagram"
)

// Default rendering settings.
const (
	// DefaultLocale is the locale used by PostPath when none is configured.
	DefaultLocale = "ko"

	// DefaultExtension is the content file extension used by PostPath.
	DefaultExtension = "md"

	// DefaultExcerptLength bounds Document.Excerpt, in characters.
	DefaultExcerptLength = 200

	// diagramConcurrency bounds concurrent diagram renders per document.
	diagramConcurrency = 4

	// probeConcurrency bounds concurrent image probes per document.
	probeConcurrency = 8
)

// DiagramEngine renders diagram sources to SVG. Implementations must accept
// Initialize before every render.
type DiagramEngine = diagram.Engine

// DiagramConfig is passed to DiagramEngine.Initialize.
type DiagramConfig = diagram.Config

// DiagramEngineOptions configures NewDiagramEngine.
type DiagramEngineOptions = diagram.EngineOptions

// Diagram engine kinds accepted by NewDiagramEngine.
const (
	EngineNone    = diagram.EngineNone
	EngineBrowser = diagram.EngineBrowser
	EngineCommand = diagram.EngineCommand
)

// NewDiagramEngine builds a built-in engine: EngineBrowser runs mermaid.js in
// headless Chrome, EngineCommand runs the mermaid CLI. EngineNone returns a
// nil engine, which leaves diagrams for client-side hydration.
func NewDiagramEngine(kind string, opts DiagramEngineOptions) (DiagramEngine, error) {
	return diagram.NewEngine(kind, opts)
}

// Option configures a Renderer.
type Option func(*Renderer)

// rendererConfig holds internal configuration for Renderer.
type rendererConfig struct {
	baseURL       string
	assetBase     string
	locale        string
	extension     string
	timeout       time.Duration
	imageCheck    bool
	excerptLength int
	diagramConfig diagram.Config
	client        *http.Client
}

// WithLogger sets the logger. Stage transitions log at Debug.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithBaseURL sets the default content base URL (http, https or file).
// Input.BaseURL overrides it per render.
func WithBaseURL(baseURL string) Option {
	return func(r *Renderer) {
		r.cfg.baseURL = baseURL
	}
}

// WithAssetBase resolves relative image sources against assetBase instead
// of the document URL.
func WithAssetBase(assetBase string) Option {
	return func(r *Renderer) {
		r.cfg.assetBase = assetBase
	}
}

// WithLocale sets the BCP 47 locale used by PostPath and standalone pages.
func WithLocale(locale string) Option {
	return func(r *Renderer) {
		r.cfg.locale = locale
	}
}

// WithExtension sets the content file extension used by PostPath.
func WithExtension(ext string) Option {
	return func(r *Renderer) {
		r.cfg.extension = ext
	}
}

// WithTimeout bounds each content fetch. Zero or negative means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		r.cfg.timeout = max(d, 0)
	}
}

// WithImageCheck probes every image after rendering and swaps the ones that
// fail to load for their placeholder.
func WithImageCheck(enabled bool) Option {
	return func(r *Renderer) {
		r.cfg.imageCheck = enabled
	}
}

// WithExcerptLength bounds Document.Excerpt. Negative values count as zero.
func WithExcerptLength(n int) Option {
	return func(r *Renderer) {
		r.cfg.excerptLength = max(n, 0)
	}
}

// WithEngine renders diagrams through engine. The Renderer owns the engine
// and closes it on Close. Without an engine, diagrams are emitted as
// <pre class="mermaid"> for client-side hydration.
func WithEngine(engine DiagramEngine) Option {
	return func(r *Renderer) {
		r.engine = engine
	}
}

// WithDiagramConfig overrides the theme and security level passed to the
// diagram engine. The default is the dark theme with strict security.
func WithDiagramConfig(cfg DiagramConfig) Option {
	return func(r *Renderer) {
		r.cfg.diagramConfig = cfg
	}
}

// WithHTTPClient sets the client used for content fetches and image probes.
// File base URLs only work if the client's transport serves them.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Renderer) {
		r.cfg.client = client
	}
}
