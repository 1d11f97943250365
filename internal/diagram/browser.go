package diagram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-mdblog/internal/process"
)

// DefaultScriptURL is the mermaid.js build loaded by BrowserEngine.
const DefaultScriptURL = "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.min.js"

// ErrBrowser indicates the headless browser could not be started or used.
var ErrBrowser = errors.New("diagram: browser unavailable")

// renderScript initializes mermaid and renders one diagram. Mermaid's
// initialize is idempotent, so it runs before every render.
const renderScript = `async (cfg, id, src) => {
	mermaid.initialize(cfg);
	const { svg } = await mermaid.render(id, src);
	return svg;
}`

// BrowserOption configures a BrowserEngine.
type BrowserOption func(*BrowserEngine)

// WithScriptURL sets the mermaid.js URL. Empty keeps the default.
func WithScriptURL(url string) BrowserOption {
	return func(e *BrowserEngine) {
		if url != "" {
			e.scriptURL = url
		}
	}
}

// WithBrowserTimeout limits each render. Zero means no limit beyond the
// caller's context.
func WithBrowserTimeout(d time.Duration) BrowserOption {
	return func(e *BrowserEngine) { e.timeout = d }
}

// WithBrowserLogger sets the logger.
func WithBrowserLogger(logger *slog.Logger) BrowserOption {
	return func(e *BrowserEngine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// BrowserEngine renders diagrams with mermaid.js in headless Chrome via
// go-rod. The browser starts on the first render and is shared by all
// components using the engine; renders are serialized on one page.
// Rod downloads Chromium on first run if none is found.
type BrowserEngine struct {
	scriptURL string
	timeout   time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	config   Config
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

var _ Engine = (*BrowserEngine)(nil)

// NewBrowserEngine creates a BrowserEngine. No browser is started yet.
func NewBrowserEngine(opts ...BrowserOption) *BrowserEngine {
	e := &BrowserEngine{
		scriptURL: DefaultScriptURL,
		config:    DefaultConfig(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initialize records cfg for the next render.
func (e *BrowserEngine) Initialize(cfg Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.config = cfg
	return nil
}

// Render returns the SVG mermaid produces for source.
func (e *BrowserEngine) Render(ctx context.Context, id, source string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensurePage(); err != nil {
		return "", err
	}

	page := e.page.Context(ctx)
	if e.timeout > 0 {
		page = page.Timeout(e.timeout)
	}

	cfg := map[string]any{
		"startOnLoad":   false,
		"theme":         e.config.Theme,
		"securityLevel": e.config.SecurityLevel,
	}
	res, err := page.Eval(renderScript, cfg, id, source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("mermaid: %v", err)
	}
	return res.Value.Str(), nil
}

// ensurePage lazily launches the browser and loads mermaid.js.
func (e *BrowserEngine) ensurePage() error {
	if e.page != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowser, err)
	}
	e.launcher = l

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		e.shutdown()
		return fmt.Errorf("%w: %v", ErrBrowser, err)
	}
	e.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		e.shutdown()
		return fmt.Errorf("%w: creating page: %v", ErrBrowser, err)
	}
	if err := page.AddScriptTag(e.scriptURL, ""); err != nil {
		e.shutdown()
		return fmt.Errorf("%w: loading %s: %v", ErrBrowser, e.scriptURL, err)
	}
	e.page = page
	e.logger.Debug("diagram browser ready", "script", e.scriptURL)
	return nil
}

// Close stops the browser and any child processes it left behind.
func (e *BrowserEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shutdown()
}

func (e *BrowserEngine) shutdown() error {
	var err error
	if e.browser != nil {
		err = e.browser.Close()
		e.browser = nil
	}
	e.page = nil
	if e.launcher != nil {
		if pid := e.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		e.launcher.Kill()
		e.launcher.Cleanup()
		e.launcher = nil
	}
	return err
}

// BrowserPath reports the browser BrowserEngine would launch.
func BrowserPath() (string, bool) {
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		if _, err := os.Stat(bin); err == nil {
			return bin, true
		}
		return bin, false
	}
	return launcher.LookPath()
}
