package mdblog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/alnah/go-mdblog/internal/diagram"
	"github.com/alnah/go-mdblog/internal/fetch"
	"github.com/alnah/go-mdblog/internal/frontmatter"
	"github.com/alnah/go-mdblog/internal/pipeline"
	"github.com/alnah/go-mdblog/internal/sanitize"
)

// Frontmatter is the metadata of a post.
type Frontmatter = frontmatter.Frontmatter

// Heading is a level 2 or 3 heading with an id, in document order.
type Heading = pipeline.Heading

// DiagramState is the committed state of one diagram.
type DiagramState = diagram.State

// Status is the state reported to Input.OnStatus.
type Status int

const (
	StatusLoading Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Input identifies content to render.
type Input struct {
	// Path is the logical content path, e.g. "ko/hello-world.md".
	// It is percent-decoded and hyphens in its last segment become spaces.
	Path string

	// BaseURL overrides the Renderer's base URL for this render.
	BaseURL string

	// OnStatus, if set, is called synchronously with StatusLoading before the
	// fetch and with StatusSuccess or StatusError when the render settles.
	OnStatus func(Status)
}

// Source is already-fetched content.
type Source struct {
	Path string
	// URL is where Text came from; relative images resolve against it.
	URL  string
	Text string
}

// Document is a rendered content document.
type Document struct {
	Path        string
	URL         string
	Locale      string
	Frontmatter Frontmatter
	// HasFrontmatter reports whether the source carried a metadata block.
	HasFrontmatter bool

	// HTML is the sanitized fragment with diagrams injected.
	HTML string

	Headings   []Heading
	CodeBlocks []*CodeBlock
	Images     []*Image
	// Diagrams is indexed like the document's mermaid fences. It is nil when
	// no engine is configured and diagrams are left for hydration.
	Diagrams []DiagramState

	// Excerpt and ReadingTime are computed from the stripped source text.
	Excerpt     string
	ReadingTime int
}

// Renderer runs the content pipeline: fetch, frontmatter split, compile,
// component render, sanitize, then diagram rendering and image checks.
// A Renderer is safe for concurrent use. Close it when done.
type Renderer struct {
	cfg       rendererConfig
	logger    *slog.Logger
	fetcher   *fetch.Fetcher
	compiler  *pipeline.Compiler
	sanitizer *sanitize.Sanitizer
	engine    DiagramEngine

	mu     sync.Mutex
	closed bool
}

// New creates a Renderer. Returns ErrInvalidInput for an invalid locale.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		cfg: rendererConfig{
			locale:        DefaultLocale,
			extension:     DefaultExtension,
			excerptLength: DefaultExcerptLength,
			diagramConfig: diagram.DefaultConfig(),
		},
		logger:    slog.New(slog.DiscardHandler),
		sanitizer: sanitize.New(),
	}

	for _, opt := range opts {
		opt(r)
	}

	tag, err := language.Parse(r.cfg.locale)
	if err != nil {
		return nil, fmt.Errorf("%w: locale %q: %v", ErrInvalidInput, r.cfg.locale, err)
	}
	r.cfg.locale = tag.String()

	fetchOpts := []fetch.Option{fetch.WithLogger(r.logger)}
	if r.cfg.client != nil {
		client := *r.cfg.client // WithTimeout must not mutate the caller's client
		fetchOpts = append(fetchOpts, fetch.WithClient(&client))
	}
	fetchOpts = append(fetchOpts, fetch.WithTimeout(r.cfg.timeout))

	r.fetcher = fetch.New(r.cfg.baseURL, fetchOpts...)
	r.compiler = pipeline.NewCompiler(r.logger)
	return r, nil
}

// Locale returns the configured locale tag.
func (r *Renderer) Locale() string { return r.cfg.locale }

// PostPath returns the content path of slug in the configured locale.
func (r *Renderer) PostPath(slug string) string {
	return ContentPath(r.cfg.locale, slug, r.cfg.extension)
}

// Render fetches and renders in. Pipeline failures abort the whole document;
// a failing diagram or image only affects itself.
func (r *Renderer) Render(ctx context.Context, in Input) (*Document, error) {
	notify := in.OnStatus
	if notify == nil {
		notify = func(Status) {}
	}
	notify(StatusLoading)

	doc, err := r.render(ctx, in.Path, in.BaseURL)
	if err != nil {
		notify(StatusError)
		return nil, err
	}
	notify(StatusSuccess)
	return doc, nil
}

func (r *Renderer) render(ctx context.Context, path, baseURL string) (*Document, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	raw, err := r.fetcher.Fetch(ctx, path, baseURL)
	if err != nil {
		if errors.Is(err, fetch.ErrInvalidPath) || errors.Is(err, fetch.ErrNoBaseURL) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil, err
	}
	r.logger.Debug("fetched content", "path", path, "url", raw.URL, "bytes", len(raw.Source))

	root := baseURL
	if root == "" {
		root = r.fetcher.BaseURL()
	}
	return r.renderText(ctx, Source{Path: path, URL: raw.URL, Text: raw.Source}, root)
}

// RenderSource renders already-fetched text. Relative images resolve
// against src.URL (or the asset base).
func (r *Renderer) RenderSource(ctx context.Context, src Source) (*Document, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	return r.renderText(ctx, src, r.cfg.baseURL)
}

func (r *Renderer) renderText(ctx context.Context, src Source, root string) (doc *Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, &pipeline.CompileError{Msg: fmt.Sprintf("internal error: %v", rec)}
		}
	}()

	parsed, err := frontmatter.Split(src.Text)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("split frontmatter", "path", src.Path, "block", parsed.HasBlock)

	compiled, err := r.compiler.Compile(ctx, parsed.Body)
	if err != nil {
		return nil, err
	}

	assets := pipeline.NewAssetResolver(r.cfg.assetBase, src.URL, root)
	rendered, err := pipeline.NewBinder(assets).Render(ctx, compiled)
	if err != nil {
		return nil, err
	}

	// Raw HTML in the body is resolved like Markdown images
	htmlContent, err := pipeline.RewriteAssetURLs(rendered.HTML, assets)
	if err != nil {
		return nil, &pipeline.CompileError{Msg: "rewrite asset URLs", Err: err}
	}
	htmlContent = r.sanitizer.Document(htmlContent)

	states := r.renderDiagrams(ctx, compiled.Diagrams)
	htmlContent = pipeline.InjectDiagrams(htmlContent, func(i int) string {
		if i < 0 || i >= len(compiled.Diagrams) {
			return ""
		}
		if states == nil {
			return diagram.HydrationMarkup(compiled.Diagrams[i].Source)
		}
		return states[i].Markup()
	})

	images := make([]*Image, len(rendered.Images))
	for i, info := range rendered.Images {
		images[i] = newImage(info)
	}
	if r.cfg.imageCheck {
		htmlContent, err = r.checkImages(ctx, htmlContent, images)
		if err != nil {
			return nil, &pipeline.CompileError{Msg: "swap failed images", Err: err}
		}
	}

	headings, err := pipeline.ExtractHeadings(htmlContent)
	if err != nil {
		return nil, &pipeline.CompileError{Msg: "extract headings", Err: err}
	}
	codeText, err := pipeline.ExtractCodeText(htmlContent)
	if err != nil {
		return nil, &pipeline.CompileError{Msg: "extract code text", Err: err}
	}
	codeBlocks := make([]*CodeBlock, len(rendered.CodeBlocks))
	for i, info := range rendered.CodeBlocks {
		codeBlocks[i] = newCodeBlock(info, codeText[info.Index])
	}

	r.logger.Debug("rendered content",
		"path", src.Path,
		"headings", len(headings),
		"code_blocks", len(codeBlocks),
		"images", len(images),
		"diagrams", len(compiled.Diagrams),
	)

	return &Document{
		Path:           src.Path,
		URL:            src.URL,
		Locale:         r.cfg.locale,
		Frontmatter:    parsed.Frontmatter,
		HasFrontmatter: parsed.HasBlock,
		HTML:           htmlContent,
		Headings:       headings,
		CodeBlocks:     codeBlocks,
		Images:         images,
		Diagrams:       states,
		Excerpt:        Excerpt(src.Text, r.cfg.excerptLength),
		ReadingTime:    ReadingTime(src.Text),
	}, nil
}

// renderDiagrams renders every diagram through its own component. A nil
// result means no engine is configured.
func (r *Renderer) renderDiagrams(ctx context.Context, sources []pipeline.DiagramSource) []DiagramState {
	if r.engine == nil || len(sources) == 0 {
		return nil
	}

	states := make([]DiagramState, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(diagramConcurrency)

	for i, src := range sources {
		g.Go(func() error {
			comp, err := diagram.NewComponent(r.engine, r.sanitizer,
				diagram.WithConfig(r.cfg.diagramConfig),
				diagram.WithLogger(r.logger),
			)
			if err != nil {
				states[i] = DiagramState{Phase: diagram.PhaseFailed, Source: src.Source, Err: err}
				return nil
			}
			defer comp.Close()

			states[i] = comp.SetSource(gctx, src.Source)
			if states[i].Err != nil {
				r.logger.Debug("diagram failed", "id", comp.ID(), "error", states[i].Err)
			}
			return nil // diagram failures stay local to the diagram
		})
	}
	_ = g.Wait()
	return states
}

// checkImages probes every absolute image URL and swaps failures for their
// placeholder.
func (r *Renderer) checkImages(ctx context.Context, htmlContent string, images []*Image) (string, error) {
	var mu sync.Mutex
	failed := map[int]string{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for _, img := range images {
		if !probeable(img.Src) {
			continue
		}
		g.Go(func() error {
			if err := r.fetcher.Probe(gctx, img.Src); err != nil {
				r.logger.Debug("image unavailable", "src", img.Src, "error", err)
				img.Fail()
				mu.Lock()
				failed[img.Index] = img.Alt
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return pipeline.SwapFailedImages(htmlContent, failed)
}

func probeable(src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "file":
		return true
	}
	return false
}

func (r *Renderer) checkOpen() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("renderer: %w", ErrClosed)
	}
	return nil
}

// Close releases the diagram engine. Renders started afterwards fail with
// ErrClosed.
func (r *Renderer) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	if r.engine != nil {
		return r.engine.Close()
	}
	return nil
}
