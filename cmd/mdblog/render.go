package main

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	mdblog "github.com/alnah/go-mdblog"
	"github.com/alnah/go-mdblog/internal/config"
	"github.com/alnah/go-mdblog/internal/fileutil"
)

// renderJob is one content path to render.
type renderJob struct {
	Path       string // content path under the base URL
	OutputPath string // empty writes to stdout
}

// renderParams holds the resolved settings shared by every job.
type renderParams struct {
	cfg        *config.Config
	baseURL    string
	format     string
	standalone bool
	output     string
	page       mdblog.PageOptions
	logger     *slog.Logger
}

// runRender executes the render command.
func runRender(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	if !f.common.quiet {
		warnUnknownEnvVars(env.Stderr, env)
	}
	envCfg := loadEnvConfig(env)

	cfg, err := loadConfig(f.common.config, envCfg.ConfigPath)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, cfg.Log, f.common.quiet, f.common.verbose)

	workers := envCfg.Workers
	if f.set("workers") {
		workers = f.workers
	}
	if err := validateWorkers(workers); err != nil {
		return err
	}

	params := newRenderParams(cfg, f, logger)
	jobs, err := buildJobs(positional, cfg)
	if err != nil {
		return err
	}
	if err := assignOutputs(jobs, params.output, params.format, f.watch); err != nil {
		return err
	}

	if f.watch {
		return runWatch(ctx, jobs, params, env)
	}

	pool := mdblog.NewRendererPool(min(mdblog.ResolvePoolSize(workers), len(jobs)), rendererFactory(params))
	defer func() { _ = pool.Close() }()

	logger.Debug("rendering", "jobs", len(jobs), "workers", pool.Size(), "base", params.baseURL)
	results := renderBatch(ctx, pool, jobs, params, env.Stdout)
	return reportResults(results, f.common.quiet, f.common.verbose, cfg.Content.Locale, env)
}

// loadConfig loads the file named by --config, else MDBLOG_CONFIG, else
// returns the defaults.
func loadConfig(flagPath, envPath string) (*config.Config, error) {
	name := flagPath
	if name == "" {
		name = envPath
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(name)
}

// mergeFlags applies explicitly given flags over cfg.
func mergeFlags(f *renderFlags, cfg *config.Config) {
	str := func(name string, dst *string, v string) {
		if f.set(name) {
			*dst = v
		}
	}

	str("base-url", &cfg.Content.BaseURL, f.content.baseURL)
	str("locale", &cfg.Content.Locale, f.content.locale)
	str("ext", &cfg.Content.Extension, f.content.extension)
	str("timeout", &cfg.Content.Timeout, f.content.timeout)
	str("asset-base", &cfg.Render.AssetBaseURL, f.content.assetBase)
	str("diagram-engine", &cfg.Diagram.Engine, f.diagram.engine)
	str("diagram-script", &cfg.Diagram.ScriptURL, f.diagram.scriptURL)
	str("diagram-command", &cfg.Diagram.Command, f.diagram.command)
	str("diagram-timeout", &cfg.Diagram.Timeout, f.diagram.timeout)
	str("style", &cfg.Assets.Style, f.output.style)
	str("highlight-style", &cfg.Render.HighlightStyle, f.output.highlightStyle)
	str("asset-path", &cfg.Assets.BasePath, f.output.assetPath)
	str("log-format", &cfg.Log.Format, f.common.logFormat)

	if f.set("image-check") {
		cfg.Render.ImageCheck = f.content.imageCheck
	}
	if f.set("excerpt-length") {
		cfg.Excerpt.MaxLength = f.content.excerpt
	}
}

// validateWorkers checks the worker count: 0 means auto.
func validateWorkers(n int) error {
	if n < 0 || n > mdblog.MaxPoolSize {
		return fmt.Errorf("%w: %d (must be 0-%d)", ErrInvalidWorkerCount, n, mdblog.MaxPoolSize)
	}
	return nil
}

func newRenderParams(cfg *config.Config, f *renderFlags, logger *slog.Logger) *renderParams {
	baseURL := cfg.Content.BaseURL
	if f.content.about && cfg.Content.AboutBaseURL != "" {
		baseURL = cfg.Content.AboutBaseURL
	}
	return &renderParams{
		cfg:        cfg,
		baseURL:    baseURL,
		format:     f.output.format,
		standalone: f.output.standalone,
		output:     f.output.path,
		page: mdblog.PageOptions{
			Style:          cfg.Assets.Style,
			HighlightStyle: cfg.Render.HighlightStyle,
			AssetPath:      cfg.Assets.BasePath,
		},
		logger: logger,
	}
}

// buildJobs turns arguments into content paths. An argument without an
// extension is a slug and resolves to {locale}/{slug}.{ext}.
func buildJobs(args []string, cfg *config.Config) ([]renderJob, error) {
	if len(args) == 0 {
		return nil, ErrNoInput
	}

	locale := cfg.Content.Locale
	if locale != "" {
		locale = language.Make(locale).String()
	}

	jobs := make([]renderJob, 0, len(args))
	for _, arg := range args {
		p := strings.Trim(arg, "/")
		if p == "" {
			return nil, fmt.Errorf("%w: empty content path", ErrUsage)
		}
		if path.Ext(p) == "" {
			p = mdblog.ContentPath(locale, p, cfg.Content.Extension)
		}
		jobs = append(jobs, renderJob{Path: p})
	}
	return jobs, nil
}

// assignOutputs sets each job's output path. Without --output a single job
// goes to stdout. With one job, an --output carrying an extension is the
// file itself; otherwise it is a directory mirroring the content paths.
func assignOutputs(jobs []renderJob, output, format string, watch bool) error {
	switch {
	case output == "":
		if len(jobs) > 1 && !watch {
			return fmt.Errorf("%w: %d inputs need --output <dir>", ErrUsage, len(jobs))
		}
		return nil
	case len(jobs) == 1 && filepath.Ext(output) != "":
		jobs[0].OutputPath = output
		return nil
	}

	ext := "." + format
	for i := range jobs {
		rel := filepath.FromSlash(fileutil.ReplaceExt(jobs[i].Path, ext))
		jobs[i].OutputPath = filepath.Join(output, rel)
	}
	return nil
}

// rendererFactory builds renderers for the pool. Each renderer gets its own
// diagram engine.
func rendererFactory(p *renderParams) func() (*mdblog.Renderer, error) {
	return func() (*mdblog.Renderer, error) {
		cfg := p.cfg
		engine, err := mdblog.NewDiagramEngine(strings.ToLower(cfg.Diagram.Engine), mdblog.DiagramEngineOptions{
			ScriptURL: cfg.Diagram.ScriptURL,
			Command:   cfg.Diagram.Command,
			Timeout:   cfg.DiagramTimeout(),
			Logger:    p.logger,
		})
		if err != nil {
			return nil, err
		}

		opts := []mdblog.Option{
			mdblog.WithLogger(p.logger),
			mdblog.WithBaseURL(p.baseURL),
			mdblog.WithAssetBase(cfg.Render.AssetBaseURL),
			mdblog.WithExtension(cfg.Content.Extension),
			mdblog.WithTimeout(cfg.FetchTimeout()),
			mdblog.WithImageCheck(cfg.Render.ImageCheck),
			mdblog.WithExcerptLength(cfg.Excerpt.MaxLength),
		}
		if cfg.Content.Locale != "" {
			opts = append(opts, mdblog.WithLocale(cfg.Content.Locale))
		}
		if engine != nil {
			opts = append(opts, mdblog.WithEngine(engine))
		}

		r, err := mdblog.New(opts...)
		if err != nil {
			if engine != nil {
				_ = engine.Close()
			}
			return nil, err
		}
		return r, nil
	}
}
