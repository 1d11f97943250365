package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	mdblog "github.com/alnah/go-mdblog"
	"github.com/alnah/go-mdblog/internal/fetch"
)

// watchDebounce coalesces the burst of events an editor save produces.
var watchDebounce = 150 * time.Millisecond

// runWatch renders one file:// post, then re-renders it every time the file
// changes until ctx is cancelled. A load started by a newer change
// supersedes the older one, whose result is dropped.
func runWatch(ctx context.Context, jobs []renderJob, p *renderParams, env *Environment) error {
	if len(jobs) != 1 {
		return fmt.Errorf("%w: --watch takes exactly one input", ErrUsage)
	}
	job := jobs[0]

	file, err := watchedFile(p.baseURL, job.Path)
	if err != nil {
		return err
	}

	r, err := rendererFactory(p)()
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors often replace the file on save.
	dir := filepath.Dir(file)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("%w: watching %s: %v", ErrReadInput, dir, err)
	}

	content := r.NewContent(nil)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer content.Close()

	var outMu sync.Mutex
	stdout := &lockedWriter{w: env.Stdout, mu: &outMu}
	load := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := content.Load(ctx, job.Path, "")
			switch {
			case errors.Is(err, mdblog.ErrSuperseded), errors.Is(err, mdblog.ErrClosed), ctx.Err() != nil:
				return
			case err != nil:
				fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", job.Path, err, hintFor(err, p.cfg.Content.Locale, env))
				return
			}
			if err := writeDocument(doc, job.OutputPath, p, stdout); err != nil {
				fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", job.Path, err)
				return
			}
			warnPartialFailures(env.Stderr, renderResult{Job: job, Doc: doc})
			p.logger.Info("rendered", "path", job.Path, "output", job.OutputPath)
		}()
	}

	p.logger.Info("watching", "file", file)
	load()

	debounce := time.NewTimer(watchDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != file || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.logger.Debug("change detected", "file", ev.Name, "op", ev.Op.String())
			debounce.Reset(watchDebounce)
		case <-debounce.C:
			load()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("watch error", "error", err)
		}
	}
}

// watchedFile maps a content path under a file:// base URL to the file on
// disk, applying the same path resolution as fetching.
func watchedFile(baseURL, contentPath string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme != "file" {
		return "", fmt.Errorf("%w: --watch requires a file:// base URL, got %q", ErrUsage, baseURL)
	}
	resolved, err := fetch.ResolvePath(contentPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", mdblog.ErrInvalidInput, err)
	}
	return filepath.Join(filepath.FromSlash(u.Path), filepath.FromSlash(resolved)), nil
}
