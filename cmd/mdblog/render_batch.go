package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	mdblog "github.com/alnah/go-mdblog"
	"github.com/alnah/go-mdblog/internal/diagram"
	"github.com/alnah/go-mdblog/internal/fileutil"
)

// Pool abstracts renderer pool operations for testability.
type Pool interface {
	Acquire() (*mdblog.Renderer, error)
	Release(*mdblog.Renderer)
	Size() int
}

// Compile-time interface implementation check.
var _ Pool = (*mdblog.RendererPool)(nil)

// renderResult holds the outcome of a single render.
type renderResult struct {
	Job      renderJob
	Doc      *mdblog.Document
	Err      error
	Duration time.Duration
}

// renderBatch renders jobs concurrently using the renderer pool. Results keep
// the order of jobs.
func renderBatch(ctx context.Context, pool Pool, jobs []renderJob, p *renderParams, stdout io.Writer) []renderResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(jobs))
	results := make([]renderResult, len(jobs))
	queue := make(chan int, len(jobs))
	var wg sync.WaitGroup
	var outMu sync.Mutex

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := pool.Acquire()
			if err != nil {
				// Renderer creation failed, mark remaining jobs as failed
				for idx := range queue {
					results[idx] = renderResult{Job: jobs[idx], Err: err}
				}
				return
			}
			defer pool.Release(r)

			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = renderResult{Job: jobs[idx], Err: ctx.Err()}
					continue
				}
				results[idx] = renderJobWith(ctx, r, jobs[idx], p, &lockedWriter{w: stdout, mu: &outMu})
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	return results
}

// renderJobWith renders one job and writes its output.
func renderJobWith(ctx context.Context, r *mdblog.Renderer, job renderJob, p *renderParams, stdout io.Writer) renderResult {
	start := time.Now()
	result := renderResult{Job: job}

	doc, err := r.Render(ctx, mdblog.Input{Path: job.Path})
	if err == nil {
		result.Doc = doc
		err = writeDocument(doc, job.OutputPath, p, stdout)
	}
	result.Err = err
	result.Duration = time.Since(start)
	p.logger.Debug("rendered", "path", job.Path, "duration", result.Duration, "error", err)
	return result
}

// writeDocument formats doc and writes it to outPath, or stdout when empty.
func writeDocument(doc *mdblog.Document, outPath string, p *renderParams, stdout io.Writer) error {
	content, err := formatDocument(doc, p)
	if err != nil {
		return err
	}

	if outPath == "" {
		if _, err := io.WriteString(stdout, content); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		return nil
	}
	if err := fileutil.WriteAtomic(outPath, content); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteOutput, outPath, err)
	}
	return nil
}

// formatDocument renders doc in the requested output format.
func formatDocument(doc *mdblog.Document, p *renderParams) (string, error) {
	switch {
	case p.format == formatJSON:
		data, err := json.MarshalIndent(newDocumentJSON(doc), "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding document: %w", err)
		}
		return string(data) + "\n", nil
	case p.standalone:
		return doc.StandalonePage(p.page)
	}
	return doc.HTML, nil
}

// documentJSON is the --format json representation of a document.
type documentJSON struct {
	Path        string              `json:"path"`
	URL         string              `json:"url"`
	Locale      string              `json:"locale"`
	Frontmatter *mdblog.Frontmatter `json:"frontmatter,omitempty"`
	Excerpt     string              `json:"excerpt"`
	ReadingTime int                 `json:"readingTime"`
	Headings    []headingJSON       `json:"headings"`
	Images      []imageJSON         `json:"images,omitempty"`
	Diagrams    []diagramJSON       `json:"diagrams,omitempty"`
	HTML        string              `json:"html"`
}

type headingJSON struct {
	Level int    `json:"level"`
	ID    string `json:"id"`
	Text  string `json:"text"`
}

type imageJSON struct {
	Src    string `json:"src"`
	Alt    string `json:"alt,omitempty"`
	Failed bool   `json:"failed"`
}

type diagramJSON struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func newDocumentJSON(doc *mdblog.Document) documentJSON {
	out := documentJSON{
		Path:        doc.Path,
		URL:         doc.URL,
		Locale:      doc.Locale,
		Excerpt:     doc.Excerpt,
		ReadingTime: doc.ReadingTime,
		Headings:    make([]headingJSON, 0, len(doc.Headings)),
		HTML:        doc.HTML,
	}
	if doc.HasFrontmatter {
		fm := doc.Frontmatter
		out.Frontmatter = &fm
	}
	for _, h := range doc.Headings {
		out.Headings = append(out.Headings, headingJSON{Level: h.Level, ID: h.ID, Text: h.Text})
	}
	for _, img := range doc.Images {
		out.Images = append(out.Images, imageJSON{Src: img.Src, Alt: img.Alt, Failed: img.Failed()})
	}
	for _, d := range doc.Diagrams {
		dj := diagramJSON{Status: d.Phase.String()}
		if d.Err != nil {
			dj.Error = d.Err.Error()
		}
		out.Diagrams = append(out.Diagrams, dj)
	}
	return out
}

// reportResults prints one line per result and returns a batchError when any
// render failed.
func reportResults(results []renderResult, quiet, verbose bool, locale string, env *Environment) error {
	var failed int
	var first error

	for _, r := range results {
		if r.Err != nil {
			failed++
			if first == nil {
				first = r.Err
			}
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.Job.Path, r.Err, hintFor(r.Err, locale, env))
			continue
		}

		if quiet {
			continue
		}
		warnPartialFailures(env.Stderr, r)

		if r.Job.OutputPath == "" {
			continue
		}
		if verbose {
			fmt.Fprintf(env.Stderr, "%s -> %s (%v)\n", r.Job.Path, r.Job.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stderr, "Created %s\n", r.Job.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stderr, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}

	if failed > 0 {
		return &batchError{failed: failed, total: len(results), first: first}
	}
	return nil
}

// warnPartialFailures reports diagrams and images that failed inside an
// otherwise successful render.
func warnPartialFailures(w io.Writer, r renderResult) {
	for i, d := range r.Doc.Diagrams {
		if d.Phase == diagram.PhaseFailed {
			fmt.Fprintf(w, "warning: %s: diagram %d: %v\n", r.Job.Path, i, d.Err)
		}
	}
	for _, img := range r.Doc.Images {
		if img.Failed() {
			fmt.Fprintf(w, "warning: %s: image unavailable: %s\n", r.Job.Path, img.Src)
		}
	}
}

// lockedWriter serializes writes from concurrent renders.
type lockedWriter struct {
	w  io.Writer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
