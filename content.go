package mdblog

import (
	"context"
	"fmt"
	"sync"
)

// ContentState is the committed state of a Content.
type ContentState struct {
	Status   Status
	Path     string
	BaseURL  string
	Document *Document // set in StatusSuccess
	Err      error     // set in StatusError
}

// Content is one mounted content view. Each Load supersedes the previous
// one: only the most recently started load commits its result, and results
// arriving after Close are dropped. Fetches are not aborted; a superseded
// load runs to completion and is then ignored.
type Content struct {
	renderer *Renderer
	onStatus func(Status)

	mu      sync.Mutex
	gen     uint64
	closed  bool
	started bool
	state   ContentState
}

// NewContent creates a Content rendering through r. onStatus, if set, is
// called synchronously on every committed transition; it runs with the
// Content locked and must not call back into it.
func (r *Renderer) NewContent(onStatus func(Status)) *Content {
	return &Content{renderer: r, onStatus: onStatus}
}

// Load renders path from baseURL (empty for the Renderer default). It
// returns ErrSuperseded when a newer Load started first and ErrClosed after
// Close.
func (c *Content) Load(ctx context.Context, path, baseURL string) (*Document, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("content: %w", ErrClosed)
	}
	c.started = true
	c.gen++
	gen := c.gen
	c.commitLocked(ContentState{Status: StatusLoading, Path: path, BaseURL: baseURL})
	c.mu.Unlock()

	doc, err := c.renderer.render(ctx, path, baseURL)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, fmt.Errorf("content: %w", ErrClosed)
	}
	if gen != c.gen {
		c.renderer.logger.Debug("discarding superseded content", "path", path, "attempt", gen, "current", c.gen)
		return nil, ErrSuperseded
	}
	if err != nil {
		c.commitLocked(ContentState{Status: StatusError, Path: path, BaseURL: baseURL, Err: err})
		return nil, err
	}
	c.commitLocked(ContentState{Status: StatusSuccess, Path: path, BaseURL: baseURL, Document: doc})
	return doc, nil
}

// Retry re-runs the whole pipeline, fetch included, for the last loaded
// path. Returns ErrInvalidInput if nothing was loaded yet.
func (c *Content) Retry(ctx context.Context) (*Document, error) {
	c.mu.Lock()
	started := c.started
	path, baseURL := c.state.Path, c.state.BaseURL
	c.mu.Unlock()

	if !started {
		return nil, fmt.Errorf("%w: retry before first load", ErrInvalidInput)
	}
	return c.Load(ctx, path, baseURL)
}

// State returns the committed state.
func (c *Content) State() ContentState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close unmounts the content. Loads still in flight are dropped.
func (c *Content) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.gen++
	for _, cb := range c.codeBlocksLocked() {
		cb.Close()
	}
}

func (c *Content) codeBlocksLocked() []*CodeBlock {
	if c.state.Document == nil {
		return nil
	}
	return c.state.Document.CodeBlocks
}

func (c *Content) commitLocked(st ContentState) {
	c.state = st
	if c.onStatus != nil {
		c.onStatus(st.Status)
	}
}
