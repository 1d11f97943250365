package mdblog

import (
	"errors"

	"github.com/alnah/go-mdblog/internal/diagram"
	"github.com/alnah/go-mdblog/internal/fetch"
	"github.com/alnah/go-mdblog/internal/frontmatter"
	"github.com/alnah/go-mdblog/internal/pipeline"
)

// Sentinel errors for library operations. Pipeline failures wrap one of
// ErrFetch, ErrNetwork, ErrParse or ErrCompile; all four abort the document
// and are retryable by rendering again.
var (
	// ErrFetch indicates the content source answered with a non-200 status.
	ErrFetch = fetch.ErrFetch

	// ErrNetwork indicates the content source could not be reached.
	ErrNetwork = fetch.ErrNetwork

	// ErrParse indicates a malformed or incomplete frontmatter block.
	ErrParse = frontmatter.ErrParse

	// ErrCompile indicates the body could not be compiled or rendered.
	ErrCompile = pipeline.ErrCompile

	// ErrRender indicates a diagram engine rejected a diagram source.
	// It never aborts a document; it is carried by DiagramState.Err.
	ErrRender = diagram.ErrRender

	// ErrInvalidInput indicates an unusable path, base URL or option.
	ErrInvalidInput = errors.New("invalid input")

	// ErrClosed indicates use of a closed Renderer, Content or pool.
	ErrClosed = errors.New("closed")

	// ErrSuperseded is returned by Content.Load when a newer load started
	// before this one finished. The newer load owns the visible state.
	ErrSuperseded = errors.New("superseded by a newer load")
)
