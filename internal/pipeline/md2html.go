package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// ErrCompile indicates the body could not be compiled.
var ErrCompile = errors.New("compile failed")

// CompileError locates a compile failure in the body.
type CompileError struct {
	Line int // 1-based, 0 when unknown
	Msg  string
	Err  error
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%v: line %d: %s", ErrCompile, e.Line, e.Msg)
	}
	return fmt.Sprintf("%v: %s", ErrCompile, e.Msg)
}

func (e *CompileError) Is(target error) bool { return target == ErrCompile }

func (e *CompileError) Unwrap() error { return e.Err }

// CompiledDocument is a parsed and transformed body ready for a render pass.
// It is owned by one content instance and is not shared between renders:
// rendering may annotate the tree.
type CompiledDocument struct {
	Tree     ast.Node
	Source   []byte
	Diagrams []DiagramSource
}

// Compiler parses bodies with the blog syntax extensions.
//
// Extension order:
//  1. Obsidian image embeds (inline parser ahead of links)
//  2. GFM: tables, strikethrough, autolinks, task lists
//  3. Footnotes
//  4. Image-paragraph unwrapping (AST, priority 100)
//  5. Mermaid fence capture (AST, priority 200)
//  6. Slug heading IDs, then heading anchors (AST, priority 500)
//
// Syntax highlighting of fenced code happens at render time through the
// "pre" binding.
type Compiler struct {
	md     goldmark.Markdown
	logger *slog.Logger
}

// NewCompiler creates a Compiler.
func NewCompiler(logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			ObsidianImages,
			extension.GFM,
			extension.Footnote,
			ImageUnwrap,
			MermaidDiagrams,
			HeadingAnchors,
		),
	)
	return &Compiler{md: md, logger: logger}
}

// Compile parses body into a CompiledDocument.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context. Panics inside the parser are
// reported as a CompileError.
func (c *Compiler) Compile(ctx context.Context, body string) (*CompiledDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		doc *CompiledDocument
		err error
	}

	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: &CompileError{Msg: fmt.Sprintf("internal error: %v", r)}}
			}
		}()
		doc, err := c.compile(body)
		done <- result{doc: doc, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.doc, r.err
	}
}

func (c *Compiler) compile(body string) (*CompiledDocument, error) {
	source := []byte(PrepareSource(body))

	pc := parser.NewContext(parser.WithIDs(newSlugIDs()))
	tree := c.md.Parser().Parse(text.NewReader(source), parser.WithContext(pc))

	if err := checkComponents(tree, source); err != nil {
		return nil, err
	}

	diagrams := capturedDiagrams(pc)
	c.logger.Debug("compiled body", "bytes", len(source), "diagrams", len(diagrams))

	return &CompiledDocument{
		Tree:     tree,
		Source:   source,
		Diagrams: diagrams,
	}, nil
}

// checkComponents rejects raw HTML that uses capitalized component tags.
// No binding exists for them, so rendering would silently drop content.
func checkComponents(tree ast.Node, source []byte) error {
	var found error
	_ = ast.Walk(tree, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.HTMLBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				if err := scanComponent(seg.Value(source), seg.Start, source); err != nil {
					found = err
					return ast.WalkStop, nil
				}
			}
		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				if err := scanComponent(seg.Value(source), seg.Start, source); err != nil {
					found = err
					return ast.WalkStop, nil
				}
			}
		case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.CodeSpan, *Diagram:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}

func scanComponent(raw []byte, offset int, source []byte) error {
	m := componentTag.FindSubmatchIndex(raw)
	if m == nil {
		return nil
	}
	return &CompileError{
		Line: lineOf(source, offset+m[0]),
		Msg:  fmt.Sprintf("unknown component <%s>", raw[m[2]:m[3]]),
	}
}

func lineOf(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	return bytes.Count(source[:offset], []byte("\n")) + 1
}
