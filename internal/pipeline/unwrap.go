package pipeline

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// imageUnwrapper replaces a paragraph holding a single image with the image.
type imageUnwrapper struct{}

var _ parser.ASTTransformer = (*imageUnwrapper)(nil)

func (t *imageUnwrapper) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	var targets []*ast.Paragraph
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		p, ok := n.(*ast.Paragraph)
		if !ok {
			return ast.WalkContinue, nil
		}
		if p.ChildCount() == 1 {
			if _, isImage := p.FirstChild().(*ast.Image); isImage {
				targets = append(targets, p)
			}
		}
		return ast.WalkSkipChildren, nil
	})

	for _, p := range targets {
		parent := p.Parent()
		if parent == nil {
			continue
		}
		parent.ReplaceChild(parent, p, p.FirstChild())
	}
}

type imageUnwrap struct{}

// ImageUnwrap is a Goldmark extension removing paragraph wrappers around
// standalone images.
var ImageUnwrap goldmark.Extender = &imageUnwrap{}

func (e *imageUnwrap) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&imageUnwrapper{}, 100),
	))
}
