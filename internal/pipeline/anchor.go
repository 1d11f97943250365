package pipeline

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindHeadingAnchor is the node kind of HeadingAnchor.
var KindHeadingAnchor = ast.NewNodeKind("HeadingAnchor")

// HeadingAnchor is an icon link to its heading, prepended to the heading's
// children.
type HeadingAnchor struct {
	ast.BaseInline
	ID []byte
}

func (n *HeadingAnchor) Kind() ast.NodeKind { return KindHeadingAnchor }

func (n *HeadingAnchor) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"ID": string(n.ID)}, nil)
}

// headingAnchorTransformer runs after heading IDs are assigned by the parser.
type headingAnchorTransformer struct{}

var _ parser.ASTTransformer = (*headingAnchorTransformer)(nil)

func (t *headingAnchorTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		id := headingID(h)
		if id == "" {
			return ast.WalkSkipChildren, nil
		}
		anchor := &HeadingAnchor{ID: []byte(id)}
		if first := h.FirstChild(); first != nil {
			h.InsertBefore(h, first, anchor)
		} else {
			h.AppendChild(h, anchor)
		}
		return ast.WalkSkipChildren, nil
	})
}

// headingID returns the id attribute assigned to h, if any.
func headingID(h *ast.Heading) string {
	id, _ := attrString(h, "id")
	return id
}

type headingAnchors struct{}

// HeadingAnchors is a Goldmark extension that assigns slug IDs to headings
// and prepends an anchor link to each.
var HeadingAnchors goldmark.Extender = &headingAnchors{}

func (e *headingAnchors) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithAutoHeadingID(),
		parser.WithASTTransformers(util.Prioritized(&headingAnchorTransformer{}, 500)),
	)
}
