package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// RendererFunc renders one node. Container renderers write their opening
// markup when entering and closing markup when exiting.
type RendererFunc = renderer.NodeRendererFunc

// BindingTable maps node-type names to renderers.
//
// Names: "h1".."h6", "p", "a", "code", "pre", "img", "blockquote", "table",
// "thead", "tr", "th", "td", "anchor" and "diagram". A name missing from the
// table falls back to Goldmark's default rendering of that node.
type BindingTable map[string]RendererFunc

// boundKinds are the node kinds routed through the binding table.
var boundKinds = []ast.NodeKind{
	ast.KindHeading,
	ast.KindParagraph,
	ast.KindLink,
	ast.KindAutoLink,
	ast.KindCodeSpan,
	ast.KindFencedCodeBlock,
	ast.KindCodeBlock,
	ast.KindImage,
	ast.KindBlockquote,
	east.KindTable,
	east.KindTableHeader,
	east.KindTableRow,
	east.KindTableCell,
	KindHeadingAnchor,
	KindDiagram,
}

// nodeName returns the binding table name for n.
func nodeName(n ast.Node) string {
	switch node := n.(type) {
	case *ast.Heading:
		return "h" + strconv.Itoa(node.Level)
	case *ast.Paragraph:
		return "p"
	case *ast.Link, *ast.AutoLink:
		return "a"
	case *ast.CodeSpan:
		return "code"
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return "pre"
	case *ast.Image:
		return "img"
	case *ast.Blockquote:
		return "blockquote"
	case *east.Table:
		return "table"
	case *east.TableHeader:
		return "thead"
	case *east.TableRow:
		return "tr"
	case *east.TableCell:
		if _, ok := node.Parent().(*east.TableHeader); ok {
			return "th"
		}
		return "td"
	case *HeadingAnchor:
		return "anchor"
	case *Diagram:
		return "diagram"
	}
	return ""
}

// CodeBlockInfo describes a rendered code block.
type CodeBlockInfo struct {
	Index    int
	Language string
	Label    string
	Lines    int
}

// ImageInfo describes a rendered image.
type ImageInfo struct {
	Index int
	Src   string
	Alt   string
}

// Rendered is the output of a render pass, before sanitization.
type Rendered struct {
	HTML       string
	CodeBlocks []CodeBlockInfo
	Images     []ImageInfo
}

// Binder renders a CompiledDocument through a BindingTable.
// A Binder holds the state of one render pass and must not be shared
// between concurrent renders.
type Binder struct {
	table     BindingTable
	fallback  map[ast.NodeKind]RendererFunc
	highlight RendererFunc
	assets    *AssetResolver

	codeBlocks []CodeBlockInfo
	images     []ImageInfo
}

var _ renderer.NodeRenderer = (*Binder)(nil)

// NewBinder creates a Binder with the default component table.
// assets resolves relative image sources; nil leaves them unchanged.
func NewBinder(assets *AssetResolver) *Binder {
	b := &Binder{
		assets: assets,
		fallback: captureFuncs(
			gmhtml.NewRenderer(gmhtml.WithUnsafe()),
			extension.NewTableHTMLRenderer(),
		),
	}
	b.highlight = captureFuncs(highlighting.NewHTMLRenderer(
		highlighting.WithFormatOptions(
			chromahtml.WithClasses(true), // CSS classes, styled by the page stylesheet
		),
	))[ast.KindFencedCodeBlock]
	b.table = b.defaultTable()
	return b
}

// Bind overrides the renderer for name. A nil fn removes the binding.
func (b *Binder) Bind(name string, fn RendererFunc) {
	if fn == nil {
		delete(b.table, name)
		return
	}
	b.table[name] = fn
}

// Table returns the active binding table.
func (b *Binder) Table() BindingTable { return b.table }

func (b *Binder) defaultTable() BindingTable {
	t := BindingTable{
		"p":          renderParagraph,
		"a":          renderLink,
		"code":       renderCodeSpan,
		"pre":        b.renderCodeBlock,
		"img":        b.renderImage,
		"blockquote": renderBlockquote,
		"table":      renderTable,
		"thead":      renderTableHeader,
		"tr":         renderTableRow,
		"th":         renderTableCell,
		"td":         renderTableCell,
		"anchor":     renderHeadingAnchor,
		"diagram":    renderDiagram,
	}
	for level := 1; level <= 6; level++ {
		t["h"+strconv.Itoa(level)] = renderHeading
	}
	return t
}

// RegisterFuncs implements renderer.NodeRenderer.
func (b *Binder) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	for _, kind := range boundKinds {
		reg.Register(kind, b.dispatch)
	}
}

func (b *Binder) dispatch(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if fn := b.table[nodeName(n)]; fn != nil {
		return fn(w, source, n, entering)
	}
	if fn := b.fallback[n.Kind()]; fn != nil {
		return fn(w, source, n, entering)
	}
	return ast.WalkContinue, nil
}

// Render renders doc. Panics in component renderers are reported as a
// CompileError.
func (b *Binder) Render(ctx context.Context, doc *CompiledDocument) (out *Rendered, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc == nil || doc.Tree == nil {
		return nil, &CompileError{Msg: "nil document"}
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, &CompileError{Msg: fmt.Sprintf("render: %v", r)}
		}
	}()

	b.codeBlocks = nil
	b.images = nil

	r := renderer.NewRenderer(renderer.WithNodeRenderers(
		util.Prioritized(gmhtml.NewRenderer(gmhtml.WithUnsafe()), 1000),
		util.Prioritized(extension.NewTableHTMLRenderer(), 500),
		util.Prioritized(extension.NewStrikethroughHTMLRenderer(), 500),
		util.Prioritized(extension.NewTaskCheckBoxHTMLRenderer(), 500),
		util.Prioritized(extension.NewFootnoteHTMLRenderer(), 500),
		util.Prioritized(b, 100),
	))

	var buf bytes.Buffer
	if err := r.Render(&buf, doc.Source, doc.Tree); err != nil {
		return nil, &CompileError{Msg: "render failed", Err: err}
	}

	return &Rendered{
		HTML:       buf.String(),
		CodeBlocks: b.codeBlocks,
		Images:     b.images,
	}, nil
}

// funcCapture collects the functions a NodeRenderer registers.
type funcCapture map[ast.NodeKind]RendererFunc

func (c funcCapture) Register(kind ast.NodeKind, fn renderer.NodeRendererFunc) {
	c[kind] = fn
}

func captureFuncs(nrs ...renderer.NodeRenderer) map[ast.NodeKind]RendererFunc {
	c := funcCapture{}
	for _, nr := range nrs {
		nr.RegisterFuncs(c)
	}
	return c
}

// plainText returns the text content of n's descendants.
func plainText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || c == n {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.CodeSpan:
			for gc := t.FirstChild(); gc != nil; gc = gc.NextSibling() {
				if txt, ok := gc.(*ast.Text); ok {
					buf.Write(txt.Segment.Value(source))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// writeEscaped writes s with HTML special characters escaped.
func writeEscaped(w util.BufWriter, s string) {
	_, _ = w.Write(util.EscapeHTML([]byte(s)))
}
