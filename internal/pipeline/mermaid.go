package pipeline

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// diagramLanguage is the fence info string that marks a diagram.
const diagramLanguage = "mermaid"

// KindDiagram is the node kind of Diagram.
var KindDiagram = ast.NewNodeKind("Diagram")

// Diagram replaces a ```mermaid fence. Index orders diagrams within a
// document starting at zero.
type Diagram struct {
	ast.BaseBlock
	Index  int
	Source string
}

func (n *Diagram) Kind() ast.NodeKind { return KindDiagram }

func (n *Diagram) IsRaw() bool { return true }

func (n *Diagram) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Source": n.Source}, nil)
}

// DiagramSource is a diagram captured at compile time.
type DiagramSource struct {
	Index  int
	Source string
}

var diagramsKey = parser.NewContextKey()

// diagramCapture swaps mermaid fences for Diagram nodes and records their
// sources in the parser context.
type diagramCapture struct{}

var _ parser.ASTTransformer = (*diagramCapture)(nil)

func (t *diagramCapture) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	var fences []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fcb, ok := n.(*ast.FencedCodeBlock); ok {
			if strings.EqualFold(string(fcb.Language(source)), diagramLanguage) {
				fences = append(fences, fcb)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	diagrams := make([]DiagramSource, 0, len(fences))
	for i, fcb := range fences {
		d := &Diagram{Index: i, Source: blockText(fcb, source)}
		fcb.Parent().ReplaceChild(fcb.Parent(), fcb, d)
		diagrams = append(diagrams, DiagramSource{Index: i, Source: d.Source})
	}
	pc.Set(diagramsKey, diagrams)
}

// capturedDiagrams returns the diagrams recorded during parsing.
func capturedDiagrams(pc parser.Context) []DiagramSource {
	if v, ok := pc.Get(diagramsKey).([]DiagramSource); ok {
		return v
	}
	return nil
}

// blockText concatenates the raw lines of a code block.
func blockText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

type mermaidDiagrams struct{}

// MermaidDiagrams is a Goldmark extension capturing ```mermaid fences as
// Diagram nodes.
var MermaidDiagrams goldmark.Extender = &mermaidDiagrams{}

func (e *mermaidDiagrams) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&diagramCapture{}, 200),
	))
}
