package pipeline

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/util"
)

// calloutMarker matches the first line of a callout blockquote.
// Tags are case-sensitive and limited to the four supported kinds.
var calloutMarker = regexp.MustCompile(`^\s*\[!(INFO|WARNING|DANGER|SUCCESS)\]\s*(.*)$`)

// Node attributes caching a detected callout, so a tree rendered twice is
// detected once.
const (
	attrCalloutKind  = "callout-kind"
	attrCalloutTitle = "callout-title"
)

// calloutStyle is the icon and palette of a callout kind.
type calloutStyle struct {
	class   string
	palette string
	icon    string
}

var calloutStyles = map[string]calloutStyle{
	"INFO":    {class: "callout-info", palette: "blue", icon: iconInfo},
	"WARNING": {class: "callout-warning", palette: "yellow", icon: iconWarning},
	"DANGER":  {class: "callout-danger", palette: "red", icon: iconDanger},
	"SUCCESS": {class: "callout-success", palette: "green", icon: iconSuccess},
}

// Callout is a detected callout header.
type Callout struct {
	Kind  string
	Title string
}

// DetectCallout inspects the first line of bq's first child. On a match the
// marker line is removed from the tree: the remaining lines stay in the first
// child, or the child is dropped when nothing remains.
func DetectCallout(bq *ast.Blockquote, source []byte) (Callout, bool) {
	if kind, ok := attrString(bq, attrCalloutKind); ok {
		title, _ := attrString(bq, attrCalloutTitle)
		return Callout{Kind: kind, Title: title}, true
	}

	first := bq.FirstChild()
	if first == nil || first.Lines().Len() == 0 {
		return Callout{}, false
	}
	switch first.(type) {
	case *ast.Paragraph, *ast.TextBlock:
	default:
		return Callout{}, false
	}

	line := first.Lines().At(0)
	m := calloutMarker.FindStringSubmatch(strings.TrimRight(string(line.Value(source)), "\r\n"))
	if m == nil {
		return Callout{}, false
	}

	c := Callout{Kind: m[1], Title: StripMarkdown(strings.TrimSpace(m[2]))}
	if c.Title == "" {
		c.Title = c.Kind
	}

	removeFirstLine(first, line.Stop)
	if first.ChildCount() == 0 {
		bq.RemoveChild(bq, first)
	}

	bq.SetAttributeString(attrCalloutKind, []byte(c.Kind))
	bq.SetAttributeString(attrCalloutTitle, []byte(c.Title))
	return c, true
}

// removeFirstLine removes the inline children that start before lineEnd.
// Children without a source position follow the previous child.
func removeFirstLine(block ast.Node, lineEnd int) {
	onFirstLine := true
	var doomed []ast.Node
	for c := block.FirstChild(); c != nil; c = c.NextSibling() {
		if start, ok := inlineStart(c); ok {
			onFirstLine = start < lineEnd
		}
		if !onFirstLine {
			break
		}
		doomed = append(doomed, c)
	}
	for _, c := range doomed {
		block.RemoveChild(block, c)
	}
}

// inlineStart returns the source offset of the first text within n.
func inlineStart(n ast.Node) (int, bool) {
	switch t := n.(type) {
	case *ast.Text:
		return t.Segment.Start, true
	case *ast.RawHTML:
		if t.Segments.Len() > 0 {
			return t.Segments.At(0).Start, true
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if start, ok := inlineStart(c); ok {
			return start, true
		}
	}
	return 0, false
}

func renderBlockquote(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	bq := node.(*ast.Blockquote)
	if entering {
		c, ok := DetectCallout(bq, source)
		if !ok {
			_, _ = w.WriteString("<blockquote>\n")
			return ast.WalkContinue, nil
		}
		style := calloutStyles[c.Kind]
		_, _ = w.WriteString(`<div class="callout ` + style.class + `" data-palette="` + style.palette + `" role="note">`)
		_, _ = w.WriteString(`<div class="callout-header"><span class="callout-icon" aria-hidden="true">`)
		_, _ = w.WriteString(style.icon)
		_, _ = w.WriteString(`</span><p class="callout-title">`)
		writeEscaped(w, c.Title)
		_, _ = w.WriteString("</p></div>\n<div class=\"callout-body\">\n")
		return ast.WalkContinue, nil
	}

	if _, ok := attrString(bq, attrCalloutKind); ok {
		_, _ = w.WriteString("</div></div>\n")
	} else {
		_, _ = w.WriteString("</blockquote>\n")
	}
	return ast.WalkContinue, nil
}

// attrString reads a string or []byte node attribute.
func attrString(n ast.Node, name string) (string, bool) {
	v, ok := n.AttributeString(name)
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case []byte:
		return string(s), true
	case string:
		return s, true
	}
	return "", false
}
