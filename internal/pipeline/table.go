package pipeline

import (
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/util"
)

// Banding classes for table sections.
const (
	tableHeadClass = "table-head"
	tableBodyClass = "table-body"
)

// renderTable wraps the table in a focusable, horizontally scrollable region.
func renderTable(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<div class="table-wrapper" role="region" aria-label="Table" tabindex="0">` + "\n<table>\n")
		return ast.WalkContinue, nil
	}
	if hasBodyRows(node) {
		_, _ = w.WriteString("</tbody>\n")
	}
	_, _ = w.WriteString("</table>\n</div>\n")
	return ast.WalkContinue, nil
}

func renderTableHeader(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<thead class="` + tableHeadClass + `">` + "\n<tr>\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("</tr>\n</thead>\n")
	if hasBodyRows(node.Parent()) {
		_, _ = w.WriteString(`<tbody class="` + tableBodyClass + `">` + "\n")
	}
	return ast.WalkContinue, nil
}

func renderTableRow(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		// A table without a header row opens its body at the first row.
		if node.PreviousSibling() == nil {
			_, _ = w.WriteString(`<tbody class="` + tableBodyClass + `">` + "\n")
		}
		_, _ = w.WriteString("<tr>\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("</tr>\n")
	return ast.WalkContinue, nil
}

func renderTableCell(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*east.TableCell)
	tag := "td"
	if _, ok := n.Parent().(*east.TableHeader); ok {
		tag = "th"
	}
	if !entering {
		_, _ = w.WriteString("</" + tag + ">\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("<" + tag)
	if n.Alignment != east.AlignNone {
		_, _ = w.WriteString(` class="align-` + n.Alignment.String() + `"`)
	}
	_ = w.WriteByte('>')
	return ast.WalkContinue, nil
}

func hasBodyRows(table ast.Node) bool {
	if table == nil {
		return false
	}
	for c := table.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*east.TableRow); ok {
			return true
		}
	}
	return false
}
