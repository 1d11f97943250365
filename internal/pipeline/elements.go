package pipeline

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/yuin/goldmark/ast"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// headingClasses is the typographic scale per level. Levels 1 and 2 carry a
// bottom border.
var headingClasses = [7]string{
	1: "heading heading-1 heading-bordered",
	2: "heading heading-2 heading-bordered",
	3: "heading heading-3",
	4: "heading heading-4",
	5: "heading heading-5",
	6: "heading heading-6",
}

// ImageUnavailableLabel names an image that failed to load and has no alt text.
const ImageUnavailableLabel = "Image unavailable"

func renderHeading(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	if !entering {
		_, _ = fmt.Fprintf(w, "</h%d>\n", n.Level)
		return ast.WalkContinue, nil
	}
	_, _ = fmt.Fprintf(w, `<h%d class="%s"`, n.Level, headingClasses[n.Level])
	if id := headingID(n); id != "" {
		_, _ = w.WriteString(` id="`)
		writeEscaped(w, id)
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
	return ast.WalkContinue, nil
}

func renderHeadingAnchor(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*HeadingAnchor)
	_, _ = w.WriteString(`<a class="heading-anchor" href="#`)
	_, _ = w.Write(util.EscapeHTML(n.ID))
	_, _ = w.WriteString(`" aria-hidden="true" tabindex="-1">`)
	_, _ = w.WriteString(iconLink)
	_, _ = w.WriteString(`</a>`)
	return ast.WalkSkipChildren, nil
}

func renderParagraph(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<p>")
	} else {
		_, _ = w.WriteString("</p>\n")
	}
	return ast.WalkContinue, nil
}

func renderLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if auto, ok := node.(*ast.AutoLink); ok {
		return renderAutoLink(w, source, auto, entering)
	}
	n := node.(*ast.Link)
	if !entering {
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<a href="`)
	if !gmhtml.IsDangerousURL(n.Destination) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	}
	_ = w.WriteByte('"')
	if n.Title != nil {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
	return ast.WalkContinue, nil
}

func renderAutoLink(w util.BufWriter, source []byte, n *ast.AutoLink, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	url := n.URL(source)
	label := n.Label(source)
	if n.AutoLinkType == ast.AutoLinkEmail && !bytes.HasPrefix(bytes.ToLower(url), []byte("mailto:")) {
		url = append([]byte("mailto:"), url...)
	}
	_, _ = w.WriteString(`<a href="`)
	if !gmhtml.IsDangerousURL(url) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(url, false)))
	}
	_, _ = w.WriteString(`">`)
	_, _ = w.Write(util.EscapeHTML(label))
	_, _ = w.WriteString(`</a>`)
	return ast.WalkContinue, nil
}

func renderCodeSpan(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</code>")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<code class="inline-code">`)
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		var value []byte
		switch t := c.(type) {
		case *ast.Text:
			value = t.Segment.Value(source)
		case *ast.String:
			value = t.Value
		default:
			continue
		}
		if bytes.HasSuffix(value, []byte("\n")) {
			_, _ = w.Write(util.EscapeHTML(value[:len(value)-1]))
			_ = w.WriteByte(' ')
			continue
		}
		_, _ = w.Write(util.EscapeHTML(value))
	}
	return ast.WalkSkipChildren, nil
}

// renderImage writes a lazy image inside an image block. The block carries
// the image index so a failed load can be swapped for ImagePlaceholderHTML.
func (b *Binder) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)
	src := string(n.Destination)
	if b.assets != nil {
		src = b.assets.Resolve(src)
	}
	alt := plainText(n, source)

	idx := len(b.images)
	b.images = append(b.images, ImageInfo{Index: idx, Src: src, Alt: alt})

	_, _ = fmt.Fprintf(w, `<span class="image-block" data-image="%d"><img src="`, idx)
	if !gmhtml.IsDangerousURL([]byte(src)) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape([]byte(src), true)))
	}
	_, _ = w.WriteString(`" alt="`)
	writeEscaped(w, alt)
	_ = w.WriteByte('"')
	if n.Title != nil {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_ = w.WriteByte('"')
	}
	_, _ = w.WriteString(` loading="lazy" decoding="async"></span>`)
	if _, inline := n.Parent().(*ast.Paragraph); !inline {
		_ = w.WriteByte('\n')
	}
	return ast.WalkSkipChildren, nil
}

// ImagePlaceholderHTML is the markup of an image block whose load failed.
// The caption is the alt text, or ImageUnavailableLabel when alt is empty.
func ImagePlaceholderHTML(index int, alt string) string {
	label := alt
	if label == "" {
		label = ImageUnavailableLabel
	}
	esc := string(util.EscapeHTML([]byte(label)))
	return `<span class="image-block image-error" data-image="` + strconv.Itoa(index) +
		`" role="img" aria-label="` + esc + `">` + iconImageOff +
		`<span class="image-caption">` + esc + `</span></span>`
}

func renderDiagram(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Diagram)
	_, _ = fmt.Fprintf(w, `<div class="diagram" data-diagram="%d">%s%d%s</div>`+"\n",
		n.Index, DiagramStartPlaceholder, n.Index, DiagramEndPlaceholder)
	return ast.WalkSkipChildren, nil
}
