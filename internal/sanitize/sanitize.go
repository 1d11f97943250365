// Package sanitize builds the HTML policies applied to rendered documents
// and to diagram SVG before either reaches a page.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attribute value patterns.
var (
	// Heading and footnote ids, including non-ASCII slugs
	idValue = regexp.MustCompile(`^[\p{L}\p{N}\p{M}_:.-]+$`)

	// ARIA roles emitted by the renderer and the footnote extension
	roleValue = regexp.MustCompile(`^(note|img|region|alert|status|doc-noteref|doc-endnotes|doc-backlink)$`)

	// SVG paint: keywords, colors and local references only
	paintValue = regexp.MustCompile(`^(?:none|currentColor|transparent|#[0-9a-fA-F]{3,8}|[a-zA-Z]+|rgba?\([\d\s.,%]+\)|hsla?\([\d\s.,%deg]+\)|url\(#[\w:.-]+\))$`)

	// Local fragment references
	localRef = regexp.MustCompile(`^url\(#[\w:.-]+\)$`)

	// Focus order; -1 keeps anchor icons out of the tab sequence
	tabindexValue = regexp.MustCompile(`^-?\d+$`)

	// Plain numbers, lengths and number lists
	numericValue = regexp.MustCompile(`^[-+\d\s.,eE%a-z]*$`)
)

// iconElements are the SVG shapes used by the inline icon set.
var iconElements = []string{"svg", "path", "circle", "line", "polyline", "polygon", "rect"}

// iconAttrs are the presentation attributes of the inline icon set.
// Names are lowercase: the tokenizer folds case before matching.
var iconAttrs = []string{
	"xmlns", "viewbox", "width", "height", "fill", "stroke", "stroke-width",
	"stroke-linecap", "stroke-linejoin", "d", "cx", "cy", "r", "rx", "ry",
	"x", "y", "x1", "y1", "x2", "y2", "points",
}

// diagramElements are the SVG (and foreignObject HTML label) elements a
// diagram may contain.
var diagramElements = []string{
	"svg", "g", "defs", "marker", "path", "rect", "circle", "ellipse", "line",
	"polyline", "polygon", "text", "tspan", "title", "desc", "style",
	"lineargradient", "radialgradient", "stop", "clippath", "foreignobject",
	"div", "span", "p", "br", "b", "i", "strong", "em", "code",
}

// diagramGeometry are attributes that only carry numbers or lengths.
var diagramGeometry = []string{
	"x", "y", "x1", "y1", "x2", "y2", "cx", "cy", "r", "rx", "ry", "dx", "dy",
	"width", "height", "viewbox", "refx", "refy", "markerwidth", "markerheight",
	"stroke-width", "stroke-dasharray", "stroke-dashoffset", "opacity",
	"fill-opacity", "stroke-opacity", "offset", "font-size", "points",
}

// diagramText are free-form attributes without URL semantics.
var diagramText = []string{
	"id", "class", "d", "transform", "text-anchor", "dominant-baseline",
	"alignment-baseline", "font-family", "font-weight", "font-style",
	"stroke-linecap", "stroke-linejoin", "orient", "markerunits",
	"gradientunits", "preserveaspectratio", "xmlns", "role",
	"aria-roledescription", "aria-label", "aria-labelledby",
	"aria-describedby", "style",
}

// Sanitizer holds the document and diagram policies. Policies are safe for
// concurrent use once built.
type Sanitizer struct {
	document *bluemonday.Policy
	svg      *bluemonday.Policy
}

// New builds a Sanitizer.
func New() *Sanitizer {
	return &Sanitizer{
		document: documentPolicy(),
		svg:      svgPolicy(),
	}
}

// Document sanitizes rendered document HTML.
// Absolute http(s) links open in a new tab with rel="noopener noreferrer".
func (s *Sanitizer) Document(htmlContent string) string {
	return s.document.Sanitize(htmlContent)
}

// SVG sanitizes diagram markup. Scripts, event handlers and external
// references are removed; stylesheets keep only rules that cannot load
// resources.
func (s *Sanitizer) SVG(markup string) string {
	clean := s.svg.Sanitize(markup)
	if !strings.Contains(clean, "style") {
		return clean
	}
	filtered, err := filterStyles(clean)
	if err != nil {
		return ""
	}
	return filtered
}

func documentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).Globally()
	p.AllowAttrs("id").Matching(idValue).Globally()
	p.AllowAttrs("role").Matching(roleValue).Globally()
	p.AllowAttrs("aria-hidden", "aria-label", "aria-live").Globally()
	p.AllowAttrs("tabindex").Matching(tabindexValue).Globally()
	p.AllowDataAttributes()

	p.AllowElements("figure", "figcaption")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^button$`)).OnElements("button")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	p.AllowAttrs("loading").Matching(regexp.MustCompile(`^(lazy|eager)$`)).OnElements("img")
	p.AllowAttrs("decoding").Matching(regexp.MustCompile(`^(async|sync|auto)$`)).OnElements("img")

	p.AllowElements(iconElements...)
	p.AllowAttrs(iconAttrs...).OnElements(iconElements...)

	p.RequireNoFollowOnLinks(false)
	p.RequireNoReferrerOnFullyQualifiedLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

func svgPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	// Style elements are filtered after sanitization.
	p.AllowUnsafe(true)
	p.AllowElements(diagramElements...)
	// Groups and label wrappers often carry no attributes at all.
	p.AllowNoAttrs().OnElements(diagramElements...)

	p.AllowAttrs(diagramGeometry...).Matching(numericValue).OnElements(diagramElements...)
	p.AllowAttrs(diagramText...).OnElements(diagramElements...)
	p.AllowAttrs("fill", "stroke", "stop-color", "color").Matching(paintValue).OnElements(diagramElements...)
	p.AllowAttrs("marker-start", "marker-mid", "marker-end", "clip-path").Matching(localRef).OnElements(diagramElements...)
	return p
}

// filterStyles parses sanitized SVG markup and filters every <style>
// element and style attribute through FilterCSS and FilterDeclarations.
func filterStyles(markup string) (string, error) {
	context := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return "", err
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for i := 0; i < len(n.Attr); i++ {
				if n.Attr[i].Key != "style" {
					continue
				}
				filtered := FilterDeclarations(n.Attr[i].Val)
				if filtered == "" {
					n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
					i--
					continue
				}
				n.Attr[i].Val = filtered
			}
			if n.Data == "style" {
				var css strings.Builder
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						css.WriteString(c.Data)
					}
				}
				for n.FirstChild != nil {
					n.RemoveChild(n.FirstChild)
				}
				if filtered := FilterCSS(css.String()); filtered != "" {
					n.AppendChild(&html.Node{Type: html.TextNode, Data: filtered})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	var buf strings.Builder
	for _, n := range nodes {
		walk(n)
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
