package mdblog

import (
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/go-mdblog/internal/assets"
)

// DefaultHighlightStyle is the chroma style of standalone pages.
const DefaultHighlightStyle = "monokai"

// PageOptions configures Document.StandalonePage.
type PageOptions struct {
	// Style is layered over the built-in component stylesheet. Empty or
	// "default" uses the built-in one alone.
	Style string

	// HighlightStyle is a chroma style name for fenced code.
	HighlightStyle string

	// AssetPath overrides built-in styles and the page template with files
	// from {AssetPath}/styles and {AssetPath}/templates.
	AssetPath string
}

// HighlightCSS returns the stylesheet of a chroma style for the class-based
// markup of rendered code blocks. Returns ErrInvalidInput for unknown styles.
func HighlightCSS(style string) (string, error) {
	if style == "" {
		style = DefaultHighlightStyle
	}
	s, ok := styles.Registry[style]
	if !ok {
		return "", fmt.Errorf("%w: highlight style %q", ErrInvalidInput, style)
	}

	var b strings.Builder
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&b, s); err != nil {
		return "", fmt.Errorf("writing highlight CSS: %w", err)
	}
	return b.String(), nil
}

// StandalonePage wraps the document in a complete HTML page carrying the
// component stylesheet, the highlight stylesheet and a table of contents.
func (d *Document) StandalonePage(opts PageOptions) (string, error) {
	loader, err := assets.NewAssetResolver(opts.AssetPath)
	if err != nil {
		return "", fmt.Errorf("%w: asset path: %v", ErrInvalidInput, err)
	}

	css, err := loader.LoadStyle(assets.DefaultStyleName)
	if err != nil {
		return "", fmt.Errorf("loading style: %w", err)
	}
	if opts.Style != "" && opts.Style != assets.DefaultStyleName {
		extra, err := loader.LoadStyle(opts.Style)
		if err != nil {
			return "", fmt.Errorf("%w: style %q: %w", ErrInvalidInput, opts.Style, err)
		}
		css += "\n" + extra
	}

	highlight, err := HighlightCSS(opts.HighlightStyle)
	if err != nil {
		return "", err
	}
	css += "\n" + highlight

	tmpl, err := loader.LoadTemplate(assets.DefaultTemplateName)
	if err != nil {
		return "", fmt.Errorf("loading page template: %w", err)
	}

	headings := make([]assets.PageHeading, len(d.Headings))
	for i, h := range d.Headings {
		headings[i] = assets.PageHeading(h)
	}

	summary := d.Frontmatter.Summary
	if summary == "" {
		summary = d.Excerpt
	}

	return assets.RenderPage(tmpl, assets.PageData{
		Title:    d.Title(),
		Lang:     d.Locale,
		Summary:  summary,
		CSS:      css,
		Body:     d.HTML,
		Headings: headings,
	})
}

// Title returns the frontmatter title, falling back to the first heading
// and then to the content path.
func (d *Document) Title() string {
	if d.Frontmatter.Title != "" {
		return d.Frontmatter.Title
	}
	if len(d.Headings) > 0 {
		return d.Headings[0].Text
	}
	return d.Path
}
