package assets

import (
	"bytes"
	"fmt"
	"html/template"
)

// PageHeading is a table-of-contents entry of a standalone page.
type PageHeading struct {
	Level int
	ID    string
	Text  string
}

// PageData fills a page template.
type PageData struct {
	Title    string
	Lang     string
	Summary  string
	CSS      string // trusted: built-in or operator-supplied stylesheets
	Body     string // trusted: sanitized document markup
	Headings []PageHeading
}

// RenderPage executes tmpl with data. CSS and Body are inserted verbatim;
// every other field is escaped by html/template.
func RenderPage(tmpl string, data PageData) (string, error) {
	t, err := template.New("page").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}

	view := struct {
		PageData
		Style   template.CSS
		Content template.HTML
	}{
		PageData: data,
		Style:    template.CSS(data.CSS),   // #nosec G203 -- trusted stylesheet
		Content:  template.HTML(data.Body), // #nosec G203 -- sanitized upstream
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	return buf.String(), nil
}
