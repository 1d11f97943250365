package diagram

import (
	"errors"
	"html"
)

// LoadingMarkup is shown while a diagram renders.
const LoadingMarkup = `<div class="diagram-loading" role="status" aria-live="polite">Rendering diagram</div>`

// Markup returns the HTML for st. Success returns the sanitized SVG; failure
// returns ErrorMarkup.
func (st State) Markup() string {
	switch st.Phase {
	case PhaseSuccess:
		return st.SVG
	case PhaseFailed:
		return ErrorMarkup(st.Err, st.Source)
	}
	return LoadingMarkup
}

// ErrorMarkup shows the failure message and the unrendered source in a
// collapsible block.
func ErrorMarkup(err error, source string) string {
	msg := "Diagram could not be rendered"
	var re *RenderError
	switch {
	case errors.As(err, &re):
		if re.Msg != "" {
			msg = re.Msg
		} else if re.Err != nil {
			msg = re.Err.Error()
		}
	case err != nil:
		msg = err.Error()
	}
	return `<div class="diagram-error" role="alert"><p class="diagram-error-message">` +
		html.EscapeString(msg) +
		`</p><details><summary>Diagram source</summary><pre><code>` +
		html.EscapeString(source) +
		`</code></pre></details></div>`
}

// HydrationMarkup leaves the source for a client-side mermaid runtime.
// No SVG is produced server-side, so nothing needs sanitizing.
func HydrationMarkup(source string) string {
	return `<pre class="mermaid">` + html.EscapeString(source) + `</pre>`
}
