package pipeline

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/util"
)

// GenericCodeLabel labels code blocks without a language.
const GenericCodeLabel = "Code"

// languageLabels maps fence languages to display labels.
var languageLabels = map[string]string{
	"bash":       "Bash",
	"c":          "C",
	"cpp":        "C++",
	"cs":         "C#",
	"csharp":     "C#",
	"css":        "CSS",
	"diff":       "Diff",
	"docker":     "Dockerfile",
	"dockerfile": "Dockerfile",
	"go":         "Go",
	"golang":     "Go",
	"graphql":    "GraphQL",
	"html":       "HTML",
	"java":       "Java",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"json":       "JSON",
	"jsx":        "JSX",
	"kotlin":     "Kotlin",
	"kt":         "Kotlin",
	"md":         "Markdown",
	"markdown":   "Markdown",
	"mdx":        "MDX",
	"php":        "PHP",
	"py":         "Python",
	"python":     "Python",
	"rb":         "Ruby",
	"ruby":       "Ruby",
	"rs":         "Rust",
	"rust":       "Rust",
	"sh":         "Shell",
	"shell":      "Shell",
	"sql":        "SQL",
	"swift":      "Swift",
	"toml":       "TOML",
	"ts":         "TypeScript",
	"tsx":        "TSX",
	"typescript": "TypeScript",
	"xml":        "XML",
	"yaml":       "YAML",
	"yml":        "YAML",
	"zsh":        "Zsh",
}

// LanguageLabel returns the display label for a fence language.
// Unknown languages are shown as written; no language gives GenericCodeLabel.
func LanguageLabel(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return GenericCodeLabel
	}
	if label, ok := languageLabels[strings.ToLower(lang)]; ok {
		return label
	}
	return lang
}

// CountLines counts lines in code text, not counting a trailing empty line.
func CountLines(code string) int {
	if code == "" {
		return 0
	}
	lines := strings.Split(code, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return len(lines)
}

// renderCodeBlock writes a code block with a language header, a copy button
// and a line-number gutter around the highlighted code.
func (b *Binder) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	var lang string
	fenced, isFenced := node.(*ast.FencedCodeBlock)
	if isFenced {
		lang = string(fenced.Language(source))
	}
	code := blockText(node, source)
	label := LanguageLabel(lang)
	lines := CountLines(code)

	idx := len(b.codeBlocks)
	b.codeBlocks = append(b.codeBlocks, CodeBlockInfo{
		Index:    idx,
		Language: lang,
		Label:    label,
		Lines:    lines,
	})

	_, _ = fmt.Fprintf(w, `<figure class="code-block" data-code-block="%d"`, idx)
	if lang != "" {
		_, _ = w.WriteString(` data-language="`)
		writeEscaped(w, lang)
		_ = w.WriteByte('"')
	}
	_, _ = w.WriteString(`><div class="code-block-header"><span class="code-block-language">`)
	writeEscaped(w, label)
	_, _ = w.WriteString(`</span><button type="button" class="code-block-copy" data-state="idle" aria-label="Copy code">`)
	_, _ = w.WriteString(iconCopy)
	_, _ = w.WriteString(`</button></div><div class="code-block-body"><div class="code-block-gutter" aria-hidden="true">`)
	for i := 1; i <= lines; i++ {
		_, _ = fmt.Fprintf(w, "<span>%d</span>", i)
	}
	_, _ = w.WriteString(`</div><div class="code-block-content">`)

	if isFenced && b.highlight != nil {
		if _, err := b.highlight(w, source, node, true); err != nil {
			return ast.WalkStop, err
		}
	} else {
		_, _ = w.WriteString("<pre><code>")
		writeEscaped(w, code)
		_, _ = w.WriteString("</code></pre>")
	}

	_, _ = w.WriteString("</div></div></figure>\n")
	return ast.WalkSkipChildren, nil
}
