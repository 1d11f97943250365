package pipeline

import (
	"regexp"
	"strings"

	"github.com/alnah/go-mdblog/internal/frontmatter"
)

// Precompiled regex patterns.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Capitalized tags: JSX-style components with no binding
	componentTag = regexp.MustCompile(`</?([A-Z][A-Za-z0-9]*(?:\.[A-Za-z0-9]+)*)[\s/>]`)

	// Obsidian embeds on a single line, caption separator included
	embedSpan = regexp.MustCompile(`!\[\[[^\[\]\n]*\]\]`)

	// Opening or closing code fence
	codeFence = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
)

// Diagram placeholders use Unicode Private Use Area characters. They pass
// through Goldmark and the document sanitizer unchanged and are replaced by
// diagram markup after sanitization.
const (
	DiagramStartPlaceholder = "\uE002" // U+E002: Private Use Area
	DiagramEndPlaceholder   = "\uE003" // U+E003: Private Use Area
)

// placeholderRunes removes diagram placeholder characters written by authors.
var placeholderRunes = strings.NewReplacer(DiagramStartPlaceholder, "", DiagramEndPlaceholder, "")

// PrepareSource normalizes line endings and drops a leading metadata block
// left in the body, so compiling raw content and compiling a split body give
// the same tree. Diagram placeholder characters are removed so only the
// compiler emits them, and caption separators inside embeds are escaped so
// GFM tables do not split an embed across cells.
func PrepareSource(content string) string {
	content = normalizeLineEndings(content)
	content = frontmatter.Strip(content)
	content = placeholderRunes.Replace(content)
	return escapeEmbedPipes(content)
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// escapeEmbedPipes rewrites ![[target|caption]] as ![[target\|caption]]
// outside fenced code blocks and code spans.
func escapeEmbedPipes(content string) string {
	if !strings.Contains(content, "![[") {
		return content
	}

	lines := strings.Split(content, "\n")
	var fence string
	for i, line := range lines {
		if m := codeFence.FindStringSubmatch(line); m != nil {
			switch {
			case fence == "":
				fence = m[1]
			case m[1][0] == fence[0] && len(m[1]) >= len(fence) && strings.TrimSpace(line[len(m[0]):]) == "":
				fence = ""
			}
			continue
		}
		if fence != "" || !strings.Contains(line, "![[") {
			continue
		}
		lines[i] = outsideCodeSpans(line, func(s string) string {
			return embedSpan.ReplaceAllStringFunc(s, escapePipes)
		})
	}
	return strings.Join(lines, "\n")
}

// escapePipes prefixes every unescaped '|' with a backslash.
func escapePipes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '|' && (i == 0 || s[i-1] != '\\') {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// outsideCodeSpans applies fn to the parts of line that are not inside a
// backtick code span. A backtick run without a closing run of the same
// length is literal text.
func outsideCodeSpans(line string, fn func(string) string) string {
	var b strings.Builder
	start := 0
	for i := 0; i < len(line); {
		if line[i] != '`' {
			i++
			continue
		}
		n := 1
		for i+n < len(line) && line[i+n] == '`' {
			n++
		}
		end := closingRun(line, i+n, n)
		if end < 0 {
			i += n
			continue
		}
		b.WriteString(fn(line[start:i]))
		b.WriteString(line[i:end])
		start, i = end, end
	}
	b.WriteString(fn(line[start:]))
	return b.String()
}

// closingRun returns the index just past the next run of exactly n
// backticks at or after from, or -1.
func closingRun(line string, from, n int) int {
	for i := from; i < len(line); {
		if line[i] != '`' {
			i++
			continue
		}
		j := i
		for j < len(line) && line[j] == '`' {
			j++
		}
		if j-i == n {
			return j
		}
		i = j
	}
	return -1
}
