package pipeline

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Stripper defaults.
const (
	DefaultExcerptLength = 200
	CharsPerMinute       = 500
	ellipsis             = "..."
)

// Stripping rules, applied in declaration order. Each rule is independent;
// order matters (code before tags, images before links).
var (
	// Leading metadata block
	stripFrontmatter = regexp.MustCompile(`\A---[ \t]*\r?\n(?:[\s\S]*?\r?\n)?---[ \t]*(?:\r?\n|\z)`)

	// Fenced code (``` or ~~~), closed or running to end of text
	stripFencedBacktick = regexp.MustCompile("(?s)```.*?(?:```|\\z)")
	stripFencedTilde    = regexp.MustCompile(`(?s)~~~.*?(?:~~~|\z)`)

	// Inline code
	stripInlineCode = regexp.MustCompile("`[^`]*`")

	// HTML tags, removed until none remain
	stripTag = regexp.MustCompile(`<[^<>]*>`)

	// Images: ![alt](src) and ![[embed]]
	stripImage       = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	stripObsidianImg = regexp.MustCompile(`!\[\[[^\]]*\]\]`)

	// Links reduced to their label
	stripLink = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)

	// Heading markers
	stripHeading = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+`)

	// List markers
	stripBullet  = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	stripOrdered = regexp.MustCompile(`(?m)^[ \t]*\d+[.)][ \t]+`)

	// Emphasis, strong first
	stripStrongStar = regexp.MustCompile(`\*\*(.+?)\*\*`)
	stripStrongUnd  = regexp.MustCompile(`__(.+?)__`)
	stripEmStar     = regexp.MustCompile(`\*(.+?)\*`)
	stripEmUnd      = regexp.MustCompile(`\b_(.+?)_\b`)

	// Whitespace runs
	stripSpace = regexp.MustCompile(`\s+`)
)

// StripMarkdown reduces Markdown/MDX source to plain text.
func StripMarkdown(text string) string {
	text = stripFrontmatter.ReplaceAllString(text, "")
	text = stripFencedBacktick.ReplaceAllString(text, "")
	text = stripFencedTilde.ReplaceAllString(text, "")
	text = stripInlineCode.ReplaceAllString(text, "")
	text = stripTags(text)
	text = stripImage.ReplaceAllString(text, "")
	text = stripObsidianImg.ReplaceAllString(text, "")
	text = stripLink.ReplaceAllString(text, "$1")
	text = stripHeading.ReplaceAllString(text, "")
	text = stripBullet.ReplaceAllString(text, "")
	text = stripOrdered.ReplaceAllString(text, "")
	text = stripStrongStar.ReplaceAllString(text, "$1")
	text = stripStrongUnd.ReplaceAllString(text, "$1")
	text = stripEmStar.ReplaceAllString(text, "$1")
	text = stripEmUnd.ReplaceAllString(text, "$1")
	text = stripSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// stripTags removes tags repeatedly so "<<b>script>" does not leave "<script>".
func stripTags(text string) string {
	for {
		next := stripTag.ReplaceAllString(text, "")
		if next == text {
			return next
		}
		text = next
	}
}

// Excerpt returns the first maxLength characters of the stripped text,
// followed by an ellipsis when truncated. Negative lengths count as zero.
func Excerpt(text string, maxLength int) string {
	if maxLength < 0 {
		maxLength = 0
	}
	plain := StripMarkdown(text)
	if utf8.RuneCountInString(plain) <= maxLength {
		return plain
	}
	runes := []rune(plain)
	return strings.TrimRight(string(runes[:maxLength]), " ") + ellipsis
}

// ReadingTime estimates minutes to read text at CharsPerMinute, rounded up.
// The minimum is one minute.
func ReadingTime(text string) int {
	n := utf8.RuneCountInString(StripMarkdown(text))
	return minutesFor(n)
}

func minutesFor(chars int) int {
	return max(1, int(math.Ceil(float64(chars)/CharsPerMinute)))
}
