package mdblog

import (
	"path"
	"strings"

	"github.com/alnah/go-mdblog/internal/pipeline"
)

// StripMarkdown reduces Markdown/MDX text to plain text: frontmatter, code,
// tags, images and formatting markers removed, links reduced to their label,
// whitespace collapsed.
func StripMarkdown(text string) string {
	return pipeline.StripMarkdown(text)
}

// Excerpt returns at most maxLength characters of the stripped text,
// followed by "..." when truncated.
func Excerpt(text string, maxLength int) string {
	return pipeline.Excerpt(text, maxLength)
}

// ReadingTime estimates reading minutes at 500 stripped characters per
// minute, rounded up, minimum 1.
func ReadingTime(text string) int {
	return pipeline.ReadingTime(text)
}

// ContentPath returns "{locale}/{slug}.{ext}". ext defaults to "md" and may
// be given with or without its dot.
func ContentPath(locale, slug, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = DefaultExtension
	}
	slug = strings.Trim(slug, "/")
	if locale == "" {
		return slug + "." + ext
	}
	return path.Join(locale, slug+"."+ext)
}
