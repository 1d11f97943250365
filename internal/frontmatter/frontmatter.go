// Package frontmatter separates a leading YAML metadata block from a
// Markdown body and decodes it into the blog post schema.
package frontmatter

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/alnah/go-mdblog/internal/yamlutil"
)

// ErrParse indicates a malformed or invalid frontmatter block.
var ErrParse = errors.New("frontmatter parse failed")

// ParseError describes why a frontmatter block was rejected.
type ParseError struct {
	Field string // empty for syntax errors
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%v: %s: %s", ErrParse, e.Field, e.Msg)
	}
	return fmt.Sprintf("%v: %s", ErrParse, e.Msg)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// blockPattern matches a metadata block at the very start of the text.
// The block body is optional so "---\n---\n" is an empty block.
var blockPattern = regexp.MustCompile(`\A---[ \t]*\r?\n(?:([\s\S]*?)\r?\n)?---[ \t]*(?:\r?\n|\z)`)

// Frontmatter is the metadata schema of a post.
type Frontmatter struct {
	Title     string   `yaml:"title" json:"title"`
	Path      Segments `yaml:"path" json:"path"`
	Tags      Tags     `yaml:"tags" json:"tags"`
	CreatedAt Date     `yaml:"createdAt" json:"createdAt,omitzero"`
	UpdatedAt Date     `yaml:"updatedAt" json:"updatedAt,omitzero"`
	Published bool     `yaml:"published" json:"published"`
	Thumbnail string   `yaml:"thumbnail" json:"thumbnail,omitempty"`
	Summary   string   `yaml:"summary" json:"summary,omitempty"`
}

// Document is the result of splitting raw text.
type Document struct {
	Frontmatter Frontmatter
	Body        string
	// HasBlock reports whether a metadata block was present.
	HasBlock bool
}

// Split separates the metadata block from the body.
// Text without a leading block yields default metadata and the entire text as
// body. A present block must decode and carry a title and a path.
func Split(text string) (*Document, error) {
	loc := blockPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return &Document{Frontmatter: defaults(), Body: text}, nil
	}

	var raw string
	if loc[2] >= 0 {
		raw = text[loc[2]:loc[3]]
	}
	fm, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return &Document{Frontmatter: fm, Body: text[loc[1]:], HasBlock: true}, nil
}

// Strip removes a leading metadata block without decoding it.
func Strip(text string) string {
	loc := blockPattern.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[loc[1]:]
}

func defaults() Frontmatter {
	return Frontmatter{Tags: Tags{}}
}

func decode(raw string) (Frontmatter, error) {
	fm := defaults()
	if strings.TrimSpace(raw) != "" {
		if err := yamlutil.Unmarshal([]byte(raw), &fm); err != nil {
			return Frontmatter{}, &ParseError{Msg: strings.TrimPrefix(err.Error(), "yamlutil: ")}
		}
	}
	if fm.Tags == nil {
		fm.Tags = Tags{}
	}
	if err := fm.Validate(); err != nil {
		return Frontmatter{}, err
	}
	return fm, nil
}

// Validate checks required fields.
func (f *Frontmatter) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return &ParseError{Field: "title", Msg: "required"}
	}
	if len(f.Path) == 0 {
		return &ParseError{Field: "path", Msg: "required"}
	}
	for i, s := range f.Path {
		if strings.TrimSpace(s) == "" {
			return &ParseError{Field: "path", Msg: fmt.Sprintf("segment %d is empty", i)}
		}
	}
	if !f.UpdatedAt.IsZero() && !f.CreatedAt.IsZero() && f.UpdatedAt.Before(f.CreatedAt.Time) {
		return &ParseError{Field: "updatedAt", Msg: "before createdAt"}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Field types
// ---------------------------------------------------------------------------

// Segments is an ordered list of path segments.
// A scalar "a/b" decodes the same as the sequence [a, b].
type Segments []string

func (s *Segments) UnmarshalYAML(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "" || trimmed == "null" || trimmed == "~" {
		*s = nil
		return nil
	}
	if !strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "-") {
		var scalar string
		if err := yamlutil.Unmarshal(b, &scalar); err != nil {
			return err
		}
		*s = splitSegments(scalar)
		return nil
	}
	var list []string
	if err := yamlutil.Unmarshal(b, &list); err != nil {
		return err
	}
	*s = list
	return nil
}

func splitSegments(p string) Segments {
	var out Segments
	for _, part := range strings.Split(p, "/") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// String joins the segments with "/".
func (s Segments) String() string { return strings.Join(s, "/") }

// Tags is a tag set that keeps first-seen order for display.
type Tags []string

func (t *Tags) UnmarshalYAML(b []byte) error {
	var list []string
	trimmed := strings.TrimSpace(string(b))
	if trimmed != "" && trimmed != "null" && trimmed != "~" {
		if err := yamlutil.Unmarshal(b, &list); err != nil {
			return err
		}
	}
	out := make(Tags, 0, len(list))
	for _, tag := range list {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	*t = out
	return nil
}

// Has reports set membership.
func (t Tags) Has(tag string) bool { return slices.Contains(t, tag) }

// Equal compares tags as sets.
func (t Tags) Equal(other Tags) bool {
	if len(t) != len(other) {
		return false
	}
	for _, tag := range t {
		if !other.Has(tag) {
			return false
		}
	}
	return true
}

// dateLayouts are tried in order when decoding a Date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006.01.02",
}

// Date is a calendar date or timestamp.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalYAML(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"'`)
	if s == "" || s == "null" || s == "~" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(time.RFC3339) + `"`), nil
}
