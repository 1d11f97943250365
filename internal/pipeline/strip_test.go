package pipeline

// Notes:
// - Characterization tests pin rule order with literal inputs
// - Property coverage lives in strip_property_test.go (build tag: property)

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestStripMarkdown - One case per rule, then combined documents
// ---------------------------------------------------------------------------

func TestStripMarkdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "frontmatter", input: "---\ntitle: Hi\n---\nBody text", want: "Body text"},
		{name: "fenced code", input: "Before\n```go\nfmt.Println()\n```\nAfter", want: "Before After"},
		{name: "tilde fence", input: "A\n~~~\ncode\n~~~\nB", want: "A B"},
		{name: "unclosed fence", input: "A\n```\ncode forever", want: "A"},
		{name: "inline code", input: "Use `go test` often", want: "Use often"},
		{name: "html tags", input: "<div class=\"x\">Hello <b>World</b></div>", want: "Hello World"},
		{name: "nested tag soup", input: "a <<b>script>alert(1)<</b>/script> b", want: "a alert(1) b"},
		{name: "image", input: "See ![diagram](img/d.png) here", want: "See here"},
		{name: "obsidian image", input: "See ![[img/d.png|Caption]] here", want: "See here"},
		{name: "link", input: "Read [the docs](https://go.dev) now", want: "Read the docs now"},
		{name: "heading", input: "# Title\n## Sub", want: "Title Sub"},
		{name: "bullets", input: "- one\n* two\n+ three", want: "one two three"},
		{name: "ordered", input: "1. one\n2. two\n10) ten", want: "one two ten"},
		{name: "bold and italic", input: "**bold** and *it* and __b2__ and _i2_", want: "bold and it and b2 and i2"},
		{name: "snake_case kept", input: "call snake_case_name", want: "call snake_case_name"},
		{name: "whitespace collapsed", input: "  a \n\n\t b  ", want: "a b"},
		{
			name:  "code removed before tags",
			input: "```html\n<p>code</p>\n```\n<p>prose</p>",
			want:  "prose",
		},
		{
			name:  "images removed before links",
			input: "[![badge](b.svg)](https://ci)",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := StripMarkdown(tt.input); got != tt.want {
				t.Errorf("StripMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExcerpt
// ---------------------------------------------------------------------------

func TestExcerpt(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 250)

	tests := []struct {
		name      string
		input     string
		maxLength int
		want      string
	}{
		{name: "short text untouched", input: "# Hello\nworld", maxLength: 200, want: "Hello world"},
		{name: "exact length untouched", input: "abcde", maxLength: 5, want: "abcde"},
		{name: "truncated with ellipsis", input: "abcdef", maxLength: 5, want: "abcde..."},
		{name: "default length", input: long, maxLength: DefaultExcerptLength, want: long[:200] + "..."},
		{name: "trailing space trimmed before ellipsis", input: "abcd efgh", maxLength: 5, want: "abcd..."},
		{name: "zero length", input: "abc", maxLength: 0, want: "..."},
		{name: "negative length", input: "abc", maxLength: -4, want: "..."},
		{name: "empty input", input: "", maxLength: 0, want: ""},
		{name: "multibyte counted as characters", input: "가나다라마바", maxLength: 3, want: "가나다..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Excerpt(tt.input, tt.maxLength); got != tt.want {
				t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.input, tt.maxLength, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestReadingTime
// ---------------------------------------------------------------------------

func TestReadingTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "empty is one minute", input: "", want: 1},
		{name: "markup only is one minute", input: "```\ncode\n```", want: 1},
		{name: "exactly 500", input: strings.Repeat("a", 500), want: 1},
		{name: "501 rounds up", input: strings.Repeat("a", 501), want: 2},
		{name: "1000", input: strings.Repeat("a", 1000), want: 2},
		{name: "1001", input: strings.Repeat("a", 1001), want: 3},
		{name: "markup not counted", input: "**" + strings.Repeat("a", 500) + "**", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ReadingTime(tt.input); got != tt.want {
				t.Errorf("ReadingTime() = %d, want %d", got, tt.want)
			}
		})
	}
}
