package pipeline

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// fallbackSlug is used when a heading has no letters or digits.
const fallbackSlug = "section"

// slugIDs generates GitHub-style heading IDs. Unlike Goldmark's default, it
// keeps non-ASCII letters so Korean or accented headings get readable IDs.
// Duplicates get "-1", "-2" suffixes in document order.
type slugIDs struct {
	seen  map[string]bool
	lower cases.Caser
}

var _ parser.IDs = (*slugIDs)(nil)

func newSlugIDs() *slugIDs {
	return &slugIDs{
		seen:  map[string]bool{},
		lower: cases.Lower(language.Und),
	}
}

func (s *slugIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	base := Slugify(s.lower.String(norm.NFC.String(string(value))))
	if base == "" {
		base = fallbackSlug
	}
	id := base
	for i := 1; s.seen[id]; i++ {
		id = base + "-" + strconv.Itoa(i)
	}
	s.seen[id] = true
	return []byte(id)
}

func (s *slugIDs) Put(value []byte) {
	s.seen[string(value)] = true
}

// Slugify keeps letters, digits, marks, hyphens and underscores, turns each
// space into a hyphen and drops everything else. Input is not lowercased.
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r), r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	return b.String()
}
