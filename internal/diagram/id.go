package diagram

import (
	"strings"

	"github.com/google/uuid"
)

// idPrefix keeps ids valid as element ids and CSS selectors, which cannot
// start with a digit.
const idPrefix = "mermaid-"

// NewID returns a unique instance id.
func NewID() string {
	return SanitizeID(uuid.NewString())
}

// SanitizeID removes characters that are invalid in an element id used as a
// CSS selector and adds the mermaid prefix.
func SanitizeID(raw string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return -1
	}, raw)
	return idPrefix + clean
}
