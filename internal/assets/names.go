package assets

import (
	"errors"
	"fmt"
)

// DefaultStyleName is the name of the built-in component stylesheet.
const DefaultStyleName = "default"

// DefaultTemplateName is the name of the built-in standalone page template.
const DefaultTemplateName = "page"

// maxAssetNameLength bounds style and template names.
const maxAssetNameLength = 64

// assetKind locates one kind of asset under a base directory.
type assetKind struct {
	dir      string
	ext      string
	notFound error
}

var (
	styleKind    = assetKind{dir: "styles", ext: ".css", notFound: ErrStyleNotFound}
	templateKind = assetKind{dir: "templates", ext: ".html", notFound: ErrTemplateNotFound}
)

// file returns the slash-separated path of name relative to a base directory.
func (k assetKind) file(name string) string {
	return k.dir + "/" + name + k.ext
}

// ValidateAssetName accepts ASCII letters, digits, hyphens and underscores
// only, so a name can never carry a separator, a dot or a drive letter.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > maxAssetNameLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidAssetName, maxAssetNameLength)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
		}
	}
	return nil
}

// isNotFound reports whether err means the asset does not exist, which is
// the only failure a custom loader may fall back from.
func isNotFound(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrTemplateNotFound)
}
