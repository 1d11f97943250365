package assets

import (
	"embed"
	"fmt"
	"io/fs"
)

// builtin holds the component stylesheets and the standalone page template.
//
//go:embed styles/*.css templates/*.html
var builtin embed.FS

// EmbeddedLoader serves the assets compiled into the binary.
type EmbeddedLoader struct {
	fsys fs.FS
}

// NewEmbeddedLoader creates an EmbeddedLoader over the built-in assets.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{fsys: builtin}
}

// LoadStyle returns styles/{name}.css.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return e.load(styleKind, name)
}

// LoadTemplate returns templates/{name}.html.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return e.load(templateKind, name)
}

func (e *EmbeddedLoader) load(kind assetKind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	content, err := fs.ReadFile(e.fsys, kind.file(name))
	if err != nil {
		return "", fmt.Errorf("%w: %q (built-in)", kind.notFound, name)
	}
	return string(content), nil
}

// Names lists the built-in styles, without extension.
func (e *EmbeddedLoader) Names() []string {
	entries, err := fs.ReadDir(e.fsys, styleKind.dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if n := entry.Name(); !entry.IsDir() && len(n) > len(styleKind.ext) {
			names = append(names, n[:len(n)-len(styleKind.ext)])
		}
	}
	return names
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
