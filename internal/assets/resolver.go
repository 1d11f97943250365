package assets

// AssetLoader loads stylesheets and page templates by bare name.
// Implementations return ErrStyleNotFound or ErrTemplateNotFound for missing
// assets and ErrInvalidAssetName for names ValidateAssetName rejects.
type AssetLoader interface {
	LoadStyle(name string) (string, error)
	LoadTemplate(name string) (string, error)
}

// AssetResolver asks an ordered list of loaders for an asset and returns the
// first hit. A loader that fails with anything but not-found stops the search,
// so a broken override directory is reported instead of silently skipped.
type AssetResolver struct {
	loaders []AssetLoader
}

// NewAssetResolver returns a resolver over the built-in assets, preceded by
// a FilesystemLoader on dir when dir is not empty.
func NewAssetResolver(dir string) (*AssetResolver, error) {
	if dir == "" {
		return &AssetResolver{loaders: []AssetLoader{NewEmbeddedLoader()}}, nil
	}
	override, err := NewFilesystemLoader(dir)
	if err != nil {
		return nil, err
	}
	return &AssetResolver{loaders: []AssetLoader{override, NewEmbeddedLoader()}}, nil
}

func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadStyle(name) })
}

func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadTemplate(name) })
}

func (r *AssetResolver) first(load func(AssetLoader) (string, error)) (string, error) {
	var lastErr error
	for _, l := range r.loaders {
		content, err := load(l)
		if err == nil {
			return content, nil
		}
		if !isNotFound(err) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

// HasCustomLoader reports whether an override directory is in the chain.
func (r *AssetResolver) HasCustomLoader() bool {
	return len(r.loaders) > 1
}

var _ AssetLoader = (*AssetResolver)(nil)
