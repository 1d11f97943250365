package assets

import "errors"

var (
	// ErrStyleNotFound means no loader in the chain has a stylesheet by that name.
	ErrStyleNotFound = errors.New("stylesheet not found")

	// ErrTemplateNotFound means no loader in the chain has a page template by that name.
	ErrTemplateNotFound = errors.New("page template not found")

	// ErrInvalidAssetName is returned before any lookup when a name fails
	// ValidateAssetName.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath means a filesystem loader was pointed at something
	// other than a readable directory.
	ErrInvalidBasePath = errors.New("asset directory unusable")

	// ErrAssetRead wraps I/O failures other than a missing file.
	ErrAssetRead = errors.New("cannot read asset")

	// ErrPathTraversal means a resolved asset path (symlinks included) left
	// the loader's directory.
	ErrPathTraversal = errors.New("asset path escapes directory")

	ErrPageRender = errors.New("standalone page rendering failed")
)
