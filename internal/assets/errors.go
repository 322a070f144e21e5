package assets

import "errors"

var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrScriptNotFound   = errors.New("script not found")

	// ErrInvalidAssetName is returned for names with separators or dots.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath is returned when an asset directory is missing or
	// unreadable.
	ErrInvalidBasePath = errors.New("invalid asset directory")

	ErrAssetRead     = errors.New("reading asset")
	ErrPathTraversal = errors.New("asset path escapes its directory")
)
