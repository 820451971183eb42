package assets

import "errors"

// Sentinel errors for theme loading. The *NotFound errors are the only ones
// AssetResolver falls back on.
var (
	ErrStyleNotFound         = errors.New("style not found")
	ErrTemplateSetNotFound   = errors.New("template set not found")
	ErrIncompleteTemplateSet = errors.New("template set missing required template")
	ErrInvalidAssetName      = errors.New("invalid asset name")
	ErrInvalidBasePath       = errors.New("invalid theme directory")
	ErrAssetRead             = errors.New("failed to read asset")
	ErrPathTraversal         = errors.New("asset path escapes theme directory")
)
