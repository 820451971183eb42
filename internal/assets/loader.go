package assets

import (
	"fmt"
	"strings"
)

const styleExt = ".css"

// AssetLoader loads slide styles and template sets.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadStyle(name string) (string, error)

	// LoadTemplateSet loads the layout and slide templates of a set.
	// Returns ErrTemplateSetNotFound if no template of the set exists.
	// Returns ErrIncompleteTemplateSet if a required template is missing.
	LoadTemplateSet(name string) (*TemplateSet, error)
}

// Lister is implemented by loaders that can enumerate their assets.
// Used for hints and the doctor report.
type Lister interface {
	Styles() []string
	TemplateSets() []string
}

// ValidateAssetName rejects names that are empty or could address a file
// outside the asset directory: path separators and dots are not allowed.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, `/\.`) {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
