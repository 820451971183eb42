package assets

// Theme is everything the page composer needs from the asset layer.
type Theme struct {
	StyleName string
	CSS       string
	Templates *TemplateSet
	// Custom is true when the style or the template set came from a theme
	// directory rather than the binary.
	Custom bool
}

var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a built-in CSS style by name.
// Returns ErrStyleNotFound if the style does not exist.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplateSet loads a built-in template set by name.
// Returns ErrTemplateSetNotFound if the set does not exist.
func LoadTemplateSet(name string) (*TemplateSet, error) {
	return defaultLoader.LoadTemplateSet(name)
}

// Styles lists the built-in style names.
func Styles() []string { return defaultLoader.Styles() }
