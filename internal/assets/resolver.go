package assets

import (
	"errors"
	"sort"
)

// AssetResolver layers an optional theme directory over the embedded assets.
// A name the directory does not provide is looked up in the binary; any
// other error from the directory is returned as is.
type AssetResolver struct {
	custom   *FilesystemLoader // nil without a theme directory
	embedded *EmbeddedLoader
}

// NewAssetResolver creates an AssetResolver. An empty customBasePath means
// embedded assets only; a non-empty one must be a readable directory.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	r := &AssetResolver{embedded: NewEmbeddedLoader()}
	if customBasePath == "" {
		return r, nil
	}
	fsLoader, err := NewFilesystemLoader(customBasePath)
	if err != nil {
		return nil, err
	}
	r.custom = fsLoader
	return r, nil
}

func (r *AssetResolver) LoadStyle(name string) (string, error) {
	css, _, err := resolve(r, func(l AssetLoader) (string, error) { return l.LoadStyle(name) })
	return css, err
}

func (r *AssetResolver) LoadTemplateSet(name string) (*TemplateSet, error) {
	ts, _, err := resolve(r, func(l AssetLoader) (*TemplateSet, error) { return l.LoadTemplateSet(name) })
	return ts, err
}

// LoadTheme loads a style and a template set together.
func (r *AssetResolver) LoadTheme(style, templateSet string) (*Theme, error) {
	css, customCSS, err := resolve(r, func(l AssetLoader) (string, error) { return l.LoadStyle(style) })
	if err != nil {
		return nil, err
	}
	ts, customTS, err := resolve(r, func(l AssetLoader) (*TemplateSet, error) { return l.LoadTemplateSet(templateSet) })
	if err != nil {
		return nil, err
	}
	return &Theme{StyleName: style, CSS: css, Templates: ts, Custom: customCSS || customTS}, nil
}

// resolve tries the theme directory first and reports whether it served the
// asset.
func resolve[T any](r *AssetResolver, load func(AssetLoader) (T, error)) (T, bool, error) {
	if r.custom != nil {
		v, err := load(r.custom)
		if err == nil {
			return v, true, nil
		}
		if !errors.Is(err, ErrStyleNotFound) && !errors.Is(err, ErrTemplateSetNotFound) {
			return v, false, err
		}
	}
	v, err := load(r.embedded)
	return v, false, err
}

// Styles lists every style name reachable through the resolver.
func (r *AssetResolver) Styles() []string {
	if r.custom == nil {
		return r.embedded.Styles()
	}
	return union(r.custom.Styles(), r.embedded.Styles())
}

// TemplateSets lists every template set name reachable through the resolver.
func (r *AssetResolver) TemplateSets() []string {
	if r.custom == nil {
		return r.embedded.TemplateSets()
	}
	return union(r.custom.TemplateSets(), r.embedded.TemplateSets())
}

// HasCustomLoader reports whether a theme directory is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(a, b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

var (
	_ AssetLoader = (*AssetResolver)(nil)
	_ Lister      = (*AssetResolver)(nil)
)
