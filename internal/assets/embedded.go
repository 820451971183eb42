package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed styles/*.css
var embeddedStyles embed.FS

//go:embed templates
var embeddedTemplates embed.FS

// EmbeddedLoader serves the styles and template sets compiled into the binary.
type EmbeddedLoader struct {
	styles    fs.FS
	templates fs.FS
}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{
		styles:    mustSub(embeddedStyles, "styles"),
		templates: mustSub(embeddedTemplates, "templates"),
	}
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(fmt.Sprintf("assets: embedded directory %q: %v", dir, err))
	}
	return sub
}

// LoadStyle returns the CSS of the named built-in style.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	content, err := fs.ReadFile(e.styles, name+styleExt)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
		}
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(content), nil
}

// LoadTemplateSet returns the named built-in template set.
func (e *EmbeddedLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	return readTemplateSet(name, func(file string) ([]byte, error) {
		return fs.ReadFile(e.templates, path.Join(name, file))
	})
}

// Styles lists the built-in style names, sorted.
func (e *EmbeddedLoader) Styles() []string {
	return listFS(e.styles, false)
}

// TemplateSets lists the built-in template set names, sorted.
func (e *EmbeddedLoader) TemplateSets() []string {
	return listFS(e.templates, true)
}

// listFS returns the asset names in the root of fsys: directories when dirs
// is set, otherwise .css files without their extension.
func listFS(fsys fs.FS, dirs bool) []string {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		switch {
		case dirs && e.IsDir():
			names = append(names, e.Name())
		case !dirs && !e.IsDir() && strings.HasSuffix(e.Name(), styleExt):
			names = append(names, strings.TrimSuffix(e.Name(), styleExt))
		}
	}
	sort.Strings(names)
	return names
}

var (
	_ AssetLoader = (*EmbeddedLoader)(nil)
	_ Lister      = (*EmbeddedLoader)(nil)
)
