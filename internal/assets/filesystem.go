package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FilesystemLoader reads a theme directory laid out like the embedded
// assets. Every read is confined to the directory, symlinks included.
type FilesystemLoader struct {
	root string // absolute, symlinks resolved
}

// NewFilesystemLoader checks that dir is a readable directory.
// Failures are reported as ErrInvalidBasePath.
func NewFilesystemLoader(dir string) (*FilesystemLoader, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if real, err := filepath.EvalSymlinks(root); err == nil {
		root = real
	}

	info, err := os.Stat(root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, root)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, root)
	}
	if _, err := os.ReadDir(root); err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}
	return &FilesystemLoader{root: root}, nil
}

// LoadStyle reads {dir}/styles/{name}.css.
func (f *FilesystemLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	content, err := f.read("styles", name+styleExt)
	switch {
	case err == nil:
		return string(content), nil
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	case errors.Is(err, ErrPathTraversal):
		return "", err
	default:
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
}

// LoadTemplateSet reads {dir}/templates/{name}/. See TemplateSet for the
// file names.
func (f *FilesystemLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	return readTemplateSet(name, func(file string) ([]byte, error) {
		return f.read("templates", name, file)
	})
}

// Styles lists the .css files under {dir}/styles.
func (f *FilesystemLoader) Styles() []string {
	return f.list("styles", false)
}

// TemplateSets lists the directories under {dir}/templates.
func (f *FilesystemLoader) TemplateSets() []string {
	return f.list("templates", true)
}

// read returns the file at the joined path after checking it stays in root.
func (f *FilesystemLoader) read(elem ...string) ([]byte, error) {
	p, err := f.contained(filepath.Join(append([]string{f.root}, elem...)...))
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p) // #nosec G304 -- contained in root
}

func (f *FilesystemLoader) list(dir string, dirs bool) []string {
	p, err := f.contained(filepath.Join(f.root, dir))
	if err != nil {
		return nil
	}
	entries, err := os.ReadDir(p)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		switch {
		case dirs && e.IsDir():
			names = append(names, name)
		case !dirs && !e.IsDir() && strings.HasSuffix(name, styleExt):
			names = append(names, strings.TrimSuffix(name, styleExt))
		}
	}
	sort.Strings(names)
	return names
}

// contained resolves symlinks in p and returns ErrPathTraversal if the
// result is outside root. A path that does not exist yet is checked as is.
func (f *FilesystemLoader) contained(p string) (string, error) {
	if real, err := filepath.EvalSymlinks(p); err == nil {
		p = real
	}
	// The separator keeps /themes/a from matching /themes/ab.
	if p != f.root && !strings.HasPrefix(p, f.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, p)
	}
	return p, nil
}

var (
	_ AssetLoader = (*FilesystemLoader)(nil)
	_ Lister      = (*FilesystemLoader)(nil)
)
