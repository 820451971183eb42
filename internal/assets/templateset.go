package assets

import (
	"errors"
	"fmt"
	"io/fs"
)

// TemplateSet holds the HTML templates that paint a slide page.
// Layout wraps the body produced by Cover, Content or End.
type TemplateSet struct {
	Name    string // Identifier (name or directory path)
	Layout  string // Page shell: <head>, styles, logo, page number
	Cover   string
	Content string
	End     string
	Logo    string // Inline SVG markup, optional
}

// Built-in asset names.
const (
	DefaultTemplateSetName = "default"
	DefaultStyleName       = "default"
)

// templateFile names a file of a template set and whether a set may omit it.
type templateFile struct {
	name     string
	optional bool
	assign   func(ts *TemplateSet, content string)
}

// templateFiles lists the files of a template set directory.
var templateFiles = []templateFile{
	{"layout.html", false, func(ts *TemplateSet, c string) { ts.Layout = c }},
	{"cover.html", false, func(ts *TemplateSet, c string) { ts.Cover = c }},
	{"content.html", false, func(ts *TemplateSet, c string) { ts.Content = c }},
	{"end.html", false, func(ts *TemplateSet, c string) { ts.End = c }},
	{"logo.svg", true, func(ts *TemplateSet, c string) { ts.Logo = c }},
}

// readTemplateSet reads a template set directory through readFile.
// It is shared by the embedded and filesystem loaders.
func readTemplateSet(name string, readFile func(file string) ([]byte, error)) (*TemplateSet, error) {
	ts := &TemplateSet{Name: name}
	var missing []string
	found := 0

	for _, f := range templateFiles {
		content, err := readFile(f.name)
		switch {
		case err == nil:
			f.assign(ts, string(content))
			found++
		case errors.Is(err, fs.ErrNotExist):
			if !f.optional {
				missing = append(missing, f.name)
			}
		case errors.Is(err, ErrPathTraversal):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetRead, f.name, err)
		}
	}

	if found == 0 {
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, missing[0])
	}
	return ts, nil
}
