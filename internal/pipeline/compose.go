package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	carousel "github.com/alnah/go-carousel"
	"github.com/alnah/go-carousel/internal/assets"
)

// Sentinel errors for page composition.
var (
	ErrPageIndex      = errors.New("invalid page index")
	ErrTemplateParse  = errors.New("slide template parsing failed")
	ErrTemplateRender = errors.New("slide template rendering failed")
)

// Text directions accepted by Theme.Direction.
const (
	DirectionAuto = "auto"
	DirectionLTR  = "ltr"
	DirectionRTL  = "rtl"
)

// Theme holds the brand settings shared by every slide.
type Theme struct {
	Brand      string // Label shown in the footer and on the call-to-action button
	ButtonText string // Used when an end slide has no button text
	Direction  string // "auto", "ltr" or "rtl"
	Lang       string
	CodeStyle  string // chroma style name for fenced code
}

// PageData is passed to the layout template.
type PageData struct {
	Lang      string
	Direction string
	Title     string
	Kind      string
	Index     int
	Number    int
	Total     int
	CSS       template.CSS
	Body      template.HTML
	Logo      template.HTML
	Brand     string
}

// CoverData is passed to the cover template.
type CoverData struct {
	Title    string
	Subtitle string
}

// ContentData is passed to the content template.
type ContentData struct {
	Title      string
	Paragraphs []template.HTML
}

// EndData is passed to the end template. The headline is pre-split so the
// template can wrap Highlight in its own element.
type EndData struct {
	Before     string
	Highlight  string
	After      string
	ButtonText string
	ButtonURL  string
	Brand      string
}

// Composer paints single slides into standalone HTML pages.
// It is safe for concurrent use.
type Composer struct {
	layout  *template.Template
	cover   *template.Template
	content *template.Template
	end     *template.Template
	css     template.CSS
	logo    template.HTML
	theme   Theme
	md      *MarkdownRenderer
}

// NewComposer parses the template set. css is the stylesheet inlined into
// every page.
func NewComposer(ts *assets.TemplateSet, css string, theme Theme) (*Composer, error) {
	if ts == nil {
		return nil, fmt.Errorf("%w: no template set", ErrTemplateParse)
	}

	parse := func(name, src string) (*template.Template, error) {
		t, err := template.New(name).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTemplateParse, name, err)
		}
		return t, nil
	}

	// Styles and logo come from trusted theme assets, not from requests.
	c := &Composer{
		css:   template.CSS(sanitizeCSS(css)), // #nosec G203
		logo:  template.HTML(ts.Logo),         // #nosec G203
		theme: normalizeTheme(theme),
	}
	c.md = NewMarkdownRenderer(c.theme.CodeStyle)

	var err error
	if c.layout, err = parse("layout", ts.Layout); err != nil {
		return nil, err
	}
	if c.cover, err = parse("cover", ts.Cover); err != nil {
		return nil, err
	}
	if c.content, err = parse("content", ts.Content); err != nil {
		return nil, err
	}
	if c.end, err = parse("end", ts.End); err != nil {
		return nil, err
	}
	return c, nil
}

func normalizeTheme(t Theme) Theme {
	switch strings.ToLower(t.Direction) {
	case DirectionLTR, DirectionRTL:
		t.Direction = strings.ToLower(t.Direction)
	default:
		t.Direction = DirectionAuto
	}
	if t.Lang == "" {
		t.Lang = "en"
	}
	return t
}

// Compose renders the slide at index as a complete HTML document.
func (c *Composer) Compose(ctx context.Context, slides []carousel.Slide, index int) ([]byte, error) {
	if index < 0 || index >= len(slides) {
		return nil, fmt.Errorf("%w: %d (have %d pages)", ErrPageIndex, index, len(slides))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slide := slides[index]
	body, title, err := c.renderBody(ctx, slide)
	if err != nil {
		return nil, err
	}

	page := PageData{
		Lang:      c.theme.Lang,
		Direction: c.theme.Direction,
		Title:     title,
		Kind:      string(slide.Kind()),
		Index:     index,
		Number:    index + 1,
		Total:     len(slides),
		CSS:       c.css,
		Body:      body,
		Logo:      c.logo,
		Brand:     c.theme.Brand,
	}

	var buf bytes.Buffer
	if err := c.layout.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("%w: layout: %v", ErrTemplateRender, err)
	}
	return buf.Bytes(), nil
}

// renderBody executes the template for the slide's kind and returns its HTML
// and a plain-text title for the document.
func (c *Composer) renderBody(ctx context.Context, slide carousel.Slide) (template.HTML, string, error) {
	var (
		tmpl  *template.Template
		data  any
		title string
	)

	switch s := slide.(type) {
	case carousel.CoverSlide:
		tmpl, data, title = c.cover, CoverData{Title: s.Title, Subtitle: s.Subtitle}, s.Title
	case carousel.ContentSlide:
		paragraphs := make([]template.HTML, len(s.Paragraphs))
		for i, p := range s.Paragraphs {
			h, err := c.md.Render(ctx, p)
			if err != nil {
				return "", "", err
			}
			paragraphs[i] = h
		}
		tmpl, data, title = c.content, ContentData{Title: s.Title, Paragraphs: paragraphs}, s.Title
	case carousel.EndSlide:
		before, match, after := SplitHighlight(s.Headline, s.Highlight)
		buttonText := s.ButtonText
		if buttonText == "" {
			buttonText = c.theme.ButtonText
		}
		tmpl, title = c.end, s.Headline
		data = EndData{
			Before:     before,
			Highlight:  match,
			After:      after,
			ButtonText: buttonText,
			ButtonURL:  s.ButtonURL,
			Brand:      c.theme.Brand,
		}
	default:
		return "", "", fmt.Errorf("%w: unsupported slide %T", ErrTemplateRender, slide)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", ErrTemplateRender, tmpl.Name(), err)
	}
	// Output of html/template is already escaped.
	return template.HTML(buf.String()), title, nil // #nosec G203
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
