package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrMarkdown indicates a paragraph could not be converted.
var ErrMarkdown = errors.New("markdown conversion failed")

// Highlight placeholders use Unicode Private Use Area characters. They pass
// through goldmark unchanged and become <mark> tags afterwards, so raw HTML
// never has to be enabled.
const (
	MarkStartPlaceholder = "\uE000"
	MarkEndPlaceholder   = "\uE001"
)

var (
	crlfOrCR         = regexp.MustCompile(`\r\n?`)
	highlightPattern = regexp.MustCompile(`==(.+?)==`)
)

// DefaultCodeStyle is the chroma style for fenced code in paragraphs.
const DefaultCodeStyle = "dracula"

// MarkdownRenderer converts slide paragraphs from Markdown to safe HTML.
type MarkdownRenderer struct {
	md goldmark.Markdown
}

// NewMarkdownRenderer creates a MarkdownRenderer with GFM and inline-styled
// code highlighting. Inline styles keep the slide free of extra stylesheets.
func NewMarkdownRenderer(codeStyle string) *MarkdownRenderer {
	if codeStyle == "" {
		codeStyle = DefaultCodeStyle
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(codeStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false),
					chromahtml.TabWidth(2),
				),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			// WithUnsafe is not set: raw HTML in slide text is dropped.
		),
	)
	return &MarkdownRenderer{md: md}
}

// Render converts one paragraph. Goldmark has no context support, so the
// conversion runs in a goroutine and ctx only bounds the wait.
func (r *MarkdownRenderer) Render(ctx context.Context, paragraph string) (template.HTML, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(PreprocessMarkdown(paragraph)), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrMarkdown, err)}
			return
		}
		done <- result{html: ConvertMarkPlaceholders(strings.TrimSpace(buf.String()))}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		// Goldmark escaped all user input; only <mark> was added after it.
		return template.HTML(res.html), res.err // #nosec G203
	}
}

// PreprocessMarkdown normalizes line endings and turns ==text== into
// placeholder markers.
func PreprocessMarkdown(content string) string {
	content = crlfOrCR.ReplaceAllString(content, "\n")
	return highlightPattern.ReplaceAllString(content, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
}

// ConvertMarkPlaceholders converts placeholder markers to <mark> tags.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}
