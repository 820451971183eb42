package carousel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SlideKind identifies one of the predefined slide layouts.
type SlideKind string

// Known slide layouts.
const (
	KindCover   SlideKind = "cover"
	KindContent SlideKind = "content"
	KindEnd     SlideKind = "end"
)

// Field length limits, in bytes.
const (
	MaxTitleLength     = 200
	MaxParagraphLength = 2000
	MaxParagraphs      = 12
	MaxButtonLength    = 100
	MaxURLLength       = 2048
)

// Slide is one of CoverSlide, ContentSlide or EndSlide.
// The set is closed: the unexported method keeps other packages from adding cases.
type Slide interface {
	Kind() SlideKind
	validate(index int) error
}

// CoverSlide opens a carousel with a large title.
type CoverSlide struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

// ContentSlide carries body paragraphs. Paragraphs accept inline markdown.
type ContentSlide struct {
	Title      string   `json:"title,omitempty"`
	Paragraphs []string `json:"paragraphs"`
}

// EndSlide closes a carousel with a call to action.
// Highlight, when found in Headline, is rendered in an accent color.
type EndSlide struct {
	Headline   string `json:"headline"`
	Highlight  string `json:"highlight,omitempty"`
	ButtonText string `json:"buttonText,omitempty"`
	ButtonURL  string `json:"buttonUrl,omitempty"`
}

// Compile-time interface checks.
var (
	_ Slide = CoverSlide{}
	_ Slide = ContentSlide{}
	_ Slide = EndSlide{}
)

func (CoverSlide) Kind() SlideKind   { return KindCover }
func (ContentSlide) Kind() SlideKind { return KindContent }
func (EndSlide) Kind() SlideKind     { return KindEnd }

func (s CoverSlide) validate(index int) error {
	if strings.TrimSpace(s.Title) == "" {
		return slideError(index, "cover slide requires a title")
	}
	if err := checkLength(index, "title", s.Title, MaxTitleLength); err != nil {
		return err
	}
	return checkLength(index, "subtitle", s.Subtitle, MaxTitleLength)
}

func (s ContentSlide) validate(index int) error {
	if len(s.Paragraphs) == 0 {
		return slideError(index, "content slide requires at least one paragraph")
	}
	if len(s.Paragraphs) > MaxParagraphs {
		return slideError(index, "content slide has %d paragraphs (max %d)", len(s.Paragraphs), MaxParagraphs)
	}
	if err := checkLength(index, "title", s.Title, MaxTitleLength); err != nil {
		return err
	}
	for i, p := range s.Paragraphs {
		if err := checkLength(index, fmt.Sprintf("paragraphs[%d]", i), p, MaxParagraphLength); err != nil {
			return err
		}
	}
	return nil
}

func (s EndSlide) validate(index int) error {
	if strings.TrimSpace(s.Headline) == "" {
		return slideError(index, "end slide requires a headline")
	}
	if err := checkLength(index, "headline", s.Headline, MaxTitleLength); err != nil {
		return err
	}
	if err := checkLength(index, "highlight", s.Highlight, MaxTitleLength); err != nil {
		return err
	}
	if err := checkLength(index, "buttonText", s.ButtonText, MaxButtonLength); err != nil {
		return err
	}
	return checkLength(index, "buttonUrl", s.ButtonURL, MaxURLLength)
}

func checkLength(index int, field, value string, limit int) error {
	if len(value) > limit {
		return slideError(index, "%s exceeds maximum length (%d chars, max %d)", field, len(value), limit)
	}
	return nil
}

// MarshalJSON writes the slide with its "type" discriminator.
func (s CoverSlide) MarshalJSON() ([]byte, error) {
	type alias CoverSlide
	return marshalTagged(KindCover, alias(s))
}

// MarshalJSON writes the slide with its "type" discriminator.
func (s ContentSlide) MarshalJSON() ([]byte, error) {
	type alias ContentSlide
	return marshalTagged(KindContent, alias(s))
}

// MarshalJSON writes the slide with its "type" discriminator.
func (s EndSlide) MarshalJSON() ([]byte, error) {
	type alias EndSlide
	return marshalTagged(KindEnd, alias(s))
}

// marshalTagged prepends "type" to the object encoding of v.
func marshalTagged(kind SlideKind, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	tag, _ := json.Marshal(string(kind))
	buf.Write(tag)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

// DecodeSlide decodes one tagged slide. index is only used in error messages.
func DecodeSlide(index int, raw json.RawMessage) (Slide, error) {
	var head struct {
		Type SlideKind `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, slideError(index, "malformed slide: %v", err)
	}

	var (
		slide Slide
		err   error
	)
	switch head.Type {
	case KindCover:
		var s CoverSlide
		err = json.Unmarshal(raw, &s)
		slide = s
	case KindContent:
		var s ContentSlide
		err = json.Unmarshal(raw, &s)
		slide = s
	case KindEnd:
		var s EndSlide
		err = json.Unmarshal(raw, &s)
		slide = s
	case "":
		return nil, slideError(index, "missing slide type")
	default:
		return nil, slideError(index, "unknown slide type %q (must be cover, content, or end)", head.Type)
	}
	if err != nil {
		return nil, slideError(index, "malformed %s slide: %v", head.Type, err)
	}
	return slide, nil
}

// Slides is an ordered slide list with a tagged JSON encoding.
type Slides []Slide

// UnmarshalJSON decodes a JSON array of tagged slides.
func (s *Slides) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return batchError("pages must be an array: %v", err)
	}
	out := make(Slides, len(raw))
	for i, r := range raw {
		slide, err := DecodeSlide(i, r)
		if err != nil {
			return err
		}
		out[i] = slide
	}
	*s = out
	return nil
}
