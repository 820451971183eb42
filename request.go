package carousel

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Rendering defaults.
const (
	DefaultWidth        = 1080
	DefaultHeight       = 1080
	DefaultScale        = 2.0
	DefaultMaxPages     = 20
	DefaultNavTimeout   = 30 * time.Second
	DefaultFontFallback = 2 * time.Second

	// MaxDimension bounds viewport width and height in CSS pixels.
	MaxDimension = 4096
	// MaxScale bounds the device scale factor.
	MaxScale = 4.0

	// MaxEncodedDataBytes bounds the URL-escaped slide list carried in every
	// render URL. Chrome refuses URLs over 2 MiB.
	MaxEncodedDataBytes = 1536 << 10
)

// Options tunes the screenshot. Zero values fall back to the renderer defaults.
type Options struct {
	Width             int     `json:"width,omitempty"`
	Height            int     `json:"height,omitempty"`
	DeviceScaleFactor float64 `json:"deviceScaleFactor,omitempty"`
	// Quality is accepted for compatibility with JPEG-producing clients.
	// PNG output is lossless and ignores it.
	Quality int `json:"quality,omitempty"`
}

// Validate checks option bounds. Returns nil if o is nil.
func (o *Options) Validate() error {
	if o == nil {
		return nil
	}
	if o.Width < 0 || o.Width > MaxDimension {
		return batchError("options.width must be between 0 and %d (0 = default), got %d", MaxDimension, o.Width)
	}
	if o.Height < 0 || o.Height > MaxDimension {
		return batchError("options.height must be between 0 and %d (0 = default), got %d", MaxDimension, o.Height)
	}
	if o.DeviceScaleFactor < 0 || o.DeviceScaleFactor > MaxScale {
		return batchError("options.deviceScaleFactor must be between 0 and %.0f (0 = default), got %g", MaxScale, o.DeviceScaleFactor)
	}
	if o.Quality < 0 || o.Quality > 100 {
		return batchError("options.quality must be between 0 and 100, got %d", o.Quality)
	}
	return nil
}

// Viewport is the resolved screenshot geometry.
type Viewport struct {
	Width  int
	Height int
	Scale  float64
}

// DefaultViewport returns the 1080×1080 @2x slide viewport.
func DefaultViewport() Viewport {
	return Viewport{Width: DefaultWidth, Height: DefaultHeight, Scale: DefaultScale}
}

// resolve overlays non-zero option values on base.
func (o *Options) resolve(base Viewport) Viewport {
	if o == nil {
		return base
	}
	if o.Width > 0 {
		base.Width = o.Width
	}
	if o.Height > 0 {
		base.Height = o.Height
	}
	if o.DeviceScaleFactor > 0 {
		base.Scale = o.DeviceScaleFactor
	}
	return base
}

// Request is an ordered list of slides to render together.
type Request struct {
	Slides  Slides   `json:"pages"`
	Options *Options `json:"options,omitempty"`
}

// Validate rejects empty, oversized or malformed requests.
// maxPages <= 0 means DefaultMaxPages.
func (r *Request) Validate(maxPages int) error {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if len(r.Slides) == 0 {
		return batchError("pages array is required and must not be empty")
	}
	if len(r.Slides) > maxPages {
		return batchError("maximum %d pages allowed, got %d", maxPages, len(r.Slides))
	}
	for i, s := range r.Slides {
		if s == nil {
			return slideError(i, "missing slide")
		}
		if err := s.validate(i); err != nil {
			return err
		}
	}
	if err := r.Options.Validate(); err != nil {
		return err
	}
	return validateEncodedSize(r.Slides)
}

// validateEncodedSize rejects slide lists whose render URL would be too long
// for the browser or the render target. Non-Latin text triples in size once
// escaped.
func validateEncodedSize(slides Slides) error {
	data, err := EncodeSlides(slides)
	if err != nil {
		return batchError("encoding pages: %v", err)
	}
	if n := len(url.QueryEscape(string(data))); n > MaxEncodedDataBytes {
		return batchError("pages too large once URL-encoded: %d bytes (max %d)", n, MaxEncodedDataBytes)
	}
	return nil
}

// ParseRequest decodes and validates a JSON request body.
// The page count is checked before individual slides are decoded, so an
// oversized batch is reported as such even when it also holds bad slides.
func ParseRequest(body []byte, maxPages int) (*Request, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var envelope struct {
		Pages   []json.RawMessage `json:"pages"`
		Options *Options          `json:"options"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "pages" {
			return nil, batchError("pages must be an array")
		}
		return nil, batchError("malformed request body: %v", err)
	}
	if len(envelope.Pages) == 0 {
		return nil, batchError("pages array is required and must not be empty")
	}
	if len(envelope.Pages) > maxPages {
		return nil, batchError("maximum %d pages allowed, got %d", maxPages, len(envelope.Pages))
	}

	req := &Request{Slides: make(Slides, len(envelope.Pages)), Options: envelope.Options}
	for i, raw := range envelope.Pages {
		slide, err := DecodeSlide(i, raw)
		if err != nil {
			return nil, err
		}
		req.Slides[i] = slide
	}
	if err := req.Validate(maxPages); err != nil {
		return nil, err
	}
	return req, nil
}

// EncodeSlides returns the JSON array embedded in render URLs.
func EncodeSlides(slides []Slide) ([]byte, error) {
	data, err := json.Marshal(slides)
	if err != nil {
		return nil, fmt.Errorf("encoding slides: %w", err)
	}
	return data, nil
}
