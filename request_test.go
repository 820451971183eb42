package carousel

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestParseRequest(t *testing.T) {
	t.Parallel()

	tooMany := make([]string, 21)
	for i := range tooMany {
		tooMany[i] = `{"type":"nope"}`
	}

	tests := []struct {
		name      string
		body      string
		wantPages int
		wantErr   string
	}{
		{
			name:      "valid",
			body:      `{"pages":[{"type":"cover","title":"T"},{"type":"end","headline":"Go X","highlight":"X"}]}`,
			wantPages: 2,
		},
		{
			name:      "with options",
			body:      `{"pages":[{"type":"cover","title":"T"}],"options":{"width":1080,"height":1350,"deviceScaleFactor":1,"quality":90}}`,
			wantPages: 1,
		},
		{name: "not json", body: `{`, wantErr: "malformed request body"},
		{name: "missing pages", body: `{}`, wantErr: "pages array is required and must not be empty"},
		{name: "empty pages", body: `{"pages":[]}`, wantErr: "pages array is required and must not be empty"},
		{name: "pages not array", body: `{"pages":"x"}`, wantErr: "pages must be an array"},
		{
			name:    "too many checked before slide types",
			body:    fmt.Sprintf(`{"pages":[%s]}`, strings.Join(tooMany, ",")),
			wantErr: "maximum 20 pages allowed, got 21",
		},
		{
			name:    "unknown type has index",
			body:    `{"pages":[{"type":"cover","title":"T"},{"type":"quote"}]}`,
			wantErr: `page 1: unknown slide type "quote"`,
		},
		{
			name:    "bad options",
			body:    `{"pages":[{"type":"cover","title":"T"}],"options":{"quality":101}}`,
			wantErr: "options.quality must be between 0 and 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, err := ParseRequest([]byte(tt.body), 0)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ParseRequest() error = %v, want %q", err, tt.wantErr)
				}
				if !errors.Is(err, ErrInvalidRequest) {
					t.Errorf("ParseRequest() error does not match ErrInvalidRequest")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRequest() error = %v", err)
			}
			if len(req.Slides) != tt.wantPages {
				t.Errorf("pages = %d, want %d", len(req.Slides), tt.wantPages)
			}
		})
	}
}

func TestParseRequest_CustomMax(t *testing.T) {
	t.Parallel()

	body := `{"pages":[{"type":"cover","title":"a"},{"type":"cover","title":"b"},{"type":"cover","title":"c"}]}`
	_, err := ParseRequest([]byte(body), 2)
	if err == nil || err.Error() != "maximum 2 pages allowed, got 3" {
		t.Errorf("ParseRequest() error = %v, want maximum 2 pages message", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    *Options
		wantErr bool
	}{
		{"nil", nil, false},
		{"zero values", &Options{}, false},
		{"full", &Options{Width: 1080, Height: 1350, DeviceScaleFactor: 2, Quality: 80}, false},
		{"max bounds", &Options{Width: MaxDimension, Height: MaxDimension, DeviceScaleFactor: MaxScale, Quality: 100}, false},
		{"negative width", &Options{Width: -1}, true},
		{"huge height", &Options{Height: MaxDimension + 1}, true},
		{"scale too large", &Options{DeviceScaleFactor: 4.5}, true},
		{"negative scale", &Options{DeviceScaleFactor: -1}, true},
		{"quality too high", &Options{Quality: 101}, true},
	}
	for _, tt := range tests {
		err := tt.opts.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestOptionsResolve(t *testing.T) {
	t.Parallel()

	base := DefaultViewport()
	tests := []struct {
		name string
		opts *Options
		want Viewport
	}{
		{"nil keeps base", nil, base},
		{"zero keeps base", &Options{}, base},
		{"overrides", &Options{Width: 800, Height: 600, DeviceScaleFactor: 1}, Viewport{800, 600, 1}},
		{"partial", &Options{Height: 1350}, Viewport{DefaultWidth, 1350, DefaultScale}},
	}
	for _, tt := range tests {
		if got := tt.opts.resolve(base); got != tt.want {
			t.Errorf("%s: resolve() = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

// contentBody builds a request of n content slides, each holding the maximum
// number of paragraphs made of text.
func contentBody(t *testing.T, n int, text string) []byte {
	t.Helper()
	paragraphs := make([]string, MaxParagraphs)
	for i := range paragraphs {
		paragraphs[i] = text
	}
	pages := make([]map[string]any, n)
	for i := range pages {
		pages[i] = map[string]any{"type": "content", "paragraphs": paragraphs}
	}
	body, err := json.Marshal(map[string]any{"pages": pages})
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	return body
}

func TestParseRequest_EncodedSize(t *testing.T) {
	t.Parallel()

	persian := strings.Repeat("س", MaxParagraphLength/2)
	quotes := strings.Repeat(`"`, MaxParagraphLength)

	tests := []struct {
		name     string
		body     []byte
		maxPages int
		wantErr  bool
	}{
		{"persian at default max fits", contentBody(t, DefaultMaxPages, persian), 0, false},
		{"persian over raised max", contentBody(t, 60, persian), 60, true},
		{"escaped quotes", contentBody(t, DefaultMaxPages, quotes), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, err := ParseRequest(tt.body, tt.maxPages)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("ParseRequest() error = %v", err)
				}
				data, _ := EncodeSlides(req.Slides)
				if n := len(RenderURL("http://127.0.0.1:8080", 0, data)); n <= 1<<20 {
					t.Fatalf("render URL is %d bytes, want a case above 1 MiB", n)
				}
				return
			}
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("ParseRequest() error = %v, want ErrInvalidRequest", err)
			}
			if !strings.Contains(err.Error(), "URL-encoded") {
				t.Errorf("ParseRequest() error = %q, want encoded size message", err)
			}
		})
	}
}

func TestOptionsValidate_ZeroMeansDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		opts *Options
		want string
	}{
		{&Options{Width: -1}, "options.width must be between 0 and 4096 (0 = default)"},
		{&Options{Height: MaxDimension + 1}, "options.height must be between 0 and 4096 (0 = default)"},
		{&Options{DeviceScaleFactor: 5}, "options.deviceScaleFactor must be between 0 and 4 (0 = default)"},
	}
	for _, tt := range tests {
		err := tt.opts.Validate()
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("Validate(%+v) error = %v, want %q", *tt.opts, err, tt.want)
		}
	}
}
