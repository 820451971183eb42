package carousel

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestDecodeSlide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    Slide
		wantErr string
	}{
		{
			name: "cover",
			raw:  `{"type":"cover","title":"T","subtitle":"S"}`,
			want: CoverSlide{Title: "T", Subtitle: "S"},
		},
		{
			name: "content",
			raw:  `{"type":"content","paragraphs":["a","b"]}`,
			want: ContentSlide{Paragraphs: []string{"a", "b"}},
		},
		{
			name: "end",
			raw:  `{"type":"end","headline":"Go X","highlight":"X","buttonText":"Join","buttonUrl":"https://x.test"}`,
			want: EndSlide{Headline: "Go X", Highlight: "X", ButtonText: "Join", ButtonURL: "https://x.test"},
		},
		{
			name:    "unknown type",
			raw:     `{"type":"quote","text":"hi"}`,
			wantErr: `page 3: unknown slide type "quote" (must be cover, content, or end)`,
		},
		{
			name:    "missing type",
			raw:     `{"title":"T"}`,
			wantErr: "page 3: missing slide type",
		},
		{
			name:    "not an object",
			raw:     `"cover"`,
			wantErr: "page 3: malformed slide",
		},
		{
			name:    "wrong field type",
			raw:     `{"type":"content","paragraphs":"one"}`,
			wantErr: "page 3: malformed content slide",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodeSlide(3, json.RawMessage(tt.raw))
			if tt.wantErr != "" {
				if err == nil || !strings.HasPrefix(err.Error(), tt.wantErr) {
					t.Fatalf("DecodeSlide() error = %v, want prefix %q", err, tt.wantErr)
				}
				var verr *ValidationError
				if !errors.As(err, &verr) || verr.Index != 3 {
					t.Errorf("DecodeSlide() error = %#v, want *ValidationError at index 3", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeSlide() error = %v", err)
			}
			gotJSON, _ := json.Marshal(got)
			wantJSON, _ := json.Marshal(tt.want)
			if string(gotJSON) != string(wantJSON) {
				t.Errorf("DecodeSlide() = %s, want %s", gotJSON, wantJSON)
			}
		})
	}
}

func TestSlideMarshalJSON_TypeFirst(t *testing.T) {
	t.Parallel()

	tests := []struct {
		slide Slide
		want  string
	}{
		{CoverSlide{Title: "T"}, `{"type":"cover","title":"T"}`},
		{ContentSlide{Paragraphs: []string{"p"}}, `{"type":"content","paragraphs":["p"]}`},
		{EndSlide{Headline: "H"}, `{"type":"end","headline":"H"}`},
	}
	for _, tt := range tests {
		got, err := json.Marshal(tt.slide)
		if err != nil {
			t.Fatalf("Marshal(%T) error = %v", tt.slide, err)
		}
		if string(got) != tt.want {
			t.Errorf("Marshal(%T) = %s, want %s", tt.slide, got, tt.want)
		}
	}
}

func TestSlideValidate(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", MaxTitleLength+1)
	tooMany := make([]string, MaxParagraphs+1)
	for i := range tooMany {
		tooMany[i] = "p"
	}

	tests := []struct {
		name    string
		slide   Slide
		wantErr string
	}{
		{"cover ok", CoverSlide{Title: "T"}, ""},
		{"cover blank title", CoverSlide{Title: "  "}, "cover slide requires a title"},
		{"cover long title", CoverSlide{Title: long}, "title exceeds maximum length"},
		{"content ok without title", ContentSlide{Paragraphs: []string{"p"}}, ""},
		{"content no paragraphs", ContentSlide{Title: "T"}, "requires at least one paragraph"},
		{"content too many paragraphs", ContentSlide{Paragraphs: tooMany}, "13 paragraphs (max 12)"},
		{"content long paragraph", ContentSlide{Paragraphs: []string{strings.Repeat("x", MaxParagraphLength+1)}}, "paragraphs[0] exceeds"},
		{"end ok", EndSlide{Headline: "H"}, ""},
		{"end no headline", EndSlide{Highlight: "H"}, "end slide requires a headline"},
		{"end long button", EndSlide{Headline: "H", ButtonText: strings.Repeat("b", MaxButtonLength+1)}, "buttonText exceeds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.slide.validate(0)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() error = %v, want %q", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("validate() error does not match ErrInvalidRequest")
			}
		})
	}
}

func TestSlides_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var s Slides
	err := json.Unmarshal([]byte(`[{"type":"cover","title":"A"},{"type":"end","headline":"B"}]`), &s)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(s) != 2 || s[0].Kind() != KindCover || s[1].Kind() != KindEnd {
		t.Errorf("Unmarshal() = %+v, want cover then end", s)
	}

	if err := json.Unmarshal([]byte(`{"type":"cover"}`), &s); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("Unmarshal(object) error = %v, want ErrInvalidRequest", err)
	}
}
