package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	carousel "github.com/alnah/go-carousel"
	"github.com/alnah/go-carousel/internal/pipeline"
)

// Render target error messages.
const (
	msgMissingData  = "Missing data param"
	msgInvalidIndex = "Invalid page index"
	msgParseError   = "Error parsing data"
)

// handleRender paints slide ?page= of the deck in ?data= as a full page.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	data := q.Get("data")
	if data == "" {
		http.Error(w, msgMissingData, http.StatusBadRequest)
		return
	}

	index := 0
	if p := q.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			http.Error(w, msgInvalidIndex, http.StatusBadRequest)
			return
		}
		index = n
	}

	var slides carousel.Slides
	if err := json.Unmarshal([]byte(data), &slides); err != nil {
		http.Error(w, msgParseError, http.StatusBadRequest)
		return
	}
	if index >= len(slides) {
		http.Error(w, msgInvalidIndex, http.StatusBadRequest)
		return
	}

	page, err := s.composer.Compose(r.Context(), slides, index)
	if err != nil {
		if errors.Is(err, pipeline.ErrPageIndex) {
			http.Error(w, msgInvalidIndex, http.StatusBadRequest)
			return
		}
		loggerFrom(r.Context(), s.logger).Error("composing slide", zap.Int("page", index), zap.Error(err))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	h.Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(page)
}
