package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	carousel "github.com/alnah/go-carousel"
)

const msgGenerateFailed = "Failed to generate images"

// GenerateResponse is the body of every POST /api/generate reply.
type GenerateResponse struct {
	Success    bool      `json:"success"`
	Images     []string  `json:"images,omitempty"`
	Count      int       `json:"count,omitempty"`
	DurationMs int64     `json:"durationMs,omitempty"`
	Message    string    `json:"message,omitempty"`
	Error      string    `json:"error,omitempty"`
	Partial    bool      `json:"partial,omitempty"`
	Failures   []Failure `json:"failures,omitempty"`
}

// Failure describes one slide that could not be rendered.
type Failure struct {
	Index    int    `json:"index"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := loggerFrom(r.Context(), s.logger)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, GenerateResponse{Message: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, GenerateResponse{Message: "could not read request body"})
		return
	}

	req, err := carousel.ParseRequest(body, s.renderer.MaxPages())
	if err != nil {
		log.Info("rejected request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, GenerateResponse{Message: err.Error()})
		return
	}

	result, err := s.renderer.Render(r.Context(), s.renderBaseURL(r), req)
	elapsed := time.Since(start).Milliseconds()

	switch {
	case errors.Is(err, carousel.ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, GenerateResponse{Message: err.Error()})
	case err != nil:
		log.Error("generate failed", zap.Error(err))
		resp := GenerateResponse{
			Message:    msgGenerateFailed,
			Error:      err.Error(),
			DurationMs: elapsed,
		}
		if result != nil {
			resp.Failures = failuresOf(result)
		}
		writeJSON(w, http.StatusInternalServerError, resp)
	case result.Err() != nil:
		// Partial results were requested.
		writeJSON(w, http.StatusMultiStatus, GenerateResponse{
			Images:     encodeImages(result),
			Count:      result.Succeeded(),
			DurationMs: elapsed,
			Message:    msgGenerateFailed,
			Error:      result.Err().Error(),
			Partial:    true,
			Failures:   failuresOf(result),
		})
	default:
		images := encodeImages(result)
		writeJSON(w, http.StatusOK, GenerateResponse{
			Success:    true,
			Images:     images,
			Count:      len(images),
			DurationMs: elapsed,
		})
	}
}

// encodeImages base64-encodes images in slide order. Failed slides become
// empty strings so indices stay aligned.
func encodeImages(result *carousel.BatchResult) []string {
	out := make([]string, len(result.Outcomes))
	for i, o := range result.Outcomes {
		if o.OK() {
			out[i] = base64.StdEncoding.EncodeToString(o.Image)
		}
	}
	return out
}

func failuresOf(result *carousel.BatchResult) []Failure {
	var out []Failure
	for _, pe := range result.Failures() {
		out = append(out, Failure{Index: pe.Index, Attempts: pe.Attempts, Error: pe.Err.Error()})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
