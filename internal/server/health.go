package server

import (
	"net/http"
	"time"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string         `json:"status"`
	Browser *BrowserHealth `json:"browser,omitempty"`
}

// BrowserHealth summarizes the shared browser.
type BrowserHealth struct {
	Running   bool      `json:"running"`
	Connected bool      `json:"connected"`
	ID        string    `json:"id,omitempty"`
	Launches  int       `json:"launches"`
	Active    int       `json:"activeLeases"`
	LastUsed  time.Time `json:"lastUsed,omitzero"`
}

// handleHealth reports ok while the service can take work. The browser is
// launched lazily, so no browser yet is still healthy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.browser == nil {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
		return
	}

	stats := s.browser.Stats()
	bh := &BrowserHealth{
		Running:  stats.BrowserID != "",
		ID:       stats.BrowserID,
		Launches: stats.Launches,
		Active:   stats.Active,
		LastUsed: stats.LastUsed,
	}
	if bh.Running {
		bh.Connected = s.browser.Healthy(r.Context())
	}

	switch {
	case stats.Closed:
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "closed", Browser: bh})
	case bh.Running && !bh.Connected:
		// The next request relaunches it.
		writeJSON(w, http.StatusOK, HealthResponse{Status: "degraded", Browser: bh})
	default:
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Browser: bh})
	}
}
