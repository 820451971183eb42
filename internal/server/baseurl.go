package server

import (
	"net/http"
	"strings"
)

const fallbackHost = "localhost:3000"

// renderBaseURL returns the configured base URL, or one derived from the
// request: plain http for loopback hosts, https for anything else.
func (s *Server) renderBaseURL(r *http.Request) string {
	if s.baseURL != "" {
		return strings.TrimRight(s.baseURL, "/")
	}
	return DeriveBaseURL(r.Host)
}

// DeriveBaseURL builds a base URL from a Host header value.
func DeriveBaseURL(host string) string {
	if host == "" {
		host = fallbackHost
	}
	scheme := "https"
	if isLoopback(host) {
		scheme = "http"
	}
	return scheme + "://" + host
}

func isLoopback(host string) bool {
	return strings.HasPrefix(host, "localhost") ||
		strings.HasPrefix(host, "127.") ||
		strings.HasPrefix(host, "[::1]")
}
