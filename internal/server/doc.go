// Package server exposes the carousel renderer over HTTP.
//
// Routes:
//
//	POST /api/generate   render a deck, reply with base64 PNGs
//	GET  /render         the page the headless browser screenshots
//	GET  /healthz        liveness plus shared browser status
//	GET  /metrics        Prometheus exposition, when configured
//
// The browser loads GET /render from the same process, so the base URL
// handed to the renderer must be reachable from the browser. It comes from
// WithBaseURL or, failing that, from the request's Host header.
package server
