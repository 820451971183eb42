package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	carousel "github.com/alnah/go-carousel"
)

const (
	// defaultReadHeaderTimeout prevents Slowloris attacks.
	defaultReadHeaderTimeout = 10 * time.Second
	defaultReadTimeout       = 30 * time.Second
	// Rendering a full batch can take minutes on a cold browser.
	defaultWriteTimeout = 5 * time.Minute
	defaultIdleTimeout  = 120 * time.Second

	// defaultMaxBodySize is the maximum allowed size of a request body (1 MB).
	defaultMaxBodySize int64 = 1 << 20

	// maxHeaderBytes must hold a render URL carrying a full slide list.
	maxHeaderBytes = carousel.MaxEncodedDataBytes + 512<<10
)

// BatchRenderer renders a validated request into PNG images.
type BatchRenderer interface {
	Render(ctx context.Context, baseURL string, req *carousel.Request) (*carousel.BatchResult, error)
	MaxPages() int
}

// PageComposer paints one slide of a deck as an HTML document.
type PageComposer interface {
	Compose(ctx context.Context, slides []carousel.Slide, index int) ([]byte, error)
}

// BrowserStatus reports on the shared browser for health checks.
type BrowserStatus interface {
	Stats() carousel.ManagerStats
	Healthy(ctx context.Context) bool
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request logger. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBaseURL fixes the address the browser uses to reach the render target.
// Empty derives it from each request's Host header.
func WithBaseURL(u string) Option {
	return func(s *Server) { s.baseURL = u }
}

// WithMaxBodySize sets the maximum allowed request body size in bytes.
func WithMaxBodySize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodySize = n
		}
	}
}

// WithReadTimeout sets the maximum duration for reading the entire request.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.readTimeout = d
		}
	}
}

// WithWriteTimeout sets the maximum duration before timing out writes of
// the response.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithBrowserStatus adds browser details to GET /healthz.
func WithBrowserStatus(b BrowserStatus) Option {
	return func(s *Server) { s.browser = b }
}

// Server exposes the carousel renderer over HTTP. It serves both the
// generate API and the render target the browser screenshots.
type Server struct {
	renderer BatchRenderer
	composer PageComposer
	browser  BrowserStatus
	metrics  http.Handler
	logger   *zap.Logger

	baseURL      string
	maxBodySize  int64
	readTimeout  time.Duration
	writeTimeout time.Duration

	httpSrv   *http.Server
	httpSrvMu sync.Mutex
}

// New creates a Server.
func New(renderer BatchRenderer, composer PageComposer, opts ...Option) *Server {
	s := &Server{
		renderer:     renderer,
		composer:     composer,
		logger:       zap.NewNop(),
		maxBodySize:  defaultMaxBodySize,
		readTimeout:  defaultReadTimeout,
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("GET /render", s.handleRender)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return s.withRequestLog(mux)
}

// ListenAndServe listens on addr and serves until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Serve(ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		ReadTimeout:       s.readTimeout,
		WriteTimeout:      s.writeTimeout,
		IdleTimeout:       defaultIdleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	s.httpSrvMu.Lock()
	s.httpSrv = srv
	s.httpSrvMu.Unlock()

	s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.httpSrvMu.Lock()
	srv := s.httpSrv
	s.httpSrvMu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
