package carousel

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Renderer turns slide requests into PNG images using a shared browser.
// Create with NewRenderer and reuse it across requests; it is safe for
// concurrent use. The BrowserManager stays owned by the caller.
type Renderer struct {
	manager *BrowserManager
	cfg     rendererConfig
}

// rendererConfig holds the tunables set through Options.
type rendererConfig struct {
	viewport       Viewport
	maxPages       int
	concurrency    int
	navTimeout     time.Duration
	fontFallback   time.Duration
	retry          RetryPolicy
	partialResults bool
	logger         *zap.Logger
	recorder       Recorder
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the structured logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.cfg.logger = l
		}
	}
}

// WithRecorder sets the telemetry sink.
func WithRecorder(rec Recorder) Option {
	return func(r *Renderer) {
		if rec != nil {
			r.cfg.recorder = rec
		}
	}
}

// WithConcurrency caps how many slides of one batch render at once.
// Panics if n <= 0 (programmer error, similar to time.NewTicker).
func WithConcurrency(n int) Option {
	if n <= 0 {
		panic("carousel: WithConcurrency must be positive")
	}
	return func(r *Renderer) {
		r.cfg.concurrency = ResolveConcurrency(n)
	}
}

// WithMaxPages sets the largest accepted batch.
// Panics if n <= 0.
func WithMaxPages(n int) Option {
	if n <= 0 {
		panic("carousel: WithMaxPages must be positive")
	}
	return func(r *Renderer) {
		r.cfg.maxPages = n
	}
}

// WithRetryPolicy replaces the per-slide retry policy.
// Panics if Retries or Backoff is negative.
func WithRetryPolicy(p RetryPolicy) Option {
	if p.Retries < 0 || p.Backoff < 0 {
		panic("carousel: WithRetryPolicy values must not be negative")
	}
	return func(r *Renderer) {
		r.cfg.retry = p
	}
}

// WithNavTimeout bounds each navigation.
// Panics if d <= 0.
func WithNavTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("carousel: WithNavTimeout duration must be positive")
	}
	return func(r *Renderer) {
		r.cfg.navTimeout = d
	}
}

// WithFontFallback bounds the wait for document.fonts and sets the sleep used
// when font readiness cannot be observed. Zero bounds the wait by the
// navigation timeout and skips the sleep.
// Panics if d < 0.
func WithFontFallback(d time.Duration) Option {
	if d < 0 {
		panic("carousel: WithFontFallback duration must not be negative")
	}
	return func(r *Renderer) {
		r.cfg.fontFallback = d
	}
}

// WithViewport sets the default screenshot geometry. Request options
// override it per batch.
func WithViewport(vp Viewport) Option {
	return func(r *Renderer) {
		r.cfg.viewport = vp
	}
}

// WithPartialResults makes Render return a nil error when only some slides
// failed. The caller inspects BatchResult.Failures instead.
func WithPartialResults(enabled bool) Option {
	return func(r *Renderer) {
		r.cfg.partialResults = enabled
	}
}

// NewRenderer creates a Renderer that borrows browsers from m.
func NewRenderer(m *BrowserManager, opts ...Option) *Renderer {
	r := &Renderer{
		manager: m,
		cfg: rendererConfig{
			viewport:     DefaultViewport(),
			maxPages:     DefaultMaxPages,
			concurrency:  DefaultConcurrency,
			navTimeout:   DefaultNavTimeout,
			fontFallback: DefaultFontFallback,
			retry:        DefaultRetryPolicy(),
			logger:       zap.NewNop(),
			recorder:     nopRecorder{},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxPages returns the largest accepted batch.
func (r *Renderer) MaxPages() int { return r.cfg.maxPages }

// Render validates req, leases the shared browser and renders every slide.
//
// Validation errors are returned before any browser work. A browser that
// cannot be started yields a *BrowserLaunchError. If any slide fails after
// retries, the result is still returned alongside an *AggregateRenderError,
// unless partial results are enabled, in which case the error is nil.
func (r *Renderer) Render(ctx context.Context, baseURL string, req *Request) (*BatchResult, error) {
	if req == nil {
		return nil, batchError("request is required")
	}
	if err := req.Validate(r.cfg.maxPages); err != nil {
		return nil, err
	}
	data, err := EncodeSlides(req.Slides)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	id := uuid.NewString()
	log := r.cfg.logger.With(zap.String("batch_id", id))

	lease, err := r.manager.Acquire(ctx)
	if err != nil {
		r.cfg.recorder.BatchRendered(len(req.Slides), time.Since(start), err)
		return nil, err
	}
	defer lease.Release()

	pr := &pageRenderer{
		viewport:     req.Options.resolve(r.cfg.viewport),
		navTimeout:   r.cfg.navTimeout,
		fontFallback: r.cfg.fontFallback,
		concurrency:  r.cfg.concurrency,
		retry:        r.cfg.retry,
		logger:       log.With(zap.String("browser_id", lease.ID())),
		recorder:     r.cfg.recorder,
	}
	log.Info("rendering batch", zap.Int("pages", len(req.Slides)), zap.String("browser_id", lease.ID()))

	result := &BatchResult{
		ID:       id,
		Outcomes: pr.renderAll(ctx, lease.Browser(), baseURL, data, len(req.Slides)),
	}
	result.Duration = time.Since(start)

	batchErr := result.Err()
	r.cfg.recorder.BatchRendered(len(req.Slides), result.Duration, batchErr)
	if batchErr != nil {
		log.Error("batch failed",
			zap.Int("failed", len(result.Outcomes)-result.Succeeded()),
			zap.Duration("took", result.Duration),
			zap.Error(batchErr))
		if r.cfg.partialResults {
			return result, nil
		}
		return result, batchErr
	}

	log.Info("batch rendered", zap.Int("pages", len(result.Outcomes)), zap.Duration("took", result.Duration))
	return result, nil
}

// RenderSlides is a convenience wrapper around Render.
func (r *Renderer) RenderSlides(ctx context.Context, baseURL string, slides ...Slide) ([][]byte, error) {
	result, err := r.Render(ctx, baseURL, &Request{Slides: slides})
	if err != nil {
		return nil, err
	}
	if r.cfg.partialResults {
		if ferr := result.Err(); ferr != nil {
			return result.Images(), fmt.Errorf("partial render: %w", ferr)
		}
	}
	return result.Images(), nil
}
