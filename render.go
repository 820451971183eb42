package carousel

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Concurrency bounds. Each in-flight slide holds an open tab, roughly
// 50-100MB of renderer memory.
const (
	DefaultConcurrency = 3
	MaxConcurrency     = 16
)

// ResolveConcurrency clamps n to 1..MaxConcurrency.
// Zero or negative means DefaultConcurrency.
func ResolveConcurrency(n int) int {
	if n <= 0 {
		return DefaultConcurrency
	}
	if n > MaxConcurrency {
		return MaxConcurrency
	}
	return n
}

// RenderURL builds the address the browser loads for slide index.
// data is the JSON slide list from EncodeSlides.
func RenderURL(baseURL string, index int, data []byte) string {
	return fmt.Sprintf("%s/render?page=%d&data=%s",
		strings.TrimRight(baseURL, "/"), index, url.QueryEscape(string(data)))
}

// PageOutcome is the result for one slide. Exactly one of Image and Err is set.
type PageOutcome struct {
	Index    int
	Image    []byte
	Attempts int
	Duration time.Duration
	Err      *PageError
}

// OK reports whether the slide rendered.
func (o PageOutcome) OK() bool { return o.Err == nil }

// BatchResult holds one outcome per input slide, in input order.
type BatchResult struct {
	ID       string
	Outcomes []PageOutcome
	Duration time.Duration
}

// Succeeded counts rendered slides.
func (r *BatchResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// Failures lists the failed slides in index order.
func (r *BatchResult) Failures() []*PageError {
	var out []*PageError
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o.Err)
		}
	}
	return out
}

// Images returns the PNG bytes in input order; failed slides are nil.
func (r *BatchResult) Images() [][]byte {
	out := make([][]byte, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = o.Image
	}
	return out
}

// Err returns an *AggregateRenderError if any slide failed, or nil.
func (r *BatchResult) Err() error {
	failures := r.Failures()
	if len(failures) == 0 {
		return nil
	}
	return &AggregateRenderError{Total: len(r.Outcomes), Failures: failures}
}

// pageRenderer renders slides against one leased browser.
type pageRenderer struct {
	viewport     Viewport
	navTimeout   time.Duration
	fontFallback time.Duration
	concurrency  int
	retry        RetryPolicy
	logger       *zap.Logger
	recorder     Recorder
}

// renderAll renders every slide with at most concurrency tabs open at once.
// One slide failing never cancels the others.
func (pr *pageRenderer) renderAll(ctx context.Context, b Browser, baseURL string, data []byte, n int) []PageOutcome {
	outcomes := make([]PageOutcome, n)
	sem := semaphore.NewWeighted(int64(ResolveConcurrency(pr.concurrency)))

	var wg sync.WaitGroup
	for i := range n {
		if err := sem.Acquire(ctx, 1); err != nil {
			outcomes[i] = PageOutcome{Index: i, Err: &PageError{Index: i, Err: err}}
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			outcomes[i] = pr.renderPage(ctx, b, i, RenderURL(baseURL, i, data))
		}(i)
	}
	wg.Wait()
	return outcomes
}

// renderPage runs renderOne under the retry policy.
func (pr *pageRenderer) renderPage(ctx context.Context, b Browser, index int, target string) PageOutcome {
	start := time.Now()
	log := pr.logger.With(zap.Int("page", index))

	img, attempts, err := Retry(ctx, pr.retry,
		func(ctx context.Context, attempt int) ([]byte, error) {
			return pr.renderOne(ctx, b, target)
		},
		func(err error, wait time.Duration) {
			log.Warn("page render failed, retrying", zap.Error(err), zap.Duration("wait", wait))
		},
	)

	out := PageOutcome{Index: index, Attempts: attempts, Duration: time.Since(start)}
	pr.recorder.PageRendered(attempts, out.Duration, err)
	if err != nil {
		log.Error("page render failed", zap.Int("attempts", attempts), zap.Error(err))
		out.Err = &PageError{Index: index, Attempts: attempts, Err: err}
		return out
	}
	log.Debug("page rendered", zap.Int("attempts", attempts), zap.Int("bytes", len(img)), zap.Duration("took", out.Duration))
	out.Image = img
	return out
}

// renderOne performs a single attempt in a fresh tab. The tab is closed on
// every path.
func (pr *pageRenderer) renderOne(ctx context.Context, b Browser, target string) ([]byte, error) {
	tab, err := b.NewTab(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTabCreate, err)
	}
	pr.recorder.TabOpened()
	defer func() {
		if err := tab.Close(); err != nil {
			pr.logger.Debug("closing tab", zap.Error(err))
		}
		pr.recorder.TabClosed()
	}()

	if err := tab.SetViewport(ctx, pr.viewport); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrViewport, err)
	}
	if err := tab.Navigate(ctx, target, pr.navTimeout); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNavigation, err)
	}
	if err := pr.waitFonts(ctx, tab); err != nil {
		return nil, err
	}

	img, err := tab.Screenshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScreenshot, err)
	}
	return img, nil
}

// waitFonts waits up to fontFallback for document.fonts. An engine that
// cannot observe fonts sleeps fontFallback instead; a stalled wait has
// already spent it. Only caller cancellation is an error.
func (pr *pageRenderer) waitFonts(ctx context.Context, tab Tab) error {
	limit := pr.fontFallback
	if limit <= 0 {
		limit = pr.navTimeout
	}
	fctx, cancel := context.WithTimeout(ctx, limit)
	err := tab.WaitFonts(fctx)
	stalled := fctx.Err() != nil
	cancel()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if stalled {
		pr.logger.Debug("font readiness timed out", zap.Duration("limit", limit))
		return nil
	}

	pr.logger.Debug("font readiness unavailable, sleeping", zap.Error(err), zap.Duration("fallback", pr.fontFallback))
	t := time.NewTimer(pr.fontFallback)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
