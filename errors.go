package carousel

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for library operations.
var (
	ErrInvalidRequest = errors.New("invalid render request")
	ErrBrowserLaunch  = errors.New("failed to launch browser")
	ErrTabCreate      = errors.New("failed to open browser tab")
	ErrViewport       = errors.New("failed to set viewport")
	ErrNavigation     = errors.New("navigation failed")
	ErrScreenshot     = errors.New("screenshot failed")
	ErrRenderFailed   = errors.New("rendering failed")
	ErrManagerClosed  = errors.New("browser manager is closed")
	ErrUnknownEngine  = errors.New("unknown browser engine")
)

// ValidationError reports a malformed, oversized or empty request.
// Index is the offending slide, or -1 when the error concerns the whole batch.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return e.Reason
	}
	return fmt.Sprintf("page %d: %s", e.Index, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidRequest).
func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

// batchError builds a ValidationError that is not tied to one slide.
func batchError(format string, args ...any) *ValidationError {
	return &ValidationError{Index: -1, Reason: fmt.Sprintf(format, args...)}
}

// slideError builds a ValidationError for the slide at index.
func slideError(index int, format string, args ...any) *ValidationError {
	return &ValidationError{Index: index, Reason: fmt.Sprintf(format, args...)}
}

// BrowserLaunchError wraps the underlying spawn or connect failure.
type BrowserLaunchError struct {
	Engine string
	Err    error
}

func (e *BrowserLaunchError) Error() string {
	return fmt.Sprintf("%v (%s): %v", ErrBrowserLaunch, e.Engine, e.Err)
}

func (e *BrowserLaunchError) Unwrap() error { return e.Err }

func (e *BrowserLaunchError) Is(target error) bool { return target == ErrBrowserLaunch }

// PageError is the final failure of one slide after retries were exhausted.
type PageError struct {
	Index    int
	Attempts int
	Err      error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("%d: %v", e.Index, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// AggregateRenderError summarizes every slide that failed in a batch.
type AggregateRenderError struct {
	Total    int
	Failures []*PageError
}

func (e *AggregateRenderError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("%v: %d of %d page(s) failed: %s",
		ErrRenderFailed, len(e.Failures), e.Total, strings.Join(parts, "; "))
}

func (e *AggregateRenderError) Is(target error) bool { return target == ErrRenderFailed }

// Unwrap exposes the per-page errors so errors.Is can reach
// ErrNavigation or ErrScreenshot.
func (e *AggregateRenderError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
