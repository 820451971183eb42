package carousel

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  *ValidationError
		want string
	}{
		{batchError("pages array is required"), "pages array is required"},
		{slideError(4, "missing slide type"), "page 4: missing slide type"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
		if !errors.Is(tt.err, ErrInvalidRequest) {
			t.Errorf("%q does not match ErrInvalidRequest", tt.err)
		}
	}
}

func TestBrowserLaunchError(t *testing.T) {
	t.Parallel()

	spawn := errors.New("exec: chrome not found")
	err := fmt.Errorf("acquire: %w", &BrowserLaunchError{Engine: EngineRod, Err: spawn})

	if !errors.Is(err, ErrBrowserLaunch) {
		t.Error("does not match ErrBrowserLaunch")
	}
	if !errors.Is(err, spawn) {
		t.Error("does not unwrap to the spawn error")
	}
	want := "acquire: failed to launch browser (rod): exec: chrome not found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestAggregateRenderError(t *testing.T) {
	t.Parallel()

	err := &AggregateRenderError{
		Total: 4,
		Failures: []*PageError{
			{Index: 1, Attempts: 3, Err: fmt.Errorf("%w: timeout", ErrNavigation)},
			{Index: 3, Attempts: 3, Err: fmt.Errorf("%w: closed", ErrScreenshot)},
		},
	}

	want := "rendering failed: 2 of 4 page(s) failed: 1: navigation failed: timeout; 3: screenshot failed: closed"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	for _, target := range []error{ErrRenderFailed, ErrNavigation, ErrScreenshot} {
		if !errors.Is(err, target) {
			t.Errorf("errors.Is(err, %v) = false, want true", target)
		}
	}
	if errors.Is(err, ErrInvalidRequest) {
		t.Error("render failure matches ErrInvalidRequest")
	}
}
