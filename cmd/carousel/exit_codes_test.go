package main

// Notes:
// - exitCodeFor: we test the sentinel errors of every package the CLI wires,
//   plus wrapped errors to verify the errors.Is chain.

import (
	"errors"
	"fmt"
	"os"
	"testing"

	carousel "github.com/alnah/go-carousel"
	"github.com/alnah/go-carousel/internal/assets"
	"github.com/alnah/go-carousel/internal/config"
	"github.com/alnah/go-carousel/internal/logging"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},

		// Browser errors (exit 4)
		{"browser launch", carousel.ErrBrowserLaunch, ExitBrowser},
		{"launch error type", &carousel.BrowserLaunchError{Engine: "rod", Err: errors.New("x")}, ExitBrowser},
		{"tab create", carousel.ErrTabCreate, ExitBrowser},
		{"viewport", carousel.ErrViewport, ExitBrowser},
		{"navigation", carousel.ErrNavigation, ExitBrowser},
		{"screenshot", carousel.ErrScreenshot, ExitBrowser},
		{"aggregate", &carousel.AggregateRenderError{Total: 2}, ExitBrowser},
		{"wrapped navigation", fmt.Errorf("slide 1: %w", carousel.ErrNavigation), ExitBrowser},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"read request", ErrReadRequest, ExitIO},
		{"write image", ErrWriteImage, ExitIO},
		{"wrapped not exist", fmt.Errorf("reading: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"invalid request", carousel.ErrInvalidRequest, ExitUsage},
		{"validation error type", &carousel.ValidationError{Index: 1, Reason: "x"}, ExitUsage},
		{"unknown engine", carousel.ErrUnknownEngine, ExitUsage},
		{"log level", logging.ErrInvalidLevel, ExitUsage},
		{"log format", logging.ErrInvalidFormat, ExitUsage},
		{"style not found", assets.ErrStyleNotFound, ExitUsage},
		{"invalid asset name", assets.ErrInvalidAssetName, ExitUsage},
		{"usage", ErrUsage, ExitUsage},
		{"env", fmt.Errorf("%w: X", ErrInvalidEnv), ExitUsage},

		// General
		{"unknown", errors.New("something else"), ExitGeneral},
		{"manager closed", carousel.ErrManagerClosed, ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodes_Conventions(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Error("exit codes 0, 1, 2 must keep their Unix meaning")
	}
	for _, code := range []int{ExitIO, ExitBrowser} {
		if code >= 126 {
			t.Errorf("custom exit code %d collides with shell-reserved codes", code)
		}
	}
}
