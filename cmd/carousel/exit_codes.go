package main

import (
	"errors"
	"os"

	carousel "github.com/alnah/go-carousel"
	"github.com/alnah/go-carousel/internal/assets"
	"github.com/alnah/go-carousel/internal/config"
	"github.com/alnah/go-carousel/internal/logging"
)

// Exit codes for the carousel CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or request
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, carousel.ErrBrowserLaunch) ||
		errors.Is(err, carousel.ErrTabCreate) ||
		errors.Is(err, carousel.ErrViewport) ||
		errors.Is(err, carousel.ErrNavigation) ||
		errors.Is(err, carousel.ErrScreenshot) ||
		errors.Is(err, carousel.ErrRenderFailed) {
		return ExitBrowser
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, carousel.ErrInvalidRequest) ||
		errors.Is(err, carousel.ErrUnknownEngine) ||
		errors.Is(err, logging.ErrInvalidLevel) ||
		errors.Is(err, logging.ErrInvalidFormat) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrTemplateSetNotFound) ||
		errors.Is(err, assets.ErrIncompleteTemplateSet) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidEnv) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadRequest) ||
		errors.Is(err, ErrWriteImage) {
		return ExitIO
	}

	return ExitGeneral
}
