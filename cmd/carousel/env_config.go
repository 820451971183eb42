package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-carousel/internal/config"
	"github.com/alnah/go-carousel/internal/yamlutil"
)

// ErrInvalidEnv is returned when a CAROUSEL_* variable cannot be parsed.
var ErrInvalidEnv = errors.New("invalid environment variable")

const envPrefix = "CAROUSEL_"

// knownEnvVars lists valid CAROUSEL_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Config and server
	"CAROUSEL_CONFIG":   true,
	"CAROUSEL_ADDR":     true,
	"CAROUSEL_BASE_URL": true,
	// Browser
	"CAROUSEL_ENGINE":       true,
	"CAROUSEL_BROWSER_BIN":  true,
	"CAROUSEL_NO_SANDBOX":   true,
	"CAROUSEL_IDLE_TIMEOUT": true,
	"CAROUSEL_CONTAINER":    true,
	// Rendering
	"CAROUSEL_CONCURRENCY":     true,
	"CAROUSEL_MAX_PAGES":       true,
	"CAROUSEL_RETRIES":         true,
	"CAROUSEL_NAV_TIMEOUT":     true,
	"CAROUSEL_PARTIAL_RESULTS": true,
	// Theme
	"CAROUSEL_ASSET_PATH":  true,
	"CAROUSEL_STYLE":       true,
	"CAROUSEL_BRAND":       true,
	"CAROUSEL_BUTTON_TEXT": true,
	// Logging
	"CAROUSEL_LOG_LEVEL":  true,
	"CAROUSEL_LOG_FORMAT": true,
}

// warnUnknownEnvVars logs warnings for unrecognized CAROUSEL_* variables.
// Helps catch typos like CAROUSEL_CONCURENCY.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overlays set CAROUSEL_* variables on cfg.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied afterwards via applyFlags).
func applyEnvConfig(getenv func(string) string, cfg *config.Config) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	var errs []error
	integer := func(key string, dst *int) {
		v := getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidEnv, key, v))
			return
		}
		*dst = n
	}
	duration := func(key string, dst *yamlutil.Duration) {
		v := getenv(key)
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q is not a duration", ErrInvalidEnv, key, v))
			return
		}
		*dst = yamlutil.Duration(d)
	}
	boolean := func(key string, dst *bool) {
		v := getenv(key)
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidEnv, key, v))
			return
		}
		*dst = b
	}

	str("CAROUSEL_ADDR", &cfg.Server.Addr)
	str("CAROUSEL_BASE_URL", &cfg.Server.BaseURL)

	str("CAROUSEL_ENGINE", &cfg.Browser.Engine)
	str("CAROUSEL_BROWSER_BIN", &cfg.Browser.Bin)
	boolean("CAROUSEL_NO_SANDBOX", &cfg.Browser.NoSandbox)
	duration("CAROUSEL_IDLE_TIMEOUT", &cfg.Browser.IdleTimeout)

	integer("CAROUSEL_CONCURRENCY", &cfg.Render.Concurrency)
	integer("CAROUSEL_MAX_PAGES", &cfg.Render.MaxPages)
	integer("CAROUSEL_RETRIES", &cfg.Render.Retries)
	duration("CAROUSEL_NAV_TIMEOUT", &cfg.Render.NavTimeout)
	boolean("CAROUSEL_PARTIAL_RESULTS", &cfg.Render.PartialResults)

	str("CAROUSEL_ASSET_PATH", &cfg.Theme.AssetPath)
	str("CAROUSEL_STYLE", &cfg.Theme.Style)
	str("CAROUSEL_BRAND", &cfg.Theme.Brand)
	str("CAROUSEL_BUTTON_TEXT", &cfg.Theme.ButtonText)

	str("CAROUSEL_LOG_LEVEL", &cfg.Log.Level)
	str("CAROUSEL_LOG_FORMAT", &cfg.Log.Format)

	return errors.Join(errs...)
}
