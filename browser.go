package carousel

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// Supported browser engines.
const (
	EngineRod      = "rod"
	EngineChromedp = "chromedp"
)

// Launcher starts a headless browser process and connects to it.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
	Name() string
}

// Browser is one live connection to a headless browser. It must allow
// concurrent NewTab calls; every tab is an isolated browsing context.
type Browser interface {
	NewTab(ctx context.Context) (Tab, error)
	// Connected reports whether the browser still answers on its control channel.
	Connected(ctx context.Context) bool
	Close() error
}

// Tab is a single isolated browsing context used for one slide attempt.
type Tab interface {
	SetViewport(ctx context.Context, vp Viewport) error
	// Navigate loads url and blocks until the network is idle or timeout elapses.
	// A main document answered with a non-2xx status fails with *StatusError.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// WaitFonts blocks until document.fonts is ready. Engines that cannot
	// observe font loading return an error and the caller sleeps instead.
	WaitFonts(ctx context.Context) error
	// Screenshot captures the viewport as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// StatusError reports a render target document that did not answer 2xx.
// The page would otherwise be captured as a slide.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("render target answered HTTP %d", e.Status)
}

// Temporary reports whether the status may clear on another attempt.
func (e *StatusError) Temporary() bool {
	return e.Status >= 500 || e.Status == 408 || e.Status == 429
}

// documentStatus turns a main document status into an error. Zero means no
// response was observed (data: or about: URLs) and is accepted.
func documentStatus(status int) error {
	if status == 0 || (status >= 200 && status < 300) {
		return nil
	}
	return &StatusError{Status: status}
}

// LaunchConfig holds the process-level browser settings.
type LaunchConfig struct {
	// Bin overrides browser discovery. Empty means platform default.
	Bin string
	// NoSandbox disables the Chrome sandbox, required in most containers.
	NoSandbox bool
	// Headless is true unless debugging.
	Headless bool
	// ExtraFlags are appended to DefaultFlags, as "name" or "name=value".
	ExtraFlags []string
}

// DefaultFlags are passed to every launched browser.
var DefaultFlags = []string{
	"disable-gpu",
	"disable-dev-shm-usage",
	"font-render-hinting=none",
	"disable-background-timer-throttling",
	"disable-backgrounding-occluded-windows",
	"disable-renderer-backgrounding",
	"hide-scrollbars",
	"mute-audio",
}

// DefaultLaunchConfig reads the browser binary and sandbox switches from the
// environment. CAROUSEL_BROWSER_BIN wins over ROD_BROWSER_BIN and CHROME_PATH.
// The sandbox is disabled when a custom binary is set, in CI, or when
// CAROUSEL_NO_SANDBOX / ROD_NO_SANDBOX is "1".
func DefaultLaunchConfig() LaunchConfig {
	bin := firstEnv("CAROUSEL_BROWSER_BIN", "ROD_BROWSER_BIN", "CHROME_PATH")
	noSandbox := bin != "" ||
		os.Getenv("CI") == "true" ||
		os.Getenv("CAROUSEL_NO_SANDBOX") == "1" ||
		os.Getenv("ROD_NO_SANDBOX") == "1"
	return LaunchConfig{Bin: bin, NoSandbox: noSandbox, Headless: true}
}

// flags returns DefaultFlags plus ExtraFlags, split into name and value.
func (c LaunchConfig) flags() [][2]string {
	all := make([]string, 0, len(DefaultFlags)+len(c.ExtraFlags))
	all = append(all, DefaultFlags...)
	all = append(all, c.ExtraFlags...)

	out := make([][2]string, 0, len(all))
	for _, f := range all {
		f = strings.TrimLeft(strings.TrimSpace(f), "-")
		if f == "" {
			continue
		}
		name, value, _ := strings.Cut(f, "=")
		out = append(out, [2]string{name, value})
	}
	return out
}

// NewLauncher returns the Launcher for engine ("rod" or "chromedp").
func NewLauncher(engine string, cfg LaunchConfig) (Launcher, error) {
	switch strings.ToLower(engine) {
	case "", EngineRod:
		return NewRodLauncher(cfg), nil
	case EngineChromedp:
		return NewChromedpLauncher(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q (must be %s or %s)", ErrUnknownEngine, engine, EngineRod, EngineChromedp)
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
