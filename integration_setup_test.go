//go:build integration

package carousel_test

// Notes:
// - Integration tests drive a real Chrome through both engines. Rod downloads
//   Chromium on first run if none is found.
// - The render target is the real HTTP handler backed by the default theme,
//   served by httptest on loopback.

import (
	"net/http/httptest"
	"os"
	"testing"
	"time"

	carousel "github.com/alnah/go-carousel"
	"github.com/alnah/go-carousel/internal/assets"
	"github.com/alnah/go-carousel/internal/pipeline"
	"github.com/alnah/go-carousel/internal/server"
)

// testTimeout is the standard timeout for integration test operations.
const testTimeout = 60 * time.Second

// newTestTarget starts the render target for r and returns its base URL.
func newTestTarget(t *testing.T, r *carousel.Renderer) string {
	t.Helper()

	ts, err := assets.LoadTemplateSet(assets.DefaultTemplateSetName)
	if err != nil {
		t.Fatalf("LoadTemplateSet() error = %v", err)
	}
	css, err := assets.LoadStyle(assets.DefaultStyleName)
	if err != nil {
		t.Fatalf("LoadStyle() error = %v", err)
	}
	composer, err := pipeline.NewComposer(ts, css, pipeline.Theme{Brand: "example.dev"})
	if err != nil {
		t.Fatalf("NewComposer() error = %v", err)
	}

	srv := httptest.NewServer(server.New(r, composer).Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

// newTestManager returns a manager for engine, closed at test end.
func newTestManager(t *testing.T, engine string) *carousel.BrowserManager {
	t.Helper()

	cfg := carousel.DefaultLaunchConfig()
	if os.Getenv("CI") != "" {
		cfg.NoSandbox = true
	}
	l, err := carousel.NewLauncher(engine, cfg)
	if err != nil {
		t.Fatalf("NewLauncher(%s) error = %v", engine, err)
	}
	m := carousel.NewBrowserManager(l)
	t.Cleanup(func() { _ = m.Close() })
	return m
}
