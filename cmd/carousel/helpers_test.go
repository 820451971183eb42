package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	carousel "github.com/alnah/go-carousel"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Environment and fake browser
// ---------------------------------------------------------------------------

// testEnv is an Environment with captured output and a fixed variable set.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	vars   map[string]string
}

func newTestEnv(t *testing.T, vars map[string]string) *testEnv {
	t.Helper()
	if vars == nil {
		vars = map[string]string{}
	}
	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		vars:   vars,
	}
	launcher := &fetchLauncher{}
	te.Environment = &Environment{
		Now:    time.Now,
		Stdin:  strings.NewReader(""),
		Stdout: te.stdout,
		Stderr: te.stderr,
		Getenv: func(k string) string { return te.vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(te.vars))
			for k, v := range te.vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		NewLauncher: func(engine string, _ carousel.LaunchConfig) (carousel.Launcher, error) {
			if engine != "" && engine != carousel.EngineRod && engine != carousel.EngineChromedp {
				return nil, carousel.ErrUnknownEngine
			}
			return launcher, nil
		},
	}
	return te
}

// withLauncher replaces the launcher factory with one returning l.
func (te *testEnv) withLauncher(l carousel.Launcher) *testEnv {
	te.NewLauncher = func(string, carousel.LaunchConfig) (carousel.Launcher, error) { return l, nil }
	return te
}

// fetchLauncher launches browsers whose tabs fetch the render target over
// real HTTP and return the page body as the "screenshot".
type fetchLauncher struct {
	err      error
	launches atomic.Int32
	// failPage makes every attempt for the page with this 1-based number fail.
	failPage int
}

func (l *fetchLauncher) Name() string { return "fetch" }

func (l *fetchLauncher) Launch(context.Context) (carousel.Browser, error) {
	l.launches.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	return &fetchBrowser{failPage: l.failPage}, nil
}

type fetchBrowser struct {
	failPage int
	closed   atomic.Bool
}

func (b *fetchBrowser) NewTab(context.Context) (carousel.Tab, error) {
	return &fetchTab{failPage: b.failPage}, nil
}

func (b *fetchBrowser) Connected(context.Context) bool { return !b.closed.Load() }

func (b *fetchBrowser) Close() error {
	b.closed.Store(true)
	return nil
}

type fetchTab struct {
	failPage int
	mu       sync.Mutex
	body     []byte
}

func (t *fetchTab) SetViewport(context.Context, carousel.Viewport) error { return nil }

func (t *fetchTab) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return errors.New(resp.Status)
	}
	t.mu.Lock()
	t.body = body
	t.mu.Unlock()
	return nil
}

func (t *fetchTab) WaitFonts(context.Context) error { return nil }

func (t *fetchTab) Screenshot(context.Context) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failPage > 0 && bytes.Contains(t.body, []byte(pageMarker(t.failPage))) {
		return nil, errors.New("capture failed")
	}
	return t.body, nil
}

func (t *fetchTab) Close() error { return nil }

// pageMarker is the page counter text the default templates print.
func pageMarker(n int) string {
	return fmt.Sprintf("%d / ", n)
}

const twoSlideRequest = `{"pages":[{"type":"cover","title":"Hello"},{"type":"end","headline":"Go X","highlight":"X"}]}`
