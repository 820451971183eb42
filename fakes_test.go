package carousel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// fakeLauncher hands out fakeBrowsers and counts launches.
type fakeLauncher struct {
	mu       sync.Mutex
	launched []*fakeBrowser
	err      error
	delay    time.Duration
	newTab   func(b *fakeBrowser) (Tab, error)
}

func (l *fakeLauncher) Name() string { return "fake" }

func (l *fakeLauncher) Launch(ctx context.Context) (Browser, error) {
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	b := &fakeBrowser{newTab: l.newTab}
	b.connected.Store(true)
	l.launched = append(l.launched, b)
	return b, nil
}

func (l *fakeLauncher) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.launched)
}

func (l *fakeLauncher) browser(i int) *fakeBrowser {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launched[i]
}

type fakeBrowser struct {
	connected atomic.Bool
	closed    atomic.Int32
	tabs      atomic.Int32
	newTab    func(b *fakeBrowser) (Tab, error)
}

func (b *fakeBrowser) NewTab(ctx context.Context) (Tab, error) {
	b.tabs.Add(1)
	if b.newTab != nil {
		return b.newTab(b)
	}
	return &fakeTab{png: []byte("png")}, nil
}

func (b *fakeBrowser) Connected(ctx context.Context) bool { return b.connected.Load() }

func (b *fakeBrowser) Close() error {
	b.closed.Add(1)
	b.connected.Store(false)
	return nil
}

// fakeTab records calls and can fail individual steps.
type fakeTab struct {
	png         []byte
	navErr      error
	fontsErr    error
	fontsStall  bool
	shotErr     error
	navDelay    time.Duration
	onNavigate  func(url string)
	onClose     func()
	viewport    Viewport
	navigatedTo string
	closed      bool
}

func (t *fakeTab) SetViewport(ctx context.Context, vp Viewport) error {
	t.viewport = vp
	return nil
}

func (t *fakeTab) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	t.navigatedTo = url
	if t.onNavigate != nil {
		t.onNavigate(url)
	}
	if t.navDelay > 0 {
		select {
		case <-time.After(t.navDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return t.navErr
}

func (t *fakeTab) WaitFonts(ctx context.Context) error {
	if t.fontsStall {
		<-ctx.Done()
		return ctx.Err()
	}
	return t.fontsErr
}

func (t *fakeTab) Screenshot(ctx context.Context) ([]byte, error) {
	if t.shotErr != nil {
		return nil, t.shotErr
	}
	return t.png, nil
}

func (t *fakeTab) Close() error {
	t.closed = true
	if t.onClose != nil {
		t.onClose()
	}
	return nil
}

var errBoom = errors.New("boom")

// countingRecorder counts Recorder calls.
type countingRecorder struct {
	mu       sync.Mutex
	launches int
	open     int
	maxOpen  int
	pages    int
	failed   int
	batches  int
}

func (r *countingRecorder) BrowserLaunched(string, error) {
	r.mu.Lock()
	r.launches++
	r.mu.Unlock()
}

func (r *countingRecorder) TabOpened() {
	r.mu.Lock()
	r.open++
	r.maxOpen = max(r.maxOpen, r.open)
	r.mu.Unlock()
}

func (r *countingRecorder) TabClosed() {
	r.mu.Lock()
	r.open--
	r.mu.Unlock()
}

func (r *countingRecorder) PageRendered(_ int, _ time.Duration, err error) {
	r.mu.Lock()
	r.pages++
	if err != nil {
		r.failed++
	}
	r.mu.Unlock()
}

func (r *countingRecorder) BatchRendered(int, time.Duration, error) {
	r.mu.Lock()
	r.batches++
	r.mu.Unlock()
}
