package carousel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Compile-time interface checks.
var (
	_ Launcher = (*ChromedpLauncher)(nil)
	_ Browser  = (*chromedpBrowser)(nil)
	_ Tab      = (*chromedpTab)(nil)
)

// ChromedpLauncher starts Chrome through chromedp's exec allocator.
// Unlike rod it never downloads a browser: Chrome must be installed or Bin set.
type ChromedpLauncher struct {
	cfg LaunchConfig
}

// NewChromedpLauncher creates a ChromedpLauncher.
func NewChromedpLauncher(cfg LaunchConfig) *ChromedpLauncher {
	return &ChromedpLauncher{cfg: cfg}
}

// Name implements Launcher.
func (l *ChromedpLauncher) Name() string { return EngineChromedp }

// allocatorOptions builds the exec allocator flags from the launch config.
func (l *ChromedpLauncher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for _, f := range l.cfg.flags() {
		if f[1] == "" {
			opts = append(opts, chromedp.Flag(f[0], true))
		} else {
			opts = append(opts, chromedp.Flag(f[0], f[1]))
		}
	}
	if !l.cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if l.cfg.Bin != "" {
		opts = append(opts, chromedp.ExecPath(l.cfg.Bin))
	}
	if l.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts
}

// Launch starts the browser eagerly so spawn errors surface here.
// The browser outlives ctx; ctx only aborts a launch that has not begun.
func (l *ChromedpLauncher) Launch(ctx context.Context) (Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), l.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	return &chromedpBrowser{
		ctx:         browserCtx,
		cancel:      browserCancel,
		allocCancel: allocCancel,
	}, nil
}

type chromedpBrowser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	closeOnce sync.Once
}

// NewTab creates a target in a new browser context for isolation.
func (b *chromedpBrowser) NewTab(ctx context.Context) (Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tabCtx, cancel := chromedp.NewContext(b.ctx, chromedp.WithNewBrowserContext())
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, err
	}
	return &chromedpTab{ctx: tabCtx, cancel: cancel}, nil
}

// Connected asks the browser for its version over the browser-level executor.
func (b *chromedpBrowser) Connected(ctx context.Context) bool {
	if b.ctx.Err() != nil {
		return false
	}
	runCtx, cancel := bind(b.ctx, ctx, pingTimeout)
	defer cancel()

	err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		c := chromedp.FromContext(ctx)
		if c == nil || c.Browser == nil {
			return fmt.Errorf("no browser attached")
		}
		_, _, _, _, _, err := browser.GetVersion().Do(cdp.WithExecutor(ctx, c.Browser))
		return err
	}))
	return err == nil
}

func (b *chromedpBrowser) Close() error {
	var err error
	b.closeOnce.Do(func() {
		err = chromedp.Cancel(b.ctx)
		b.cancel()
		b.allocCancel()
	})
	return err
}

type chromedpTab struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func (t *chromedpTab) SetViewport(ctx context.Context, vp Viewport) error {
	runCtx, cancel := bind(t.ctx, ctx, 0)
	defer cancel()
	return chromedp.Run(runCtx,
		chromedp.EmulateViewport(int64(vp.Width), int64(vp.Height), chromedp.EmulateScale(vp.Scale)),
	)
}

// navEvents collects document responses and networkIdle events per loader.
// Events can arrive before page.Navigate returns the loader they belong to.
type navEvents struct {
	mu      sync.Mutex
	status  map[cdp.LoaderID]int64
	idle    map[cdp.LoaderID]bool
	changed chan struct{}
}

func newNavEvents() *navEvents {
	return &navEvents{
		status:  make(map[cdp.LoaderID]int64),
		idle:    make(map[cdp.LoaderID]bool),
		changed: make(chan struct{}, 1),
	}
}

func (n *navEvents) handle(ev any) {
	n.mu.Lock()
	switch e := ev.(type) {
	case *network.EventResponseReceived:
		if e.Type != network.ResourceTypeDocument || e.Response == nil {
			n.mu.Unlock()
			return
		}
		n.status[e.LoaderID] = e.Response.Status
	case *page.EventLifecycleEvent:
		if e.Name != "networkIdle" {
			n.mu.Unlock()
			return
		}
		n.idle[e.LoaderID] = true
	default:
		n.mu.Unlock()
		return
	}
	n.mu.Unlock()

	select {
	case n.changed <- struct{}{}:
	default:
	}
}

// state reports the document status and whether the network went idle for loader.
func (n *navEvents) state(loader cdp.LoaderID) (int, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return int(n.status[loader]), n.idle[loader]
}

// Navigate enables lifecycle events and waits for networkIdle of the new
// document. Enabling lifecycle events replays the state of about:blank, so
// events are matched on the loader page.Navigate returns.
func (t *chromedpTab) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	runCtx, cancel := bind(t.ctx, ctx, timeout)
	defer cancel()

	events := newNavEvents()
	chromedp.ListenTarget(runCtx, events.handle)

	var nav page.NavigateReturns
	if err := chromedp.Run(runCtx,
		network.Enable(),
		page.SetLifecycleEventsEnabled(true),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return cdp.Execute(ctx, page.CommandNavigate, page.Navigate(url), &nav)
		}),
	); err != nil {
		return err
	}
	if nav.ErrorText != "" {
		return fmt.Errorf("navigating: %s", nav.ErrorText)
	}

	for {
		status, idle := events.state(nav.LoaderID)
		if err := documentStatus(status); err != nil {
			return err
		}
		if idle {
			return nil
		}
		select {
		case <-events.changed:
		case <-runCtx.Done():
			return fmt.Errorf("waiting for network idle: %w", runCtx.Err())
		}
	}
}

func (t *chromedpTab) WaitFonts(ctx context.Context) error {
	runCtx, cancel := bind(t.ctx, ctx, 0)
	defer cancel()

	var ready bool
	return chromedp.Run(runCtx, chromedp.Evaluate(
		`document.fonts.ready.then(() => true)`,
		&ready,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams { return p.WithAwaitPromise(true) },
	))
}

func (t *chromedpTab) Screenshot(ctx context.Context) ([]byte, error) {
	runCtx, cancel := bind(t.ctx, ctx, 0)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(runCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close cancels the tab context, which closes the target and disposes its
// browser context.
func (t *chromedpTab) Close() error {
	t.cancel()
	return nil
}

// bind derives a context from the chromedp context base that is also
// cancelled when caller is done, optionally bounded by timeout.
// Cancelling a child of a chromedp context aborts the action without closing
// the target.
func bind(base, caller context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(base, timeout)
	} else {
		ctx, cancel = context.WithCancel(base)
	}
	stop := context.AfterFunc(caller, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
