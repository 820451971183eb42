package carousel

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-carousel/internal/process"
)

// Time allowed for control-channel calls that must not hang shutdown or health checks.
const (
	pingTimeout  = 2 * time.Second
	closeTimeout = 5 * time.Second
)

// Compile-time interface checks.
var (
	_ Launcher = (*RodLauncher)(nil)
	_ Browser  = (*rodBrowser)(nil)
	_ Tab      = (*rodTab)(nil)
)

// RodLauncher starts Chrome through go-rod's launcher.
// Rod downloads a managed Chromium on first run when none is found.
type RodLauncher struct {
	cfg LaunchConfig
}

// NewRodLauncher creates a RodLauncher.
func NewRodLauncher(cfg LaunchConfig) *RodLauncher {
	return &RodLauncher{cfg: cfg}
}

// Name implements Launcher.
func (l *RodLauncher) Name() string { return EngineRod }

// Launch starts a browser process and connects to its DevTools endpoint.
func (l *RodLauncher) Launch(ctx context.Context) (Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lc := launcher.New().Headless(l.cfg.Headless)
	if l.cfg.Bin != "" {
		lc = lc.Bin(l.cfg.Bin)
	}
	if l.cfg.NoSandbox {
		lc = lc.NoSandbox(true)
	}
	for _, f := range l.cfg.flags() {
		if f[1] == "" {
			lc = lc.Set(flags.Flag(f[0]))
		} else {
			lc = lc.Set(flags.Flag(f[0]), f[1])
		}
	}

	u, err := lc.Launch()
	if err != nil {
		return nil, fmt.Errorf("starting browser process: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		lc.Kill()
		process.KillGroup(lc.PID())
		return nil, fmt.Errorf("connecting to %s: %w", u, err)
	}

	return &rodBrowser{browser: b, launcher: lc}, nil
}

// rodBrowser is a connected rod.Browser plus the launcher that owns the process.
type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// NewTab opens a page inside a fresh incognito browser context so cookies,
// storage and cache never leak between slides.
func (b *rodBrowser) NewTab(ctx context.Context) (Tab, error) {
	incognito, err := b.browser.Context(ctx).Incognito()
	if err != nil {
		return nil, err
	}
	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = incognito.Context(context.Background()).Timeout(closeTimeout).Close()
		return nil, err
	}
	return &rodTab{context: incognito, page: page}, nil
}

// Connected pings the browser over CDP.
func (b *rodBrowser) Connected(ctx context.Context) bool {
	_, err := proto.BrowserGetVersion{}.Call(b.browser.Context(ctx).Timeout(pingTimeout))
	return err == nil
}

// Close shuts the browser down and kills any orphaned helper processes.
func (b *rodBrowser) Close() error {
	err := b.browser.Context(context.Background()).Timeout(closeTimeout).Close()
	pid := b.launcher.PID()
	b.launcher.Kill()
	process.KillGroup(pid)
	b.launcher.Cleanup()
	return err
}

type rodTab struct {
	context *rod.Browser
	page    *rod.Page
}

func (t *rodTab) SetViewport(ctx context.Context, vp Viewport) error {
	return t.page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             vp.Width,
		Height:            vp.Height,
		DeviceScaleFactor: vp.Scale,
	})
}

// Navigate waits for the networkIdle lifecycle event of the new document,
// the equivalent of puppeteer's networkidle0. Events are matched on the
// navigation's loader so the replayed state of about:blank is ignored.
func (t *rodTab) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	p := t.page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	if err := (proto.PageSetLifecycleEventsEnabled{Enabled: true}).Call(p); err != nil {
		return err
	}

	var (
		loader proto.NetworkLoaderID
		status int
		err    error
	)
	// Events are buffered from here on and dispatched inside wait, after the
	// loader is known.
	wait := p.EachEvent(
		func(e *proto.NetworkResponseReceived) bool {
			if e.LoaderID != loader || e.Type != proto.NetworkResourceTypeDocument || e.Response == nil {
				return false
			}
			status = e.Response.Status
			err = documentStatus(status)
			return err != nil
		},
		func(e *proto.PageLifecycleEvent) bool {
			return e.LoaderID == loader && e.Name == proto.PageLifecycleEventNameNetworkIdle
		},
	)

	res, navErr := proto.PageNavigate{URL: url}.Call(p)
	if navErr != nil {
		return navErr
	}
	if res.ErrorText != "" {
		return fmt.Errorf("navigating: %s", res.ErrorText)
	}
	loader = res.LoaderID
	wait()

	if err != nil {
		return err
	}
	if ctxErr := p.GetContext().Err(); ctxErr != nil {
		return fmt.Errorf("waiting for network idle: %w", ctxErr)
	}
	return nil
}

func (t *rodTab) WaitFonts(ctx context.Context) error {
	_, err := t.page.Context(ctx).Eval(`() => document.fonts.ready.then(() => true)`)
	return err
}

func (t *rodTab) Screenshot(ctx context.Context) ([]byte, error) {
	return t.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

// Close disposes the page and its incognito context. It ignores the caller's
// context so a cancelled request still releases the tab.
func (t *rodTab) Close() error {
	pageErr := t.page.Context(context.Background()).Timeout(closeTimeout).Close()
	ctxErr := t.context.Context(context.Background()).Timeout(closeTimeout).Close()
	if pageErr != nil {
		return pageErr
	}
	return ctxErr
}
