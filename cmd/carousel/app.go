package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	carousel "github.com/alnah/go-carousel"
	"github.com/alnah/go-carousel/internal/assets"
	"github.com/alnah/go-carousel/internal/config"
	"github.com/alnah/go-carousel/internal/hints"
	"github.com/alnah/go-carousel/internal/logging"
	"github.com/alnah/go-carousel/internal/metrics"
	"github.com/alnah/go-carousel/internal/pipeline"
	"github.com/alnah/go-carousel/internal/server"
)

// ErrUsage is returned for invalid command-line usage.
var ErrUsage = errors.New("invalid usage")

// resolveConfig builds the effective config.
// Precedence: flags > CAROUSEL_* env > config file > defaults.
func resolveConfig(fs *flag.FlagSet, f *settingsFlags, env *Environment) (*config.Config, error) {
	warnUnknownEnvVars(env.Stderr, env.Environ())

	name := f.common.config
	if name == "" {
		name = env.Getenv("CAROUSEL_CONFIG")
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	if err := applyEnvConfig(env.Getenv, cfg); err != nil {
		return nil, err
	}
	applyFlags(fs, f, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app wires the renderer stack from a config.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *metrics.Recorder
	manager  *carousel.BrowserManager
	renderer *carousel.Renderer
	composer *pipeline.Composer
}

// newApp builds the logger, theme, browser manager and renderer. The browser
// itself is launched on first use.
func newApp(cfg *config.Config, env *Environment) (*app, error) {
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}

	composer, err := newComposer(cfg.Theme)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	launcher, err := env.NewLauncher(cfg.Browser.Engine, cfg.Browser.LaunchConfig())
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	rec := metrics.New()
	managerOpts := []carousel.ManagerOption{
		carousel.WithManagerLogger(logger.Named("browser")),
		carousel.WithManagerRecorder(rec),
	}
	if d := cfg.Browser.IdleTimeout.Std(); d > 0 {
		managerOpts = append(managerOpts, carousel.WithIdleTimeout(d))
	}
	manager := carousel.NewBrowserManager(launcher, managerOpts...)

	rendererOpts := []carousel.Option{
		carousel.WithLogger(logger.Named("render")),
		carousel.WithRecorder(rec),
		carousel.WithRetryPolicy(cfg.Render.RetryPolicy()),
		carousel.WithViewport(cfg.Render.Viewport()),
		carousel.WithPartialResults(cfg.Render.PartialResults),
		carousel.WithFontFallback(cfg.Render.FontFallback.Std()),
	}
	if cfg.Render.Concurrency > 0 {
		rendererOpts = append(rendererOpts, carousel.WithConcurrency(cfg.Render.Concurrency))
	}
	if cfg.Render.MaxPages > 0 {
		rendererOpts = append(rendererOpts, carousel.WithMaxPages(cfg.Render.MaxPages))
	}
	if d := cfg.Render.NavTimeout.Std(); d > 0 {
		rendererOpts = append(rendererOpts, carousel.WithNavTimeout(d))
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  rec,
		manager:  manager,
		renderer: carousel.NewRenderer(manager, rendererOpts...),
		composer: composer,
	}, nil
}

// newServer returns the HTTP server for the app. baseURL overrides the
// configured one when not empty.
func (a *app) newServer(baseURL string) *server.Server {
	if baseURL == "" {
		baseURL = a.cfg.Server.BaseURL
	}
	return server.New(a.renderer, a.composer,
		server.WithLogger(a.logger.Named("http")),
		server.WithBaseURL(baseURL),
		server.WithMaxBodySize(a.cfg.Server.MaxBodyBytes),
		server.WithReadTimeout(a.cfg.Server.ReadTimeout.Std()),
		server.WithWriteTimeout(a.cfg.Server.WriteTimeout.Std()),
		server.WithMetricsHandler(a.metrics.Handler()),
		server.WithBrowserStatus(a.manager),
	)
}

// close shuts the browser down and flushes logs.
func (a *app) close() error {
	err := a.manager.Close()
	_ = a.logger.Sync()
	return err
}

// newComposer loads the theme assets, preferring the custom asset path.
func newComposer(t config.ThemeConfig) (*pipeline.Composer, error) {
	resolver, err := assets.NewAssetResolver(t.AssetPath)
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}
	theme, err := resolver.LoadTheme(t.Style, t.TemplateSet)
	if err != nil {
		return nil, fmt.Errorf("loading theme: %w", err)
	}
	return pipeline.NewComposer(theme.Templates, theme.CSS, pipeline.Theme{
		Brand:      t.Brand,
		ButtonText: t.ButtonText,
		Direction:  t.Direction,
	})
}

// hintFor returns an actionable hint for well-known failures.
func hintFor(err error) string {
	switch {
	case errors.Is(err, carousel.ErrBrowserLaunch):
		return hints.ForBrowserLaunch()
	case errors.Is(err, carousel.ErrNavigation):
		return hints.ForNavigationTimeout() + hints.ForRenderTarget()
	case errors.Is(err, carousel.ErrRenderFailed):
		return hints.ForRenderFailed()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(configSearchPaths(err))
	case errors.Is(err, ErrWriteImage):
		return hints.ForOutputDirectory()
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForAssetNotFound(assets.Styles())
	case errors.Is(err, syscall.EADDRINUSE):
		addr := "that address"
		var op *net.OpError
		if errors.As(err, &op) && op.Addr != nil {
			addr = op.Addr.String()
		}
		return hints.ForAddrInUse(addr)
	}
	return ""
}

// configSearchPaths extracts the tried paths from a not-found error.
func configSearchPaths(err error) []string {
	_, tried, ok := strings.Cut(err.Error(), "tried ")
	if !ok {
		if dir, derr := os.UserConfigDir(); derr == nil {
			return []string{filepath.Join(dir, config.AppName, "carousel.yaml")}
		}
		return nil
	}
	return strings.Split(tried, ", ")
}
