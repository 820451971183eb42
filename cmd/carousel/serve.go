package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/alnah/go-carousel/internal/config"
	"github.com/alnah/go-carousel/internal/yamlutil"
)

// serveFlags holds flags for the serve command.
type serveFlags struct {
	settings        settingsFlags
	addr            string
	baseURL         string
	shutdownTimeout time.Duration
	maxBody         int64
}

func parseServeFlags(args []string, env *Environment) (*flag.FlagSet, *serveFlags, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default :3000)")
	fs.StringVar(&f.baseURL, "base-url", "", "address the browser uses to reach this server")
	fs.DurationVar(&f.shutdownTimeout, "shutdown-timeout", 0, "grace period for in-flight requests")
	fs.Int64Var(&f.maxBody, "max-body", 0, "maximum request body in bytes")
	addSettingsFlags(fs, &f.settings)

	fs.Usage = func() { printServeUsage(env.Stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, nil, fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, fs.Args())
	}
	return fs, f, nil
}

// runServe runs the HTTP service until ctx is canceled, then drains
// requests and closes the browser.
func runServe(ctx context.Context, args []string, env *Environment) error {
	fs, f, err := parseServeFlags(args, env)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(fs, &f.settings, env)
	if err != nil {
		return err
	}
	if fs.Changed("addr") {
		cfg.Server.Addr = f.addr
	}
	if fs.Changed("base-url") {
		cfg.Server.BaseURL = f.baseURL
	}
	if fs.Changed("max-body") {
		cfg.Server.MaxBodyBytes = f.maxBody
	}
	if fs.Changed("shutdown-timeout") {
		cfg.Server.ShutdownTimeout = yamlutil.Duration(f.shutdownTimeout)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := newApp(cfg, env)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); cerr != nil {
			a.logger.Warn("closing browser", zap.Error(cerr))
		}
	}()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
	}

	srv := a.newServer("")
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	a.logger.Info("carousel ready",
		zap.String("version", Version),
		zap.String("addr", ln.Addr().String()),
		zap.String("engine", cfg.Browser.Engine),
		zap.Int("pid", os.Getpid()))

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	grace := cfg.Server.ShutdownTimeout.Std()
	if grace <= 0 {
		grace = config.DefaultShutdownTimeout
	}
	a.logger.Info("shutting down", zap.Duration("grace", grace))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return <-serveErr
}
