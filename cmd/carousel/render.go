package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	carousel "github.com/alnah/go-carousel"
	"github.com/alnah/go-carousel/internal/fileutil"
)

// Sentinel errors for the render command.
var (
	ErrReadRequest = errors.New("failed to read request file")
	ErrWriteImage  = errors.New("failed to write image")
)

// File permission constants.
const filePermissions = 0o644 // rw-r--r--: owner read+write, others read

// renderCmdFlags holds flags for the render command.
type renderCmdFlags struct {
	settings settingsFlags
	output   string
	pattern  string
}

func parseRenderFlags(args []string, env *Environment) (*flag.FlagSet, *renderCmdFlags, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	f := &renderCmdFlags{}

	fs.StringVarP(&f.output, "output", "o", ".", "output directory")
	fs.StringVar(&f.pattern, "pattern", fileutil.DefaultSlidePattern, "file name pattern, one %d verb (1-based)")
	addSettingsFlags(fs, &f.settings)

	fs.Usage = func() { printRenderUsage(env.Stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() != 1 {
		return nil, nil, fmt.Errorf("%w: render needs exactly one request file (or - for stdin)", ErrUsage)
	}
	if err := fileutil.ValidateSlidePattern(f.pattern); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return fs, f, nil
}

// runRender renders a request file to PNG files. The render target is
// hosted on a loopback listener for the duration of the command.
func runRender(ctx context.Context, args []string, env *Environment) error {
	fs, f, err := parseRenderFlags(args, env)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(fs, &f.settings, env)
	if err != nil {
		return err
	}

	body, err := readRequest(fs.Arg(0), env.Stdin)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, env)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	req, err := carousel.ParseRequest(body, a.renderer.MaxPages())
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("starting render target: %w", err)
	}
	baseURL := "http://" + ln.Addr().String()
	srv := a.newServer(baseURL)
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	start := env.Now()
	result, err := a.renderer.Render(ctx, baseURL, req)
	if err != nil {
		return err
	}

	if err := fileutil.EnsureDir(f.output); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteImage, err)
	}

	written := 0
	for _, o := range result.Outcomes {
		if !o.OK() {
			fmt.Fprintf(env.Stderr, "slide %d failed after %d attempt(s): %v\n", o.Index+1, o.Attempts, o.Err.Err)
			continue
		}
		path := fileutil.SlidePath(f.output, f.pattern, o.Index)
		if err := fileutil.WriteFileAtomic(path, o.Image, filePermissions); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrWriteImage, path, err)
		}
		written++
		if !f.settings.common.quiet {
			fmt.Fprintf(env.Stdout, "%s\n", path)
		}
	}

	a.logger.Debug("render command finished",
		zap.String("batch_id", result.ID),
		zap.Int("written", written),
		zap.Duration("took", env.Now().Sub(start)))

	if ferr := result.Err(); ferr != nil {
		return fmt.Errorf("%d of %d slides written: %w", written, len(result.Outcomes), ferr)
	}
	return nil
}

// readRequest reads the request body from path, or from stdin for "-".
func readRequest(path string, stdin io.Reader) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) // #nosec G304 -- path is user-provided
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadRequest, err)
	}
	return data, nil
}
