// Package logging builds the zap logger shared by the server and CLI.
package logging

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// ErrInvalidFormat is returned for an unknown log format.
var ErrInvalidFormat = errors.New("invalid log format")

// ErrInvalidLevel is returned for an unknown log level.
var ErrInvalidLevel = errors.New("invalid log level")

// Options configures New.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	// OutputPaths defaults to stderr.
	OutputPaths []string
}

// ParseLevel maps a level name to a zap level. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return lvl, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return lvl, nil
}

// New builds a logger. JSON output uses zap's production encoder, console
// output the development one with colored levels.
func New(opts Options) (*zap.Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var cfg zap.Config
	switch strings.ToLower(opts.Format) {
	case "", FormatJSON:
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case FormatConsole:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.Development = false
	default:
		return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrInvalidFormat, opts.Format, FormatJSON, FormatConsole)
	}

	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Sampling = nil
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// Must is like New but panics on error.
func Must(opts Options) *zap.Logger {
	l, err := New(opts)
	if err != nil {
		panic(err)
	}
	return l
}
