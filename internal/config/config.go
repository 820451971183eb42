package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	carousel "github.com/alnah/go-carousel"
	"github.com/alnah/go-carousel/internal/assets"
	"github.com/alnah/go-carousel/internal/fileutil"
	"github.com/alnah/go-carousel/internal/logging"
	"github.com/alnah/go-carousel/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxBrandLength      = 100  // Footer and CTA label
	MaxButtonTextLength = 100  // "Follow for more"
	MaxURLLength        = 2048 // Browser limit
	MaxPathLength       = 4096
	MaxNameLength       = 64 // Style and template set names
	MaxExtraFlags       = 32
)

// Server defaults.
const (
	DefaultAddr            = ":3000"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 5 * time.Minute
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodyBytes    = 1 << 20
	MaxRetries             = 10
)

// AppName names the user config directory.
const AppName = "go-carousel"

// Config holds all service settings.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Browser BrowserConfig `yaml:"browser"`
	Render  RenderConfig  `yaml:"render"`
	Theme   ThemeConfig   `yaml:"theme"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr            string            `yaml:"addr"`
	BaseURL         string            `yaml:"baseURL"` // Empty = derived from the request Host
	ReadTimeout     yamlutil.Duration `yaml:"readTimeout"`
	WriteTimeout    yamlutil.Duration `yaml:"writeTimeout"`
	ShutdownTimeout yamlutil.Duration `yaml:"shutdownTimeout"`
	MaxBodyBytes    int64             `yaml:"maxBodyBytes"`
}

// BrowserConfig defines how the headless browser is launched and recycled.
type BrowserConfig struct {
	Engine      string            `yaml:"engine"` // "rod" or "chromedp"
	Bin         string            `yaml:"bin"`    // Empty = environment, then platform discovery
	NoSandbox   bool              `yaml:"noSandbox"`
	IdleTimeout yamlutil.Duration `yaml:"idleTimeout"`
	ExtraFlags  []string          `yaml:"extraFlags"`
}

// RenderConfig defines batch rendering limits.
type RenderConfig struct {
	Concurrency    int               `yaml:"concurrency"`
	MaxPages       int               `yaml:"maxPages"`
	Retries        int               `yaml:"retries"`
	Backoff        yamlutil.Duration `yaml:"backoff"`
	NavTimeout     yamlutil.Duration `yaml:"navTimeout"`
	FontFallback   yamlutil.Duration `yaml:"fontFallback"`
	PartialResults bool              `yaml:"partialResults"`
	Width          int               `yaml:"width"`
	Height         int               `yaml:"height"`
	Scale          float64           `yaml:"scale"`
}

// ThemeConfig defines the look of rendered slides.
type ThemeConfig struct {
	AssetPath   string `yaml:"assetPath"` // Empty = embedded assets only
	Style       string `yaml:"style"`
	TemplateSet string `yaml:"templateSet"`
	Brand       string `yaml:"brand"`
	ButtonText  string `yaml:"buttonText"`
	Direction   string `yaml:"direction"` // "auto", "ltr", "rtl"
}

// LogConfig defines logger output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// DefaultConfig returns the settings used when no file or override is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ReadTimeout:     yamlutil.Duration(DefaultReadTimeout),
			WriteTimeout:    yamlutil.Duration(DefaultWriteTimeout),
			ShutdownTimeout: yamlutil.Duration(DefaultShutdownTimeout),
			MaxBodyBytes:    DefaultMaxBodyBytes,
		},
		Browser: BrowserConfig{
			Engine:      carousel.EngineRod,
			IdleTimeout: yamlutil.Duration(carousel.DefaultIdleTimeout),
		},
		Render: RenderConfig{
			Concurrency:  carousel.DefaultConcurrency,
			MaxPages:     carousel.DefaultMaxPages,
			Retries:      carousel.DefaultRetries,
			Backoff:      yamlutil.Duration(carousel.DefaultBackoff),
			NavTimeout:   yamlutil.Duration(carousel.DefaultNavTimeout),
			FontFallback: yamlutil.Duration(carousel.DefaultFontFallback),
			Width:        carousel.DefaultWidth,
			Height:       carousel.DefaultHeight,
			Scale:        carousel.DefaultScale,
		},
		Theme: ThemeConfig{
			Style:       assets.DefaultStyleName,
			TemplateSet: assets.DefaultTemplateSetName,
			Direction:   "auto",
		},
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatJSON,
		},
	}
}

// Validate checks values and field lengths. Called automatically by
// LoadConfig, but available for configs assembled from flags and env.
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return err
	}
	if err := c.Browser.validate(); err != nil {
		return err
	}
	if err := c.Render.validate(); err != nil {
		return err
	}
	if err := c.Theme.validate(); err != nil {
		return err
	}
	return c.Log.validate()
}

func (s *ServerConfig) validate() error {
	if s.Addr == "" {
		return invalid("server.addr", "must not be empty")
	}
	if err := validateFieldLength("server.baseURL", s.BaseURL, MaxURLLength); err != nil {
		return err
	}
	if s.BaseURL != "" {
		u, err := url.Parse(s.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("server.baseURL", "must be an absolute http(s) URL, got %q", s.BaseURL)
		}
	}
	for name, d := range map[string]yamlutil.Duration{
		"server.readTimeout":     s.ReadTimeout,
		"server.writeTimeout":    s.WriteTimeout,
		"server.shutdownTimeout": s.ShutdownTimeout,
	} {
		if d < 0 {
			return invalid(name, "must not be negative, got %s", d)
		}
	}
	if s.MaxBodyBytes < 0 {
		return invalid("server.maxBodyBytes", "must not be negative, got %d", s.MaxBodyBytes)
	}
	return nil
}

func (b *BrowserConfig) validate() error {
	switch strings.ToLower(b.Engine) {
	case "", carousel.EngineRod, carousel.EngineChromedp:
	default:
		return invalid("browser.engine", "must be %s or %s, got %q", carousel.EngineRod, carousel.EngineChromedp, b.Engine)
	}
	if err := validateFieldLength("browser.bin", b.Bin, MaxPathLength); err != nil {
		return err
	}
	if b.IdleTimeout < 0 {
		return invalid("browser.idleTimeout", "must not be negative, got %s", b.IdleTimeout)
	}
	if len(b.ExtraFlags) > MaxExtraFlags {
		return invalid("browser.extraFlags", "at most %d flags, got %d", MaxExtraFlags, len(b.ExtraFlags))
	}
	return nil
}

func (r *RenderConfig) validate() error {
	if r.Concurrency < 0 || r.Concurrency > carousel.MaxConcurrency {
		return invalid("render.concurrency", "must be between 0 and %d, got %d", carousel.MaxConcurrency, r.Concurrency)
	}
	if r.MaxPages < 0 {
		return invalid("render.maxPages", "must not be negative, got %d", r.MaxPages)
	}
	if r.Retries < 0 || r.Retries > MaxRetries {
		return invalid("render.retries", "must be between 0 and %d, got %d", MaxRetries, r.Retries)
	}
	if r.Backoff < 0 || r.NavTimeout < 0 || r.FontFallback < 0 {
		return invalid("render", "backoff, navTimeout and fontFallback must not be negative")
	}
	if r.Width < 0 || r.Width > carousel.MaxDimension {
		return invalid("render.width", "must be between 0 and %d, got %d", carousel.MaxDimension, r.Width)
	}
	if r.Height < 0 || r.Height > carousel.MaxDimension {
		return invalid("render.height", "must be between 0 and %d, got %d", carousel.MaxDimension, r.Height)
	}
	if r.Scale < 0 || r.Scale > carousel.MaxScale {
		return invalid("render.scale", "must be between 0 and %g, got %g", carousel.MaxScale, r.Scale)
	}
	return nil
}

func (t *ThemeConfig) validate() error {
	if err := validateFieldLength("theme.assetPath", t.AssetPath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("theme.brand", t.Brand, MaxBrandLength); err != nil {
		return err
	}
	if err := validateFieldLength("theme.buttonText", t.ButtonText, MaxButtonTextLength); err != nil {
		return err
	}
	for field, name := range map[string]string{"theme.style": t.Style, "theme.templateSet": t.TemplateSet} {
		if name == "" {
			continue
		}
		if err := validateFieldLength(field, name, MaxNameLength); err != nil {
			return err
		}
		if err := assets.ValidateAssetName(name); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	switch strings.ToLower(t.Direction) {
	case "", "auto", "ltr", "rtl":
	default:
		return invalid("theme.direction", "must be auto, ltr, or rtl, got %q", t.Direction)
	}
	return nil
}

func (l *LogConfig) validate() error {
	if _, err := logging.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(l.Format) {
	case "", logging.FormatJSON, logging.FormatConsole:
		return nil
	default:
		return invalid("log.format", "must be %s or %s, got %q", logging.FormatJSON, logging.FormatConsole, l.Format)
	}
}

// LaunchConfig converts the browser section, falling back to the
// environment for the binary and sandbox switches.
func (b BrowserConfig) LaunchConfig() carousel.LaunchConfig {
	lc := carousel.DefaultLaunchConfig()
	if b.Bin != "" {
		lc.Bin = b.Bin
		lc.NoSandbox = true
	}
	if b.NoSandbox {
		lc.NoSandbox = true
	}
	lc.ExtraFlags = append([]string(nil), b.ExtraFlags...)
	return lc
}

// Viewport returns the default screenshot geometry.
func (r RenderConfig) Viewport() carousel.Viewport {
	vp := carousel.DefaultViewport()
	if r.Width > 0 {
		vp.Width = r.Width
	}
	if r.Height > 0 {
		vp.Height = r.Height
	}
	if r.Scale > 0 {
		vp.Scale = r.Scale
	}
	return vp
}

// RetryPolicy returns the per-slide retry policy.
func (r RenderConfig) RetryPolicy() carousel.RetryPolicy {
	p := carousel.DefaultRetryPolicy()
	p.Retries = r.Retries
	if r.Backoff > 0 {
		p.Backoff = r.Backoff.Std()
	}
	return p
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidValue, field, fmt.Sprintf(format, args...))
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name on top of
// DefaultConfig. If nameOrPath contains a path separator, it's treated as a
// file path. Otherwise, it's searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-carousel/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
