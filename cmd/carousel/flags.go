package main

import (
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-carousel/internal/config"
	"github.com/alnah/go-carousel/internal/yamlutil"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	logLevel  string
	logFormat string
}

// browserFlags holds browser launch flags.
type browserFlags struct {
	engine      string
	bin         string
	noSandbox   bool
	idleTimeout time.Duration
	extraFlags  []string
}

// renderFlags holds batch rendering flags.
type renderFlags struct {
	concurrency  int
	maxPages     int
	retries      int
	backoff      time.Duration
	navTimeout   time.Duration
	fontFallback time.Duration
	partial      bool
	width        int
	height       int
	scale        float64
}

// themeFlags holds slide appearance flags.
type themeFlags struct {
	assetPath   string
	style       string
	templateSet string
	brand       string
	buttonText  string
	direction   string
}

// settingsFlags groups every flag that maps onto config.Config.
type settingsFlags struct {
	common  commonFlags
	browser browserFlags
	render  renderFlags
	theme   themeFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only log errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging, console format")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: json, console")
}

// addBrowserFlags adds browser flags to a FlagSet.
func addBrowserFlags(fs *flag.FlagSet, f *browserFlags) {
	fs.StringVar(&f.engine, "engine", "", "browser engine: rod, chromedp")
	fs.StringVar(&f.bin, "browser-bin", "", "Chrome/Chromium executable")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "disable the Chrome sandbox (containers)")
	fs.DurationVar(&f.idleTimeout, "idle-timeout", 0, "replace the browser after this much idle time")
	fs.StringArrayVar(&f.extraFlags, "browser-flag", nil, "extra Chrome flag, name or name=value (repeatable)")
}

// addRenderFlags adds rendering flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.IntVarP(&f.concurrency, "concurrency", "j", 0, "tabs rendered in parallel per request (1-16)")
	fs.IntVar(&f.maxPages, "max-pages", 0, "maximum slides per request")
	fs.IntVar(&f.retries, "retries", 0, "retries per slide after the first attempt")
	fs.DurationVar(&f.backoff, "backoff", 0, "base wait between retries, grows linearly")
	fs.DurationVar(&f.navTimeout, "nav-timeout", 0, "per-navigation timeout")
	fs.DurationVar(&f.fontFallback, "font-fallback", 0, "wait used when font readiness cannot be observed")
	fs.BoolVar(&f.partial, "partial", false, "return rendered slides even if some fail")
	fs.IntVar(&f.width, "width", 0, "viewport width in CSS pixels")
	fs.IntVar(&f.height, "height", 0, "viewport height in CSS pixels")
	fs.Float64Var(&f.scale, "scale", 0, "device scale factor")
}

// addThemeFlags adds theme flags to a FlagSet.
func addThemeFlags(fs *flag.FlagSet, f *themeFlags) {
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory (styles/, templates/)")
	fs.StringVar(&f.style, "style", "", "style name")
	fs.StringVar(&f.templateSet, "template-set", "", "template set name")
	fs.StringVar(&f.brand, "brand", "", "brand label in footer and button")
	fs.StringVar(&f.buttonText, "button-text", "", "default end slide button text")
	fs.StringVar(&f.direction, "direction", "", "text direction: auto, ltr, rtl")
}

// addSettingsFlags adds every config-mapped flag group.
func addSettingsFlags(fs *flag.FlagSet, f *settingsFlags) {
	addCommonFlags(fs, &f.common)
	addBrowserFlags(fs, &f.browser)
	addRenderFlags(fs, &f.render)
	addThemeFlags(fs, &f.theme)
}

// applyFlags copies explicitly set flags into cfg. Flags left at their
// zero value never override env or file settings.
func applyFlags(fs *flag.FlagSet, f *settingsFlags, cfg *config.Config) {
	set := fs.Changed

	if set("log-level") {
		cfg.Log.Level = f.common.logLevel
	}
	if set("log-format") {
		cfg.Log.Format = f.common.logFormat
	}
	if f.common.verbose {
		cfg.Log.Level = "debug"
		if !set("log-format") {
			cfg.Log.Format = "console"
		}
	}
	if f.common.quiet {
		cfg.Log.Level = "error"
	}

	if set("engine") {
		cfg.Browser.Engine = f.browser.engine
	}
	if set("browser-bin") {
		cfg.Browser.Bin = f.browser.bin
	}
	if set("no-sandbox") {
		cfg.Browser.NoSandbox = f.browser.noSandbox
	}
	if set("idle-timeout") {
		cfg.Browser.IdleTimeout = yamlutil.Duration(f.browser.idleTimeout)
	}
	if set("browser-flag") {
		cfg.Browser.ExtraFlags = append(cfg.Browser.ExtraFlags, f.browser.extraFlags...)
	}

	if set("concurrency") {
		cfg.Render.Concurrency = f.render.concurrency
	}
	if set("max-pages") {
		cfg.Render.MaxPages = f.render.maxPages
	}
	if set("retries") {
		cfg.Render.Retries = f.render.retries
	}
	if set("backoff") {
		cfg.Render.Backoff = yamlutil.Duration(f.render.backoff)
	}
	if set("nav-timeout") {
		cfg.Render.NavTimeout = yamlutil.Duration(f.render.navTimeout)
	}
	if set("font-fallback") {
		cfg.Render.FontFallback = yamlutil.Duration(f.render.fontFallback)
	}
	if set("partial") {
		cfg.Render.PartialResults = f.render.partial
	}
	if set("width") {
		cfg.Render.Width = f.render.width
	}
	if set("height") {
		cfg.Render.Height = f.render.height
	}
	if set("scale") {
		cfg.Render.Scale = f.render.scale
	}

	if set("asset-path") {
		cfg.Theme.AssetPath = f.theme.assetPath
	}
	if set("style") {
		cfg.Theme.Style = f.theme.style
	}
	if set("template-set") {
		cfg.Theme.TemplateSet = f.theme.templateSet
	}
	if set("brand") {
		cfg.Theme.Brand = f.theme.brand
	}
	if set("button-text") {
		cfg.Theme.ButtonText = f.theme.buttonText
	}
	if set("direction") {
		cfg.Theme.Direction = f.theme.direction
	}
}
