package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-carousel/internal/assets"
	"github.com/alnah/go-carousel/internal/config"
	"github.com/alnah/go-carousel/internal/hints"
)

// Doctor status values.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"`
	Browser  browserInfo `json:"browser"`
	Env      envInfo     `json:"environment"`
	Theme    themeInfo   `json:"theme"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// browserInfo holds Chrome/Chromium detection results.
type browserInfo struct {
	Engine   string `json:"engine"`
	Found    bool   `json:"found"`
	Path     string `json:"path,omitempty"`
	Version  string `json:"version,omitempty"`
	Sandbox  bool   `json:"sandbox"`
	Launched bool   `json:"launched,omitempty"`
	LaunchMs int64  `json:"launch_ms,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
}

// themeInfo reports whether the configured theme loads.
type themeInfo struct {
	Style       string `json:"style"`
	TemplateSet string `json:"template_set"`
	AssetPath   string   `json:"asset_path,omitempty"`
	Styles      []string `json:"styles,omitempty"`
	OK          bool     `json:"ok"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// Replaced in tests.
var (
	lookBrowserPath = launcher.LookPath
	browserVersion  = func(ctx context.Context, bin string) (string, error) {
		out, err := exec.CommandContext(ctx, bin, "--version").Output() // #nosec G204 -- bin is the configured browser
		return strings.TrimSpace(string(out)), err
	}
)

type doctorFlags struct {
	settings settingsFlags
	json     bool
	launch   bool
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = usage.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	f := &doctorFlags{}
	fs.BoolVar(&f.json, "json", false, "print the report as JSON")
	fs.BoolVar(&f.launch, "launch", false, "also start the browser once")
	addSettingsFlags(fs, &f.settings)
	fs.Usage = func() { printDoctorUsage(env.Stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	cfg, err := resolveConfig(fs, &f.settings, env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}

	result := runDoctor(ctx, cfg, env, f.launch)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, cfg *config.Config, env *Environment, launch bool) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
	}

	checkBrowser(ctx, result, cfg)
	checkEnvironment(result, env)
	checkTheme(result, cfg)
	checkSystem(result)
	if launch && result.Browser.Found {
		checkLaunch(ctx, result, cfg, env)
	}

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkBrowser locates Chrome/Chromium the same way the launcher does.
func checkBrowser(ctx context.Context, result *doctorResult, cfg *config.Config) {
	lc := cfg.Browser.LaunchConfig()
	result.Browser.Engine = cfg.Browser.Engine
	result.Browser.Sandbox = !lc.NoSandbox

	path := lc.Bin
	if path == "" {
		var found bool
		path, found = lookBrowserPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set CAROUSEL_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(path); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Chrome not found at %s", path))
		return
	}
	result.Browser.Found = true
	result.Browser.Path = path

	vctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	version, err := browserVersion(vctx, path)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get Chrome version: %v", err))
		return
	}
	result.Browser.Version = version
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, env *Environment) {
	result.Env.Container, result.Env.ContainerHint = isContainer(env.Getenv)
	result.Env.CI = hints.InCI()

	if (result.Env.Container || result.Env.CI) && result.Browser.Sandbox {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but the sandbox is enabled. Set CAROUSEL_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv("CAROUSEL_CONTAINER") == "1" {
		return true, "CAROUSEL_CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkTheme loads the configured style and template set.
func checkTheme(result *doctorResult, cfg *config.Config) {
	result.Theme = themeInfo{
		Style:       cfg.Theme.Style,
		TemplateSet: cfg.Theme.TemplateSet,
		AssetPath:   cfg.Theme.AssetPath,
	}
	if resolver, err := assets.NewAssetResolver(cfg.Theme.AssetPath); err == nil {
		result.Theme.Styles = resolver.Styles()
	}
	if _, err := newComposer(cfg.Theme); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Theme not usable: %v", err))
		return
	}
	result.Theme.OK = true
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "carousel-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// checkLaunch starts the browser through the manager and closes it again.
func checkLaunch(ctx context.Context, result *doctorResult, cfg *config.Config, env *Environment) {
	quiet := *cfg
	quiet.Log.Level = "error"
	a, err := newApp(&quiet, env)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Browser setup failed: %v", err))
		return
	}
	defer func() { _ = a.close() }()

	start := env.Now()
	lease, err := a.manager.Acquire(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Browser launch failed: %v", err))
		return
	}
	lease.Release()
	result.Browser.Launched = true
	result.Browser.LaunchMs = env.Now().Sub(start).Milliseconds()
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "carousel doctor")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Browser (%s)\n", r.Browser.Engine)
	if r.Browser.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Browser.Path)
		if r.Browser.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Browser.Version)
		}
		if r.Browser.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled")
		}
		if r.Browser.Launched {
			fmt.Fprintf(w, "  [OK] Launch: %dms\n", r.Browser.LaunchMs)
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Theme")
	if r.Theme.OK {
		fmt.Fprintf(w, "  [OK] Style %q, templates %q\n", r.Theme.Style, r.Theme.TemplateSet)
	} else {
		fmt.Fprintln(w, "  [ERROR] Not loadable")
	}
	if len(r.Theme.Styles) > 0 {
		fmt.Fprintf(w, "  Styles: %s\n", strings.Join(r.Theme.Styles, ", "))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to render")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
