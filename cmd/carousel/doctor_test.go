package main

// Notes:
// - Browser discovery and the version probe are package variables; tests that
//   replace them do not run in parallel.
// - CI detection reads the real process environment, so warnings are not
//   asserted exactly.

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/alnah/go-carousel/internal/hints"
)

// stubBrowser makes discovery find a fake executable reporting version.
func stubBrowser(t *testing.T, found bool, version string) string {
	t.Helper()
	for _, key := range []string{
		"CAROUSEL_BROWSER_BIN", "ROD_BROWSER_BIN", "CHROME_PATH",
		"CAROUSEL_NO_SANDBOX", "ROD_NO_SANDBOX",
	} {
		t.Setenv(key, "")
	}
	bin := filepath.Join(t.TempDir(), "chromium")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	origLook, origVersion := lookBrowserPath, browserVersion
	t.Cleanup(func() { lookBrowserPath, browserVersion = origLook, origVersion })

	lookBrowserPath = func() (string, bool) { return bin, found }
	browserVersion = func(context.Context, string) (string, error) {
		if version == "" {
			return "", errors.New("no version")
		}
		return version, nil
	}
	return bin
}

func decodeDoctor(t *testing.T, te *testEnv) doctorResult {
	t.Helper()
	var result doctorResult
	if err := json.Unmarshal(te.stdout.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, te.stdout)
	}
	return result
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd - Report contents and exit codes
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_JSONOutput(t *testing.T) {
	bin := stubBrowser(t, true, "Chromium 131.0")
	te := newTestEnv(t, nil)

	code := runDoctorCmd(context.Background(), []string{"--json"}, te.Environment)
	result := decodeDoctor(t, te)

	if code != ExitSuccess || result.Status == statusErrors {
		t.Fatalf("code = %d, status = %s, errors = %v", code, result.Status, result.Errors)
	}
	if !result.Browser.Found || result.Browser.Path != bin {
		t.Errorf("browser = %+v, want found at %s", result.Browser, bin)
	}
	if result.Browser.Version != "Chromium 131.0" {
		t.Errorf("version = %q", result.Browser.Version)
	}
	if result.Browser.Engine != "rod" {
		t.Errorf("engine = %q, want rod", result.Browser.Engine)
	}
	if !result.Theme.OK || result.Theme.Style != "default" {
		t.Errorf("theme = %+v, want default style loaded", result.Theme)
	}
	if !slices.Contains(result.Theme.Styles, "light") {
		t.Errorf("theme styles = %v, want embedded styles listed", result.Theme.Styles)
	}
	if result.Env.OS != runtime.GOOS || result.Env.Arch != runtime.GOARCH {
		t.Errorf("platform = %s/%s", result.Env.OS, result.Env.Arch)
	}
	if !result.System.TempWritable {
		t.Error("temp directory reported not writable")
	}
	if result.Browser.Launched {
		t.Error("browser launched without --launch")
	}
}

func TestRunDoctorCmd_BrowserNotFound(t *testing.T) {
	stubBrowser(t, false, "")
	te := newTestEnv(t, nil)

	code := runDoctorCmd(context.Background(), nil, te.Environment)
	if code != ExitGeneral {
		t.Errorf("code = %d, want %d", code, ExitGeneral)
	}
	out := te.stdout.String()
	for _, want := range []string{"carousel doctor", "[ERROR] Not found", "CAROUSEL_BROWSER_BIN", "Status: Not ready"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunDoctorCmd_VersionUnavailable(t *testing.T) {
	stubBrowser(t, true, "")
	te := newTestEnv(t, nil)

	code := runDoctorCmd(context.Background(), []string{"--json"}, te.Environment)
	result := decodeDoctor(t, te)
	if code != ExitSuccess || result.Status != statusWarnings {
		t.Errorf("code = %d, status = %s, want warnings", code, result.Status)
	}
}

func TestRunDoctorCmd_CustomBinDisablesSandbox(t *testing.T) {
	stubBrowser(t, false, "Chromium 131.0")
	bin := filepath.Join(t.TempDir(), "chrome")
	if err := os.WriteFile(bin, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	te := newTestEnv(t, nil)

	runDoctorCmd(context.Background(), []string{"--json", "--browser-bin", bin}, te.Environment)
	result := decodeDoctor(t, te)
	if result.Browser.Path != bin {
		t.Errorf("path = %q, want the configured %q", result.Browser.Path, bin)
	}
	if result.Browser.Sandbox {
		t.Error("sandbox reported enabled for a custom binary")
	}
}

func TestRunDoctorCmd_Launch(t *testing.T) {
	stubBrowser(t, true, "Chromium 131.0")

	tests := []struct {
		name       string
		launcher   *fetchLauncher
		wantCode   int
		wantLaunch bool
	}{
		{"launches", &fetchLauncher{}, ExitSuccess, true},
		{"launch fails", &fetchLauncher{err: errors.New("no display")}, ExitGeneral, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(t, nil).withLauncher(tt.launcher)
			code := runDoctorCmd(context.Background(), []string{"--json", "--launch"}, te.Environment)
			result := decodeDoctor(t, te)
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d; errors = %v", code, tt.wantCode, result.Errors)
			}
			if result.Browser.Launched != tt.wantLaunch {
				t.Errorf("launched = %v, want %v", result.Browser.Launched, tt.wantLaunch)
			}
			if tt.launcher.launches.Load() != 1 {
				t.Errorf("launches = %d, want 1", tt.launcher.launches.Load())
			}
		})
	}
}

func TestRunDoctorCmd_BadTheme(t *testing.T) {
	stubBrowser(t, true, "Chromium 131.0")
	te := newTestEnv(t, nil)

	code := runDoctorCmd(context.Background(), []string{"--json", "--style", "missing"}, te.Environment)
	result := decodeDoctor(t, te)
	if code != ExitGeneral || result.Theme.OK {
		t.Errorf("code = %d, theme = %+v, want theme error", code, result.Theme)
	}
}

func TestRunDoctorCmd_UsageErrors(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, nil)
	if code := runDoctorCmd(context.Background(), []string{"--bogus"}, te.Environment); code != ExitUsage {
		t.Errorf("code = %d, want %d", code, ExitUsage)
	}

	te = newTestEnv(t, map[string]string{"CAROUSEL_RETRIES": "x"})
	if code := runDoctorCmd(context.Background(), nil, te.Environment); code != ExitUsage {
		t.Errorf("bad env code = %d, want %d", code, ExitUsage)
	}

	te = newTestEnv(t, nil)
	if code := runDoctorCmd(context.Background(), []string{"--help"}, te.Environment); code != ExitSuccess {
		t.Errorf("--help code = %d, want %d", code, ExitSuccess)
	}
}

// ---------------------------------------------------------------------------
// TestIsContainer - Container signal priority
// ---------------------------------------------------------------------------

func TestIsContainer(t *testing.T) {
	orig := hints.IsInContainer
	t.Cleanup(func() { hints.IsInContainer = orig })

	tests := []struct {
		name       string
		vars       map[string]string
		dockerenv  bool
		want       bool
		wantSignal string
	}{
		{"nothing", nil, false, false, ""},
		{"explicit override", map[string]string{"CAROUSEL_CONTAINER": "1"}, true, true, "CAROUSEL_CONTAINER=1"},
		{"dockerenv", nil, true, true, "/.dockerenv"},
		{"podman", map[string]string{"container": "podman"}, false, true, "container=podman"},
		{"kubernetes", map[string]string{"KUBERNETES_SERVICE_HOST": "10.0.0.1"}, false, true, "KUBERNETES_SERVICE_HOST"},
	}
	for _, tt := range tests {
		hints.IsInContainer = func() bool { return tt.dockerenv }
		got, signal := isContainer(func(k string) string { return tt.vars[k] })
		if got != tt.want || signal != tt.wantSignal {
			t.Errorf("%s: isContainer() = (%v, %q), want (%v, %q)", tt.name, got, signal, tt.want, tt.wantSignal)
		}
	}
}
