package main

import (
	"testing"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-carousel/internal/config"
)

func parseSettings(t *testing.T, args ...string) (*flag.FlagSet, *settingsFlags) {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := &settingsFlags{}
	addSettingsFlags(fs, f)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}
	return fs, f
}

// ---------------------------------------------------------------------------
// TestApplyFlags - Only explicitly set flags override
// ---------------------------------------------------------------------------

func TestApplyFlags_OnlyChanged(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Theme.Brand = "from-file"
	cfg.Render.Retries = 4

	fs, f := parseSettings(t, "-j", "6", "--backoff", "250ms", "--browser-flag", "lang=fr", "--direction", "rtl")
	applyFlags(fs, f, cfg)

	if cfg.Render.Concurrency != 6 {
		t.Errorf("concurrency = %d, want 6", cfg.Render.Concurrency)
	}
	if cfg.Render.Backoff.Std() != 250*time.Millisecond {
		t.Errorf("backoff = %s, want 250ms", cfg.Render.Backoff)
	}
	if len(cfg.Browser.ExtraFlags) != 1 || cfg.Browser.ExtraFlags[0] != "lang=fr" {
		t.Errorf("extra flags = %v, want [lang=fr]", cfg.Browser.ExtraFlags)
	}
	if cfg.Theme.Direction != "rtl" {
		t.Errorf("direction = %q, want rtl", cfg.Theme.Direction)
	}
	if cfg.Theme.Brand != "from-file" || cfg.Render.Retries != 4 {
		t.Error("unset flags overrode file values")
	}
}

func TestApplyFlags_ZeroValueWhenSet(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	fs, f := parseSettings(t, "--retries", "0", "--idle-timeout", "0s")
	applyFlags(fs, f, cfg)

	if cfg.Render.Retries != 0 {
		t.Errorf("retries = %d, want explicit 0", cfg.Render.Retries)
	}
	if cfg.Browser.IdleTimeout.Std() != 0 {
		t.Errorf("idle timeout = %s, want explicit 0", cfg.Browser.IdleTimeout)
	}
}

func TestApplyFlags_Logging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantLevel  string
		wantFormat string
	}{
		{"defaults", nil, config.DefaultConfig().Log.Level, config.DefaultConfig().Log.Format},
		{"verbose", []string{"-v"}, "debug", "console"},
		{"verbose keeps explicit format", []string{"-v", "--log-format", "json"}, "debug", "json"},
		{"quiet", []string{"-q"}, "error", config.DefaultConfig().Log.Format},
		{"quiet wins over verbose", []string{"-v", "-q"}, "error", "console"},
		{"explicit level", []string{"--log-level", "warn"}, "warn", config.DefaultConfig().Log.Format},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			fs, f := parseSettings(t, tt.args...)
			applyFlags(fs, f, cfg)
			if cfg.Log.Level != tt.wantLevel || cfg.Log.Format != tt.wantFormat {
				t.Errorf("log = %s/%s, want %s/%s", cfg.Log.Level, cfg.Log.Format, tt.wantLevel, tt.wantFormat)
			}
		})
	}
}
