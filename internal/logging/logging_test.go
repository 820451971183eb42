package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidLevel) {
				t.Errorf("ParseLevel(%q) error = %v, want ErrInvalidLevel", tt.in, err)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_InvalidFormat(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{Format: "xml"}); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("New() error = %v, want ErrInvalidFormat", err)
	}
}

func TestNew_WritesJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := New(Options{Level: "warn", Format: FormatJSON, OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Error("info message logged at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("log output = %q, want JSON warn entry", out)
	}
}

func TestMust_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("Must() did not panic on invalid level")
		}
	}()
	Must(Options{Level: "loud"})
}
