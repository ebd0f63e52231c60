package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		json     bool
		debug    bool
		encoding string
		level    zapcore.Level
		caller   bool
	}{
		{name: "console info", encoding: "console", level: zapcore.InfoLevel},
		{name: "json info", json: true, encoding: "json", level: zapcore.InfoLevel},
		{name: "console debug", debug: true, encoding: "console", level: zapcore.DebugLevel, caller: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config(tt.json, tt.debug)
			if cfg.Encoding != tt.encoding {
				t.Fatalf("expected encoding %q, got %q", tt.encoding, cfg.Encoding)
			}
			if cfg.Level.Level() != tt.level {
				t.Fatalf("expected level %s, got %s", tt.level, cfg.Level.Level())
			}
			if got := cfg.EncoderConfig.CallerKey != ""; got != tt.caller {
				t.Fatalf("expected caller %t, got %t", tt.caller, got)
			}
			if len(cfg.OutputPaths) != 1 || cfg.OutputPaths[0] != "stderr" {
				t.Fatalf("unexpected output paths: %v", cfg.OutputPaths)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	logger, err := New(true, false, zap.String(FieldListing, "colleges"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug should be disabled")
	}
}
