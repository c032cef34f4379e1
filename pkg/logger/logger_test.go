package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap/zapcore"
)

// TestParseLevel tests level name mapping.
func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
		wantErr  bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q): expected error=%v, got %v", tt.input, tt.wantErr, err)
		}
		if got != tt.expected {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tt.input, tt.expected, got)
		}
	}
}

// TestNew tests logger construction.
func TestNew(t *testing.T) {
	t.Run("Console", func(t *testing.T) {
		log, err := New(Config{Level: "debug", Format: "console"})
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		log.Named("test").Debug("hello", String("k", "v"), Int("n", 1), Error(errors.New("x")))
	})

	t.Run("JSON", func(t *testing.T) {
		if _, err := New(Config{Level: "info", Format: "json"}); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	})

	t.Run("Invalid format", func(t *testing.T) {
		if _, err := New(Config{Format: "xml"}); err == nil {
			t.Error("Expected error for unknown format")
		}
	})

	t.Run("Invalid level", func(t *testing.T) {
		if _, err := New(Config{Level: "loud"}); err == nil {
			t.Error("Expected error for unknown level")
		}
	})
}

// TestNop tests that the nop logger accepts calls.
func TestNop(t *testing.T) {
	log := Nop().Named("quiet").With(Bool("b", true))
	log.Info("discarded", Float64("f", 1.5), Any("a", []int{1}))
	if err := log.Sync(); err != nil {
		t.Errorf("Expected no error from Sync, got: %v", err)
	}
}
