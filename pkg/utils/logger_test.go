package utils

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	t.Run("debug mode returns development logger", func(t *testing.T) {
		logger, err := NewLogger(true)
		if err != nil {
			t.Fatalf("NewLogger(true) error: %v", err)
		}
		if logger == nil {
			t.Fatal("NewLogger(true) returned nil logger")
		}
		_ = logger.Sync()
	})

	t.Run("production mode returns production logger", func(t *testing.T) {
		logger, err := NewLogger(false)
		if err != nil {
			t.Fatalf("NewLogger(false) error: %v", err)
		}
		if logger == nil {
			t.Fatal("NewLogger(false) returned nil logger")
		}
		_ = logger.Sync()
	})
}

func TestNewConsoleLogger(t *testing.T) {
	logger, err := NewConsoleLogger(false)
	if err != nil {
		t.Fatalf("NewConsoleLogger(false) error: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be disabled without debug")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn level should be enabled")
	}
	logger, err = NewConsoleLogger(true)
	if err != nil {
		t.Fatalf("NewConsoleLogger(true) error: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be enabled in debug mode")
	}
}
