package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("info by default", func(t *testing.T) {
		logger, err := New(false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if logger.Core().Enabled(zapcore.DebugLevel) {
			t.Fatal("expected debug to be disabled")
		}
		if !logger.Core().Enabled(zapcore.InfoLevel) {
			t.Fatal("expected info to be enabled")
		}
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		logger, err := New(true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !logger.Core().Enabled(zapcore.DebugLevel) {
			t.Fatal("expected debug to be enabled")
		}
	})
}
