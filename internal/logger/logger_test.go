package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Level(t *testing.T) {
	tests := []struct {
		level string
		debug bool
	}{
		{"debug", true},
		{"warn", false},
		{"nonsense", false},
	}
	for _, tt := range tests {
		log := New(tt.level)
		if got := log.Core().Enabled(zapcore.DebugLevel); got != tt.debug {
			t.Errorf("New(%q) debug enabled = %v, want %v", tt.level, got, tt.debug)
		}
	}
}
