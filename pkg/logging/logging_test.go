package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		level   string
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{name: "Production info", env: "production", level: "info", enabled: zapcore.InfoLevel, muted: zapcore.DebugLevel},
		{name: "Local debug", env: "local", level: "debug", enabled: zapcore.DebugLevel, muted: zapcore.DebugLevel - 1},
		{name: "Unknown level", env: "local", level: "loud", enabled: zapcore.InfoLevel, muted: zapcore.DebugLevel},
		{name: "Warn", env: "production", level: "warn", enabled: zapcore.WarnLevel, muted: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.env, tt.level)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.muted))
		})
	}
}
