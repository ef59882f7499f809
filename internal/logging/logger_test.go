package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level string
		check zapcore.Level
		want  bool
	}{
		{"debug", zapcore.DebugLevel, true},
		{"info", zapcore.DebugLevel, false},
		{"warn", zapcore.InfoLevel, false},
		{"bogus", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := New(tt.level)
			require.NoError(t, err)
			require.NotNil(t, logger)
			assert.Equal(t, tt.want, logger.Core().Enabled(tt.check))
		})
	}
}
