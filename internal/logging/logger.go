// Package logging builds the process logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a zap logger for the given level. "debug" uses the development
// config (human-readable); any other level uses the production config (JSON).
// An unknown level falls back to info and is reported on the returned logger.
func New(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	lvl, parseErr := zapcore.ParseLevel(level)
	if parseErr != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: failed to build logger: %w", err)
	}
	if parseErr != nil {
		logger.Warn("unknown log level, using info", zap.String("level", level))
	}
	return logger, nil
}
