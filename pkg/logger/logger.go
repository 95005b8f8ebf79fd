// Package logger builds the zap logger shared by the server, the services
// and the playback client.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a sugared logger at the given level ("debug", "info", "warn",
// "error"). jsonOutput selects the production JSON encoder; otherwise a
// console encoder is used.
func New(level string, jsonOutput bool) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	if jsonOutput {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = lvl > zapcore.DebugLevel

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return l.Sugar(), nil
}

// Nop returns a logger that discards everything. Used by tests and as a
// fallback when no logger is injected.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return Nop()
	}
	return l
}
