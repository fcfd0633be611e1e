package logging

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a zap-backed logr.Logger configured with the given level
// string. Debug switches to the development encoder and enables V(1)
// diagnostics such as skipped recomputations.
func New(level string) (logr.Logger, error) {
	lower := strings.ToLower(level)
	cfg := zap.NewProductionConfig()
	var zapLevel zapcore.Level
	switch lower {
	case "debug":
		cfg = zap.NewDevelopmentConfig()
		// logr's V(n) maps to zap level -n.
		zapLevel = zapcore.Level(-2)
	case "info", "":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return logr.Logger{}, fmt.Errorf("unknown log level %q (expected debug, info, warn, or error)", level)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.OutputPaths = []string{"stderr"}

	zl, err := cfg.Build()
	if err != nil {
		return logr.Logger{}, fmt.Errorf("build logger: %w", err)
	}
	return zapr.NewLogger(zl), nil
}
