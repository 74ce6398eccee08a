// Package logger provides logging utilities for workbridge using the
// bullets library.
//
// It wraps [bullets.Logger] with convenience constructors for creating
// loggers at various levels and a silent logger for tests.
package logger

import (
	"os"

	"github.com/sgaunet/bullets"
)

// NewLogger creates a logger writing to stdout at the given level.
// Unknown level strings default to "info".
func NewLogger(logLevel string) *bullets.Logger {
	var level bullets.Level
	switch logLevel {
	case "debug":
		level = bullets.DebugLevel
	case "info":
		level = bullets.InfoLevel
	case "warn":
		level = bullets.WarnLevel
	case "error":
		level = bullets.ErrorLevel
	default:
		level = bullets.InfoLevel
	}
	logger := bullets.New(os.Stdout)
	logger.SetLevel(level)
	return logger
}

// NoLogger creates a logger that suppresses all output. Useful for tests.
func NoLogger() *bullets.Logger {
	logger := bullets.New(os.Stdout)
	logger.SetLevel(bullets.FatalLevel)
	return logger
}
