// Package testutil holds helpers shared by tests.
package testutil

import (
	"log/slog"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mcoot/keyshop/internal/logging"
)

// NopLogger returns a logger that discards everything
func NopLogger() *slog.Logger {
	return logging.FromCore(zapcore.NewNopCore())
}

// ObservedLogger returns a logger whose entries at or above level are
// captured for assertions
func ObservedLogger(level zapcore.Level) (*slog.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return logging.FromCore(core), logs
}
