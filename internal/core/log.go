package core

import (
	"log/slog"
	"sync/atomic"
)

// logger holds the logger installed with SetLogger. nil means "derive one
// from slog.Default()".
var logger atomic.Pointer[slog.Logger]

// defaultLogger caches the slog.Default()-derived logger. SetLogger(nil)
// clears it so a later slog.SetDefault is picked up.
var defaultLogger atomic.Pointer[slog.Logger]

// Logger returns the package-level logger. It is safe for concurrent use.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	l := newDefaultLogger()
	if defaultLogger.CompareAndSwap(nil, l) {
		return l
	}
	if l2 := defaultLogger.Load(); l2 != nil {
		return l2
	}
	return l
}

func newDefaultLogger() *slog.Logger {
	return slog.Default().With("component", "shabtzak")
}

// SetLogger replaces the package-level logger. nil restores the default.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
	defaultLogger.Store(nil)
}
