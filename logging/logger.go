// Package logging provides the package-level *slog.Logger used by the
// reportflow engine for diagnostics: measurement fallbacks, formula
// evaluation failures, final-row fit warnings and pagination progress.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// logger holds the package-level logger. Defaults to nil, which causes
// Logger() to return a discard logger.
var logger atomic.Pointer[slog.Logger]

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

func newDiscardLogger() *slog.Logger {
	return slog.New(discardHandler{})
}

// SetLogger configures the package-level logger. Pass nil to disable
// logging. Safe for concurrent use.
//
// Example enabling debug output to stderr:
//
//	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
//
// Example capturing engine diagnostics in tests:
//
//	h := logging.NewCaptureHandler(nil)
//	logging.SetLogger(slog.New(h))
//	// ... generate a document ...
//	if h.Contains("final row exceeds remaining page space") { ... }
func SetLogger(sl *slog.Logger) {
	if sl == nil {
		logger.Store(newDiscardLogger())
	} else {
		logger.Store(sl)
	}
}

// Logger returns the package-level logger, or a discard logger when none
// has been set. Safe for concurrent use.
func Logger() *slog.Logger {
	l := logger.Load()
	if l == nil {
		l = newDiscardLogger()
		logger.Store(l)
	}
	return l
}
