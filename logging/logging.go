// Package logging is a thin wrapper around zap, giving every package
// constructor a small leveled-logging interface without binding it to a
// specific logging backend.
package logging

import "go.uber.org/zap"

// Logger is the minimal leveled-logging surface this module's constructors
// take. Construction paths log context that helps diagnose a bad raster or
// robot description (band names found, vertex/edge counts, and so on).
type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
}

type sugared struct {
	sugar *zap.SugaredLogger
}

// FromZap wraps a *zap.Logger as a Logger.
func FromZap(l *zap.Logger) Logger {
	return sugared{sugar: l.Sugar()}
}

// FromZapSugared wraps an already-sugared zap logger as a Logger.
func FromZapSugared(l *zap.SugaredLogger) Logger {
	return sugared{sugar: l}
}

func (s sugared) Debugw(msg string, keysAndValues ...any) { s.sugar.Debugw(msg, keysAndValues...) }
func (s sugared) Infow(msg string, keysAndValues ...any)  { s.sugar.Infow(msg, keysAndValues...) }
func (s sugared) Warnw(msg string, keysAndValues ...any)  { s.sugar.Warnw(msg, keysAndValues...) }
func (s sugared) Errorw(msg string, keysAndValues ...any) { s.sugar.Errorw(msg, keysAndValues...) }

// NewTestLogger returns a Logger suitable for unit tests: console-encoded,
// fatal-level only, no stacktraces, for silent-by-default test runs.
func NewTestLogger() Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.FatalLevel)
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return FromZap(zap.Must(cfg.Build()))
}

// NewProductionLogger returns an info-level, JSON-encoded Logger suitable
// for a long-running process embedding this module.
func NewProductionLogger() Logger {
	return FromZap(zap.Must(zap.NewProduction()))
}

type noop struct{}

// NewNoop returns a Logger that discards everything, for callers that
// don't want to wire zap at all.
func NewNoop() Logger { return noop{} }

func (noop) Debugw(string, ...any) {}
func (noop) Infow(string, ...any)  {}
func (noop) Warnw(string, ...any)  {}
func (noop) Errorw(string, ...any) {}
