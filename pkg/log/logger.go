// Package log provides structured logging for attribute scoring runs.
//
// The package wraps rs/zerolog behind a small facade so that algorithm
// packages can emit structured events (run shape, neighbor counts, solver
// convergence) without depending on a concrete sink. The default logger
// discards everything; call Setup to route events to a writer.
//
// Warnings raised through pkg/errors.Warn are bridged into the package
// logger as structured warn-level events once Setup has been called.
package log

import (
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	nperrors "github.com/YuminosukeSato/npdr/pkg/errors"
)

var (
	mu     sync.RWMutex
	logger = zerolog.Nop()
)

// Setup configures the package logger to write JSON events to w at the given
// level ("debug", "info", "warn", "error"). It also registers the warning
// bridge so pkg/errors warnings appear as structured warn events.
func Setup(w io.Writer, level string) error {
	lv, err := parseLevel(level)
	if err != nil {
		return err
	}

	mu.Lock()
	logger = zerolog.New(w).Level(lv).With().Timestamp().Str(ComponentKey, "npdr").Logger()
	mu.Unlock()

	nperrors.SetZerologWarnFunc(func(warning error) {
		l := Logger()
		ev := l.Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			ev.Object(WarningKey, obj)
		} else {
			ev.Err(warning)
		}
		ev.Msg("warning")
	})
	return nil
}

// Logger returns a copy of the current package logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// With returns a child logger carrying the given scorer name, for use as a
// per-run contextual logger.
func With(scorer string) zerolog.Logger {
	return Logger().With().Str(ScorerKey, scorer).Logger()
}

func parseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, nperrors.NewValidationError("level", "must be one of debug/info/warn/error", level)
	}
}
