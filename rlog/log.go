// Package rlog is the structured logging facade used by cmd/reactorctl. It
// wraps logiface (a generic allocation-conscious logging API) with a
// zerolog backend, configured via izerolog, so the CLI layer never imports
// zerolog directly. The reactor core itself stays free of any logging
// dependency.
package rlog

import (
	"io"
	"os"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// Logger is the generic logger type used across reactorcore.
type Logger = logiface.Logger[*izerolog.Event]

// New builds a Logger writing to w (os.Stderr if nil) at the given level.
func New(w io.Writer, level logiface.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	zl := zerolog.New(w).With().Timestamp().Logger()
	return izerolog.L.New(
		izerolog.L.WithZerolog(zl),
		izerolog.L.WithLevel(level),
	)
}

// Nop returns a logger with logging disabled, for tests and for embedding
// in constructors where the caller hasn't supplied one yet.
func Nop() *Logger {
	return New(io.Discard, logiface.LevelDisabled)
}

// LevelFromString maps a config string (trace/debug/info/notice/warning/
// error/crit/alert/emerg) to a logiface.Level, defaulting to
// LevelInformational for an unrecognised value.
func LevelFromString(s string) logiface.Level {
	switch s {
	case "trace":
		return logiface.LevelTrace
	case "debug":
		return logiface.LevelDebug
	case "notice":
		return logiface.LevelNotice
	case "warning", "warn":
		return logiface.LevelWarning
	case "error", "err":
		return logiface.LevelError
	case "crit", "critical":
		return logiface.LevelCritical
	case "alert":
		return logiface.LevelAlert
	case "emerg", "emergency":
		return logiface.LevelEmergency
	default:
		return logiface.LevelInformational
	}
}

// Component returns a child logger with a "component" field set, the
// convention cmd/reactorctl uses for its per-component loggers.
func Component(l *Logger, name string) *Logger {
	if l == nil {
		return nil
	}
	c := l.Clone()
	if c == nil {
		return l
	}
	c.Modifiers = append(c.Modifiers, logiface.ModifierFunc[*izerolog.Event](func(e *izerolog.Event) error {
		e.AddString("component", name)
		return nil
	}))
	return c.Logger()
}
