// Package vsplog builds slog loggers for VSP tooling. Because vsp is a
// library, nothing here installs a process-wide global implicitly:
// callers pass a *slog.Logger into vsp.Session, and a nil logger falls
// back to slog.Default().
package vsplog

import (
	"io"
	"log/slog"
	"os"
)

// New builds a *slog.Logger at the given level ("debug", "info", "warn",
// "error") writing to stdout, optionally tee'd to logFile.
func New(level, logFile string) (*slog.Logger, error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	writers := []io.Writer{os.Stdout}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, err
		}
		writers = append(writers, f)
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("time", a.Value.Time().Format("15:04:05.000"))
			}
			return a
		},
	})

	return slog.New(handler), nil
}

// OrDefault returns l, or slog.Default() if l is nil — the fallback used
// throughout the vsp package so logging is always safe to call without a
// nil check at every call site.
func OrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
