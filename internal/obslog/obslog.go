// Package obslog provides the structured logging contract for the
// build and mount I/O boundaries. Query itself stays synchronous and
// silent; logging only brackets the two steps that touch bytes.
package obslog

import (
	"log/slog"
	"os"
	"strings"
)

// New builds a JSON slog.Logger writing to stderr at level, following
// the teacher's Setup/parseLevel idiom minus file rotation: a library
// has no business creating log files or daemonizing on the caller's
// behalf, only emitting structured records to whatever writer the host
// process already owns.
func New(level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Silent discards every record. Used as the zero-value logger so callers
// that never supply one pay nothing for logging.
func Silent() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
