package assetpipe

import (
	"log/slog"

	"github.com/gogpu/assetpipe/internal/logging"
)

// SetLogger configures the logger for assetpipe and all its sub-packages.
// By default, assetpipe produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by assetpipe:
//   - [slog.LevelDebug]: per-item decisions (page skipped, shader compiled)
//   - [slog.LevelInfo]: build summary, cache invalidated by a config change
//   - [slog.LevelWarn]: recovered cache corruption, stale files left behind
//
// Example:
//
//	assetpipe.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by assetpipe.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
