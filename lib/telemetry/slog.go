package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the default text logger at the given verbosity.
// Recognized levels are debug, info and warning; anything else falls
// back to error.
func InitSlog(verbosity string) {
	level := slog.LevelError
	switch verbosity {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warning":
		level = slog.LevelWarn
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
