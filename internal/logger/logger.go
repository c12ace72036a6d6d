package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/securepay/ledger/internal/config"
)

// NewLogger builds the process-wide slog.Logger writing JSON to stdout.
// Source locations are attached only at debug level.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.Logging.Level)

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	})

	logger := slog.New(handler)
	logger.Info("logger initialized", "level", level)

	return logger
}

// parseLevel maps a config string to a slog level, defaulting to info for
// anything unrecognized.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
