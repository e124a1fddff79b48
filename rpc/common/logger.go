// Logging utilities shared by the rpc packages and the CLI.
package common

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// --------------------------------------------------------------------------
// Logger setup
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to slog.Level
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// InitLogger installs the process-wide default logger with the given level.
// Component loggers derived via GetLogger inherit the handler.
func InitLogger(level string) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
	return nil
}

// GetLogger returns a logger scoped to the given component name.
func GetLogger(component string) *slog.Logger {
	return slog.Default().With("component", component)
}
