// Package logger configures a process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"cvrp-optimizer/internal/platform/config"
)

// Log is the process-wide structured logger. Init or InitWithConfig must
// run before any package logs through it; until then it defaults to a
// plain stdout JSON logger so early startup logging never panics.
var Log = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// Init configures Log at the given level with JSON output to stdout.
func Init(level string) {
	InitWithConfig(config.LogConfig{Level: level, Output: "stdout"})
}

// InitWithConfig configures Log from the full logging configuration,
// including file rotation via lumberjack when Output is "file".
func InitWithConfig(cfg config.LogConfig) {
	var lvl slog.Level
	switch cfg.Level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var writer io.Writer
	switch cfg.Output {
	case "stderr":
		writer = os.Stderr
	case "file":
		path := cfg.FilePath
		if path == "" {
			path = "logs/planner.log"
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			writer = os.Stdout
		} else {
			writer = &lumberjack.Logger{
				Filename:   path,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   cfg.Compress,
			}
		}
	default:
		writer = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	Log = slog.New(slog.NewJSONHandler(writer, opts))
}

// WithRun returns a child logger tagged with a run identifier, used to
// correlate every log line a single planning run emits.
func WithRun(runID string) *slog.Logger {
	return Log.With("run_id", runID)
}
