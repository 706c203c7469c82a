// Package logging configures structured logging for the dosage API using
// log/slog: console text output plus a weekly-rotating JSON log file.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// LoggingService holds the configured application logger and its file
// writer.
type LoggingService struct {
	Logger *slog.Logger
	writer *RotatingWriter
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger instance and installs it as the
// slog default.
func InitLogger(logDir, logLevel string, retentionWeeks int, maxFileSize int64) {
	logger, writer := SetupLogger(logDir, logLevel, retentionWeeks, maxFileSize)
	DefaultLoggingService = &LoggingService{
		Logger: logger,
		writer: writer,
	}
	slog.SetDefault(logger)
}

// parseLogLevel maps a configured level name onto a slog level. Unknown
// names fall back to info, matching the config default.
func parseLogLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
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

// Close flushes and closes the log file. Safe to call when file logging
// never started.
func (s *LoggingService) Close() {
	if s != nil && s.writer != nil {
		if err := s.writer.Close(); err != nil {
			slog.Error("Failed to close log writer", "error", err)
		}
	}
}

// logWith dispatches to the configured logger, falling back to a plain
// console logger when logging has not been initialized yet (early startup
// and tests).
func logWith(level slog.Level, msg string, args ...any) {
	if DefaultLoggingService != nil && DefaultLoggingService.Logger != nil {
		DefaultLoggingService.Logger.Log(context.Background(), level, msg, args...)
		return
	}
	fallback := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	fallback.Log(context.Background(), level, msg, args...)
}

// Package-level functions for direct access

func Debug(msg string, args ...any) { logWith(slog.LevelDebug, msg, args...) }
func Info(msg string, args ...any)  { logWith(slog.LevelInfo, msg, args...) }
func Warn(msg string, args ...any)  { logWith(slog.LevelWarn, msg, args...) }
func Error(msg string, args ...any) { logWith(slog.LevelError, msg, args...) }
