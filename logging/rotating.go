package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// RotatingWriter appends to one log file per ISO week and deletes files
// older than the retention period. Rotation happens lazily on write, so an
// idle server never touches the filesystem. When a file reaches
// maxFileSize, writes continue in a numbered sibling (app-YYYY-Www_01.log
// and so on) within the same week.
type RotatingWriter struct {
	logDir      string
	retention   time.Duration
	maxFileSize int64
	mu          sync.Mutex
	currentFile *os.File
	currentWeek string
	currentSize int64
	seq         int
	ctx         context.Context
	cancel      context.CancelFunc
	cleanupDone chan struct{}
}

// NewRotatingWriter creates a rotating writer with the given retention.
// A maxFileSize of zero disables size-based rotation.
func NewRotatingWriter(logDir string, retentionWeeks int, maxFileSize int64) *RotatingWriter {
	ctx, cancel := context.WithCancel(context.Background())
	return &RotatingWriter{
		logDir:      logDir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		ctx:         ctx,
		cancel:      cancel,
		cleanupDone: make(chan struct{}),
	}
}

// weekKey returns the ISO week key in YYYY-Www format.
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Write appends to the current week's file, rotating first when the week
// has changed or the size cap is reached.
func (rw *RotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	week := weekKey(time.Now())
	if rw.currentFile == nil || rw.currentWeek != week {
		rw.seq = 0
		if err := rw.rotate(week); err != nil {
			return 0, err
		}
	}

	if rw.maxFileSize > 0 {
		// A pre-existing full file (restart mid-week) can force several
		// advances; a fresh file has size zero and ends the loop.
		for rw.currentSize > 0 && rw.currentSize+int64(len(p)) > rw.maxFileSize {
			rw.seq++
			if err := rw.rotate(week); err != nil {
				return 0, err
			}
		}
	}

	n, err := rw.currentFile.Write(p)
	rw.currentSize += int64(n)
	return n, err
}

// fileName returns the log file name for a week and sequence number. The
// base file has no suffix; size-rotated siblings are numbered.
func (rw *RotatingWriter) fileName(targetWeek string) string {
	if rw.seq == 0 {
		return fmt.Sprintf("app-%s.log", targetWeek)
	}
	return fmt.Sprintf("app-%s_%02d.log", targetWeek, rw.seq)
}

// rotate switches to the file for targetWeek at the current sequence
// number. Caller must hold the lock.
func (rw *RotatingWriter) rotate(targetWeek string) error {
	if rw.currentFile != nil {
		if err := rw.currentFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file during rotation: %v\n", err)
		}
	}

	logPath := filepath.Join(rw.logDir, rw.fileName(targetWeek))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	rw.currentFile = file
	rw.currentWeek = targetWeek
	rw.currentSize = 0
	if info, err := file.Stat(); err == nil {
		rw.currentSize = info.Size()
	}
	return nil
}

// cleanupOldLogs removes log files older than the retention period.
func (rw *RotatingWriter) cleanupOldLogs() error {
	entries, err := os.ReadDir(rw.logDir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := time.Now().Add(-rw.retention)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "app-") || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(rw.logDir, entry.Name()))
		}
	}

	return nil
}

// Close stops the cleanup goroutine and closes the current file.
func (rw *RotatingWriter) Close() error {
	rw.cancel()

	select {
	case <-rw.cleanupDone:
	case <-time.After(5 * time.Second):
	}

	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.currentFile != nil {
		return rw.currentFile.Close()
	}
	return nil
}

// SetupLogger configures slog to write text to the console and JSON to a
// weekly-rotating file, both filtered at the configured level. Falls back
// to console-only logging when the log directory cannot be used, in which
// case the returned writer is nil.
func SetupLogger(logDir, logLevel string, retentionWeeks int, maxFileSize int64) (*slog.Logger, *RotatingWriter) {
	level := parseLogLevel(logLevel)

	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		logger := slog.New(consoleHandler)
		logger.Error("Failed to create logs directory, console logging only", "error", err)
		return logger, nil
	}

	writer := NewRotatingWriter(logDir, retentionWeeks, maxFileSize)

	// Daily retention sweep
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		defer close(writer.cleanupDone)

		for {
			select {
			case <-writer.ctx.Done():
				return
			case <-ticker.C:
				if err := writer.cleanupOldLogs(); err != nil {
					slog.Warn("Failed to cleanup old logs", "error", err)
				}
			}
		}
	}()

	fileHandler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}), writer
}

// multiHandler fans records out to several handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
