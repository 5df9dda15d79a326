package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	logFile *os.File
)

// NewLogger builds the process-wide logger, teeing output to the console and
// to a dated file under dir. The suffix is appended to the file name, used to
// separate logs when multiple instances share a directory.
func NewLogger(debug bool, dir string, suffix string) (*slog.Logger, error) {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating log directory: %w", err)
	}

	name := fmt.Sprintf("drebot-%s", time.Now().Format("2006-01-02-15_04_05"))
	if suffix != "" {
		name += "-" + suffix
	}

	file, err := os.Create(filepath.Join(dir, name+".log"))
	if err != nil {
		return nil, fmt.Errorf("error creating log file: %w", err)
	}

	mu.Lock()
	logFile = file
	mu.Unlock()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, file), &slog.HandlerOptions{
		Level: level,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, nil
}

// FlushLog forces buffered log data to disk without closing the file.
func FlushLog() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Sync()
	}
}

// FlushAndClose syncs and closes the log file. Call once at shutdown.
func FlushAndClose() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Sync()
		_ = logFile.Close()
		logFile = nil
	}
}
