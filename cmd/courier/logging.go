package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	logDir      = "logs"
	logFileName = "courier.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging builds the process logger
// With debug set, records go to logs/courier.log, rotating a file past
// maxLogSize aside first; verbose adds stderr. Otherwise output is discarded.
// The returned file is nil when nothing was opened.
func setupLogging(debug, verbose bool) (*slog.Logger, *os.File) {
	var out []io.Writer
	var logFile *os.File

	if debug {
		f, err := openLogFile()
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file unavailable: %v\n", err)
		} else {
			logFile = f
			out = append(out, f)
		}
	}
	if verbose {
		out = append(out, os.Stderr)
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var w io.Writer = io.Discard
	switch len(out) {
	case 0:
	case 1:
		w = out[0]
	default:
		w = io.MultiWriter(out...)
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, logFile
}

func openLogFile() (*os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(logDir, fmt.Sprintf("courier-%s.log", time.Now().Format("20060102-150405")))
		if err := os.Rename(logPath, rotated); err != nil {
			return nil, fmt.Errorf("rotate log: %w", err)
		}
	}

	return os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}
