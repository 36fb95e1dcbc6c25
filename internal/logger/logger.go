package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger defaults to slog's default logger so packages can log before Init.
var Logger = slog.Default()

func Init(debug bool) {
	InitWriter(os.Stdout, debug)
}

// InitWriter installs a text handler on w as the process-wide logger.
func InitWriter(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	Logger = slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(Logger)
}

func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}
