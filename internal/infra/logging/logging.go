package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// logFileMode keeps the guardian log readable by the dashboard user.
const logFileMode = 0o644

// New builds the process logger. When filePath is non-empty the log is
// additionally appended to that file, line for line, so operators can tail
// it; the returned closer flushes and closes the file. The closer is always
// non-nil.
func New(logFormat, logLevel, filePath string) (*slog.Logger, func() error, error) {
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	case "info":
	default:
		level = slog.LevelInfo
	}

	out := io.Writer(os.Stdout)
	closer := func() error { return nil }

	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}

		out = io.MultiWriter(os.Stdout, file)
		closer = file.Close
	}

	var handler slog.Handler

	switch logFormat {
	case "json":
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level: level,
		})
	case "text":
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{
			Level: level,
		})
	default:
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{
			Level: level,
		})
	}

	logger := slog.New(handler)

	slog.SetDefault(logger)

	return logger, closer, nil
}
