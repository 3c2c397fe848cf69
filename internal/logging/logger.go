// Package logging builds the zerolog loggers used by the services.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"

	"mockapi/internal/config"
)

// NewLogger creates a zerolog logger writing JSON lines to output. Debug
// forces the debug level regardless of level.
func NewLogger(debug bool, level string, output io.Writer) zerolog.Logger {
	if output == nil {
		output = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Caller().
		Logger()
}

// Setup builds the process logger from configuration. When file logging is
// enabled records go to a rotating file, and in debug mode to stderr as well.
// The returned closer releases the log file.
func Setup(cfg config.LogConfig, debug bool, stderr io.Writer) (zerolog.Logger, io.Closer) {
	if stderr == nil {
		stderr = os.Stderr
	}
	if !cfg.LogToFile {
		return NewLogger(debug, cfg.Level, stderr), nopCloser{}
	}
	file := &lumberjack.Logger{
		Filename:   cfg.LogFilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	var out io.Writer = file
	if debug {
		out = io.MultiWriter(file, stderr)
	}
	logger := NewLogger(debug, cfg.Level, out)
	notice := NewLogger(false, "info", stderr)
	notice.Info().Str("path", cfg.LogFilePath).Msg("logging to file")
	return logger, file
}

// WithComponent returns a child logger tagged with component.
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
