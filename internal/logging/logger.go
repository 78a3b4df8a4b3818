package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nestflow/internal/config"

	"github.com/rs/zerolog"
)

// New constructs a zerolog logger based on config settings.
// Defaults to JSON, info level, stdout when fields are empty.
func New(cfg config.LoggingConfig, app config.AppConfig) (*zerolog.Logger, io.Closer, error) {
	output, closer, err := openOutput(cfg)
	if err != nil {
		return nil, nil, err
	}
	return NewWithWriter(output, cfg, app), closer, nil
}

// NewWithWriter builds the logger on top of an already opened writer.
func NewWithWriter(output io.Writer, cfg config.LoggingConfig, app config.AppConfig) *zerolog.Logger {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(normalize(cfg.Level)); err == nil && cfg.Level != "" {
		level = parsed
	}

	if normalize(cfg.Format) == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	base := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("app", app.Name).
		Str("env", app.Environment).
		Str("version", app.Version).
		Logger()

	return &base
}

func openOutput(cfg config.LoggingConfig) (io.Writer, io.Closer, error) {
	switch normalize(cfg.Output) {
	case "", "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	case "discard":
		return io.Discard, nil, nil
	case "file":
		if cfg.FilePath == "" {
			return nil, nil, fmt.Errorf("logging.output=file requires logging.file_path")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return file, file, nil
	default:
		return nil, nil, fmt.Errorf("unknown logging.output %q", cfg.Output)
	}
}

// Component derives a child logger tagged with the component name.
func Component(logger *zerolog.Logger, name string) *zerolog.Logger {
	child := logger.With().Str("component", name).Logger()
	return &child
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
