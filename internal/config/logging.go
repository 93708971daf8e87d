package config

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// LogConfig represents the [logging] section
type LogConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
	// File is appended to instead of stderr when set
	File string `toml:"file" mapstructure:"file"`
}

// Validate performs validation on the logging configuration
func (l *LogConfig) Validate() error {
	if _, err := logrus.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("invalid level: %w", err)
	}
	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q (valid options: text, json)", l.Format)
	}
	return nil
}

// Apply configures logger. The returned closer releases the log file, if any.
func (l *LogConfig) Apply(logger *logrus.Logger) (io.Closer, error) {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	if l.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if l.File == "" {
		logger.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}
	f, err := os.OpenFile(l.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetOutput(f)
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
