package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/studiowebux/policyctl/internal/config"
)

// Init configures the standard logrus logger. fallbackOutput is used when
// cfg.Output is empty: the TUI passes the log file so log lines never draw
// over the screen, the CLI passes "stderr". The returned closer releases an
// opened log file.
func Init(cfg config.LoggingSettings, fallbackOutput string) (io.Closer, error) {
	// Set log level
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.Warnf("Invalid log level '%s', using 'info' instead. Error: %v", cfg.Level, err)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	// Set log format
	switch strings.ToLower(cfg.Format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	target := cfg.Output
	if target == "" {
		target = fallbackOutput
	}

	// Set log output
	output, closer, err := openOutput(target)
	if err != nil {
		logrus.SetOutput(os.Stderr)
		return nopCloser{}, err
	}
	logrus.SetOutput(output)

	logrus.WithFields(logrus.Fields{
		"level":  level,
		"output": target,
	}).Debug("Logger initialized")
	return closer, nil
}

func openOutput(target string) (io.Writer, io.Closer, error) {
	switch strings.ToLower(target) {
	case "", "stderr":
		return os.Stderr, nopCloser{}, nil
	case "stdout":
		return os.Stdout, nopCloser{}, nil
	case "discard", "none":
		return io.Discard, nopCloser{}, nil
	}

	path, err := config.ResolvePath(target)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), config.DirPermissions); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, config.FilePermissions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file '%s': %w", path, err)
	}
	return file, file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Component returns a logger entry tagged with the component name
func Component(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}
