package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/studiowebux/policyctl/internal/config"
)

func TestInitFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "policyctl.log")

	closer, err := Init(config.LoggingSettings{Level: "debug", Format: "json"}, path)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer logrus.SetOutput(os.Stderr)

	Component("test").Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file to exist: %v", err)
	}
	if !strings.Contains(string(data), `"component":"test"`) {
		t.Errorf("Expected JSON entry with component field, got %s", data)
	}
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level, got %v", logrus.GetLevel())
	}
}

func TestInitInvalidLevel(t *testing.T) {
	_, err := Init(config.LoggingSettings{Level: "loud", Output: "discard"}, "")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer logrus.SetOutput(os.Stderr)

	if logrus.GetLevel() != logrus.InfoLevel {
		t.Errorf("Expected fallback to info, got %v", logrus.GetLevel())
	}
	if _, ok := logrus.StandardLogger().Formatter.(*logrus.TextFormatter); !ok {
		t.Error("Expected text formatter by default")
	}
}

func TestInitExplicitOutputWins(t *testing.T) {
	_, err := Init(config.LoggingSettings{Level: "info", Output: "stdout"}, "/nonexistent/dir/x.log")
	if err != nil {
		t.Fatalf("Expected explicit stdout to ignore fallback, got %v", err)
	}
	if logrus.StandardLogger().Out != os.Stdout {
		t.Error("Expected stdout output")
	}
	logrus.SetOutput(os.Stderr)
}
