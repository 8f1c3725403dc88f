package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// LocalConfigFile overrides the global config when present in the working directory
	LocalConfigFile = "policyctl.yaml"
)

var (
	// ConfigDir is the global configuration directory (~/.policyctl)
	ConfigDir string

	// ConfigFile is the global settings file
	ConfigFile string

	// LogFile is where the TUI writes its log
	LogFile string

	// ResultsDir is the default destination for saved analysis results
	ResultsDir string
)

// Initialize sets up the configuration directories and files
// It creates ~/.policyctl/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	// Set global paths
	ConfigDir = filepath.Join(homeDir, ".policyctl")
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")
	LogFile = filepath.Join(ConfigDir, "policyctl.log")
	ResultsDir = filepath.Join(ConfigDir, "results")

	// Create directories if they don't exist
	dirs := []string{ConfigDir, ResultsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, DirPermissions); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Create default config file if it doesn't exist
	if _, err := os.Stat(ConfigFile); os.IsNotExist(err) {
		if err := os.WriteFile(ConfigFile, []byte(defaultConfigYAML), FilePermissions); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	return nil
}

// ResolvePath expands ~ and makes relative paths relative to the config directory
func ResolvePath(p string) (string, error) {
	if p == "" {
		return "", nil
	}

	// Expand tilde to home directory
	if p == "~" || strings.HasPrefix(p, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		p = filepath.Join(homeDir, strings.TrimPrefix(p[1:], "/"))
	}

	if filepath.IsAbs(p) || ConfigDir == "" {
		return p, nil
	}
	return filepath.Join(ConfigDir, p), nil
}

// LocalConfigExists checks if there's a local policyctl.yaml
func LocalConfigExists() bool {
	_, err := os.Stat(LocalConfigFile)
	return err == nil
}

// GetConfigFilePath returns the settings file path (local or global)
func GetConfigFilePath() string {
	if LocalConfigExists() {
		return LocalConfigFile
	}
	return ConfigFile
}

const defaultConfigYAML = `# policyctl settings
# Every key can be overridden with POLICYCTL_<SECTION>_<KEY>, e.g. POLICYCTL_SERVER_URL.

server:
  url: http://localhost:8000
  # 0 disables the timeout
  timeout: 120s
  tls:
    cert_file: ""
    key_file: ""
    ca_file: ""
    insecure_skip_verify: false

render:
  markdown: true
  style: monokai

ingest:
  concurrency: 8
  max_file_size: 10485760

logging:
  level: info
  format: text
  # stdout, stderr, or a file path; empty uses the log file for the TUI
  output: ""

mock:
  addr: ":8000"
  config: ""
`
