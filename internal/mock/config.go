package mock

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/studiowebux/policyctl/internal/types"
	"gopkg.in/yaml.v3"
)

// ErrConfigExists is returned by WriteStarter when path is already taken
var ErrConfigExists = errors.New("mock config already exists")

type codec struct {
	name      string
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

var (
	yamlCodec = codec{name: "YAML", marshal: yaml.Marshal, unmarshal: yaml.Unmarshal}
	jsonCodec = codec{
		name:      "JSON",
		marshal:   func(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") },
		unmarshal: json.Unmarshal,
	}
)

// codecFor picks the encoding from the file extension
func codecFor(path string) (codec, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yamlCodec, nil
	case ".json":
		return jsonCodec, nil
	default:
		return codec{}, fmt.Errorf("unsupported mock config format %q (use .yaml, .yml or .json)", ext)
	}
}

// LoadConfig reads and validates a mock configuration
func LoadConfig(path string) (*Config, error) {
	c, err := codecFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mock config: %w", err)
	}

	var cfg Config
	if err := c.unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s mock config: %w", c.name, err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid mock config %s: %w", path, err)
	}
	return &cfg, nil
}

// validateConfig checks every response rule
func validateConfig(cfg *Config) error {
	for i, resp := range cfg.Responses {
		if _, err := types.ParseMode(resp.Mode); err != nil {
			return fmt.Errorf("response %d: %w", i, err)
		}
		if resp.Status != 0 && (resp.Status < 100 || resp.Status > 599) {
			return fmt.Errorf("response %d: status %d is not a valid HTTP status", i, resp.Status)
		}
		if resp.Delay < 0 {
			return fmt.Errorf("response %d: delay must not be negative", i)
		}
	}
	return nil
}

// SaveConfig writes cfg in the encoding matching the extension of path
func SaveConfig(cfg *Config, path string) error {
	c, err := codecFor(path)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("invalid mock config: %w", err)
	}
	data, err := c.marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode %s mock config: %w", c.name, err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write mock config: %w", err)
	}
	return nil
}

// StarterConfig returns one example rule per failure shape the client
// distinguishes, plus a slow simulate rule. Unmatched requests still get
// the default narrative.
func StarterConfig() *Config {
	return &Config{
		Port:    8000,
		Host:    "localhost",
		Logging: true,
		Responses: []Response{
			{Name: "slow simulation", Mode: string(types.ModeSimulate), Match: "SLOW", Delay: 3000},
			{Name: "server failure", Mode: string(types.ModeTranslate), Match: "FAIL", Status: 500, Error: "policy parser crashed"},
			{Name: "bad gateway", Mode: string(types.ModeDiagnose), Match: "GATEWAY", Status: 502, Raw: "<html>502 Bad Gateway</html>"},
		},
	}
}

// WriteStarter saves StarterConfig to path. An existing file is kept
// unless force is set.
func WriteStarter(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	return SaveConfig(StarterConfig(), path)
}
