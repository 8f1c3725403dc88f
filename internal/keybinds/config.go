package keybinds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ConfigFileName is the keybinding file looked up in the config directory
const ConfigFileName = "keybinds.json"

// Config represents the user's keybinding configuration.
// Each section maps an action to a comma-separated list of keys.
type Config struct {
	Version string            `json:"version"`
	Global  map[string]string `json:"global,omitempty"`
	Editor  map[string]string `json:"editor,omitempty"`
	Query   map[string]string `json:"query,omitempty"`
	Prompt  map[string]string `json:"prompt,omitempty"`
	Result  map[string]string `json:"result,omitempty"`
}

func (c *Config) sections() map[Context]map[string]string {
	return map[Context]map[string]string{
		ContextGlobal: c.Global,
		ContextEditor: c.Editor,
		ContextQuery:  c.Query,
		ContextPrompt: c.Prompt,
		ContextResult: c.Result,
	}
}

// LoadConfig loads keybinding configuration from a JSON file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid %s format: %w", ConfigFileName, err)
	}

	return &config, nil
}

// SaveConfig saves keybinding configuration to a JSON file
func SaveConfig(config *Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// splitKeys parses "ctrl+s, alt+enter" into its keys
func splitKeys(keys string) []string {
	var out []string
	for _, k := range strings.Split(keys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// ApplyConfig applies user configuration to a registry.
// A configured action replaces all of its default keys in that context.
func ApplyConfig(registry *Registry, config *Config) error {
	for context, bindings := range config.sections() {
		for actionStr, keys := range bindings {
			action := Action(actionStr)
			if !action.IsKnown() {
				return fmt.Errorf("unknown action %q in %s bindings", actionStr, context)
			}
			parsed := splitKeys(keys)
			for _, key := range parsed {
				if err := ValidateKey(key); err != nil {
					return fmt.Errorf("%s bindings for %s: %w", context, action, err)
				}
			}
			registry.Unbind(context, action)
			registry.RegisterMultiple(context, parsed, action)
		}
	}

	return nil
}

// LoadOrDefault loads user config if it exists, otherwise returns default registry
func LoadOrDefault(configPath string) (*Registry, error) {
	// Start with defaults
	registry := NewDefaultRegistry()

	// Try to load user config
	if _, err := os.Stat(configPath); err == nil {
		config, err := LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", ConfigFileName, err)
		}

		// Apply user config over defaults
		if err := ApplyConfig(registry, config); err != nil {
			return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
		}
	}
	// If config doesn't exist, that's fine - use defaults

	return registry, nil
}

// ExportConfig renders a registry as a config file
func ExportConfig(registry *Registry) *Config {
	config := &Config{
		Version: "1.0",
		Global:  map[string]string{},
		Editor:  map[string]string{},
		Query:   map[string]string{},
		Prompt:  map[string]string{},
		Result:  map[string]string{},
	}
	sections := config.sections()

	for _, context := range Contexts() {
		grouped := map[Action][]string{}
		for key, action := range registry.bindings[context] {
			grouped[action] = append(grouped[action], key)
		}
		for action, keys := range grouped {
			sort.Strings(keys)
			sections[context][string(action)] = strings.Join(keys, ",")
		}
	}

	return config
}

// GetDefaultConfigPath returns the default path for keybinds.json
func GetDefaultConfigPath(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}
