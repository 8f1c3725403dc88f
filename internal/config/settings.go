package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/studiowebux/policyctl/internal/types"
)

// EnvPrefix prefixes environment overrides
const EnvPrefix = "POLICYCTL"

// ServerSettings locates the analysis service
type ServerSettings struct {
	URL     string           `mapstructure:"url"`
	Timeout time.Duration    `mapstructure:"timeout"`
	TLS     *types.TLSConfig `mapstructure:"tls"`
}

// RenderSettings controls result rendering
type RenderSettings struct {
	Markdown bool   `mapstructure:"markdown"`
	Style    string `mapstructure:"style"`
}

// IngestSettings bounds file loading
type IngestSettings struct {
	Concurrency int   `mapstructure:"concurrency"`
	MaxFileSize int64 `mapstructure:"max_file_size"`
}

// LoggingSettings defines the logging configuration
type LoggingSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MockSettings configures the local mock analysis server
type MockSettings struct {
	Addr   string `mapstructure:"addr"`
	Config string `mapstructure:"config"`
}

// Settings is the top-level configuration
type Settings struct {
	Server  ServerSettings  `mapstructure:"server"`
	Render  RenderSettings  `mapstructure:"render"`
	Ingest  IngestSettings  `mapstructure:"ingest"`
	Logging LoggingSettings `mapstructure:"logging"`
	Mock    MockSettings    `mapstructure:"mock"`
}

var defaults = map[string]any{
	"server.url":                      "http://localhost:8000",
	"server.timeout":                  "120s",
	"server.tls.cert_file":            "",
	"server.tls.key_file":             "",
	"server.tls.ca_file":              "",
	"server.tls.insecure_skip_verify": false,
	"render.markdown":                 true,
	"render.style":                    "monokai",
	"ingest.concurrency":              8,
	"ingest.max_file_size":            10 << 20,
	"logging.level":                   "info",
	"logging.format":                  "text",
	"logging.output":                  "",
	"mock.addr":                       ":8000",
	"mock.config":                     "",
}

// Default returns the built-in settings
func Default() *Settings {
	s, err := decode(newViper())
	if err != nil {
		// defaults are static
		panic(err)
	}
	return s
}

// Load reads settings in increasing precedence: defaults, the settings
// file, a .env file in the working directory, then POLICYCTL_* variables.
// An explicit file must exist; the default file is optional.
func Load(file string) (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("failed to load .env file")
	}

	v := newViper()

	explicit := file != ""
	if !explicit {
		file = GetConfigFilePath()
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var pathErr *os.PathError
			if explicit || !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
			}
		} else {
			logrus.WithField("file", file).Debug("loaded config file")
		}
	}

	s, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if s.Server.TLS.IsZero() {
		s.Server.TLS = nil
	}
	return &s, nil
}

// Validate checks settings for values the client cannot use
func (s *Settings) Validate() error {
	u, err := url.Parse(s.Server.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server.url must be an http or https URL, got %q", s.Server.URL)
	}
	if s.Server.Timeout < 0 {
		return fmt.Errorf("server.timeout must not be negative")
	}
	if s.Ingest.Concurrency < 1 {
		return fmt.Errorf("ingest.concurrency must be at least 1")
	}
	if s.Ingest.MaxFileSize <= 0 {
		return fmt.Errorf("ingest.max_file_size must be positive")
	}
	if _, err := logrus.ParseLevel(s.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch strings.ToLower(s.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", s.Logging.Format)
	}
	return nil
}
