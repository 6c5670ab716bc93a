// Package config holds the application configuration shared by the CLI
// commands.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	LogLevel string `yaml:"log_level" default:"info"`

	// OutputFormat selects how command results are rendered: table or json.
	OutputFormat string `yaml:"output_format" default:"table"`

	ConnectTimeout    time.Duration `yaml:"connect_timeout" default:"30s"`
	ReadTimeout       time.Duration `yaml:"read_timeout" default:"30s"`
	DisconnectTimeout time.Duration `yaml:"disconnect_timeout" default:"5s"`
	SlotWaitTimeout   time.Duration `yaml:"slot_wait_timeout" default:"2s"`
}

// Default returns default configuration values
func Default() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file, filling unset fields with
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	return cfg, nil
}

// UnmarshalYAML decodes durations from Go duration strings ("30s", "500ms").
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type raw struct {
		LogLevel          string `yaml:"log_level"`
		OutputFormat      string `yaml:"output_format"`
		ConnectTimeout    string `yaml:"connect_timeout"`
		ReadTimeout       string `yaml:"read_timeout"`
		DisconnectTimeout string `yaml:"disconnect_timeout"`
		SlotWaitTimeout   string `yaml:"slot_wait_timeout"`
	}

	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}

	if r.LogLevel != "" {
		c.LogLevel = r.LogLevel
	}
	if r.OutputFormat != "" {
		c.OutputFormat = r.OutputFormat
	}
	for _, d := range []struct {
		value  string
		target *time.Duration
	}{
		{r.ConnectTimeout, &c.ConnectTimeout},
		{r.ReadTimeout, &c.ReadTimeout},
		{r.DisconnectTimeout, &c.DisconnectTimeout},
		{r.SlotWaitTimeout, &c.SlotWaitTimeout},
	} {
		if d.value == "" {
			continue
		}
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", d.value, err)
		}
		*d.target = v
	}
	return nil
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	logger := logrus.New()
	logger.SetLevel(level)

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger, nil
}
