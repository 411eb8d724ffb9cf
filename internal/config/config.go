// Package config loads the remotecl-server YAML configuration file,
// matching the layering the teacher's own control CLI uses: defaults,
// then file contents, then caller-applied flag overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPort is the compile-time default listen port, matching the
// reference implementation's own hardcoded default.
const DefaultPort = 23857

// Config holds remotecl-server's tunables.
type Config struct {
	Port           int    `yaml:"port" json:"port"`
	Compress       bool   `yaml:"compress" json:"compress"`
	Events         bool   `yaml:"events" json:"events"`
	LogLevel       string `yaml:"log_level" json:"log_level"`
	MetricsAddr    string `yaml:"metrics_addr" json:"metrics_addr"`
	Backend        string `yaml:"backend" json:"backend"`
}

// Default returns the built-in configuration used when no file is given.
func Default() Config {
	return Config{
		Port:        DefaultPort,
		Compress:    true,
		Events:      true,
		LogLevel:    "info",
		MetricsAddr: ":9464",
		Backend:     "fake",
	}
}

// Load reads path as YAML over the default configuration. A missing file is
// not an error: the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("remotecl: read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("remotecl: parse config %s: %w", path, err)
	}
	return cfg, nil
}
