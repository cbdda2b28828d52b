package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the file name looked for in the working directory.
const DefaultConfigFile = "provsync.yaml"

// LoadFile reads and parses the configuration from a YAML file.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// FindConfigFile returns the explicit path if given, otherwise the default
// file name if it exists in the working directory.
func FindConfigFile(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if _, err := os.Stat(DefaultConfigFile); err != nil {
		return "", fmt.Errorf("no config file specified and %s not found", DefaultConfigFile)
	}
	return DefaultConfigFile, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Endpoint == "" {
		cfg.Store.Endpoint = DefaultEndpoint
	}
	if cfg.TerminalStatus == "" {
		cfg.TerminalStatus = DefaultTerminalStatus
	}
	if len(cfg.CredentialCommand) == 0 {
		cfg.CredentialCommand = DefaultCredentialCommand
	}
}
