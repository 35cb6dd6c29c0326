package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/llmd-format/llmd/pkg/validate"
)

// Config represents the llmd CLI configuration
type Config struct {
	CatalogDir       string   `yaml:"catalog_dir"`
	StrictTimestamps bool     `yaml:"strict_timestamps"`
	VerifyChecksums  bool     `yaml:"verify_checksums"`
	ExtraRoles       []string `yaml:"extra_roles"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		CatalogDir: "./.llmd-catalog",
	}
}

// RoleFunc builds a role-acceptance predicate from the configured extra
// roles, or nil when none are configured.
func (c *Config) RoleFunc() validate.RoleFunc {
	if len(c.ExtraRoles) == 0 {
		return nil
	}
	extra := make(map[string]bool, len(c.ExtraRoles))
	for _, r := range c.ExtraRoles {
		extra[r] = true
	}
	return func(role string) bool { return extra[role] }
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./llmd.yaml"
	}
	return filepath.Join(homeDir, ".config", "llmd", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
