package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes the config to the user's config directory.
func (c *Config) Save() error {
	return c.SaveTo(filepath.Join(ConfigDir(), "config.yaml"))
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	// Create parent directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDefaultConfig writes a default config file to the user's config
// directory unless one already exists. Returns the path either way.
func EnsureDefaultConfig() (string, error) {
	path := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := Default().SaveTo(path); err != nil {
		return "", err
	}
	return path, nil
}
