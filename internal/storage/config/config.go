package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds global application settings.
type Config struct {
	PlayerName      string `yaml:"player_name"`
	DefaultBranch   string `yaml:"default_branch"`
	InstancesDir    string `yaml:"instances_dir"`
	PatchServerURL  string `yaml:"patch_server_url"`
	RegistryBackend string `yaml:"registry_backend"` // "rest" or "graphql"
	VersionCacheTTL string `yaml:"version_cache_ttl"`
	GameBinary      string `yaml:"game_binary"`
}

// Load reads configuration from the given directory, returning defaults
// when no config file exists yet.
func Load(configDir string) (*Config, error) {
	cfg := &Config{
		DefaultBranch:   "release",
		RegistryBackend: "rest",
		GameBinary:      "game",
	}

	configPath := filepath.Join(configDir, "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // Return defaults
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.RegistryBackend == "" {
		cfg.RegistryBackend = "rest"
	}
	if cfg.GameBinary == "" {
		cfg.GameBinary = "game"
	}

	return cfg, nil
}

// Save writes configuration to the given directory.
func (c *Config) Save(configDir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
