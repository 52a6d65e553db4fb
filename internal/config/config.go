// Package config loads clipkeep's bootstrap configuration from a YAML file.
// Runtime preferences such as theme and poll interval live in the database
// settings table instead.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/yiblet/clipkeep/internal/clipboard"
)

// AppName names the XDG subdirectories.
const AppName = "clipkeep"

// Config represents the clipkeep configuration
type Config struct {
	DatabasePath string `yaml:"database_path,omitempty"`
	Clipboard    string `yaml:"clipboard"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
	LogFile      string `yaml:"log_file,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Clipboard: string(clipboard.KindAuto),
		LogLevel:  "info",
		LogFormat: "auto",
	}
}

// DefaultConfigPath is $XDG_CONFIG_HOME/clipkeep/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// DefaultDatabasePath is $XDG_DATA_HOME/clipkeep/clipkeep.db.
func DefaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, AppName, AppName+".db")
}

// DefaultLogFile is $XDG_STATE_HOME/clipkeep/clipkeep.log.
func DefaultLogFile() string {
	return filepath.Join(xdg.StateHome, AppName, AppName+".log")
}

// DBPath resolves the database path. Relative paths are placed under the
// XDG data directory.
func (c *Config) DBPath() string {
	return resolve(c.DatabasePath, DefaultDatabasePath(), filepath.Join(xdg.DataHome, AppName))
}

// LogFilePath resolves the log file path. Relative paths are placed under
// the XDG state directory.
func (c *Config) LogFilePath() string {
	return resolve(c.LogFile, DefaultLogFile(), filepath.Join(xdg.StateHome, AppName))
}

func resolve(path, fallback, base string) string {
	switch {
	case path == "":
		return fallback
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(xdg.Home, path[2:])
	case filepath.IsAbs(path):
		return path
	default:
		return filepath.Join(base, path)
	}
}

// ConfigManager manages configuration persistence
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a configuration manager for the default path.
func NewConfigManager() *ConfigManager {
	return NewConfigManagerWithPath(DefaultConfigPath())
}

// NewConfigManagerWithPath creates a config manager with custom config path
func NewConfigManagerWithPath(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// Load reads the configuration from file, or returns default if file doesn't exist
func (cm *ConfigManager) Load() (*Config, error) {
	data, err := os.ReadFile(cm.configPath)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cm.validateAndSetDefaults(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save writes the configuration to file
func (cm *ConfigManager) Save(config *Config) error {
	if err := cm.validateAndSetDefaults(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cm.configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// validateAndSetDefaults validates configuration and sets defaults for missing fields
func (cm *ConfigManager) validateAndSetDefaults(config *Config) error {
	defaults := DefaultConfig()
	if config.Clipboard == "" {
		config.Clipboard = defaults.Clipboard
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.LogFormat == "" {
		config.LogFormat = defaults.LogFormat
	}

	if _, err := clipboard.ParseKind(config.Clipboard); err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", config.LogLevel)
	}

	switch strings.ToLower(config.LogFormat) {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("log_format must be auto, text or json, got %q", config.LogFormat)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// Exists reports whether the config file is present.
func (cm *ConfigManager) Exists() bool {
	_, err := os.Stat(cm.configPath)
	return err == nil
}

// Update modifies a specific configuration value
func (cm *ConfigManager) Update(key, value string) error {
	config, err := cm.Load()
	if err != nil {
		return err
	}

	switch key {
	case "database-path":
		config.DatabasePath = value
	case "clipboard":
		config.Clipboard = value
	case "log-level":
		config.LogLevel = value
	case "log-format":
		config.LogFormat = value
	case "log-file":
		config.LogFile = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	return cm.Save(config)
}

// Get returns the value for a specific configuration key
func (cm *ConfigManager) Get(key string) (string, error) {
	values, err := cm.List()
	if err != nil {
		return "", err
	}

	value, ok := values[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return value, nil
}

// List returns all configuration keys and values, with paths resolved.
func (cm *ConfigManager) List() (map[string]string, error) {
	config, err := cm.Load()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"database-path": config.DBPath(),
		"clipboard":     config.Clipboard,
		"log-level":     config.LogLevel,
		"log-format":    config.LogFormat,
		"log-file":      config.LogFilePath(),
	}, nil
}

// Keys returns the configuration keys in sorted order.
func Keys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
