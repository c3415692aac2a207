// Package config loads pragent configuration from .pragent/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the pragent configuration file.
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the pragent configuration directory.
const ConfigDirName = ".pragent"

// Config holds all pragent configuration.
type Config struct {
	Git       GitConfig       `yaml:"git"`
	Templates TemplatesConfig `yaml:"templates"`
	Events    EventsConfig    `yaml:"events"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Log       LogConfig       `yaml:"log"`
}

// GitConfig holds defaults for change analysis.
type GitConfig struct {
	BaseBranch   string `yaml:"base_branch"`
	MaxDiffLines int    `yaml:"max_diff_lines"`
	// WorkDir is the default directory git commands run in. Empty means
	// the process working directory.
	WorkDir string `yaml:"work_dir"`
}

// TemplatesConfig holds the PR template catalog settings.
type TemplatesConfig struct {
	Dir string `yaml:"dir"`
	// SkipUnreadable drops unreadable templates from listings instead of
	// failing the whole call.
	SkipUnreadable bool `yaml:"skip_unreadable"`
}

// EventsConfig locates the shared Actions event log.
type EventsConfig struct {
	File string `yaml:"file"`
}

// WebhookConfig configures the webhook receiver.
type WebhookConfig struct {
	Addr   string `yaml:"addr"`
	Path   string `yaml:"path"`
	Secret string `yaml:"secret"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ErrConfigNotFound is returned when no config file can be found.
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .pragent/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults. Relative
// template and event-log paths are resolved against the config directory's
// parent so the server behaves the same regardless of where it is started.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}

	cfg, err := LoadFromPath(filepath.Join(configDir, ConfigFileName))
	if err != nil {
		return nil, err
	}

	root := filepath.Dir(configDir)
	if !filepath.IsAbs(cfg.Templates.Dir) {
		cfg.Templates.Dir = filepath.Join(root, cfg.Templates.Dir)
	}
	if !filepath.IsAbs(cfg.Events.File) {
		cfg.Events.File = filepath.Join(root, cfg.Events.File)
	}
	return cfg, nil
}

// LoadFromPath reads config from a specific path. The loaded config is
// merged with defaults and validated.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())
	if err := Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// FindConfigDir locates the .pragent directory by walking up from startDir.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// Merge fills zero-valued fields of loaded from def and returns loaded.
func Merge(loaded, def *Config) *Config {
	if loaded.Git.BaseBranch == "" {
		loaded.Git.BaseBranch = def.Git.BaseBranch
	}
	if loaded.Git.MaxDiffLines == 0 {
		loaded.Git.MaxDiffLines = def.Git.MaxDiffLines
	}
	if loaded.Templates.Dir == "" {
		loaded.Templates.Dir = def.Templates.Dir
	}
	if loaded.Events.File == "" {
		loaded.Events.File = def.Events.File
	}
	if loaded.Webhook.Addr == "" {
		loaded.Webhook.Addr = def.Webhook.Addr
	}
	if loaded.Webhook.Path == "" {
		loaded.Webhook.Path = def.Webhook.Path
	}
	if loaded.Log.Level == "" {
		loaded.Log.Level = def.Log.Level
	}
	if loaded.Log.Format == "" {
		loaded.Log.Format = def.Log.Format
	}
	return loaded
}

// Validate checks that config values are valid.
func Validate(cfg *Config) error {
	if cfg.Git.MaxDiffLines <= 0 {
		return fmt.Errorf("%w: max_diff_lines must be positive, got %d",
			ErrInvalidConfig, cfg.Git.MaxDiffLines)
	}
	if !IsValidLogFormat(cfg.Log.Format) {
		return fmt.Errorf("%w: log format must be one of %v, got %q",
			ErrInvalidConfig, ValidLogFormats, cfg.Log.Format)
	}
	if cfg.Webhook.Addr == "" {
		return fmt.Errorf("%w: webhook addr must not be empty", ErrInvalidConfig)
	}
	return nil
}
