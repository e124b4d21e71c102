// Package config provides hierarchical configuration management for changecheck using koanf.
// Configuration is loaded with priority: environment variables > project config (.changecheck.yml)
// > user config (~/.config/changecheck/config.yml) > defaults. Command-line flags are applied
// on top by the cli package.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables that override config keys.
const EnvPrefix = "CHANGECHECK_"

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceEnv     ConfigSource = "env"
)

// Configuration represents the changecheck CLI tool configuration
type Configuration struct {
	// Changelog is the file checked when no path is given on the command line.
	// Relative paths are resolved against the working directory first and the
	// repository root second.
	Changelog string `koanf:"changelog" validate:"required"`

	// Fix writes corrected files back to disk.
	Fix bool `koanf:"fix"`

	// Format selects the output of the check command: text, yaml or summary.
	Format string `koanf:"format" validate:"oneof=text yaml summary"`

	Plain    bool   `koanf:"plain"`
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// MaxParallel bounds how many changelog files are checked at once.
	MaxParallel int `koanf:"max_parallel" validate:"min=1,max=64"`

	// WatchDebounce collapses bursts of writes into a single re-check.
	WatchDebounce time.Duration `koanf:"watch_debounce" validate:"min=0"`

	// sources records which layer set each key, for debug output.
	sources map[string]ConfigSource
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .changecheck.yml)
	ProjectConfigPath string
	// UserConfigPath overrides the user config path (default: see UserConfigPath)
	UserConfigPath string
	// SkipUser ignores the user config file
	SkipUser bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	sources := make(map[string]ConfigSource)

	loadDefaults(k, sources)

	paths := make(map[ConfigSource]string)
	if !opts.SkipUser {
		userPath := opts.UserConfigPath
		if userPath == "" {
			userPath, _ = UserConfigPath()
		}
		paths[SourceUser] = userPath
		if err := loadOptionalYAML(k, userPath, SourceUser, sources); err != nil {
			return nil, fmt.Errorf("loading user config: %w", err)
		}
	}

	projectPath := opts.ProjectConfigPath
	explicit := projectPath != ""
	if !explicit {
		projectPath = ProjectConfigPath()
	}
	if explicit && !fileExists(projectPath) {
		return nil, fmt.Errorf("config file not found: %s", projectPath)
	}
	paths[SourceProject] = projectPath
	if err := loadOptionalYAML(k, projectPath, SourceProject, sources); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := loadEnvironmentConfig(k, sources); err != nil {
		return nil, err
	}

	return finalizeConfig(k, sources, locator(sources, paths))
}

// Source reports which layer set key.
func (c *Configuration) Source(key string) ConfigSource {
	if s, ok := c.sources[key]; ok {
		return s
	}
	return SourceDefault
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf, sources map[string]ConfigSource) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
		sources[key] = SourceDefault
	}
}

// loadOptionalYAML validates and loads a YAML config file when it exists
func loadOptionalYAML(k *koanf.Koanf, path string, source ConfigSource, sources map[string]ConfigSource) error {
	if !fileExists(path) {
		return nil
	}
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", source, err)
	}

	layer := koanf.New(".")
	if err := layer.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", source, path, err)
	}
	for _, key := range layer.Keys() {
		sources[key] = source
	}
	return k.Merge(layer)
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf, sources map[string]ConfigSource) error {
	layer := koanf.New(".")
	if err := layer.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	for _, key := range layer.Keys() {
		sources[key] = SourceEnv
	}
	return k.Merge(layer)
}

// finalizeConfig unmarshals and validates the merged layers
func finalizeConfig(k *koanf.Koanf, sources map[string]ConfigSource, locate keyLocator) (*Configuration, error) {
	if err := validateRawValues(k, locate); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	var cfg Configuration
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Changelog = expandHomePath(cfg.Changelog)

	if err := ValidateConfigValues(&cfg, locate); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.sources = sources
	return &cfg, nil
}

// locator names the file or environment variable that set each key.
// Defaults are attributed to the project config, where they would be changed.
func locator(sources map[string]ConfigSource, paths map[ConfigSource]string) keyLocator {
	return func(key string) string {
		switch src := sources[key]; src {
		case SourceEnv:
			return EnvPrefix + strings.ToUpper(key)
		case SourceUser:
			return paths[SourceUser]
		default:
			return paths[SourceProject]
		}
	}
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: CHANGECHECK_MAX_PARALLEL -> max_parallel
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return homeDir + path[1:]
		}
	}
	return path
}
