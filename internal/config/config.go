package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// DefaultFilename is the configuration file looked up in a site root.
const DefaultFilename = "config.yml"

// ErrConfigNotFound indicates an explicitly requested configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Config is the site configuration.
type Config struct {
	Title   string `yaml:"title"`
	BaseURL string `yaml:"base_url,omitempty"`
	// Themes are content roots layered beneath the site, highest priority first.
	// Relative paths resolve against the site root.
	Themes []string `yaml:"themes,omitempty"`
	// BuiltinDir is the lowest priority content root.
	BuiltinDir string `yaml:"builtin_dir,omitempty"`
	// MetaDir is the per-root directory holding includes.
	MetaDir        string         `yaml:"meta_dir"`
	ExcludePrefix  string         `yaml:"exclude_prefix"`
	ConfigFilename string         `yaml:"config_filename"`
	Params         map[string]any `yaml:"params,omitempty"`
	InitScript     string         `yaml:"init_script,omitempty"`
	Output         OutputConfig   `yaml:"output"`
	Logging        LoggingConfig  `yaml:"logging"`
	FrontMatter    []string       `yaml:"front_matter"`
	Metrics        MetricsConfig  `yaml:"metrics,omitempty"`

	// Source is the absolute path of the file the configuration was read
	// from. It is empty for Default.
	Source string `yaml:"-"`
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Clean output directory before build
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads, expands, normalizes and validates the configuration at configPath.
// .env and .env.local next to the file are loaded first; they never override
// variables already present in the process environment.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}

	loadEnvFiles(filepath.Dir(configPath))

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalize(cfg)
	applyDefaults(cfg)
	if abs, err := filepath.Abs(configPath); err == nil {
		cfg.Source = abs
	} else {
		cfg.Source = configPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadSite loads DefaultFilename from root, falling back to Default when the
// site has no configuration file.
func LoadSite(root string) (*Config, error) {
	cfg, err := Load(filepath.Join(root, DefaultFilename))
	if errors.Is(err, ErrConfigNotFound) {
		slog.Debug("No site configuration, using defaults", logfields.Root(root))
		return Default(), nil
	}
	return cfg, err
}

func loadEnvFiles(dir string) {
	for _, name := range []string{".env", ".env.local"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("Failed to load environment file", logfields.Path(p), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.Path(p))
	}
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Default()
	example.Title = "My Site"
	example.BaseURL = "https://example.org"
	example.Params = map[string]any{"description": "A site built from templated content"}

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
