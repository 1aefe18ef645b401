// Package config loads gemspec settings from defaults, an optional config
// file, GEMSPEC_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "gemspec"
	// EnvPrefix prefixes environment variable overrides.
	EnvPrefix = "GEMSPEC"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "yaml"
)

// Config holds the resolved settings.
type Config struct {
	Workers  int           `mapstructure:"workers"`
	Format   string        `mapstructure:"format"`
	Include  []string      `mapstructure:"include"`
	Verbose  bool          `mapstructure:"verbose"`
	Cache    string        `mapstructure:"cache"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:  4,
		Format:   "text",
		Include:  []string{"**/*.gem"},
		CacheTTL: 24 * time.Hour,
	}
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// ConfigFilePath, when set, is the only config file read and must exist.
	ConfigFilePath string
	// ConfigDirPath overrides the directory searched for config.yaml.
	ConfigDirPath string
	// Flags are bound on top of every other source. Only flags the user
	// changed take effect.
	Flags *pflag.FlagSet
}

// ConfigDir returns $XDG_CONFIG_HOME/gemspec, defaulting to
// ~/.config/gemspec.
func ConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, AppName), nil
}

// Load resolves the configuration. It returns the config file that was
// read, or "" when none was found.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("include", defaults.Include)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("cache", defaults.Cache)
	v.SetDefault("cache_ttl", defaults.CacheTTL)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	resolvedPath := ""
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", fmt.Errorf("config file not found: %s", opts.ConfigFilePath)
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		dir := opts.ConfigDirPath
		if dir == "" {
			var err error
			if dir, err = ConfigDir(); err != nil {
				return nil, "", err
			}
		}
		if path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt); fileExists(path) {
			resolvedPath = path
		}
	}

	if resolvedPath != "" {
		v.SetConfigFile(resolvedPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("reading config %s: %w", resolvedPath, err)
		}
	}

	if opts.Flags != nil {
		var bindErr error
		opts.Flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil {
				bindErr = errors.Join(bindErr, err)
			}
		})
		if bindErr != nil {
			return nil, "", fmt.Errorf("binding flags: %w", bindErr)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolvedPath, nil
}

// Validate checks values that the loaders cannot.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if len(c.Include) == 0 {
		return errors.New("include must name at least one pattern")
	}
	for _, pat := range c.Include {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("invalid include pattern %q", pat)
		}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
