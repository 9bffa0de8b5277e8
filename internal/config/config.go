package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override
// configuration keys, e.g. AMREX_LOGGING_LEVEL for logging.level.
const EnvPrefix = "AMREX"

// Config represents the complete amrex driver configuration
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
	Launch  LaunchConfig  `mapstructure:"launch"`
	Paths   PathsConfig   `mapstructure:"paths"`
}

// LoggingConfig controls the structured job log
type LoggingConfig struct {
	// Enabled controls whether the job log is written (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the minimum level recorded: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
}

// OutputConfig controls standard output of a running job
type OutputConfig struct {
	// Precision is the number of significant digits used for floating-point
	// values once the base library is initialized (default: 10)
	Precision int `mapstructure:"precision"`
}

// LaunchConfig controls local multi-process jobs
type LaunchConfig struct {
	// NProcs is the default number of ranks for "amrex launch" (default: 1)
	NProcs int `mapstructure:"nprocs"`
	// TimeoutSeconds terminates the whole job after this long (0 = no limit)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// Timeout returns the launch timeout as a time.Duration (0 means disabled)
func (c *LaunchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PathsConfig controls where job artifacts are written
type PathsConfig struct {
	// JobDir is the directory holding the job log.
	// Supports:
	//   - Absolute paths: /scratch/run1
	//   - Home-relative paths: ~/runs/current
	//   - Relative paths: resolved from the working directory
	// Default: .amrex
	JobDir string `mapstructure:"job_dir"`
}

// DefaultJobDir is used when paths.job_dir is empty.
const DefaultJobDir = ".amrex"

// ResolveJobDir returns the resolved job directory path.
// If JobDir is empty, it returns the default path relative to baseDir.
// If JobDir starts with ~, it expands to the user's home directory.
// If JobDir is a relative path, it's resolved relative to baseDir.
func (p *PathsConfig) ResolveJobDir(baseDir string) string {
	if p.JobDir == "" {
		return filepath.Join(baseDir, DefaultJobDir)
	}

	path := p.JobDir

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
		Output: OutputConfig{
			Precision: 10,
		},
		Launch: LaunchConfig{
			NProcs:         1,
			TimeoutSeconds: 0, // No limit by default
		},
		Paths: PathsConfig{
			JobDir: "", // Empty means use default: .amrex
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)

	// Output defaults
	viper.SetDefault("output.precision", defaults.Output.Precision)

	// Launch defaults
	viper.SetDefault("launch.nprocs", defaults.Launch.NProcs)
	viper.SetDefault("launch.timeout_seconds", defaults.Launch.TimeoutSeconds)

	// Paths defaults
	viper.SetDefault("paths.job_dir", defaults.Paths.JobDir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "amrex")
	}
	// Fall back to ~/.config/amrex
	home, err := os.UserHomeDir()
	if err != nil {
		return ".amrex"
	}
	return filepath.Join(home, ".config", "amrex")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
