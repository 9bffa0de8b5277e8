package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if !cfg.Logging.Enabled {
		t.Error("Logging.Enabled should be true by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Output.Precision != 10 {
		t.Errorf("Output.Precision = %d, want 10", cfg.Output.Precision)
	}
	if cfg.Launch.NProcs != 1 {
		t.Errorf("Launch.NProcs = %d, want 1", cfg.Launch.NProcs)
	}
	if cfg.Launch.TimeoutSeconds != 0 {
		t.Errorf("Launch.TimeoutSeconds = %d, want 0", cfg.Launch.TimeoutSeconds)
	}
	if cfg.Paths.JobDir != "" {
		t.Errorf("Paths.JobDir = %q, want empty", cfg.Paths.JobDir)
	}
}

func TestLaunchConfig_Timeout(t *testing.T) {
	tests := []struct {
		seconds int
		want    time.Duration
	}{
		{0, 0},
		{1, time.Second},
		{90, 90 * time.Second},
	}

	for _, tt := range tests {
		cfg := &LaunchConfig{TimeoutSeconds: tt.seconds}
		if got := cfg.Timeout(); got != tt.want {
			t.Errorf("Timeout() with %d seconds = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

func TestPathsConfig_ResolveJobDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		name    string
		jobDir  string
		baseDir string
		want    string
	}{
		{"empty uses default", "", "/work", filepath.Join("/work", DefaultJobDir)},
		{"absolute", "/scratch/run1", "/work", "/scratch/run1"},
		{"relative", "runs/a", "/work", "/work/runs/a"},
		{"home relative", "~/runs", "/work", filepath.Join(home, "runs")},
		{"home", "~", "/work", home},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &PathsConfig{JobDir: tt.jobDir}
			if got := p.ResolveJobDir(tt.baseDir); got != tt.want {
				t.Errorf("ResolveJobDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		if got, want := ConfigDir(), "/custom/config/amrex"; got != want {
			t.Errorf("ConfigDir() = %q, want %q", got, want)
		}
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, _ := os.UserHomeDir()
		if got, want := ConfigDir(), filepath.Join(home, ".config", "amrex"); got != want {
			t.Errorf("ConfigDir() = %q, want %q", got, want)
		}
	})
}

func TestConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := ConfigFile(), "/custom/config/amrex/config.yaml"; got != want {
		t.Errorf("ConfigFile() = %q, want %q", got, want)
	}
}

func TestGet(t *testing.T) {
	// Set defaults in viper first (normally done by cmd init)
	SetDefaults()

	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}
	if cfg.Output.Precision != 10 {
		t.Errorf("Get().Output.Precision = %d, want 10", cfg.Output.Precision)
	}
	if cfg.Launch.NProcs != 1 {
		t.Errorf("Get().Launch.NProcs = %d, want 1", cfg.Launch.NProcs)
	}
}
