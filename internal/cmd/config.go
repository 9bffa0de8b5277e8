package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nicholasbl/amrex/internal/config"
	tuiconfig "github.com/nicholasbl/amrex/internal/tui/config"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify amrex configuration",
	Long: `View or modify amrex driver configuration.

Without arguments, opens an interactive configuration UI on a terminal
and displays the current configuration otherwise.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigInteractive,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  amrex config set logging.level debug
  amrex config set launch.nprocs 4

Valid keys:
  logging.enabled          - Write the shared job log (true/false)
  logging.level            - Minimum level logged (debug/info/warn/error)
  output.precision         - Significant digits of floating-point output
  launch.nprocs            - Default rank count for 'amrex launch'
  launch.timeout_seconds   - Terminate launched jobs after this long (0 = no limit)
  paths.job_dir            - Directory holding the job log`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/amrex/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// configKeys maps every settable key to its value type.
var configKeys = map[string]string{
	"logging.enabled":        "bool",
	"logging.level":          "string",
	"output.precision":       "int",
	"launch.nprocs":          "int",
	"launch.timeout_seconds": "int",
	"paths.job_dir":          "string",
}

func runConfigInteractive(cmd *cobra.Command, args []string) error {
	if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return tuiconfig.Run()
	}
	return runConfigShow(cmd, args)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out)

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "logging:")
	fmt.Fprintf(out, "  enabled: %v\n", cfg.Logging.Enabled)
	fmt.Fprintf(out, "  level: %s\n", cfg.Logging.Level)

	fmt.Fprintln(out, "output:")
	fmt.Fprintf(out, "  precision: %d\n", cfg.Output.Precision)

	fmt.Fprintln(out, "launch:")
	fmt.Fprintf(out, "  nprocs: %d\n", cfg.Launch.NProcs)
	fmt.Fprintf(out, "  timeout_seconds: %d\n", cfg.Launch.TimeoutSeconds)

	fmt.Fprintln(out, "paths:")
	fmt.Fprintf(out, "  job_dir: %q\n", cfg.Paths.JobDir)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	keyType, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'amrex config set --help' to see valid keys", key)
	}

	var typedValue any
	switch keyType {
	case "string":
		typedValue = value
	case "bool":
		b, err := cast.ToBoolE(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = b
	case "int":
		n, err := cast.ToIntE(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		typedValue = n
	}

	previous := viper.Get(key)
	viper.Set(key, typedValue)
	if _, err := config.Load(); err != nil {
		viper.Set(key, previous)
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	// Ensure config directory exists
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)

	return nil
}

// defaultConfigContent is the commented file written by 'config init'.
const defaultConfigContent = `# amrex driver configuration

# Shared job log, written by every rank
logging:
  enabled: true
  # Options: debug, info, warn, error
  level: info

# Standard output of a running job
output:
  # Significant digits of floating-point values
  precision: 10

# Local multi-process jobs ('amrex launch')
launch:
  nprocs: 1
  # Terminate the job after this many seconds (0 = no limit)
  timeout_seconds: 0

paths:
  # Directory holding the job log (default: .amrex in the working directory)
  job_dir: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'amrex config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Edit this file to customize amrex's behavior.")

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintf(out, "  2. $HOME/.config/amrex/config.yaml\n")
	fmt.Fprintf(out, "  3. ./config.yaml (current directory)\n")
	fmt.Fprintf(out, "\nEnvironment variables: %s_* (e.g., %s_LOGGING_LEVEL)\n",
		config.EnvPrefix, config.EnvPrefix)

	return nil
}
