package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "output.precision")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Bounds enforced by Validate.
const (
	MinPrecision = 1
	MaxPrecision = 17 // enough to round-trip a float64
	MaxNProcs    = 1024
)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateLaunch()...)
	errors = append(errors, c.validatePaths()...)

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}

// validateOutput validates the OutputConfig
func (c *Config) validateOutput() []ValidationError {
	var errors []ValidationError

	if c.Output.Precision < MinPrecision || c.Output.Precision > MaxPrecision {
		errors = append(errors, ValidationError{
			Field:   "output.precision",
			Value:   c.Output.Precision,
			Message: fmt.Sprintf("must be between %d and %d", MinPrecision, MaxPrecision),
		})
	}

	return errors
}

// validateLaunch validates the LaunchConfig
func (c *Config) validateLaunch() []ValidationError {
	var errors []ValidationError

	if c.Launch.NProcs < 1 {
		errors = append(errors, ValidationError{
			Field:   "launch.nprocs",
			Value:   c.Launch.NProcs,
			Message: "must be at least 1",
		})
	}
	if c.Launch.NProcs > MaxNProcs {
		errors = append(errors, ValidationError{
			Field:   "launch.nprocs",
			Value:   c.Launch.NProcs,
			Message: fmt.Sprintf("must be at most %d for a local job", MaxNProcs),
		})
	}
	if c.Launch.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "launch.timeout_seconds",
			Value:   c.Launch.TimeoutSeconds,
			Message: "must be non-negative (0 disables the timeout)",
		})
	}

	return errors
}

// validatePaths validates the PathsConfig
func (c *Config) validatePaths() []ValidationError {
	var errors []ValidationError

	if c.Paths.JobDir != "" {
		path := c.Paths.JobDir

		// Check for null bytes which are invalid in paths
		if strings.ContainsRune(path, '\x00') {
			errors = append(errors, ValidationError{
				Field:   "paths.job_dir",
				Value:   path,
				Message: "path contains invalid null character",
			})
		}

		// Reasonable path length limit (most filesystems have limits around 4096)
		const maxPathLength = 4096
		if len(path) > maxPathLength {
			errors = append(errors, ValidationError{
				Field:   "paths.job_dir",
				Value:   path,
				Message: fmt.Sprintf("path exceeds maximum length of %d characters", maxPathLength),
			})
		}
	}

	return errors
}
