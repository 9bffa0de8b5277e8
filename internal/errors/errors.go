// Package errors provides centralized error definitions and error handling utilities
// for the amrex base library. It defines the sentinel errors returned by the
// lifecycle collaborators, semantic error types carrying context, and the
// category classification used to decide whether a condition is fatal.
//
// # Error Types
//
// Domain-specific errors represent errors from specific subsystems:
//   - UsageError: malformed command-line invocation
//   - ConfigError: problems reading or querying the input-file table
//   - RuntimeError: failures of the distributed runtime on a given rank
//
// # Categories
//
// The base library recognizes one recoverable category and three fatal ones:
//   - CategoryWarning: informational, never aborts
//   - CategoryUsage: malformed invocation, reported then aborted
//   - CategoryAssertion: internal invariant violated, always fatal
//   - CategoryAllocation: memory exhausted, a specialized assertion
//
// Fatal categories are never returned to a caller that could continue; the
// lifecycle code hands them to the fatal reporter, which terminates the job.
// The error values in this package exist for the collaborators, whose
// failures are converted into fatal reports at the lifecycle boundary.
//
// # Usage
//
//	err := errors.NewConfigError("bad value", errors.ErrSyntax).
//	    WithFile("inputs").WithLine(12).WithName("amr.max_level")
//
//	if errors.Is(err, errors.ErrSyntax) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Category classifies a condition by how the base library reacts to it.
type Category int

const (
	// CategoryWarning is informational; it never escalates.
	CategoryWarning Category = iota
	// CategoryUsage is a malformed invocation.
	CategoryUsage
	// CategoryAssertion is a violated internal invariant.
	CategoryAssertion
	// CategoryAllocation is exhausted dynamic memory.
	CategoryAllocation
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryWarning:
		return "warning"
	case CategoryUsage:
		return "usage"
	case CategoryAssertion:
		return "assertion"
	case CategoryAllocation:
		return "allocation"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Lifecycle sentinel errors
var (
	// ErrAlreadyInitialized indicates a second start of the same process state.
	ErrAlreadyInitialized = New("already initialized")
	// ErrNotInitialized indicates a stop or query before a successful start.
	ErrNotInitialized = New("not initialized")
)

// Invocation sentinel errors
var (
	// ErrMissingInputFile indicates that no input file argument was given.
	ErrMissingInputFile = New("missing input file")
	// ErrInputFileOrder indicates that an option preceded the input file.
	ErrInputFileOrder = New("input file must be first argument")
)

// Configuration sentinel errors
var (
	// ErrNotFound indicates that a name is not defined in the table.
	ErrNotFound = New("name not found")
	// ErrSyntax indicates a malformed input file or value.
	ErrSyntax = New("syntax error")
	// ErrIncludeCycle indicates that an input file includes itself.
	ErrIncludeCycle = New("include cycle")
)

// Runtime sentinel errors
var (
	// ErrRuntimeNotStarted indicates a runtime call before StartParallel.
	ErrRuntimeNotStarted = New("parallel runtime not started")
	// ErrRuntimeStarted indicates a second StartParallel.
	ErrRuntimeStarted = New("parallel runtime already started")
	// ErrLaunchUnsupported indicates the platform cannot launch a local job.
	ErrLaunchUnsupported = New("local job launch unsupported on this platform")
)

// Allocation sentinel errors
var (
	// ErrAllocation indicates that an allocation request could not be satisfied.
	ErrAllocation = New("allocation failed")
)

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message  string
	cause    error
	category Category
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Category returns the error category.
func (e *baseError) Category() Category {
	return e.category
}

// format renders "<kind> [k=v, ...]: message: cause".
func (e *baseError) format(kind string, parts []string) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// UsageError represents a malformed command-line invocation.
//
// Example:
//
//	err := errors.NewUsageError("input file must be first argument", errors.ErrInputFileOrder).
//	    WithProgram("amrex")
type UsageError struct {
	baseError
	Program string
}

// NewUsageError creates a new UsageError.
func NewUsageError(message string, cause error) *UsageError {
	return &UsageError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			category: CategoryUsage,
		},
	}
}

// WithProgram adds the program name to the error context.
func (e *UsageError) WithProgram(program string) *UsageError {
	e.Program = program
	return e
}

// Error returns the formatted error message.
func (e *UsageError) Error() string {
	var parts []string
	if e.Program != "" {
		parts = append(parts, fmt.Sprintf("program=%s", e.Program))
	}
	return e.format("usage error", parts)
}

// ConfigError represents errors reading or querying the input table.
type ConfigError struct {
	baseError
	File string
	Line int
	Name string
}

// NewConfigError creates a new ConfigError.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			category: CategoryUsage,
		},
	}
}

// WithFile adds the input file path to the error context.
func (e *ConfigError) WithFile(file string) *ConfigError {
	e.File = file
	return e
}

// WithLine adds the 1-based line number to the error context.
func (e *ConfigError) WithLine(line int) *ConfigError {
	e.Line = line
	return e
}

// WithName adds the queried or defined name to the error context.
func (e *ConfigError) WithName(name string) *ConfigError {
	e.Name = name
	return e
}

// Error returns the formatted error message.
func (e *ConfigError) Error() string {
	var parts []string
	if e.File != "" {
		if e.Line > 0 {
			parts = append(parts, fmt.Sprintf("file=%s:%d", e.File, e.Line))
		} else {
			parts = append(parts, fmt.Sprintf("file=%s", e.File))
		}
	}
	if e.Name != "" {
		parts = append(parts, fmt.Sprintf("name=%s", e.Name))
	}
	return e.format("config error", parts)
}

// RuntimeError represents failures of the distributed runtime.
type RuntimeError struct {
	baseError
	Rank int
}

// NewRuntimeError creates a new RuntimeError. Rank is -1 until set.
func NewRuntimeError(message string, cause error) *RuntimeError {
	return &RuntimeError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			category: CategoryAssertion,
		},
		Rank: -1,
	}
}

// WithRank adds the process rank to the error context.
func (e *RuntimeError) WithRank(rank int) *RuntimeError {
	e.Rank = rank
	return e
}

// Error returns the formatted error message.
func (e *RuntimeError) Error() string {
	var parts []string
	if e.Rank >= 0 {
		parts = append(parts, fmt.Sprintf("rank=%d", e.Rank))
	}
	return e.format("runtime error", parts)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// categorized is implemented by every error type in this package.
type categorized interface {
	Category() Category
}

// CategoryOf returns the category of err. Errors that carry no category
// are treated as assertions: an unclassified failure inside the lifecycle
// is an invariant the code did not expect to break.
func CategoryOf(err error) Category {
	if err == nil {
		return CategoryWarning
	}
	var c categorized
	if As(err, &c) {
		return c.Category()
	}
	if Is(err, ErrAllocation) {
		return CategoryAllocation
	}
	return CategoryAssertion
}
