package boxlib

import "github.com/nicholasbl/amrex/internal/profiler"

// Runtime is the distributed runtime.
type Runtime interface {
	// StartParallel joins the job and returns the argument vector with
	// the runtime's own arguments removed.
	StartParallel(args []string) ([]string, error)
	// MyProc returns this process's rank.
	MyProc() int
	// Abort terminates every process of the job.
	Abort()
	// EndParallel leaves the job.
	EndParallel() error
}

// ConfigParser is the run-time parameter table.
type ConfigParser interface {
	Initialize(args []string, inputFile string) error
	Finalize() error
}

// Instrumentation is the profiling subsystem.
type Instrumentation interface {
	NewScope(tag profiler.Tag) profiler.Scope
	Initialize(args []string) error
	Finalize() error
}

// ArraySubsystem holds process-wide array defaults.
type ArraySubsystem interface {
	Initialize() error
	Finalize() error
}

// AllocHook accepts the handler to run when memory is exhausted.
type AllocHook interface {
	SetAllocFailureHandler(h func(file string, line int))
}

// Collaborators are the subsystems a State sequences. Every field except
// AllocHook is required.
type Collaborators struct {
	Runtime         Runtime
	Config          ConfigParser
	Instrumentation Instrumentation
	Arrays          ArraySubsystem
	AllocHook       AllocHook
}
