package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/nicholasbl/amrex/internal/boxlib"
	"github.com/nicholasbl/amrex/internal/config"
	"github.com/nicholasbl/amrex/internal/fab"
	"github.com/nicholasbl/amrex/internal/fatal"
	"github.com/nicholasbl/amrex/internal/logging"
	"github.com/nicholasbl/amrex/internal/parallel"
	"github.com/nicholasbl/amrex/internal/parmparse"
	"github.com/nicholasbl/amrex/internal/profiler"
)

// runTag is the profiler tag of the job body.
const runTag profiler.Tag = "amrex::run"

// job is one process's view of a running application: the base library
// state plus the concrete collaborators it sequences.
type job struct {
	logger   *logging.Logger
	reporter *fatal.Reporter
	runtime  *parallel.Descriptor
	table    *parmparse.Table
	profiler *profiler.Registry
	arrays   *fab.System
	state    *boxlib.State
}

// jobOptions carries the process-level plumbing a job writes through.
type jobOptions struct {
	stdout io.Writer
	stderr io.Writer

	// fatalOut receives fatal diagnostics; nil means os.Stderr.
	fatalOut *os.File

	// exit replaces os.Exit on the fatal path.
	exit func(int)

	// getenv replaces os.Getenv for rank discovery.
	getenv func(string) string
}

// newJob assembles the collaborators in dependency order. Nothing is
// started until the caller runs State.Initialize.
func newJob(cfg *config.Config, opts jobOptions) (*job, error) {
	logger, err := jobLogger(cfg)
	if err != nil {
		return nil, err
	}

	var fatalOpts []fatal.Option
	if opts.fatalOut != nil {
		fatalOpts = append(fatalOpts, fatal.WithOutput(opts.fatalOut))
	}
	if opts.exit != nil {
		fatalOpts = append(fatalOpts, fatal.WithExit(opts.exit))
	}
	reporter := fatal.New(nil, fatalOpts...)
	reporter.AddFlusher(logger)

	runtimeOpts := []parallel.Option{parallel.WithLogger(logger)}
	if opts.getenv != nil {
		runtimeOpts = append(runtimeOpts, parallel.WithGetenv(opts.getenv))
	}
	if opts.exit != nil {
		runtimeOpts = append(runtimeOpts, parallel.WithExit(opts.exit))
	}

	j := &job{
		logger:   logger,
		reporter: reporter,
		runtime:  parallel.New(runtimeOpts...),
		table:    parmparse.NewTable(parmparse.WithLogger(logger)),
		profiler: profiler.NewRegistry(profiler.WithLogger(logger)),
	}
	j.arrays = fab.New(j.table, fab.WithLogger(logger))

	stateOpts := []boxlib.Option{
		boxlib.WithLogger(logger),
		boxlib.WithPrecision(cfg.Output.Precision),
	}
	if opts.stdout != nil {
		stateOpts = append(stateOpts, boxlib.WithStdout(opts.stdout))
	}
	if opts.stderr != nil {
		stateOpts = append(stateOpts, boxlib.WithUsageOutput(opts.stderr))
	}

	j.state = boxlib.New(reporter, boxlib.Collaborators{
		Runtime:         j.runtime,
		Config:          j.table,
		Instrumentation: j.profiler,
		Arrays:          j.arrays,
		AllocHook:       j.arrays,
	}, stateOpts...)

	return j, nil
}

// jobLogger opens the shared job log, or returns a discarding logger
// when logging is disabled.
func jobLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return logging.NewLogger(cfg.Paths.ResolveJobDir(cwd), cfg.Logging.Level)
}

// run drives the job through Initialize, the job body and Finalize.
func (j *job) run(args []string) {
	j.state.Initialize(args)
	j.body()
	j.state.Finalize()
}

// body is the work done between Initialize and Finalize. Parameters are
// read from the "amrex" prefix of the input table:
//
//	amrex.v       verbosity; the I/O rank prints the version and job shape when > 0
//	amrex.alloc   number of values to allocate through the array subsystem
//	amrex.profile print the profile report on the I/O rank
func (j *job) body() {
	scope := j.profiler.NewScope(runTag)
	scope.Start()

	pp := j.table.Prefix("amrex")
	out := j.state.Stdout()
	ioRank := j.runtime.IOProcessor()

	verbose, err := pp.IntOr("v", 0)
	if err != nil {
		j.reporter.Error(err.Error())
	}
	if ioRank && verbose > 0 {
		_ = out.Print(boxlib.Version())
		_ = out.Print("inputs", j.state.InputFile(), "nprocs", j.runtime.NProcs())
	}

	n, err := pp.IntOr("alloc", 0)
	if err != nil {
		j.reporter.Error(err.Error())
	}
	if n > 0 {
		data, err := j.arrays.Alloc(n)
		if err != nil {
			j.reporter.Error(err.Error())
		}
		_ = out.Print("rank", j.runtime.MyProc(), "allocated", len(data), "format", j.arrays.Format())
	}

	_ = out.Print("rank", j.runtime.MyProc(), "random", j.state.Random())

	scope.Stop()

	report, err := pp.BoolOr("profile", false)
	if err != nil {
		j.reporter.Error(err.Error())
	}
	if ioRank && report {
		_ = j.profiler.Report(out)
	}
}

// close releases the job log.
func (j *job) close() error {
	return j.logger.Close()
}
