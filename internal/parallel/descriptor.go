package parallel

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"

	"github.com/nicholasbl/amrex/internal/errors"
	"github.com/nicholasbl/amrex/internal/fatal"
	"github.com/nicholasbl/amrex/internal/logging"
)

// Command-line arguments consumed by StartParallel.
const (
	RankArg   = "--parallel.rank="
	NProcsArg = "--parallel.nprocs="
)

// Environment exported by Launch to every rank.
const (
	EnvRank     = "AMREX_RANK"
	EnvNProcs   = "AMREX_NPROCS"
	EnvLauncher = "AMREX_LAUNCHER"
)

// IOProcessorNumber is the rank that owns job-wide output.
const IOProcessorNumber = 0

// envSource is a pair of variables naming rank and size, as exported by
// one family of launchers.
type envSource struct {
	rank, size string
}

// envSources are checked in order; the first with both variables set wins.
var envSources = []envSource{
	{EnvRank, EnvNProcs},
	{"OMPI_COMM_WORLD_RANK", "OMPI_COMM_WORLD_SIZE"},
	{"PMI_RANK", "PMI_SIZE"},
}

// Descriptor is the per-process handle on the distributed runtime.
// It is not safe for concurrent use; the lifecycle drives it from a
// single goroutine.
type Descriptor struct {
	logger *logging.Logger
	getenv func(string) string
	exit   func(int)
	signal func() error

	started bool
	ended   bool
	rank    int
	nprocs  int
}

// Option configures a Descriptor.
type Option func(*Descriptor)

// WithLogger sets the logger used for runtime events.
func WithLogger(l *logging.Logger) Option {
	return func(d *Descriptor) {
		d.logger = l
	}
}

// WithGetenv replaces os.Getenv for rank discovery.
func WithGetenv(getenv func(string) string) Option {
	return func(d *Descriptor) {
		d.getenv = getenv
	}
}

// WithExit replaces os.Exit in Abort.
func WithExit(exit func(int)) Option {
	return func(d *Descriptor) {
		d.exit = exit
	}
}

// WithGroupSignal replaces the process-group signal sent by Abort.
func WithGroupSignal(signal func() error) Option {
	return func(d *Descriptor) {
		d.signal = signal
	}
}

// New creates a Descriptor for a runtime that has not started yet.
func New(opts ...Option) *Descriptor {
	d := &Descriptor{
		logger: logging.NopLogger(),
		getenv: os.Getenv,
		exit:   os.Exit,
		signal: signalGroup,
		nprocs: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// StartParallel joins the job. It returns args with the runtime's own
// arguments removed; callers must use the returned vector from then on.
func (d *Descriptor) StartParallel(args []string) ([]string, error) {
	if d.started || d.ended {
		return nil, errors.NewRuntimeError("start parallel", errors.ErrRuntimeStarted).WithRank(d.rank)
	}

	remaining, rankArg, sizeArg := stripRuntimeArgs(args)

	rank, nprocs, source, err := d.discover(rankArg, sizeArg)
	if err != nil {
		return nil, err
	}
	if nprocs < 1 || rank < 0 || rank >= nprocs {
		return nil, errors.NewRuntimeError(
			fmt.Sprintf("inconsistent rank %d for %d processes (from %s)", rank, nprocs, source),
			nil,
		)
	}

	d.rank = rank
	d.nprocs = nprocs
	d.started = true

	d.logger.Info("parallel runtime started",
		"rank", rank,
		"nprocs", nprocs,
		"source", source,
	)
	return remaining, nil
}

// stripRuntimeArgs removes --parallel.* arguments, returning their values.
func stripRuntimeArgs(args []string) (remaining []string, rank, size string) {
	remaining = make([]string, 0, len(args))
	for i, arg := range args {
		switch {
		case i > 0 && strings.HasPrefix(arg, RankArg):
			rank = strings.TrimPrefix(arg, RankArg)
		case i > 0 && strings.HasPrefix(arg, NProcsArg):
			size = strings.TrimPrefix(arg, NProcsArg)
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, rank, size
}

func (d *Descriptor) discover(rankArg, sizeArg string) (rank, nprocs int, source string, err error) {
	if rankArg != "" || sizeArg != "" {
		if rankArg == "" || sizeArg == "" {
			return 0, 0, "", errors.NewRuntimeError("both "+RankArg+" and "+NProcsArg+" are required", errors.ErrSyntax)
		}
		rank, nprocs, err = parsePair(rankArg, sizeArg)
		return rank, nprocs, "arguments", err
	}

	for _, src := range envSources {
		r, s := d.getenv(src.rank), d.getenv(src.size)
		if r == "" || s == "" {
			continue
		}
		rank, nprocs, err = parsePair(r, s)
		return rank, nprocs, src.rank, err
	}

	return 0, 1, "serial", nil
}

func parsePair(rank, size string) (int, int, error) {
	r, err := cast.ToIntE(rank)
	if err != nil {
		return 0, 0, errors.NewRuntimeError(fmt.Sprintf("invalid rank %q", rank), errors.ErrSyntax)
	}
	s, err := cast.ToIntE(size)
	if err != nil {
		return 0, 0, errors.NewRuntimeError(fmt.Sprintf("invalid process count %q", size), errors.ErrSyntax)
	}
	return r, s, nil
}

// MyProc returns this process's rank. It is 0 before StartParallel.
func (d *Descriptor) MyProc() int {
	return d.rank
}

// NProcs returns the number of processes in the job.
func (d *Descriptor) NProcs() int {
	return d.nprocs
}

// IOProcessor reports whether this process owns job-wide output.
func (d *Descriptor) IOProcessor() bool {
	return d.rank == IOProcessorNumber
}

// Started reports whether StartParallel succeeded and EndParallel has
// not been called.
func (d *Descriptor) Started() bool {
	return d.started
}

// Abort terminates the whole job. In a multi-process job started by
// Launch the rest of the shared process group is signalled first; the
// caller ignores the signal and exits with fatal.ExitAbort. Abort does not return unless the exit
// function does.
func (d *Descriptor) Abort() {
	if d.nprocs > 1 && d.getenv(EnvLauncher) != "" {
		_ = d.signal()
	}
	d.exit(fatal.ExitAbort)
}

// EndParallel leaves the job. It fails if the runtime never started or
// has already ended.
func (d *Descriptor) EndParallel() error {
	if !d.started {
		return errors.NewRuntimeError("end parallel", errors.ErrRuntimeNotStarted)
	}
	d.started = false
	d.ended = true
	d.logger.Info("parallel runtime ended", "rank", d.rank)
	return nil
}
