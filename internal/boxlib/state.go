package boxlib

import (
	"io"
	"math/rand/v2"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nicholasbl/amrex/internal/errors"
	"github.com/nicholasbl/amrex/internal/fatal"
	"github.com/nicholasbl/amrex/internal/logging"
	"github.com/nicholasbl/amrex/internal/profiler"
)

// Tag is the profiling tag that spans the library's whole run.
const Tag profiler.Tag = "BoxLib"

// Callbacks receive lifecycle notifications.
type Callbacks struct {
	// OnPhaseChange is called after every phase transition.
	OnPhaseChange func(old, new Phase)
}

// State is the lifecycle state of one process. It is created once at
// entry and used from a single goroutine.
type State struct {
	reporter  *fatal.Reporter
	c         Collaborators
	logger    *logging.Logger
	callbacks Callbacks
	usage     io.Writer
	style     *lipgloss.Style
	stdout    *Output
	precision int

	phase       Phase
	initialized bool
	scope       profiler.Scope
	args        []string
	inputFile   string
	seed        uint64
	rng         *rand.Rand
}

// Option configures a State.
type Option func(*State)

// WithLogger sets the logger for lifecycle events.
func WithLogger(l *logging.Logger) Option {
	return func(s *State) {
		s.logger = l
	}
}

// WithCallbacks sets the lifecycle callbacks.
func WithCallbacks(cb Callbacks) Option {
	return func(s *State) {
		s.callbacks = cb
	}
}

// WithStdout replaces os.Stdout as the destination of Stdout().
func WithStdout(w io.Writer) Option {
	return func(s *State) {
		s.stdout = NewOutput(w)
	}
}

// WithUsageOutput replaces os.Stderr as the destination of usage text.
// Usage is styled only when the destination is a terminal.
func WithUsageOutput(w io.Writer) Option {
	return func(s *State) {
		s.usage = w
	}
}

// WithPrecision overrides DefaultPrecision.
func WithPrecision(p int) Option {
	return func(s *State) {
		s.precision = p
	}
}

// New creates an uninitialized State. The reporter is the process's
// fatal path; Stdout() is registered with it so buffered output lands
// before any fatal diagnostic.
func New(reporter *fatal.Reporter, c Collaborators, opts ...Option) *State {
	s := &State{
		reporter:  reporter,
		c:         c,
		logger:    logging.NopLogger(),
		usage:     os.Stderr,
		precision: DefaultPrecision,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.stdout == nil {
		s.stdout = NewOutput(os.Stdout)
	}
	s.style = usageStyle(s.usage)
	s.logger = s.logger.WithPhase("lifecycle")
	reporter.AddFlusher(s.stdout)
	return s
}

// Initialize brings every subsystem up. args is the full command line,
// program name first; the input file must follow it. Initialize does not
// return on failure.
func (s *State) Initialize(args []string) {
	if s.phase != PhaseUninitialized {
		s.reporter.Abort("Initialize called in phase " + s.phase.String())
	}
	s.setPhase(PhaseInitializing)

	if s.c.AllocHook != nil {
		s.c.AllocHook.SetAllocFailureHandler(s.reporter.OutOfMemory)
	} else {
		s.logger.Debug("no allocation hook, allocation failures will not abort")
	}

	s.scope = s.c.Instrumentation.NewScope(Tag)
	s.scope.Start()

	args, err := s.c.Runtime.StartParallel(args)
	if err != nil {
		s.fail("start parallel runtime", err)
	}
	s.reporter.SetAborter(s.c.Runtime)
	rank := s.c.Runtime.MyProc()
	s.logger = s.logger.WithRank(rank)

	if len(args) < 2 {
		program := programName(args)
		s.invalidInvocation(errors.NewUsageError("no input file", errors.ErrMissingInputFile).WithProgram(program))
		s.printUsage(program)
	}
	if strings.HasPrefix(args[1], "-") {
		s.invalidInvocation(errors.NewUsageError("got "+args[1], errors.ErrInputFileOrder).WithProgram(args[0]))
		s.writeUsage(InputFileFirst)
		s.printUsage(args[0])
	}
	s.args = slices.Clone(args)
	s.inputFile = args[1]

	if err := s.c.Config.Initialize(s.args[2:], s.inputFile); err != nil {
		s.fail("read input file "+s.inputFile, err)
	}

	if err := s.c.Instrumentation.Initialize(s.args); err != nil {
		s.fail("initialize profiler", err)
	}

	s.seed = uint64(rank + 1)
	s.rng = rand.New(rand.NewPCG(s.seed, s.seed))

	if err := s.c.Arrays.Initialize(); err != nil {
		s.fail("initialize arrays", err)
	}

	s.stdout.SetPrecision(s.precision)

	s.initialized = true
	s.setPhase(PhaseRunning)
	s.logger.Info("base library initialized",
		"input_file", s.inputFile,
		"seed", s.seed,
		"args", len(s.args),
	)
}

// Finalize shuts every subsystem down in reverse order. Finalize on a
// State that is not running does not return. A subsystem that fails to
// shut down is logged and the sequence continues.
func (s *State) Finalize() {
	if !s.initialized || s.phase != PhaseRunning {
		s.reporter.Error("Finalize called in phase " + s.phase.String())
	}
	s.setPhase(PhaseFinalizing)

	s.scope.Stop()

	if err := s.c.Arrays.Finalize(); err != nil {
		s.logger.Error("array finalize failed", "error", err)
	}
	if err := s.c.Instrumentation.Finalize(); err != nil {
		s.logger.Error("profiler finalize failed", "error", err)
	}
	if err := s.c.Config.Finalize(); err != nil {
		s.logger.Error("input table finalize failed", "error", err)
	}
	if err := s.stdout.Flush(); err != nil {
		s.logger.Warn("flush standard output failed", "error", err)
	}
	if err := s.c.Runtime.EndParallel(); err != nil {
		s.logger.Error("end parallel runtime failed", "error", err)
	}

	s.initialized = false
	s.setPhase(PhaseTerminated)
	s.logger.Info("base library finalized")
}

// Phase returns the current lifecycle phase.
func (s *State) Phase() Phase {
	return s.phase
}

// Initialized reports whether Initialize completed and Finalize has not
// started.
func (s *State) Initialized() bool {
	return s.initialized
}

// Args returns the argument vector after the runtime removed its own
// arguments.
func (s *State) Args() []string {
	return slices.Clone(s.args)
}

// InputFile returns the input file named on the command line.
func (s *State) InputFile() string {
	return s.inputFile
}

// Seed returns the random seed of this process: its rank plus one.
func (s *State) Seed() uint64 {
	return s.seed
}

// Rand returns the process random generator. It is nil before
// Initialize.
func (s *State) Rand() *rand.Rand {
	return s.rng
}

// Random returns a value in [0, 1) from the process generator.
func (s *State) Random() float64 {
	if s.rng == nil {
		s.reporter.Abort("Random called before Initialize")
	}
	return s.rng.Float64()
}

// Stdout returns the process's standard output stream.
func (s *State) Stdout() *Output {
	return s.stdout
}

// Reporter returns the fatal reporter.
func (s *State) Reporter() *fatal.Reporter {
	return s.reporter
}

// Logger returns the lifecycle logger, tagged with the rank once the
// runtime has started.
func (s *State) Logger() *logging.Logger {
	return s.logger
}

// fail routes a collaborator error to the fatal reporter. Invocation and
// input problems are user errors; everything else is an internal abort.
func (s *State) fail(op string, err error) {
	msg := op + ": " + err.Error()
	switch errors.CategoryOf(err) {
	case errors.CategoryUsage:
		s.reporter.Error(msg)
	default:
		s.reporter.Abort(msg)
	}
}

// invalidInvocation records a usage error in the job log ahead of the
// usage text.
func (s *State) invalidInvocation(err *errors.UsageError) {
	s.logger.Error("invalid invocation", "error", err)
}

// printUsage writes the usage text and terminates with an empty error.
func (s *State) printUsage(program string) {
	s.writeUsage(renderUsage(program, s.style))
	s.reporter.Error("")
}

func (s *State) writeUsage(text string) {
	_, _ = io.WriteString(s.usage, text)
}

func (s *State) setPhase(p Phase) {
	old := s.phase
	s.phase = p
	s.logger.Debug("phase change", "from", old.String(), "to", p.String())
	if s.callbacks.OnPhaseChange != nil {
		s.callbacks.OnPhaseChange(old, p)
	}
}

func programName(args []string) string {
	if len(args) == 0 {
		return os.Args[0]
	}
	return args[0]
}
