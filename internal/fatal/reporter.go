package fatal

import (
	"os"
	"runtime"
)

const (
	libTag   = "BoxLib::"
	stageSep = "::"
	suffix   = " !!!\n"

	// OutOfMemoryExpr is the expression text reported for allocation failures.
	OutOfMemoryExpr = "operator new"
)

// ExitAbort is the exit status used when the collective abort returns
// control to the reporter. It matches a SIGABRT termination.
const ExitAbort = 134

// Aborter terminates every cooperating process of the job. Abort is not
// expected to return.
type Aborter interface {
	Abort()
}

// Flusher is a buffered output that must be drained before a fatal write.
type Flusher interface {
	Flush() error
}

// Reporter writes fatal diagnostics and terminates the job.
//
// A Reporter is created once per process at entry and shared by every
// subsystem; it is not safe to reconfigure concurrently with reporting.
type Reporter struct {
	out      *os.File
	aborter  Aborter
	exit     func(int)
	flushers []Flusher
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithOutput directs diagnostics to f instead of os.Stderr.
func WithOutput(f *os.File) Option {
	return func(r *Reporter) {
		r.out = f
	}
}

// WithExit replaces os.Exit as the last-resort terminator.
func WithExit(exit func(int)) Option {
	return func(r *Reporter) {
		r.exit = exit
	}
}

// New creates a Reporter that terminates through aborter. A nil aborter is
// allowed until the distributed runtime exists; fatal paths then go
// straight to the exit function.
func New(aborter Aborter, opts ...Option) *Reporter {
	r := &Reporter{
		out:     os.Stderr,
		aborter: aborter,
		exit:    os.Exit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetAborter replaces the collective-abort capability.
func (r *Reporter) SetAborter(a Aborter) {
	r.aborter = a
}

// AddFlusher registers a buffered output to drain before fatal writes.
func (r *Reporter) AddFlusher(f Flusher) {
	r.flushers = append(r.flushers, f)
}

// Warning writes msg followed by "!\n" and returns. An empty msg writes
// nothing. Warnings are the only non-terminal report.
func (r *Reporter) Warning(msg string) {
	if msg == "" {
		return
	}
	r.writeString(msg)
	r.writeString("!\n")
}

// Error reports a user-facing fatal error and terminates the job.
// It never returns.
func (r *Reporter) Error(msg string) {
	r.fail("Error", msg)
}

// Abort reports a violated internal invariant and terminates the job.
// It never returns.
func (r *Reporter) Abort(msg string) {
	r.fail("Abort", msg)
}

// Assert reports a failed assertion of expr at file:line and terminates
// the job. The formatted body is truncated to MessageCapacity bytes.
// It never returns.
func (r *Reporter) Assert(expr, file string, line int) {
	var m message
	m.formatAssertion(expr, file, line)

	r.flush()
	r.writeString(libTag)
	r.write(m.bytes())
	r.writeString(suffix)
	r.terminate()
}

// OutOfMemory is the allocation-failure handler: an assertion of
// "operator new" at file:line. It never returns.
func (r *Reporter) OutOfMemory(file string, line int) {
	r.Assert(OutOfMemoryExpr, file, line)
}

// Require asserts cond, reporting expr at the caller's position when it
// is false.
func (r *Reporter) Require(cond bool, expr string) {
	if cond {
		return
	}
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file, line = "unknown", 0
	}
	r.Assert(expr, file, line)
}

func (r *Reporter) fail(stage, msg string) {
	r.flush()
	r.writeString(libTag)
	r.writeString(stage)
	r.writeString(stageSep)
	r.writeString(msg)
	r.writeString(suffix)
	r.terminate()
}

func (r *Reporter) flush() {
	for _, f := range r.flushers {
		_ = f.Flush()
	}
}

func (r *Reporter) terminate() {
	if r.aborter != nil {
		r.aborter.Abort()
	}
	r.exit(ExitAbort)
	panic("fatal: process survived collective abort")
}
