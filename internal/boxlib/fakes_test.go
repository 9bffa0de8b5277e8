package boxlib

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"testing"

	"github.com/nicholasbl/amrex/internal/fatal"
	"github.com/nicholasbl/amrex/internal/profiler"
	"github.com/nicholasbl/amrex/internal/testutil"
)

// recorder collects collaborator calls in order.
type recorder struct {
	calls []string
}

func (r *recorder) add(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

type fakeRuntime struct {
	rec      *recorder
	rank     int
	startErr error
	endErr   error
	aborts   int
}

func (f *fakeRuntime) StartParallel(args []string) ([]string, error) {
	f.rec.add("runtime.start")
	return args, f.startErr
}

func (f *fakeRuntime) MyProc() int { return f.rank }

func (f *fakeRuntime) Abort() {
	f.aborts++
	panic(testutil.Aborted{})
}

func (f *fakeRuntime) EndParallel() error {
	f.rec.add("runtime.end")
	return f.endErr
}

type fakeConfig struct {
	rec     *recorder
	initErr error
	finErr  error
}

func (f *fakeConfig) Initialize(args []string, inputFile string) error {
	f.rec.add("config.init %s %q", inputFile, args)
	return f.initErr
}

func (f *fakeConfig) Finalize() error {
	f.rec.add("config.fini")
	return f.finErr
}

type fakeScope struct {
	rec *recorder
	tag profiler.Tag
}

func (s *fakeScope) Start() { s.rec.add("scope.start %s", s.tag) }
func (s *fakeScope) Stop()  { s.rec.add("scope.stop %s", s.tag) }

type fakeInstrumentation struct {
	rec     *recorder
	initErr error
	finErr  error
}

func (f *fakeInstrumentation) NewScope(tag profiler.Tag) profiler.Scope {
	f.rec.add("scope.new %s", tag)
	return &fakeScope{rec: f.rec, tag: tag}
}

func (f *fakeInstrumentation) Initialize(args []string) error {
	f.rec.add("profiler.init %q", args)
	return f.initErr
}

func (f *fakeInstrumentation) Finalize() error {
	f.rec.add("profiler.fini")
	return f.finErr
}

type fakeArrays struct {
	rec     *recorder
	initErr error
	finErr  error
}

func (f *fakeArrays) Initialize() error {
	f.rec.add("arrays.init")
	return f.initErr
}

func (f *fakeArrays) Finalize() error {
	f.rec.add("arrays.fini")
	return f.finErr
}

type fakeHook struct {
	rec     *recorder
	handler func(file string, line int)
}

func (f *fakeHook) SetAllocFailureHandler(h func(file string, line int)) {
	f.rec.add("hook.set")
	f.handler = h
}

// harness wires a State to recording fakes.
type harness struct {
	rec       *recorder
	runtime   *fakeRuntime
	config    *fakeConfig
	prof      *fakeInstrumentation
	arrays    *fakeArrays
	hook      *fakeHook
	aborter   *testutil.Aborter
	stdout    bytes.Buffer
	usage     bytes.Buffer
	readFatal func() string
	state     *State
}

func newHarness(t *testing.T, rank int, opts ...Option) *harness {
	t.Helper()

	rec := &recorder{}
	h := &harness{
		rec:     rec,
		runtime: &fakeRuntime{rec: rec, rank: rank},
		config:  &fakeConfig{rec: rec},
		prof:    &fakeInstrumentation{rec: rec},
		arrays:  &fakeArrays{rec: rec},
		hook:    &fakeHook{rec: rec},
		aborter: &testutil.Aborter{},
	}

	out, read := testutil.CaptureFile(t)
	h.readFatal = read
	reporter := fatal.New(h.aborter, fatal.WithOutput(out), fatal.WithExit(testutil.PanicExit))

	opts = append([]Option{WithStdout(&h.stdout), WithUsageOutput(&h.usage)}, opts...)
	h.state = New(reporter, Collaborators{
		Runtime:         h.runtime,
		Config:          h.config,
		Instrumentation: h.prof,
		Arrays:          h.arrays,
		AllocHook:       h.hook,
	}, opts...)
	return h
}

// callsSince returns the calls recorded after the first n.
func (h *harness) callsSince(n int) []string {
	return slices.Clone(h.rec.calls[n:])
}

func newReporter(out *os.File) *fatal.Reporter {
	return fatal.New(&testutil.Aborter{}, fatal.WithOutput(out), fatal.WithExit(testutil.PanicExit))
}
