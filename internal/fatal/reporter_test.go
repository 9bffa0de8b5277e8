package fatal

import (
	"os"
	"strings"
	"testing"

	"github.com/nicholasbl/amrex/internal/testutil"
)

// fileFlusher writes a marker to the capture file when flushed, standing
// in for a buffered writer holding earlier output.
type fileFlusher struct {
	f       *os.File
	pending string
	calls   int
}

func (ff *fileFlusher) Flush() error {
	ff.calls++
	_, err := ff.f.WriteString(ff.pending)
	ff.pending = ""
	return err
}

func newTestReporter(t *testing.T) (*Reporter, *testutil.Aborter, func() string) {
	t.Helper()
	out, read := testutil.CaptureFile(t)
	aborter := &testutil.Aborter{}
	return New(aborter, WithOutput(out), WithExit(testutil.PanicExit)), aborter, read
}

func TestWarning(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{"message", "grid is coarse", "grid is coarse!\n"},
		{"empty message writes nothing", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, aborter, read := newTestReporter(t)

			r.Warning(tt.msg)

			if got := read(); got != tt.want {
				t.Errorf("Warning(%q) wrote %q, want %q", tt.msg, got, tt.want)
			}
			if aborter.Calls != 0 {
				t.Error("Warning must not abort")
			}
		})
	}
}

func TestErrorAndAbort(t *testing.T) {
	tests := []struct {
		name string
		call func(r *Reporter)
		want string
	}{
		{
			name: "error",
			call: func(r *Reporter) { r.Error("bad input") },
			want: "BoxLib::Error::bad input !!!\n",
		},
		{
			name: "abort",
			call: func(r *Reporter) { r.Abort("broken invariant") },
			want: "BoxLib::Abort::broken invariant !!!\n",
		},
		{
			name: "error without message",
			call: func(r *Reporter) { r.Error("") },
			want: "BoxLib::Error:: !!!\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, aborter, read := newTestReporter(t)

			testutil.ExpectAbort(t, func() { tt.call(r) })

			if got := read(); got != tt.want {
				t.Errorf("wrote %q, want %q", got, tt.want)
			}
			if aborter.Calls != 1 {
				t.Errorf("aborter called %d times, want 1", aborter.Calls)
			}
		})
	}
}

func TestAssert(t *testing.T) {
	r, _, read := newTestReporter(t)

	testutil.ExpectAbort(t, func() { r.Assert("x > 0", "foo.cpp", 42) })

	want := "BoxLib::Assertion `x > 0' failed, file \"foo.cpp\", line 42 !!!\n"
	if got := read(); got != want {
		t.Errorf("Assert wrote %q, want %q", got, want)
	}
}

func TestAssert_TruncatesLongMessage(t *testing.T) {
	r, _, read := newTestReporter(t)

	testutil.ExpectAbort(t, func() {
		r.Assert(strings.Repeat("x", 3000), "foo.cpp", 42)
	})

	got := read()
	body := strings.TrimSuffix(strings.TrimPrefix(got, libTag), suffix)
	if len(body) != MessageCapacity {
		t.Errorf("body length = %d, want %d", len(body), MessageCapacity)
	}
	if !strings.HasSuffix(got, suffix) {
		t.Errorf("output does not end with %q", suffix)
	}
	if strings.Contains(got, "foo.cpp") {
		t.Error("file name should have been truncated away")
	}
}

func TestOutOfMemory(t *testing.T) {
	r, _, read := newTestReporter(t)

	testutil.ExpectAbort(t, func() { r.OutOfMemory("fab.go", 88) })

	want := "BoxLib::Assertion `operator new' failed, file \"fab.go\", line 88 !!!\n"
	if got := read(); got != want {
		t.Errorf("OutOfMemory wrote %q, want %q", got, want)
	}
}

func TestRequire(t *testing.T) {
	t.Run("true condition returns", func(t *testing.T) {
		r, aborter, read := newTestReporter(t)
		r.Require(true, "ok")
		if got := read(); got != "" {
			t.Errorf("Require(true) wrote %q", got)
		}
		if aborter.Calls != 0 {
			t.Error("Require(true) aborted")
		}
	})

	t.Run("false condition reports caller", func(t *testing.T) {
		r, _, read := newTestReporter(t)
		testutil.ExpectAbort(t, func() { r.Require(1 > 2, "1 > 2") })

		got := read()
		if !strings.HasPrefix(got, "BoxLib::Assertion `1 > 2' failed, file \"") {
			t.Errorf("unexpected output %q", got)
		}
		if !strings.Contains(got, "reporter_test.go") {
			t.Errorf("expected caller file in %q", got)
		}
	})
}

func TestFlushPrecedesDiagnostic(t *testing.T) {
	out, read := testutil.CaptureFile(t)
	ff := &fileFlusher{f: out, pending: "earlier output\n"}

	r := New(&testutil.Aborter{}, WithOutput(out), WithExit(testutil.PanicExit))
	r.AddFlusher(ff)

	testutil.ExpectAbort(t, func() { r.Error("late") })

	want := "earlier output\nBoxLib::Error::late !!!\n"
	if got := read(); got != want {
		t.Errorf("wrote %q, want %q", got, want)
	}
	if ff.calls != 1 {
		t.Errorf("flusher called %d times, want 1", ff.calls)
	}
}

func TestTerminate_ExitsWhenAbortReturns(t *testing.T) {
	out, read := testutil.CaptureFile(t)
	r := New(returningAborter{}, WithOutput(out), WithExit(testutil.PanicExit))

	got := testutil.ExpectAbort(t, func() { r.Abort("x") })
	if got.Code != ExitAbort {
		t.Errorf("exit code = %d, want %d", got.Code, ExitAbort)
	}
	_ = read()
}

func TestTerminate_PanicsWhenExitReturns(t *testing.T) {
	out, _ := testutil.CaptureFile(t)
	r := New(nil, WithOutput(out), WithExit(func(int) {}))

	defer func() {
		if recover() == nil {
			t.Error("expected panic when both abort and exit return")
		}
	}()
	r.Error("x")
}

func TestSetAborter(t *testing.T) {
	out, read := testutil.CaptureFile(t)
	r := New(nil, WithOutput(out), WithExit(testutil.PanicExit))

	aborter := &testutil.Aborter{}
	r.SetAborter(aborter)

	testutil.ExpectAbort(t, func() { r.Error("x") })
	if aborter.Calls != 1 {
		t.Errorf("replacement aborter called %d times, want 1", aborter.Calls)
	}
	_ = read()
}

type returningAborter struct{}

func (returningAborter) Abort() {}
