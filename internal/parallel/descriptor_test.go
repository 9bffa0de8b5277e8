package parallel

import (
	"slices"
	"strconv"
	"testing"

	"github.com/nicholasbl/amrex/internal/errors"
	"github.com/nicholasbl/amrex/internal/fatal"
	"github.com/nicholasbl/amrex/internal/testutil"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string {
		return m[key]
	}
}

func TestStartParallel_Discovery(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		env        map[string]string
		wantRank   int
		wantNProcs int
		wantArgs   []string
	}{
		{
			name:       "serial",
			args:       []string{"prog", "inputs"},
			wantRank:   0,
			wantNProcs: 1,
			wantArgs:   []string{"prog", "inputs"},
		},
		{
			name:       "arguments are stripped",
			args:       []string{"prog", "--parallel.rank=2", "inputs", "--parallel.nprocs=4", "amr.max_level=1"},
			wantRank:   2,
			wantNProcs: 4,
			wantArgs:   []string{"prog", "inputs", "amr.max_level=1"},
		},
		{
			name:       "launcher environment",
			args:       []string{"prog", "inputs"},
			env:        map[string]string{EnvRank: "1", EnvNProcs: "3"},
			wantRank:   1,
			wantNProcs: 3,
			wantArgs:   []string{"prog", "inputs"},
		},
		{
			name:       "open mpi environment",
			args:       []string{"prog", "inputs"},
			env:        map[string]string{"OMPI_COMM_WORLD_RANK": "5", "OMPI_COMM_WORLD_SIZE": "8"},
			wantRank:   5,
			wantNProcs: 8,
			wantArgs:   []string{"prog", "inputs"},
		},
		{
			name:       "pmi environment",
			args:       []string{"prog", "inputs"},
			env:        map[string]string{"PMI_RANK": "0", "PMI_SIZE": "2"},
			wantRank:   0,
			wantNProcs: 2,
			wantArgs:   []string{"prog", "inputs"},
		},
		{
			name:       "arguments override environment",
			args:       []string{"prog", "inputs", "--parallel.rank=0", "--parallel.nprocs=2"},
			env:        map[string]string{EnvRank: "3", EnvNProcs: "4"},
			wantRank:   0,
			wantNProcs: 2,
			wantArgs:   []string{"prog", "inputs"},
		},
		{
			name:       "program name is never stripped",
			args:       []string{"--parallel.rank=1"},
			wantRank:   0,
			wantNProcs: 1,
			wantArgs:   []string{"--parallel.rank=1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(WithGetenv(envMap(tt.env)))

			got, err := d.StartParallel(tt.args)
			if err != nil {
				t.Fatalf("StartParallel() error = %v", err)
			}
			if d.MyProc() != tt.wantRank {
				t.Errorf("MyProc() = %d, want %d", d.MyProc(), tt.wantRank)
			}
			if d.NProcs() != tt.wantNProcs {
				t.Errorf("NProcs() = %d, want %d", d.NProcs(), tt.wantNProcs)
			}
			if !slices.Equal(got, tt.wantArgs) {
				t.Errorf("args = %q, want %q", got, tt.wantArgs)
			}
			if !d.Started() {
				t.Error("Started() = false after StartParallel")
			}
		})
	}
}

func TestStartParallel_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"rank out of range", []string{"prog", "--parallel.rank=4", "--parallel.nprocs=4"}, nil},
		{"negative rank", []string{"prog", "--parallel.rank=-1", "--parallel.nprocs=4"}, nil},
		{"zero processes", []string{"prog", "--parallel.rank=0", "--parallel.nprocs=0"}, nil},
		{"rank without size", []string{"prog", "--parallel.rank=0"}, nil},
		{"non-numeric rank", []string{"prog", "--parallel.rank=x", "--parallel.nprocs=2"}, nil},
		{"bad environment", []string{"prog"}, map[string]string{EnvRank: "one", EnvNProcs: "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(WithGetenv(envMap(tt.env)))

			if _, err := d.StartParallel(tt.args); err == nil {
				t.Fatal("StartParallel() succeeded, want error")
			}
			if d.Started() {
				t.Error("Started() = true after failed start")
			}
		})
	}
}

func TestStartParallel_Twice(t *testing.T) {
	d := New(WithGetenv(envMap(nil)))

	if _, err := d.StartParallel([]string{"prog"}); err != nil {
		t.Fatalf("first StartParallel() error = %v", err)
	}
	_, err := d.StartParallel([]string{"prog"})
	if !errors.Is(err, errors.ErrRuntimeStarted) {
		t.Errorf("second StartParallel() error = %v, want %v", err, errors.ErrRuntimeStarted)
	}
}

func TestEndParallel(t *testing.T) {
	d := New(WithGetenv(envMap(nil)))

	if err := d.EndParallel(); !errors.Is(err, errors.ErrRuntimeNotStarted) {
		t.Errorf("EndParallel() before start error = %v, want %v", err, errors.ErrRuntimeNotStarted)
	}

	if _, err := d.StartParallel([]string{"prog"}); err != nil {
		t.Fatalf("StartParallel() error = %v", err)
	}
	if err := d.EndParallel(); err != nil {
		t.Errorf("EndParallel() error = %v", err)
	}
	if d.Started() {
		t.Error("Started() = true after EndParallel")
	}
	if err := d.EndParallel(); !errors.Is(err, errors.ErrRuntimeNotStarted) {
		t.Errorf("second EndParallel() error = %v, want %v", err, errors.ErrRuntimeNotStarted)
	}
	if _, err := d.StartParallel([]string{"prog"}); err == nil {
		t.Error("StartParallel() after EndParallel succeeded, want error")
	}
}

func TestIOProcessor(t *testing.T) {
	for _, rank := range []int{0, 1} {
		d := New(WithGetenv(envMap(map[string]string{EnvRank: strconv.Itoa(rank), EnvNProcs: "2"})))
		if _, err := d.StartParallel([]string{"prog"}); err != nil {
			t.Fatalf("StartParallel() error = %v", err)
		}
		if got, want := d.IOProcessor(), rank == IOProcessorNumber; got != want {
			t.Errorf("rank %d: IOProcessor() = %v, want %v", rank, got, want)
		}
	}
}

func TestAbort(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		wantSignal bool
	}{
		{"serial job only exits", nil, false},
		{"external launcher only exits", map[string]string{EnvRank: "0", EnvNProcs: "2"}, false},
		{
			name:       "local launcher signals the group",
			env:        map[string]string{EnvRank: "1", EnvNProcs: "2", EnvLauncher: "1"},
			wantSignal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signalled := false
			d := New(
				WithGetenv(envMap(tt.env)),
				WithExit(testutil.PanicExit),
				WithGroupSignal(func() error {
					signalled = true
					return nil
				}),
			)
			if _, err := d.StartParallel([]string{"prog"}); err != nil {
				t.Fatalf("StartParallel() error = %v", err)
			}

			got := testutil.ExpectAbort(t, d.Abort)
			if got.Code != fatal.ExitAbort {
				t.Errorf("exit code = %d, want %d", got.Code, fatal.ExitAbort)
			}
			if signalled != tt.wantSignal {
				t.Errorf("group signalled = %v, want %v", signalled, tt.wantSignal)
			}
		})
	}
}

func TestDescriptor_ImplementsAborter(t *testing.T) {
	var _ fatal.Aborter = New()
}
