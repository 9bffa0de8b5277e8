package profiler

import (
	"cmp"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nicholasbl/amrex/internal/errors"
	"github.com/nicholasbl/amrex/internal/logging"
)

// Tag names a profiled region.
type Tag string

// Scope is one timed region.
type Scope interface {
	Start()
	Stop()
}

// Stat is the accumulated timing of one tag.
type Stat struct {
	Tag   Tag
	Calls int
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Mean returns the average time per call.
func (s Stat) Mean() time.Duration {
	if s.Calls == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Calls)
}

// Registry accumulates timings for every tag. It is safe for concurrent
// use.
type Registry struct {
	mu          sync.Mutex
	clock       Clock
	logger      *logging.Logger
	stats       map[Tag]*Stat
	program     string
	initialized bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(r *Registry) {
		r.clock = c
	}
}

// WithLogger sets the logger that receives the final report.
func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		clock:  RealClock{},
		logger: logging.NopLogger(),
		stats:  make(map[Tag]*Stat),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewScope returns a stopped scope for tag.
func (r *Registry) NewScope(tag Tag) Scope {
	return &Profiler{registry: r, tag: tag}
}

// Initialize records the program name from args[0] and enables the
// report.
func (r *Registry) Initialize(args []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return fmt.Errorf("profiler: %w", errors.ErrAlreadyInitialized)
	}
	if len(args) > 0 {
		r.program = filepath.Base(args[0])
	}
	r.initialized = true
	return nil
}

// Finalize logs one record per tag and clears all totals.
func (r *Registry) Finalize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return fmt.Errorf("profiler: %w", errors.ErrNotInitialized)
	}

	for _, s := range r.sortedLocked() {
		r.logger.Info("profile",
			"program", r.program,
			"tag", string(s.Tag),
			"calls", s.Calls,
			"total_ms", s.Total.Milliseconds(),
			"mean_us", s.Mean().Microseconds(),
		)
	}

	r.stats = make(map[Tag]*Stat)
	r.program = ""
	r.initialized = false
	return nil
}

// Stats returns every tag's totals, largest total first.
func (r *Registry) Stats() []Stat {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedLocked()
}

func (r *Registry) sortedLocked() []Stat {
	out := make([]Stat, 0, len(r.stats))
	for _, s := range r.stats {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b Stat) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Tag, b.Tag)
	})
	return out
}

// Report writes the totals as a table.
func (r *Registry) Report(w io.Writer) error {
	stats := r.Stats()
	if len(stats) == 0 {
		_, err := io.WriteString(w, "no profiled regions\n")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TAG", "CALLS", "TOTAL", "MEAN", "MIN", "MAX")
	for _, s := range stats {
		t.Row(
			string(s.Tag),
			strconv.Itoa(s.Calls),
			s.Total.String(),
			s.Mean().String(),
			s.Min.String(),
			s.Max.String(),
		)
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func (r *Registry) now() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clock.Now()
}

func (r *Registry) record(tag Tag, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stats[tag]
	if !ok {
		s = &Stat{Tag: tag, Min: d, Max: d}
		r.stats[tag] = s
	}
	s.Calls++
	s.Total += d
	s.Min = min(s.Min, d)
	s.Max = max(s.Max, d)
}

// Profiler times one tag. Start on a running Profiler and Stop on a
// stopped one are ignored.
type Profiler struct {
	registry *Registry
	tag      Tag
	start    time.Time
	running  bool
}

// Tag returns the profiled tag.
func (p *Profiler) Tag() Tag {
	return p.tag
}

// Running reports whether the scope has been started and not stopped.
func (p *Profiler) Running() bool {
	return p.running
}

// Start begins timing.
func (p *Profiler) Start() {
	if p.running {
		return
	}
	p.start = p.registry.now()
	p.running = true
}

// Stop ends timing and records the call.
func (p *Profiler) Stop() {
	if !p.running {
		return
	}
	p.running = false
	p.registry.record(p.tag, p.registry.now().Sub(p.start))
}
