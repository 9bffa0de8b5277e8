// Package fab is the numerical-array subsystem: process-wide defaults
// for array storage and the allocator that honours them.
//
// Defaults are read from the "fab" prefix of the parameter table when
// the subsystem is initialized:
//
//	fab.format    = NATIVE    # NATIVE, IEEE, IEEE32, ASCII or 8BIT
//	fab.init_snan = true      # fill new arrays with signalling NaN
//	fab.max_bytes = 1073741824
package fab

import (
	"fmt"
	"math"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/nicholasbl/amrex/internal/errors"
	"github.com/nicholasbl/amrex/internal/logging"
	"github.com/nicholasbl/amrex/internal/parmparse"
)

// Format is the on-disk representation of array data.
type Format string

// Supported formats.
const (
	FormatNative Format = "NATIVE"
	FormatIEEE   Format = "IEEE"
	FormatIEEE32 Format = "IEEE32"
	FormatASCII  Format = "ASCII"
	Format8Bit   Format = "8BIT"
)

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatNative, FormatIEEE, FormatIEEE32, FormatASCII, Format8Bit}
}

// snanBits is a quiet-bit-clear NaN payload.
const snanBits = 0x7ff4000000000000

// SNaN returns a signalling NaN.
func SNaN() float64 {
	return math.Float64frombits(snanBits)
}

// System holds the array defaults for one process.
type System struct {
	mu          sync.Mutex
	table       *parmparse.Table
	logger      *logging.Logger
	format      Format
	initSNaN    bool
	maxBytes    int64
	onFailure   func(file string, line int)
	initialized bool
}

// Option configures a System.
type Option func(*System)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *System) {
		s.logger = l
	}
}

// New creates a System that reads its defaults from table.
func New(table *parmparse.Table, opts ...Option) *System {
	s := &System{
		table:  table,
		logger: logging.NopLogger(),
		format: FormatNative,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetAllocFailureHandler installs h as the handler run when an
// allocation cannot be satisfied. h receives the allocating call site.
func (s *System) SetAllocFailureHandler(h func(file string, line int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFailure = h
}

// Initialize reads the fab.* parameters.
func (s *System) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return fmt.Errorf("fab: %w", errors.ErrAlreadyInitialized)
	}

	pp := s.table.Prefix("fab")

	name, err := pp.StringOr("format", string(FormatNative))
	if err != nil {
		return err
	}
	format := Format(strings.ToUpper(name))
	if !slices.Contains(Formats(), format) {
		return errors.NewConfigError(fmt.Sprintf("unknown format %q", name), errors.ErrSyntax).WithName("fab.format")
	}

	initSNaN, err := pp.BoolOr("init_snan", false)
	if err != nil {
		return err
	}

	maxBytes, err := pp.IntOr("max_bytes", 0)
	if err != nil {
		return err
	}
	if maxBytes < 0 {
		return errors.NewConfigError(fmt.Sprintf("negative limit %d", maxBytes), errors.ErrSyntax).WithName("fab.max_bytes")
	}

	s.format = format
	s.initSNaN = initSNaN
	s.maxBytes = int64(maxBytes)
	s.initialized = true

	s.logger.Debug("array defaults set",
		"format", string(format),
		"init_snan", initSNaN,
		"max_bytes", maxBytes,
	)
	return nil
}

// Finalize restores the built-in defaults.
func (s *System) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return fmt.Errorf("fab: %w", errors.ErrNotInitialized)
	}
	s.format = FormatNative
	s.initSNaN = false
	s.maxBytes = 0
	s.initialized = false
	return nil
}

// Format returns the configured data format.
func (s *System) Format() Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}

// InitSNaN reports whether new arrays are filled with signalling NaN.
func (s *System) InitSNaN() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initSNaN
}

// Alloc returns storage for n values. When the request exceeds
// fab.max_bytes the failure handler is called with Alloc's caller; if no
// handler is installed, or it returns, Alloc returns an error wrapping
// errors.ErrAllocation.
func (s *System) Alloc(n int) ([]float64, error) {
	s.mu.Lock()
	maxBytes, initSNaN, onFailure := s.maxBytes, s.initSNaN, s.onFailure
	s.mu.Unlock()

	if n < 0 {
		return nil, fmt.Errorf("fab: negative size %d: %w", n, errors.ErrAllocation)
	}

	size := int64(n) * 8
	if int64(n) > math.MaxInt64/8 || (maxBytes > 0 && size > maxBytes) {
		s.logger.Warn("allocation refused", "values", n, "max_bytes", maxBytes)
		if onFailure != nil {
			_, file, line, ok := runtime.Caller(1)
			if !ok {
				file, line = "unknown", 0
			}
			onFailure(file, line)
		}
		return nil, fmt.Errorf("fab: %d values exceed %d bytes: %w", n, maxBytes, errors.ErrAllocation)
	}

	data := make([]float64, n)
	if initSNaN {
		snan := SNaN()
		for i := range data {
			data[i] = snan
		}
	}
	return data, nil
}
