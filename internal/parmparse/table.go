package parmparse

import (
	"io"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/nicholasbl/amrex/internal/errors"
	"github.com/nicholasbl/amrex/internal/logging"
)

// entry is the live definition of one name.
type entry struct {
	definition
	queried bool
}

// Table is the process-wide parameter table. It is safe for concurrent
// queries once initialized.
type Table struct {
	mu          sync.Mutex
	logger      *logging.Logger
	entries     map[string]*entry
	order       []string
	inputFile   string
	initialized bool
}

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the logger used for load and unused-entry reports.
func WithLogger(l *logging.Logger) Option {
	return func(t *Table) {
		t.logger = l
	}
}

// NewTable creates an empty, uninitialized table.
func NewTable(opts ...Option) *Table {
	t := &Table{
		logger:  logging.NopLogger(),
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Initialize loads inputFile, then args. An empty inputFile loads only
// args. Later definitions of a name replace earlier ones.
func (t *Table) Initialize(args []string, inputFile string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return errors.NewConfigError("parameter table", errors.ErrAlreadyInitialized).WithFile(inputFile)
	}

	p := &parser{}
	if inputFile != "" {
		if err := p.parseFile(inputFile); err != nil {
			return err
		}
	}
	if err := p.parseArgs(args); err != nil {
		return err
	}

	for _, def := range p.defs {
		if _, ok := t.entries[def.name]; !ok {
			t.order = append(t.order, def.name)
		}
		t.entries[def.name] = &entry{definition: def}
	}
	t.inputFile = inputFile
	t.initialized = true

	t.logger.Info("parameter table loaded",
		"input_file", inputFile,
		"definitions", len(p.defs),
		"names", len(t.order),
	)
	return nil
}

// Finalize reports entries that were never queried and empties the table.
func (t *Table) Finalize() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return errors.NewConfigError("parameter table", errors.ErrNotInitialized)
	}

	if unused := t.unusedLocked(); len(unused) > 0 {
		t.logger.Warn("unused parameters", "names", unused)
	}

	t.entries = make(map[string]*entry)
	t.order = nil
	t.inputFile = ""
	t.initialized = false
	return nil
}

// InputFile returns the file the table was loaded from.
func (t *Table) InputFile() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inputFile
}

// Names returns every defined name in first-definition order.
func (t *Table) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.order)
}

// Unused returns the names that no query has read, in definition order.
func (t *Table) Unused() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unusedLocked()
}

func (t *Table) unusedLocked() []string {
	var unused []string
	for _, name := range t.order {
		if !t.entries[name].queried {
			unused = append(unused, name)
		}
	}
	return unused
}

// Prefix returns a query handle scoped to root. An empty root addresses
// full names.
func (t *Table) Prefix(root string) *ParmParse {
	return &ParmParse{table: t, prefix: strings.TrimSuffix(root, ".")}
}

// lookup returns a copy of name's values and marks the entry queried.
func (t *Table) lookup(name string) ([]string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[name]
	if !ok {
		return nil, false
	}
	e.queried = true
	return slices.Clone(e.values), true
}

// source returns where name was last defined.
func (t *Table) source(name string) (file string, line int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[name]; ok {
		return e.file, e.line
	}
	return "", 0
}

// Dump writes the table as a YAML mapping of name to value. Single
// values are written as scalars, flags as true, and lists as sequences.
// Dumping does not mark entries queried.
func (t *Table) Dump(w io.Writer) error {
	t.mu.Lock()
	doc := make(map[string]any, len(t.entries))
	for name, e := range t.entries {
		switch len(e.values) {
		case 0:
			doc[name] = true
		case 1:
			doc[name] = e.values[0]
		default:
			doc[name] = slices.Clone(e.values)
		}
	}
	t.mu.Unlock()

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
