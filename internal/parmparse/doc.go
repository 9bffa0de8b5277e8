// Package parmparse holds the run-time parameter table of an amrex job.
//
// The table is loaded once per process from an input file and the
// command-line arguments that follow it. Input files use a simple
// whitespace-separated format:
//
//	# comments run to end of line
//	amr.max_level = 2
//	amr.n_cell    = 64 64 64
//	amr.plot_file = "plt"
//	FILE = common.inputs      # include another file
//
// A definition's values run until the next "name =". A bare "-name"
// token defines a flag with no values; write negative numbers as they
// are and quote any other value that begins with a dash.
//
// Files ending in .yaml, .yml, .json or .toml are read as structured
// documents instead; nested keys become dotted names.
//
// Command-line entries are applied after the input file, and the last
// definition of a name wins. Queries go through a ParmParse, which scopes
// names under a root prefix:
//
//	pp := table.Prefix("amr")
//	maxLevel, err := pp.Int("max_level")
//	nCell, err := pp.Ints("n_cell")
package parmparse
