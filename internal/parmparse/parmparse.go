package parmparse

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/cast"

	"github.com/nicholasbl/amrex/internal/errors"
)

// ParmParse queries the table under a fixed root prefix.
type ParmParse struct {
	table  *Table
	prefix string
}

// Prefix returns the root this handle prepends to names.
func (pp *ParmParse) Prefix() string {
	return pp.prefix
}

func (pp *ParmParse) fullName(name string) string {
	if pp.prefix == "" {
		return name
	}
	return pp.prefix + "." + name
}

// Contains reports whether name is defined.
func (pp *ParmParse) Contains(name string) bool {
	_, ok := pp.table.lookup(pp.fullName(name))
	return ok
}

// CountVal returns the number of values of name, or 0 if undefined.
func (pp *ParmParse) CountVal(name string) int {
	values, _ := pp.table.lookup(pp.fullName(name))
	return len(values)
}

// Query returns the values of name and whether it is defined.
func (pp *ParmParse) Query(name string) ([]string, bool) {
	return pp.table.lookup(pp.fullName(name))
}

// value returns the ival-th value of name.
func (pp *ParmParse) value(name string, ival int) (string, error) {
	full := pp.fullName(name)
	values, ok := pp.table.lookup(full)
	if !ok {
		return "", errors.NewConfigError("query", errors.ErrNotFound).WithName(full)
	}
	if ival < 0 || ival >= len(values) {
		return "", pp.convError(full, fmt.Sprintf("value %d requested, %d defined", ival, len(values)), nil)
	}
	return values[ival], nil
}

func (pp *ParmParse) convError(full, msg string, cause error) error {
	if cause == nil {
		cause = errors.ErrSyntax
	} else {
		cause = errors.Join(errors.ErrSyntax, cause)
	}
	file, line := pp.table.source(full)
	return errors.NewConfigError(msg, cause).WithName(full).WithFile(file).WithLine(line)
}

// String returns the first value of name.
func (pp *ParmParse) String(name string) (string, error) {
	return pp.value(name, 0)
}

// Int returns the first value of name as an int.
func (pp *ParmParse) Int(name string) (int, error) {
	return pp.IntAt(name, 0)
}

// IntAt returns the ival-th value of name as an int.
func (pp *ParmParse) IntAt(name string, ival int) (int, error) {
	s, err := pp.value(name, ival)
	if err != nil {
		return 0, err
	}
	v, err := cast.ToIntE(s)
	if err != nil {
		return 0, pp.convError(pp.fullName(name), fmt.Sprintf("%q is not an integer", s), err)
	}
	return v, nil
}

// Float returns the first value of name as a float64.
func (pp *ParmParse) Float(name string) (float64, error) {
	return pp.FloatAt(name, 0)
}

// FloatAt returns the ival-th value of name as a float64.
func (pp *ParmParse) FloatAt(name string, ival int) (float64, error) {
	s, err := pp.value(name, ival)
	if err != nil {
		return 0, err
	}
	v, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, pp.convError(pp.fullName(name), fmt.Sprintf("%q is not a number", s), err)
	}
	return v, nil
}

// Bool returns name as a bool. A flag defined without values is true.
func (pp *ParmParse) Bool(name string) (bool, error) {
	full := pp.fullName(name)
	values, ok := pp.table.lookup(full)
	if !ok {
		return false, errors.NewConfigError("query", errors.ErrNotFound).WithName(full)
	}
	if len(values) == 0 {
		return true, nil
	}
	v, err := cast.ToBoolE(values[0])
	if err != nil {
		return false, pp.convError(full, fmt.Sprintf("%q is not a boolean", values[0]), err)
	}
	return v, nil
}

// Strings returns every value of name.
func (pp *ParmParse) Strings(name string) ([]string, error) {
	full := pp.fullName(name)
	values, ok := pp.table.lookup(full)
	if !ok {
		return nil, errors.NewConfigError("query", errors.ErrNotFound).WithName(full)
	}
	return values, nil
}

// Ints returns every value of name as ints.
func (pp *ParmParse) Ints(name string) ([]int, error) {
	values, err := pp.Strings(name)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(values))
	for i, s := range values {
		if out[i], err = cast.ToIntE(s); err != nil {
			return nil, pp.convError(pp.fullName(name), fmt.Sprintf("value %d %q is not an integer", i, s), err)
		}
	}
	return out, nil
}

// Floats returns every value of name as float64s.
func (pp *ParmParse) Floats(name string) ([]float64, error) {
	values, err := pp.Strings(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i, s := range values {
		if out[i], err = cast.ToFloat64E(s); err != nil {
			return nil, pp.convError(pp.fullName(name), fmt.Sprintf("value %d %q is not a number", i, s), err)
		}
	}
	return out, nil
}

// StringOr returns the first value of name, or def if it is undefined.
// Malformed values still fail.
func (pp *ParmParse) StringOr(name, def string) (string, error) {
	if !pp.Contains(name) {
		return def, nil
	}
	return pp.String(name)
}

// IntOr returns name as an int, or def if it is undefined.
func (pp *ParmParse) IntOr(name string, def int) (int, error) {
	if !pp.Contains(name) {
		return def, nil
	}
	return pp.Int(name)
}

// FloatOr returns name as a float64, or def if it is undefined.
func (pp *ParmParse) FloatOr(name string, def float64) (float64, error) {
	if !pp.Contains(name) {
		return def, nil
	}
	return pp.Float(name)
}

// BoolOr returns name as a bool, or def if it is undefined.
func (pp *ParmParse) BoolOr(name string, def bool) (bool, error) {
	if !pp.Contains(name) {
		return def, nil
	}
	return pp.Bool(name)
}

// Match returns the defined names under this prefix that match pattern,
// sorted. Patterns use glob syntax with '.' as the separator, so "*"
// matches one name component and "**" any number.
func (pp *ParmParse) Match(pattern string) ([]string, error) {
	g, err := glob.Compile(pp.fullName(pattern), '.')
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("invalid pattern %q", pattern), err)
	}

	var matches []string
	for _, name := range pp.table.Names() {
		if g.Match(name) {
			matches = append(matches, name)
		}
	}
	slices.Sort(matches)
	return matches, nil
}

// Relative strips this handle's prefix from a full name.
func (pp *ParmParse) Relative(full string) string {
	if pp.prefix == "" {
		return full
	}
	return strings.TrimPrefix(full, pp.prefix+".")
}
