package parmparse

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/nicholasbl/amrex/internal/errors"
)

// structuredExts are the input file extensions read through viper.
var structuredExts = []string{".yaml", ".yml", ".json", ".toml"}

func isStructured(path string) bool {
	return slices.Contains(structuredExts, strings.ToLower(filepath.Ext(path)))
}

// readStructured loads a YAML, JSON or TOML document and flattens it to
// dotted names in sorted order. Names are lower-cased.
func readStructured(path string) ([]definition, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.NewConfigError("cannot read structured input file", err).WithFile(path)
	}

	keys := v.AllKeys()
	slices.Sort(keys)

	defs := make([]definition, 0, len(keys))
	for _, key := range keys {
		values, err := flattenValue(v.Get(key))
		if err != nil {
			return nil, errors.NewConfigError("unsupported value", err).WithFile(path).WithName(key)
		}
		defs = append(defs, definition{
			name:   key,
			values: values,
			file:   path,
		})
	}
	return defs, nil
}

// flattenValue turns a scalar or a list of scalars into value strings.
func flattenValue(raw any) ([]string, error) {
	if items, ok := raw.([]any); ok {
		values := make([]string, 0, len(items))
		for _, item := range items {
			s, err := cast.ToStringE(item)
			if err != nil {
				return nil, err
			}
			values = append(values, s)
		}
		return values, nil
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}
