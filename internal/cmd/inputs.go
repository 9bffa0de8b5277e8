package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nicholasbl/amrex/internal/parmparse"
	"github.com/spf13/cobra"
)

var inputsCmd = &cobra.Command{
	Use:   "inputs <file> [pattern]",
	Short: "Parse an input file and print its parameters",
	Long: `Parse an input file the way a job would and print the resulting
parameter table.

Without a pattern the whole table is written as YAML. With a pattern,
only matching names are printed, one "name = values" line each. Patterns
use '.' as the separator: "*" matches one name component, "**" any
number.

Examples:
  amrex inputs inputs
  amrex inputs inputs 'amr.*'
  amrex inputs inputs --set amr.max_level=3 'amr.**'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInputs,
}

var inputsSet []string

func init() {
	rootCmd.AddCommand(inputsCmd)

	inputsCmd.Flags().StringArrayVar(&inputsSet, "set", nil, "Command-line definition applied after the file (repeatable)")
}

func runInputs(cmd *cobra.Command, args []string) error {
	table := parmparse.NewTable()
	if err := table.Initialize(inputsSet, args[0]); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		return table.Dump(out)
	}

	pp := table.Prefix("")
	names, err := pp.Match(args[1])
	if err != nil {
		return err
	}
	for _, name := range names {
		values, _ := pp.Query(name)
		if len(values) == 0 {
			fmt.Fprintf(out, "-%s\n", name)
			continue
		}
		fmt.Fprintf(out, "%s = %s\n", name, formatValues(values))
	}
	return nil
}

// formatValues joins values so the line can be read back as input.
func formatValues(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		if v == "" || strings.ContainsAny(v, " \t\n=\"#") {
			v = strconv.Quote(v)
		}
		quoted[i] = v
	}
	return strings.Join(quoted, " ")
}
