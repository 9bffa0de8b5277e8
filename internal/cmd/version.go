package cmd

import (
	"fmt"

	"github.com/nicholasbl/amrex/internal/boxlib"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the base library version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), boxlib.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
