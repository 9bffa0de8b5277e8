package cmd

import (
	"github.com/nicholasbl/amrex/internal/config"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <inputs> [name=value ...] [-flag ...]",
	Short: "Run one rank of a job",
	Long: `Run one rank of a job through the base-library lifecycle.

The first argument must be the input file. Every argument after it is
handed to the parameter table unchanged, so flags are not parsed here.
Rank and size come from --parallel.rank=/--parallel.nprocs= or from the
launcher environment (AMREX_RANK, OMPI_COMM_WORLD_RANK, PMI_RANK);
without either the job runs serially.

Examples:
  # Serial run with an override
  amrex run inputs amrex.v=1

  # Allocate through the array subsystem and print the profile
  amrex run inputs amrex.alloc=1024 amrex.profile=true`,
	DisableFlagParsing: true,
	RunE:               runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	j, err := newJob(cfg, jobOptions{
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer j.close()

	j.run(append([]string{cmd.CommandPath()}, args...))
	return nil
}
