package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nicholasbl/amrex/internal/config"
	"github.com/nicholasbl/amrex/internal/parallel"
	"github.com/spf13/cobra"
)

var launchCmd = &cobra.Command{
	Use:   "launch [flags] -- <inputs> [name=value ...]",
	Short: "Launch a local multi-process job",
	Long: `Launch a job of several ranks on this machine.

Every rank runs "amrex run" with the same arguments and learns its rank
from the environment. All ranks share one process group, so a fatal
error on any rank terminates the whole job, as does a failed rank,
Ctrl+C or the timeout.

Examples:
  # Four ranks, default program
  amrex launch -n 4 -- inputs amrex.v=1

  # Run an arbitrary program under the launcher
  amrex launch -n 2 --exec ./my_app -- inputs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLaunch,
}

var (
	launchNProcs  int
	launchTimeout time.Duration
	launchExec    string
)

func init() {
	rootCmd.AddCommand(launchCmd)

	launchCmd.Flags().IntVarP(&launchNProcs, "nprocs", "n", 0, "Number of ranks (default: launch.nprocs)")
	launchCmd.Flags().DurationVar(&launchTimeout, "timeout", 0, "Terminate the job after this long (default: launch.timeout_seconds)")
	launchCmd.Flags().StringVar(&launchExec, "exec", "", "Program every rank runs (default: this binary's run command)")
}

func runLaunch(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	nprocs := cfg.Launch.NProcs
	if cmd.Flags().Changed("nprocs") {
		nprocs = launchNProcs
	}
	if nprocs < 1 || nprocs > config.MaxNProcs {
		return fmt.Errorf("nprocs must be between 1 and %d, got %d", config.MaxNProcs, nprocs)
	}

	timeout := cfg.Launch.Timeout()
	if cmd.Flags().Changed("timeout") {
		timeout = launchTimeout
	}

	program, progArgs := launchExec, args
	if program == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to locate executable: %w", err)
		}
		program = exe
		progArgs = append([]string{"run"}, args...)
	}

	logger, err := jobLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return parallel.Launch(ctx, parallel.LaunchConfig{
		Program: program,
		Args:    progArgs,
		NProcs:  nprocs,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
		Logger:  logger,
	})
}
