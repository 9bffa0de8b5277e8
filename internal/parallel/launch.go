package parallel

import (
	"io"
	"os"
	"strconv"

	"github.com/nicholasbl/amrex/internal/logging"
)

// LaunchConfig describes a local job.
type LaunchConfig struct {
	// Program is the executable every rank runs.
	Program string
	// Args are passed to every rank unchanged.
	Args []string
	// NProcs is the number of ranks to start. Must be at least 1.
	NProcs int
	// Dir is the working directory of every rank; empty means the caller's.
	Dir string
	// Env is appended to the caller's environment for every rank.
	Env []string
	// Stdout and Stderr receive every rank's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
	// Logger records launch events. Nil disables logging.
	Logger *logging.Logger
}

// rankEnv returns the environment of one rank.
func rankEnv(extra []string, rank, nprocs int) []string {
	env := append(os.Environ(), extra...)
	return append(env,
		EnvRank+"="+strconv.Itoa(rank),
		EnvNProcs+"="+strconv.Itoa(nprocs),
		EnvLauncher+"=1",
	)
}
