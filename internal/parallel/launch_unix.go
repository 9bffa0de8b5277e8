//go:build unix

package parallel

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"syscall"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sys/unix"

	"github.com/nicholasbl/amrex/internal/errors"
	"github.com/nicholasbl/amrex/internal/logging"
)

// Launch starts cfg.NProcs copies of cfg.Program in a new process group
// and waits for all of them. Each rank learns its identity from the
// environment. If any rank fails, or ctx is cancelled, the whole group is
// terminated and the first failure is returned.
func Launch(ctx context.Context, cfg LaunchConfig) error {
	if cfg.Program == "" {
		return errors.NewUsageError("launch requires a program", nil)
	}
	if cfg.NProcs < 1 {
		return errors.NewUsageError(fmt.Sprintf("invalid process count %d", cfg.NProcs), nil)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	logger = logger.WithPhase("launch")

	g := &group{}
	cmds := make([]*exec.Cmd, 0, cfg.NProcs)
	for rank := 0; rank < cfg.NProcs; rank++ {
		cmd := exec.Command(cfg.Program, cfg.Args...)
		cmd.Dir = cfg.Dir
		cmd.Env = rankEnv(cfg.Env, rank, cfg.NProcs)
		cmd.Stdout = cfg.Stdout
		cmd.Stderr = cfg.Stderr
		cmd.Stdin = nil

		// Rank 0 leads a new group; every later rank joins it.
		cmd.SysProcAttr = &syscall.SysProcAttr{
			Setpgid: true,
			Pgid:    g.pgid,
		}

		if err := cmd.Start(); err != nil {
			g.kill()
			for _, started := range cmds {
				_ = started.Wait()
			}
			return errors.NewRuntimeError("failed to start rank", err).WithRank(rank)
		}
		if rank == 0 {
			g.pgid = cmd.Process.Pid
		}
		cmds = append(cmds, cmd)
		logger.Debug("rank started", "rank", rank, "pid", cmd.Process.Pid)
	}

	logger.Info("job launched",
		"program", cfg.Program,
		"nprocs", cfg.NProcs,
		"pgid", g.pgid,
	)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			logger.Warn("launch cancelled, terminating job", "error", ctx.Err())
			g.kill()
		case <-done:
		}
	}()

	p := pool.New().WithErrors().WithFirstError()
	for rank, cmd := range cmds {
		p.Go(func() error {
			if err := cmd.Wait(); err != nil {
				logger.Error("rank failed", "rank", rank, "error", err)
				g.kill()
				return errors.NewRuntimeError("rank exited abnormally", err).WithRank(rank)
			}
			return nil
		})
	}

	err := p.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return err
	}
	logger.Info("job completed", "nprocs", cfg.NProcs)
	return nil
}

// group is the process group shared by the ranks of one job.
type group struct {
	pgid int
	once sync.Once
}

// kill sends SIGTERM to the group once. Ranks that already exited are
// unaffected.
func (g *group) kill() {
	if g.pgid == 0 {
		return
	}
	g.once.Do(func() {
		_ = unix.Kill(-g.pgid, unix.SIGTERM)
	})
}
