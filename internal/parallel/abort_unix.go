//go:build unix

package parallel

import (
	"os/signal"

	"golang.org/x/sys/unix"
)

// signalGroup sends SIGTERM to every other process in the caller's group.
// The caller ignores SIGTERM from here on so that it survives its own
// signal and can exit with fatal.ExitAbort.
func signalGroup() error {
	signal.Ignore(unix.SIGTERM)
	return unix.Kill(-unix.Getpgrp(), unix.SIGTERM)
}
