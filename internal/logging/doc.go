// Package logging provides structured logging for amrex jobs.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// context propagation. Every process of a job appends to the same
// {jobDir}/amrex.log file; child loggers created with [Logger.WithRank]
// tag each record with the writing process so the merged file can be
// split again afterwards.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Child loggers
// created via With* methods share the underlying writer and its mutex.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/job", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	rankLogger := logger.WithRank(3).WithPhase("boxlib")
//	rankLogger.Info("initialized", "seed", 4)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"initialized","rank":3,"phase":"boxlib","seed":4}
//
// # Fatal Paths
//
// Loggers allocate. They are never used on the fatal-report path; the
// fatal reporter only calls [Logger.Flush] (through its flusher list) so
// that records already handed to the logger reach disk before the job is
// torn down.
//
// # Aggregation
//
// [AggregateLogs] reads a job directory back, [FilterLogs] narrows the
// entries by level, rank, phase, time or message text, and [WriteText]
// renders them for a terminal.
//
// # Testing
//
// Use [NopLogger] to discard all log output, or [NewWriterLogger] with a
// bytes.Buffer to assert on records.
package logging
