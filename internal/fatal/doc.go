// Package fatal reports unrecoverable conditions and terminates the job.
//
// Every entry point except [Reporter.Warning] diverges: it writes one
// diagnostic line straight to the error file descriptor and hands off to
// the collective abort of the distributed runtime. If that abort ever
// returns, the reporter exits the process itself and, failing that,
// panics. No fatal entry point returns to its caller.
//
// The reporting path is built to survive a corrupted or exhausted heap:
//
//   - output goes through raw write(2) calls on the descriptor, never
//     through a buffered writer or fmt;
//   - strings are written in place, without conversion copies;
//   - the only formatted message (assertions) is assembled in a
//     fixed-capacity buffer that lives on the caller's stack and is
//     truncated, never grown, at [MessageCapacity] bytes.
//
// Wire format:
//
//	BoxLib::Error::<msg> !!!\n
//	BoxLib::Abort::<msg> !!!\n
//	BoxLib::Assertion `<expr>' failed, file "<file>", line <line> !!!\n
//
// Buffered outputs registered with [Reporter.AddFlusher] are flushed
// before each fatal write so earlier output is not interleaved with, or
// lost behind, the diagnostic.
package fatal
