// Package boxlib sequences the start-up and shutdown of the amrex base
// library.
//
// A process creates one State at entry, calls Initialize with its
// command-line arguments before any numerical work, and Finalize after
// the last of it. Initialize brings the subsystems up in a fixed order:
//
//  1. allocation-failure handler
//  2. the "BoxLib" profiling scope
//  3. the distributed runtime
//  4. argument validation
//  5. the parameter table
//  6. the profiler
//  7. the per-rank random generator
//  8. the array subsystem
//  9. standard-output precision
//
// Finalize tears them down in reverse. Any failure along the way goes to
// the fatal reporter and terminates the whole job; neither call returns
// an error.
//
// # Phases
//
// A State moves Uninitialized → Initializing → Running → Finalizing →
// Terminated and never goes back. Initializing a State twice aborts, as
// does finalizing one that never reached Running.
package boxlib
