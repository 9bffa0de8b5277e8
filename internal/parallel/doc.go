// Package parallel is the distributed runtime of an amrex job.
//
// A job is a fixed set of cooperating processes, each identified by a rank
// in [0, NProcs). The Descriptor discovers its rank when StartParallel is
// called, from explicit --parallel.rank/--parallel.nprocs arguments or from
// the environment exported by a launcher (this package's Launch, Open MPI,
// or a PMI-based launcher). A process that finds none of these runs as a
// serial job of one.
//
// Abort is the collective abort: it takes down every process of the job,
// not just the caller. When the job was started by Launch, all ranks share
// one process group and Abort signals that group. The fatal reporter holds
// the Descriptor as its Aborter once the runtime has started.
//
// Launch is a local job launcher. It is available on unix systems only;
// elsewhere it returns ErrLaunchUnsupported.
package parallel
