package boxlib

// Phase is the lifecycle position of a State.
type Phase int

const (
	// PhaseUninitialized is the state of a freshly created State.
	PhaseUninitialized Phase = iota

	// PhaseInitializing covers the start-up sequence.
	PhaseInitializing

	// PhaseRunning means every subsystem is up.
	PhaseRunning

	// PhaseFinalizing covers the shutdown sequence.
	PhaseFinalizing

	// PhaseTerminated means every subsystem has been shut down.
	PhaseTerminated
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseInitializing:
		return "initializing"
	case PhaseRunning:
		return "running"
	case PhaseFinalizing:
		return "finalizing"
	case PhaseTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
