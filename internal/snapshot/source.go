package snapshot

import "context"

// Source supplies, on demand, the current flat list of processes with
// identity, parent linkage, and instantaneous resource counters.
//
// Acquire may be slow (it crosses into OS-level queries) and must honor
// ctx cancellation. A transient failure is reported as *AcquisitionError.
// Uniqueness of PIDs is not a Source guarantee; Snapshot construction
// validates it.
type Source interface {
	Acquire(ctx context.Context) ([]Entry, error)
}

// Terminator terminates a process by identity. It returns whether the
// process was terminated; failures are reported as *TerminationError.
type Terminator interface {
	Terminate(pid int32) (bool, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]Entry, error)

// Acquire calls f.
func (f SourceFunc) Acquire(ctx context.Context) ([]Entry, error) {
	return f(ctx)
}
