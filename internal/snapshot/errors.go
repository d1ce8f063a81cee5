package snapshot

import (
	"errors"
	"fmt"
)

// Snapshot errors.
var (
	// ErrDuplicatePID indicates a source produced two entries with the
	// same PID in one snapshot. The affected tick must be dropped.
	ErrDuplicatePID = errors.New("duplicate pid in snapshot")

	// ErrNoSuchProcess indicates a termination target no longer exists.
	ErrNoSuchProcess = errors.New("no such process")
)

// AcquisitionError reports a transient failure to obtain a snapshot.
// The tick is skipped and acquisition is retried on the next scheduled
// tick, never immediately.
type AcquisitionError struct {
	Err error
}

func (e *AcquisitionError) Error() string {
	if e == nil || e.Err == nil {
		return "snapshot acquisition failed"
	}
	return fmt.Sprintf("snapshot acquisition failed: %v", e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// TerminationError reports a failure to terminate a process, such as a
// permission denial or a PID that no longer exists. It is surfaced to
// the initiating caller only and never affects the timeline store.
type TerminationError struct {
	PID int32
	Err error
}

func (e *TerminationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("terminate pid %d: %v", e.PID, e.Err)
}

func (e *TerminationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is implements errors.Is for TerminationError.
func (e *TerminationError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*TerminationError); ok {
		return e == t
	}
	return errors.Is(e.Err, target)
}
