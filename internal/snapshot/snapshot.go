// Package snapshot defines the process snapshot data model and the
// collaborator interfaces that produce snapshots and terminate processes.
package snapshot

import (
	"fmt"
	"time"
)

// Entry describes one process at one sampling instant. Entries are
// immutable once a Snapshot has been constructed from them.
type Entry struct {
	// PID is the process identity, unique within one snapshot.
	PID int32

	// Name is the display name of the process.
	Name string

	// ParentPID is the parent process identity. Only meaningful when
	// HasParent is true.
	ParentPID int32

	// HasParent reports whether the process reported a parent at all.
	HasParent bool

	// CPUPercent is the instantaneous CPU usage. NaN means the counter
	// could not be read for this process.
	CPUPercent float64

	// MemoryRSS is the resident set size in bytes.
	MemoryRSS uint64

	// DiskReadBytes and DiskWriteBytes are cumulative disk I/O counters.
	DiskReadBytes  uint64
	DiskWriteBytes uint64

	// NetRecvBytes and NetSentBytes are cumulative network I/O counters.
	NetRecvBytes uint64
	NetSentBytes uint64

	// GPUPercent is the instantaneous GPU usage.
	GPUPercent float64

	// HasChildren is derived from the snapshot's parent links during
	// Snapshot construction.
	HasChildren bool
}

// Parent returns the parent PID and whether one was reported.
func (e Entry) Parent() (int32, bool) {
	return e.ParentPID, e.HasParent
}

// Snapshot is an ordered collection of entries for one sampling tick.
// PIDs are unique within a snapshot; nothing guarantees stability of a
// PID across snapshots beyond OS-level reuse semantics.
type Snapshot struct {
	taken   time.Time
	entries []Entry
	byPID   map[int32]int
}

// New builds a Snapshot from the given entries, preserving their order.
// It validates PID uniqueness and derives HasChildren for every entry.
// A duplicate PID is a contract violation of the source and returns
// ErrDuplicatePID; the caller must drop the tick rather than deduplicate.
func New(taken time.Time, entries []Entry) (*Snapshot, error) {
	s := &Snapshot{
		taken:   taken,
		entries: make([]Entry, len(entries)),
		byPID:   make(map[int32]int, len(entries)),
	}
	copy(s.entries, entries)

	for i := range s.entries {
		pid := s.entries[i].PID
		if _, dup := s.byPID[pid]; dup {
			return nil, fmt.Errorf("entry %d: pid %d: %w", i, pid, ErrDuplicatePID)
		}
		s.byPID[pid] = i
	}

	// Derive HasChildren from parent links. A link to a PID outside the
	// snapshot does not count; such children are treated as top-level.
	for i := range s.entries {
		parent, ok := s.entries[i].Parent()
		if !ok {
			continue
		}
		if j, present := s.byPID[parent]; present && j != i {
			s.entries[j].HasChildren = true
		}
	}

	return s, nil
}

// Taken returns the sampling instant the snapshot was produced at.
func (s *Snapshot) Taken() time.Time {
	return s.taken
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Entries returns the entries in snapshot order. The returned slice is
// shared; callers must not modify it.
func (s *Snapshot) Entries() []Entry {
	return s.entries
}

// Lookup returns the entry for pid and whether it exists in the snapshot.
func (s *Snapshot) Lookup(pid int32) (Entry, bool) {
	i, ok := s.byPID[pid]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Contains reports whether pid appears in the snapshot.
func (s *Snapshot) Contains(pid int32) bool {
	_, ok := s.byPID[pid]
	return ok
}
