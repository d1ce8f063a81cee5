// Package selection decides which processes are tracked on the chart
// and how tracked processes are assigned colors.
package selection

import (
	"math"
	"sort"
	"sync"

	"github.com/dshills/procscope/internal/snapshot"
)

// DefaultTopK is the number of processes picked by the one-time
// automatic selection.
const DefaultTopK = 5

// State is the set of PIDs currently tracked for charting, in toggle
// order, plus the one-shot automatic selection flag. Ingesting a new
// snapshot never mutates it; only AutoSelect (once) and Toggle do.
type State struct {
	mu sync.RWMutex

	topK     int
	ids      []int32
	autoDone bool
}

// NewState creates an empty selection. A topK below 1 falls back to
// DefaultTopK.
func NewState(topK int) *State {
	if topK < 1 {
		topK = DefaultTopK
	}
	return &State{topK: topK}
}

// AutoSelect performs the one-time automatic selection: the top-K PIDs
// by descending instantaneous CPU percent from snap, ties broken by
// encounter order, NaN ordered after every readable value. It fires
// exactly once per session and reports whether it fired.
func (s *State) AutoSelect(snap *snapshot.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.autoDone {
		return false
	}
	s.autoDone = true

	entries := make([]snapshot.Entry, len(snap.Entries()))
	copy(entries, snap.Entries())
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].CPUPercent, entries[j].CPUPercent
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		return a > b
	})

	k := s.topK
	if len(entries) < k {
		k = len(entries)
	}
	s.ids = make([]int32, 0, k)
	for _, e := range entries[:k] {
		s.ids = append(s.ids, e.PID)
	}
	return true
}

// AutoSelected reports whether the automatic selection has fired.
func (s *State) AutoSelected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoDone
}

// Toggle adds pid to the selection, or removes it when already
// selected. Adding appends to the end of the ordering.
func (s *State) Toggle(pid int32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, id := range s.ids {
		if id == pid {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
	s.ids = append(s.ids, pid)
}

// Selected returns the tracked PIDs in selection order.
func (s *State) Selected() []int32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int32, len(s.ids))
	copy(out, s.ids)
	return out
}

// IsSelected reports whether pid is tracked.
func (s *State) IsSelected(pid int32) bool {
	_, ok := s.index(pid)
	return ok
}

// Index returns pid's position in the selection ordering. The position
// drives color assignment and is only stable while the relative
// ordering of the selection is unchanged.
func (s *State) Index(pid int32) (int, bool) {
	return s.index(pid)
}

func (s *State) index(pid int32) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, id := range s.ids {
		if id == pid {
			return i, true
		}
	}
	return 0, false
}

// Len returns the number of tracked PIDs.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
