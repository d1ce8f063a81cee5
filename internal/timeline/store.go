package timeline

import (
	"sort"
	"sync"
	"time"

	"github.com/dshills/procscope/internal/snapshot"
)

// DefaultWindow is the number of retained historical samples per series.
const DefaultWindow = 30

// Sample is one element of a series: a value, or a "no data" gap marker
// when the process was absent at that tick.
type Sample struct {
	Value float64
	Valid bool
}

// Gap returns a "no data" sample.
func Gap() Sample {
	return Sample{}
}

// Value returns a present sample with the given value.
func Value(v float64) Sample {
	return Sample{Value: v, Valid: true}
}

// history holds all metric series for one PID. Series are kept in
// lockstep with the store's timestamp sequence.
type history struct {
	samples [metricCount][]Sample
}

// Store owns one series per (PID x metric) plus the shared timestamp
// sequence, all bounded to the same window and advanced together once
// per tick. A series is created on a PID's first appearance and then
// persists for the session, extended with gaps while the process is
// absent so every series can be zipped against the timestamps by index.
//
// Identity alone keys a series: a PID recycled by the OS after the
// original process exited resumes the old series following its gap
// markers. Reuse windows are far longer than the sampling period, so
// the approximation is accepted rather than compounding the key with a
// first-seen tick.
type Store struct {
	mu sync.RWMutex

	window     int
	timestamps []time.Time
	series     map[int32]*history
	names      map[int32]string
}

// NewStore creates an empty store with the given window size. A window
// below 1 falls back to DefaultWindow.
func NewStore(window int) *Store {
	if window < 1 {
		window = DefaultWindow
	}
	return &Store{
		window: window,
		series: make(map[int32]*history),
		names:  make(map[int32]string),
	}
}

// Window returns the maximum number of retained samples per series.
func (s *Store) Window() int {
	return s.window
}

// Ingest folds one snapshot into the store, advancing every series and
// the timestamp sequence by exactly one slot. It is not deduplicated by
// content: ingesting the same snapshot twice advances the window twice.
// Ingest must not be called concurrently with itself; the monitor
// session serializes ticks.
func (s *Store) Ingest(ts time.Time, snap *snapshot.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Length of every series before this tick, used to retro-pad
	// first appearances so all series stay aligned.
	prior := len(s.timestamps)

	s.timestamps = appendBounded(s.timestamps, ts, s.window)

	for _, e := range snap.Entries() {
		h := s.series[e.PID]
		if h == nil {
			h = &history{}
			for m := range h.samples {
				h.samples[m] = padded(prior)
			}
			s.series[e.PID] = h
		}
		for m := 0; m < MetricCount; m++ {
			h.samples[m] = appendBounded(h.samples[m], Value(Metric(m).valueOf(e)), s.window)
		}
		s.names[e.PID] = e.Name
	}

	for pid, h := range s.series {
		if snap.Contains(pid) {
			continue
		}
		for m := 0; m < MetricCount; m++ {
			h.samples[m] = appendBounded(h.samples[m], Gap(), s.window)
		}
	}
}

// Ticks returns the current length of the shared timestamp sequence.
func (s *Store) Ticks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.timestamps)
}

// Timestamps returns a copy of the shared timestamp sequence, oldest
// first.
func (s *Store) Timestamps() []time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]time.Time, len(s.timestamps))
	copy(out, s.timestamps)
	return out
}

// Series returns a copy of the samples for (pid, metric) and whether
// the PID has ever appeared. The returned slice always has the same
// length as Timestamps.
func (s *Store) Series(pid int32, m Metric) ([]Sample, bool) {
	if m < 0 || m >= metricCount {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.series[pid]
	if !ok {
		return nil, false
	}
	out := make([]Sample, len(h.samples[m]))
	copy(out, h.samples[m])
	return out, true
}

// Known reports whether a series exists for pid.
func (s *Store) Known(pid int32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.series[pid]
	return ok
}

// Name returns the display name from the most recent snapshot that
// included pid.
func (s *Store) Name(pid int32) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.names[pid]
	return name, ok
}

// Tracked returns every PID with a series, ascending.
func (s *Store) Tracked() []int32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pids := make([]int32, 0, len(s.series))
	for pid := range s.series {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}

// appendBounded appends v and evicts the oldest element when the slice
// would exceed window (FIFO).
func appendBounded[T any](xs []T, v T, window int) []T {
	xs = append(xs, v)
	if len(xs) > window {
		xs = append(xs[:0], xs[1:]...)
	}
	return xs
}

// padded returns n gap samples.
func padded(n int) []Sample {
	out := make([]Sample, n)
	return out
}
