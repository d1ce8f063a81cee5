package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dshills/procscope/internal/snapshot"
)

func proc(pid int32, name string, cpu float64) snapshot.Entry {
	return snapshot.Entry{PID: pid, Name: name, CPUPercent: cpu}
}

type fakeSource struct {
	entries []snapshot.Entry
	err     error
	calls   int
}

func (f *fakeSource) Acquire(_ context.Context) ([]snapshot.Entry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

type fakeTerminator struct {
	ok   bool
	err  error
	pids []int32
}

func (f *fakeTerminator) Terminate(pid int32) (bool, error) {
	f.pids = append(f.pids, pid)
	return f.ok, f.err
}

func newSession(t *testing.T, opts Options) *Session {
	t.Helper()
	if opts.Now == nil {
		base := time.Unix(1700000000, 0)
		n := 0
		opts.Now = func() time.Time {
			n++
			return base.Add(time.Duration(n) * 5 * time.Second)
		}
	}
	s, err := NewSession(opts)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s
}

func TestNewSessionRequiresSource(t *testing.T) {
	if _, err := NewSession(Options{}); err == nil {
		t.Fatal("expected error without a source")
	}
}

func TestTickIngestsSnapshot(t *testing.T) {
	src := &fakeSource{entries: []snapshot.Entry{proc(1, "a", 80), proc(2, "b", 10)}}
	s := newSession(t, Options{Source: src})

	s.tick(context.Background())

	if s.Current() == nil || s.Current().Len() != 2 {
		t.Fatal("current snapshot not updated")
	}
	if s.Tree() == nil || len(s.Tree().Roots()) != 2 {
		t.Fatal("tree not rebuilt")
	}
	if s.Store().Ticks() != 1 {
		t.Errorf("expected 1 tick in store, got %d", s.Store().Ticks())
	}
	if s.Stale() {
		t.Error("successful tick should not be stale")
	}
	if !s.Selection().AutoSelected() {
		t.Error("first tick should auto-select")
	}
}

func TestAcquisitionFailureSkipsTickAndMarksStale(t *testing.T) {
	src := &fakeSource{err: &snapshot.AcquisitionError{Err: errors.New("wmi query timed out")}}
	s := newSession(t, Options{Source: src})

	s.tick(context.Background())

	if s.Store().Ticks() != 0 {
		t.Error("failed acquisition must not advance the store")
	}
	if !s.Stale() {
		t.Error("failed acquisition should mark data stale")
	}

	// Recovery on the next scheduled tick clears the indicator.
	src.err = nil
	src.entries = []snapshot.Entry{proc(1, "a", 5)}
	s.tick(context.Background())

	if s.Stale() {
		t.Error("successful tick should clear staleness")
	}
	if s.Store().Ticks() != 1 {
		t.Errorf("expected 1 tick, got %d", s.Store().Ticks())
	}
}

func TestMalformedSnapshotDropsTick(t *testing.T) {
	src := &fakeSource{entries: []snapshot.Entry{proc(1, "a", 1), proc(1, "dup", 2)}}
	s := newSession(t, Options{Source: src})

	s.tick(context.Background())

	if s.Store().Ticks() != 0 {
		t.Error("malformed snapshot must not be ingested")
	}
	if s.Current() != nil {
		t.Error("malformed snapshot must not become current")
	}
	if s.Selection().AutoSelected() {
		t.Error("auto-selection must not fire on a dropped tick")
	}
}

func TestNoWriteAfterClose(t *testing.T) {
	s := newSession(t, Options{Source: &fakeSource{}})

	// Close mid-acquisition: the completion must be a no-op.
	src := snapshot.SourceFunc(func(context.Context) ([]snapshot.Entry, error) {
		s.Close()
		return []snapshot.Entry{proc(1, "late", 50)}, nil
	})
	s.src = src

	s.tick(context.Background())

	if s.Store().Ticks() != 0 {
		t.Error("late completion wrote to a closed session")
	}
	if s.Current() != nil {
		t.Error("late completion updated current snapshot")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s := newSession(t, Options{Source: &fakeSource{}})
	s.Close()
	s.Close() // must not panic
}

func TestRunStopsOnClose(t *testing.T) {
	src := &fakeSource{entries: []snapshot.Entry{proc(1, "a", 1)}}
	s := newSession(t, Options{Source: src, Interval: time.Hour})

	finished := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(finished)
	}()

	// First tick runs immediately; wait for its update.
	select {
	case <-s.Updates():
	case <-time.After(2 * time.Second):
		t.Fatal("no update from initial tick")
	}

	s.Close()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after Close")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	src := &fakeSource{entries: []snapshot.Entry{proc(1, "a", 1)}}
	s := newSession(t, Options{Source: src, Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(finished)
	}()

	cancel()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRefreshCoalesces(t *testing.T) {
	s := newSession(t, Options{Source: &fakeSource{}})

	s.Refresh()
	s.Refresh() // second request coalesces, must not block

	select {
	case <-s.refresh:
	default:
		t.Fatal("expected a pending refresh request")
	}
	select {
	case <-s.refresh:
		t.Fatal("refresh requests should coalesce to one")
	default:
	}
}

func TestTerminateSuccessTriggersRefresh(t *testing.T) {
	term := &fakeTerminator{ok: true}
	s := newSession(t, Options{Source: &fakeSource{}, Terminator: term})

	ok, err := s.Terminate(42)
	if err != nil || !ok {
		t.Fatalf("expected success, got ok=%v err=%v", ok, err)
	}
	if len(term.pids) != 1 || term.pids[0] != 42 {
		t.Errorf("terminator called with %v", term.pids)
	}

	select {
	case <-s.refresh:
	default:
		t.Error("successful termination should request a refresh")
	}
}

func TestTerminateFailureDoesNotRefresh(t *testing.T) {
	termErr := &snapshot.TerminationError{PID: 42, Err: errors.New("permission denied")}
	term := &fakeTerminator{ok: false, err: termErr}
	s := newSession(t, Options{Source: &fakeSource{}, Terminator: term})

	ok, err := s.Terminate(42)
	if ok || err == nil {
		t.Fatalf("expected failure, got ok=%v err=%v", ok, err)
	}

	select {
	case <-s.refresh:
		t.Error("failed termination must not request a refresh")
	default:
	}
	if s.Store().Ticks() != 0 {
		t.Error("termination failure must not affect the store")
	}
}

func TestTerminateWithoutTerminator(t *testing.T) {
	s := newSession(t, Options{Source: &fakeSource{}})

	_, err := s.Terminate(1)
	if !errors.Is(err, ErrNoTerminator) {
		t.Errorf("expected ErrNoTerminator, got %v", err)
	}
}

func TestSelectionSurvivesIngestion(t *testing.T) {
	src := &fakeSource{entries: []snapshot.Entry{proc(1, "a", 80), proc(2, "b", 10)}}
	s := newSession(t, Options{Source: src, TopK: 1})

	s.tick(context.Background())
	if got := s.Selection().Selected(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected auto-selection [1], got %v", got)
	}

	// Selected process disappears; selection is untouched and its
	// series extends with gaps.
	src.entries = []snapshot.Entry{proc(2, "b", 99)}
	s.tick(context.Background())

	if got := s.Selection().Selected(); len(got) != 1 || got[0] != 1 {
		t.Errorf("ingestion changed the selection: %v", got)
	}
	if !s.Store().Known(1) {
		t.Error("departed process should keep its series")
	}
}
