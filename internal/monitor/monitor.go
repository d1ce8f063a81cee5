// Package monitor runs the sampling session: one periodic loop that
// acquires snapshots, folds them into the timeline store, and exposes
// the results to the presentation layer.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dshills/procscope/internal/hierarchy"
	"github.com/dshills/procscope/internal/selection"
	"github.com/dshills/procscope/internal/snapshot"
	"github.com/dshills/procscope/internal/timeline"
)

// DefaultInterval is the sampling period.
const DefaultInterval = 5 * time.Second

// ErrNoTerminator indicates termination was requested without a
// configured Terminator collaborator.
var ErrNoTerminator = errors.New("no terminator configured")

// Logger is the subset of the application logger the session needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Options configures a Session.
type Options struct {
	// Source acquires snapshots. Required.
	Source snapshot.Source

	// Terminator terminates processes. Optional.
	Terminator snapshot.Terminator

	// Interval is the sampling period. Defaults to DefaultInterval.
	Interval time.Duration

	// Window is the timeline window size. Defaults to timeline.DefaultWindow.
	Window int

	// TopK is the automatic selection size. Defaults to selection.DefaultTopK.
	TopK int

	// Logger receives session diagnostics. Optional.
	Logger Logger

	// Now supplies tick timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Session owns the timeline store and selection state for one
// monitoring run. All ingestion happens on the Run goroutine: the
// periodic timer and manual refresh requests are funneled into the same
// loop, so at most one acquire-and-ingest cycle is ever in flight and
// the store's per-tick append is never called concurrently with itself.
type Session struct {
	src      snapshot.Source
	term     snapshot.Terminator
	interval time.Duration
	log      Logger
	now      func() time.Time

	store *timeline.Store
	sel   *selection.State

	state sessionState

	refresh chan struct{}
	updates chan struct{}
	done    chan struct{}
}

// sessionState is the snapshot-derived state shared with the
// presentation layer, guarded by its own mutex so readers never block
// behind an in-flight acquisition.
type sessionState struct {
	mu      sync.RWMutex
	current *snapshot.Snapshot
	tree    *hierarchy.Tree
	stale   bool
	closed  bool
}

// NewSession creates a session. Run must be called to start sampling.
func NewSession(opts Options) (*Session, error) {
	if opts.Source == nil {
		return nil, errors.New("monitor: Source is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Session{
		src:      opts.Source,
		term:     opts.Terminator,
		interval: opts.Interval,
		log:      opts.Logger,
		now:      opts.Now,
		store:    timeline.NewStore(opts.Window),
		sel:      selection.NewState(opts.TopK),
		refresh:  make(chan struct{}, 1),
		updates:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

// Run samples immediately, then on every interval tick or refresh
// request, until ctx is canceled or Close is called. It never returns
// early because of a failed tick.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.tick(ctx)
		case <-s.refresh:
			s.tick(ctx)
		}
	}
}

// tick acquires one snapshot and ingests it. Acquisition failures skip
// the tick and mark the data stale; the next scheduled tick retries. A
// malformed snapshot (duplicate PID) drops the tick without touching
// the store. A completion that arrives after Close is a no-op.
func (s *Session) tick(ctx context.Context) {
	entries, err := s.src.Acquire(ctx)

	if s.closedOrDone(ctx) {
		return
	}

	if err != nil {
		s.log.Warn("snapshot acquisition failed: %v", err)
		s.markStale()
		return
	}

	snap, err := snapshot.New(s.now(), entries)
	if err != nil {
		s.log.Error("malformed snapshot dropped: %v", err)
		s.markStale()
		return
	}

	s.store.Ingest(snap.Taken(), snap)
	if s.sel.AutoSelect(snap) {
		s.log.Debug("auto-selected %d processes for charting", s.sel.Len())
	}

	tree := hierarchy.New(snap)

	s.state.mu.Lock()
	if s.state.closed {
		s.state.mu.Unlock()
		return
	}
	s.state.current = snap
	s.state.tree = tree
	s.state.stale = false
	s.state.mu.Unlock()

	s.notify()
}

func (s *Session) closedOrDone(ctx context.Context) bool {
	select {
	case <-s.done:
		return true
	case <-ctx.Done():
		return true
	default:
	}
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	return s.state.closed
}

func (s *Session) markStale() {
	s.state.mu.Lock()
	if !s.state.closed {
		s.state.stale = true
	}
	s.state.mu.Unlock()
	s.notify()
}

// notify wakes the presentation layer; notifications coalesce.
func (s *Session) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// Refresh requests an immediate out-of-band tick. Requests coalesce
// and run on the session loop, never concurrently with the timer.
func (s *Session) Refresh() {
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

// Terminate asks the Terminator to kill pid. On success it triggers an
// immediate refresh so the table catches up. Failures are returned to
// the caller and never affect the timeline store.
func (s *Session) Terminate(pid int32) (bool, error) {
	if s.term == nil {
		return false, &snapshot.TerminationError{PID: pid, Err: ErrNoTerminator}
	}

	ok, err := s.term.Terminate(pid)
	if err != nil {
		s.log.Warn("terminate pid %d failed: %v", pid, err)
		return ok, err
	}
	if ok {
		s.log.Info("terminated pid %d", pid)
		s.Refresh()
	}
	return ok, nil
}

// Close tears the session down: the loop stops and any in-flight
// acquisition's completion becomes a no-op. Safe to call more than
// once.
func (s *Session) Close() {
	s.state.mu.Lock()
	alreadyClosed := s.state.closed
	s.state.closed = true
	s.state.mu.Unlock()

	if !alreadyClosed {
		close(s.done)
	}
}

// Updates returns the coalescing notification channel for the
// presentation layer.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

// Current returns the latest ingested snapshot, or nil before the
// first successful tick.
func (s *Session) Current() *snapshot.Snapshot {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	return s.state.current
}

// Tree returns the hierarchy built from the latest snapshot, or nil
// before the first successful tick.
func (s *Session) Tree() *hierarchy.Tree {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	return s.state.tree
}

// Stale reports whether the most recent tick failed to ingest.
func (s *Session) Stale() bool {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	return s.state.stale
}

// Store returns the session's timeline store.
func (s *Session) Store() *timeline.Store {
	return s.store
}

// Selection returns the session's chart selection state.
func (s *Session) Selection() *selection.State {
	return s.sel
}

// Interval returns the sampling period.
func (s *Session) Interval() time.Duration {
	return s.interval
}
