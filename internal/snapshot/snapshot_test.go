package snapshot

import (
	"errors"
	"testing"
	"time"
)

func entry(pid int32, name string, parent int32) Entry {
	e := Entry{PID: pid, Name: name}
	if parent >= 0 {
		e.ParentPID = parent
		e.HasParent = true
	}
	return e
}

func TestNewPreservesOrder(t *testing.T) {
	entries := []Entry{
		entry(10, "init", -1),
		entry(30, "worker", 20),
		entry(20, "daemon", 10),
	}

	s, err := New(time.Now(), entries)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if s.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", s.Len())
	}
	got := s.Entries()
	for i, want := range []int32{10, 30, 20} {
		if got[i].PID != want {
			t.Errorf("entry %d: expected pid %d, got %d", i, want, got[i].PID)
		}
	}
}

func TestNewRejectsDuplicatePID(t *testing.T) {
	entries := []Entry{
		entry(10, "a", -1),
		entry(20, "b", 10),
		entry(10, "a-again", -1),
	}

	_, err := New(time.Now(), entries)
	if err == nil {
		t.Fatal("expected error for duplicate pid")
	}
	if !errors.Is(err, ErrDuplicatePID) {
		t.Errorf("expected ErrDuplicatePID, got %v", err)
	}
}

func TestNewDerivesHasChildren(t *testing.T) {
	entries := []Entry{
		entry(1, "root", -1),
		entry(2, "child", 1),
		entry(3, "orphan", 999), // parent outside the snapshot
	}

	s, err := New(time.Now(), entries)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	root, _ := s.Lookup(1)
	if !root.HasChildren {
		t.Error("pid 1 should have children")
	}
	child, _ := s.Lookup(2)
	if child.HasChildren {
		t.Error("pid 2 should not have children")
	}
	orphan, _ := s.Lookup(3)
	if orphan.HasChildren {
		t.Error("pid 3 should not have children")
	}
}

func TestNewDoesNotMutateInput(t *testing.T) {
	entries := []Entry{
		entry(1, "root", -1),
		entry(2, "child", 1),
	}

	if _, err := New(time.Now(), entries); err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if entries[0].HasChildren {
		t.Error("New must not mutate the caller's slice")
	}
}

func TestLookup(t *testing.T) {
	s, err := New(time.Now(), []Entry{entry(5, "only", -1)})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if e, ok := s.Lookup(5); !ok || e.Name != "only" {
		t.Errorf("expected to find pid 5, got %v %v", e, ok)
	}
	if _, ok := s.Lookup(6); ok {
		t.Error("pid 6 should not exist")
	}
	if !s.Contains(5) || s.Contains(6) {
		t.Error("Contains disagrees with Lookup")
	}
}

func TestSelfParentDoesNotMarkChildren(t *testing.T) {
	e := Entry{PID: 4, Name: "self", ParentPID: 4, HasParent: true}
	s, err := New(time.Now(), []Entry{e})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	got, _ := s.Lookup(4)
	if got.HasChildren {
		t.Error("self-parented entry must not count as its own child")
	}
}
