package hierarchy

import (
	"testing"
	"time"

	"github.com/dshills/procscope/internal/snapshot"
)

func entry(pid int32, name string, parent int32) snapshot.Entry {
	e := snapshot.Entry{PID: pid, Name: name}
	if parent >= 0 {
		e.ParentPID = parent
		e.HasParent = true
	}
	return e
}

func mustSnapshot(t *testing.T, entries ...snapshot.Entry) *snapshot.Snapshot {
	t.Helper()
	s, err := snapshot.New(time.Now(), entries)
	if err != nil {
		t.Fatalf("snapshot.New failed: %v", err)
	}
	return s
}

func TestRootsIncludeOrphans(t *testing.T) {
	s := mustSnapshot(t,
		entry(1, "init", -1),
		entry(2, "daemon", 1),
		entry(3, "orphan", 999), // parent not in snapshot
		entry(4, "kthread", -1),
	)
	tree := New(s)

	roots := tree.Roots()
	want := []int32{1, 3, 4}
	if len(roots) != len(want) {
		t.Fatalf("expected %d roots, got %d: %v", len(want), len(roots), roots)
	}
	for i := range want {
		if roots[i] != want[i] {
			t.Errorf("root %d: expected pid %d, got %d", i, want[i], roots[i])
		}
	}
}

func TestChildrenKeepSnapshotOrder(t *testing.T) {
	s := mustSnapshot(t,
		entry(1, "parent", -1),
		entry(30, "c", 1),
		entry(10, "a", 1),
		entry(20, "b", 1),
	)
	tree := New(s)

	got := tree.Children(1)
	want := []int32{30, 10, 20}
	if len(got) != len(want) {
		t.Fatalf("expected %d children, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("child %d: expected pid %d, got %d", i, want[i], got[i])
		}
	}

	if tree.Children(30) != nil {
		t.Error("leaf should have nil children")
	}
}

func TestNewIsIdempotent(t *testing.T) {
	s := mustSnapshot(t,
		entry(1, "parent", -1),
		entry(2, "child", 1),
	)

	a, b := New(s), New(s)
	if len(a.Roots()) != len(b.Roots()) {
		t.Fatal("two builds over one snapshot disagree on roots")
	}
	for i := range a.Roots() {
		if a.Roots()[i] != b.Roots()[i] {
			t.Errorf("root %d differs between builds", i)
		}
	}
}

func TestTopLevelProperty(t *testing.T) {
	// Every root either has no parent or a parent absent from the snapshot.
	s := mustSnapshot(t,
		entry(1, "a", -1),
		entry(2, "b", 1),
		entry(3, "c", 7),
		entry(4, "d", 2),
	)
	tree := New(s)

	for _, pid := range tree.Roots() {
		e, ok := s.Lookup(pid)
		if !ok {
			t.Fatalf("root %d not in snapshot", pid)
		}
		if parent, has := e.Parent(); has && s.Contains(parent) {
			t.Errorf("root %d has resolvable parent %d", pid, parent)
		}
	}
}

func TestWalkDepthFirst(t *testing.T) {
	s := mustSnapshot(t,
		entry(1, "root", -1),
		entry(2, "child", 1),
		entry(3, "grandchild", 2),
		entry(4, "sibling", 1),
	)
	tree := New(s)

	type visit struct {
		pid   int32
		depth int
	}
	var visits []visit
	tree.Walk(func(e snapshot.Entry, depth int) bool {
		visits = append(visits, visit{e.PID, depth})
		return true
	})

	want := []visit{{1, 0}, {2, 1}, {3, 2}, {4, 1}}
	if len(visits) != len(want) {
		t.Fatalf("expected %d visits, got %d: %v", len(want), len(visits), visits)
	}
	for i := range want {
		if visits[i] != want[i] {
			t.Errorf("visit %d: expected %v, got %v", i, want[i], visits[i])
		}
	}
}

func TestWalkTerminatesOnCycle(t *testing.T) {
	// A parent cycle between 2 and 3 (possible when sampling races a
	// tree mutation) must not hang the walk. Cycle members have a
	// resolvable parent, so they are not roots and stay unreached.
	s := mustSnapshot(t,
		entry(1, "root", -1),
		entry(2, "a", 3),
		entry(3, "b", 2),
	)
	tree := New(s)

	counts := make(map[int32]int)
	tree.Walk(func(e snapshot.Entry, _ int) bool {
		counts[e.PID]++
		return true
	})

	for pid, n := range counts {
		if n > 1 {
			t.Errorf("pid %d visited %d times", pid, n)
		}
	}
	if counts[1] != 1 {
		t.Errorf("root visited %d times, expected 1", counts[1])
	}
}

func TestSelfParentIsRootAndVisitedOnce(t *testing.T) {
	s := mustSnapshot(t, snapshot.Entry{PID: 9, Name: "self", ParentPID: 9, HasParent: true})
	tree := New(s)

	if len(tree.Roots()) != 1 || tree.Roots()[0] != 9 {
		t.Fatalf("self-parented entry should be a root, got %v", tree.Roots())
	}

	visits := 0
	tree.Walk(func(e snapshot.Entry, _ int) bool {
		visits++
		return true
	})
	if visits != 1 {
		t.Errorf("expected 1 visit, got %d", visits)
	}
}

func TestWalkPrune(t *testing.T) {
	s := mustSnapshot(t,
		entry(1, "root", -1),
		entry(2, "child", 1),
		entry(3, "grandchild", 2),
	)
	tree := New(s)

	var seen []int32
	tree.Walk(func(e snapshot.Entry, _ int) bool {
		seen = append(seen, e.PID)
		return e.PID != 2 // prune below 2
	})

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("expected visits [1 2], got %v", seen)
	}
}
