// Package hierarchy builds a parent/child index over one process
// snapshot. The index is pure: the same snapshot always produces the
// same tree, and building it has no side effects.
package hierarchy

import "github.com/dshills/procscope/internal/snapshot"

// Tree indexes one snapshot as an ordered root list plus a child lookup.
// It never materializes a recursive structure; traversal goes through
// Children (or Walk, which carries the required visited set) so cycles
// in OS-reported parent links cannot hang a consumer.
type Tree struct {
	snap     *snapshot.Snapshot
	roots    []int32
	children map[int32][]int32
}

// New builds the index for snap. An entry is a root when it reports no
// parent or its parent PID does not appear in the same snapshot, which
// covers dangling references to processes the sampler cannot see.
// Children keep the relative order the snapshot provided them in.
func New(snap *snapshot.Snapshot) *Tree {
	t := &Tree{
		snap:     snap,
		children: make(map[int32][]int32),
	}

	for _, e := range snap.Entries() {
		parent, ok := e.Parent()
		if !ok || !snap.Contains(parent) || parent == e.PID {
			t.roots = append(t.roots, e.PID)
			continue
		}
		t.children[parent] = append(t.children[parent], e.PID)
	}

	return t
}

// Snapshot returns the snapshot the tree was built from.
func (t *Tree) Snapshot() *snapshot.Snapshot {
	return t.snap
}

// Roots returns the PIDs of all top-level entries in snapshot order.
// The returned slice is shared; callers must not modify it.
func (t *Tree) Roots() []int32 {
	return t.roots
}

// Children returns the direct child PIDs of pid in snapshot order, or
// nil if it has none. The returned slice is shared.
func (t *Tree) Children(pid int32) []int32 {
	return t.children[pid]
}

// Walk visits every entry reachable from the roots in depth-first
// order, calling fn with the entry and its depth. It tracks visited
// PIDs and refuses to revisit one, so malformed parent links that form
// a cycle terminate instead of recursing forever. Returning false from
// fn prunes the subtree below that entry.
func (t *Tree) Walk(fn func(e snapshot.Entry, depth int) bool) {
	visited := make(map[int32]bool, t.snap.Len())
	for _, pid := range t.roots {
		t.walk(pid, 0, visited, fn)
	}
}

func (t *Tree) walk(pid int32, depth int, visited map[int32]bool, fn func(e snapshot.Entry, depth int) bool) {
	if visited[pid] {
		return
	}
	visited[pid] = true

	e, ok := t.snap.Lookup(pid)
	if !ok {
		return
	}
	if !fn(e, depth) {
		return
	}
	for _, child := range t.children[pid] {
		t.walk(child, depth+1, visited, fn)
	}
}
