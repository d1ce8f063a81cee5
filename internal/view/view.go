// Package view implements the table view policy: free-text filtering,
// single-key sorting, and expand/collapse tracking over a process
// hierarchy.
package view

import (
	"math"
	"sort"
	"strings"

	"github.com/dshills/procscope/internal/hierarchy"
	"github.com/dshills/procscope/internal/snapshot"
)

// SortKey identifies the active sort column.
type SortKey int

// Sortable columns.
const (
	SortName SortKey = iota
	SortPID
	SortCPU
	SortMemory
	SortDiskRead
	SortDiskWrite
	SortNetRecv
	SortNetSent
	SortGPU
)

// String returns the column label.
func (k SortKey) String() string {
	switch k {
	case SortName:
		return "Name"
	case SortPID:
		return "PID"
	case SortCPU:
		return "CPU %"
	case SortMemory:
		return "Memory"
	case SortDiskRead:
		return "Disk Read"
	case SortDiskWrite:
		return "Disk Write"
	case SortNetRecv:
		return "Net Recv"
	case SortNetSent:
		return "Net Sent"
	case SortGPU:
		return "GPU %"
	default:
		return "Unknown"
	}
}

// Row is one renderable table line: an entry plus its indent depth.
// Depth is always 0 in the flattened (filtered) view.
type Row struct {
	Entry snapshot.Entry
	Depth int
}

// View holds the table's filter, sort, and expand/collapse state. It is
// owned by the presentation flow and is not safe for concurrent use.
type View struct {
	filter   string
	key      SortKey
	desc     bool
	expanded map[int32]bool
}

// New creates a view sorted by CPU descending with no filter.
func New() *View {
	return &View{
		key:      SortCPU,
		desc:     true,
		expanded: make(map[int32]bool),
	}
}

// SetFilter sets the case-insensitive substring filter on display
// names. An empty string clears it.
func (v *View) SetFilter(filter string) {
	v.filter = filter
}

// Filter returns the active filter text.
func (v *View) Filter() string {
	return v.filter
}

// Filtered reports whether a filter is active.
func (v *View) Filtered() bool {
	return v.filter != ""
}

// ToggleSort activates key ascending, or flips the direction when key
// is already active.
func (v *View) ToggleSort(key SortKey) {
	if v.key == key {
		v.desc = !v.desc
		return
	}
	v.key = key
	v.desc = false
}

// Sort returns the active sort key and whether it is descending.
func (v *View) Sort() (SortKey, bool) {
	return v.key, v.desc
}

// ToggleExpand flips the expand state of pid.
func (v *View) ToggleExpand(pid int32) {
	if v.expanded[pid] {
		delete(v.expanded, pid)
		return
	}
	v.expanded[pid] = true
}

// IsExpanded reports whether pid's children are revealed.
func (v *View) IsExpanded(pid int32) bool {
	return v.expanded[pid]
}

// CollapseAll clears all expand state.
func (v *View) CollapseAll() {
	v.expanded = make(map[int32]bool)
}

// Rows produces the renderable rows for the tree.
//
// With a filter active the hierarchy is flattened: every matching entry
// appears in one sorted list regardless of whether its parent matched,
// so a visible child never disappears because its parent was filtered
// out. Without a filter, top-level entries are rendered at the root and
// children are revealed per expand state; sibling lists are sorted with
// the same comparator and traversal carries a visited set so cyclic
// parent links cannot loop.
func (v *View) Rows(tree *hierarchy.Tree) []Row {
	if tree == nil {
		return nil
	}
	snap := tree.Snapshot()

	if v.filter != "" {
		needle := strings.ToLower(v.filter)
		var matched []snapshot.Entry
		for _, e := range snap.Entries() {
			if strings.Contains(strings.ToLower(e.Name), needle) {
				matched = append(matched, e)
			}
		}
		v.sortEntries(matched)
		rows := make([]Row, len(matched))
		for i, e := range matched {
			rows[i] = Row{Entry: e}
		}
		return rows
	}

	var rows []Row
	visited := make(map[int32]bool, snap.Len())
	v.appendLevel(tree, tree.Roots(), 0, visited, &rows)
	return rows
}

func (v *View) appendLevel(tree *hierarchy.Tree, pids []int32, depth int, visited map[int32]bool, rows *[]Row) {
	snap := tree.Snapshot()

	entries := make([]snapshot.Entry, 0, len(pids))
	for _, pid := range pids {
		if visited[pid] {
			continue
		}
		visited[pid] = true
		if e, ok := snap.Lookup(pid); ok {
			entries = append(entries, e)
		}
	}
	v.sortEntries(entries)

	for _, e := range entries {
		*rows = append(*rows, Row{Entry: e, Depth: depth})
		if v.expanded[e.PID] {
			v.appendLevel(tree, tree.Children(e.PID), depth+1, visited, rows)
		}
	}
}

// sortEntries sorts in place by the active key. Entries with an
// undefined value for the key order after all defined values regardless
// of direction; ties keep encounter order.
func (v *View) sortEntries(entries []snapshot.Entry) {
	if v.key == SortName {
		sort.SliceStable(entries, func(i, j int) bool {
			a := strings.ToLower(entries[i].Name)
			b := strings.ToLower(entries[j].Name)
			if a == b {
				return false
			}
			if v.desc {
				return a > b
			}
			return a < b
		})
		return
	}

	sort.SliceStable(entries, func(i, j int) bool {
		av, aok := keyValue(entries[i], v.key)
		bv, bok := keyValue(entries[j], v.key)
		if aok != bok {
			return aok // missing sorts last in both directions
		}
		if !aok || av == bv {
			return false
		}
		if v.desc {
			return av > bv
		}
		return av < bv
	})
}

// keyValue extracts the sort value for a numeric column. NaN counts as
// undefined.
func keyValue(e snapshot.Entry, key SortKey) (float64, bool) {
	var val float64
	switch key {
	case SortPID:
		val = float64(e.PID)
	case SortCPU:
		val = e.CPUPercent
	case SortMemory:
		val = float64(e.MemoryRSS)
	case SortDiskRead:
		val = float64(e.DiskReadBytes)
	case SortDiskWrite:
		val = float64(e.DiskWriteBytes)
	case SortNetRecv:
		val = float64(e.NetRecvBytes)
	case SortNetSent:
		val = float64(e.NetSentBytes)
	case SortGPU:
		val = e.GPUPercent
	default:
		return 0, false
	}
	if math.IsNaN(val) {
		return 0, false
	}
	return val, true
}
