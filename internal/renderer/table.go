package renderer

import (
	"fmt"
	"math"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/procscope/internal/view"
)

// Column layout: name (flexible) followed by fixed-width metrics.
const (
	colPID   = 8
	colPct   = 7
	colBytes = 11

	fixedCols = colPID + colPct + colBytes*5 + colPct + 8 // separators
	minName   = 16
)

// headerLine builds the column header, marking the active sort column.
func headerLine(key view.SortKey, desc bool, width int) string {
	mark := func(k view.SortKey, label string) string {
		if k != key {
			return label
		}
		if desc {
			return label + "▼"
		}
		return label + "▲"
	}

	nameW := nameWidth(width)
	var b strings.Builder
	b.WriteString(padRight(mark(view.SortName, "Name"), nameW, ' '))
	b.WriteString(padLeft(mark(view.SortPID, "PID"), colPID))
	b.WriteString(padLeft(mark(view.SortCPU, "CPU%"), colPct))
	b.WriteString(padLeft(mark(view.SortMemory, "Mem"), colBytes))
	b.WriteString(padLeft(mark(view.SortDiskRead, "DskR"), colBytes))
	b.WriteString(padLeft(mark(view.SortDiskWrite, "DskW"), colBytes))
	b.WriteString(padLeft(mark(view.SortNetRecv, "NetR"), colBytes))
	b.WriteString(padLeft(mark(view.SortNetSent, "NetS"), colBytes))
	b.WriteString(padLeft(mark(view.SortGPU, "GPU%"), colPct))
	return b.String()
}

// tableLine renders one process row.
func tableLine(row view.Row, width int) string {
	e := row.Entry

	indent := strings.Repeat("  ", row.Depth)
	marker := "  "
	if e.HasChildren {
		marker = "▸ "
	}
	name := indent + marker + e.Name

	var b strings.Builder
	b.WriteString(padRight(truncate(name, nameWidth(width)), nameWidth(width), ' '))
	b.WriteString(padLeft(fmt.Sprintf("%d", e.PID), colPID))
	b.WriteString(padLeft(formatPercent(e.CPUPercent), colPct))
	b.WriteString(padLeft(humanBytes(e.MemoryRSS), colBytes))
	b.WriteString(padLeft(humanBytes(e.DiskReadBytes), colBytes))
	b.WriteString(padLeft(humanBytes(e.DiskWriteBytes), colBytes))
	b.WriteString(padLeft(humanBytes(e.NetRecvBytes), colBytes))
	b.WriteString(padLeft(humanBytes(e.NetSentBytes), colBytes))
	b.WriteString(padLeft(formatPercent(e.GPUPercent), colPct))
	return b.String()
}

func nameWidth(width int) int {
	w := width - fixedCols
	if w < minName {
		w = minName
	}
	return w
}

// formatPercent renders a percentage; NaN shows as a dash.
func formatPercent(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.1f", v)
}

// humanBytes renders a byte count with a binary unit suffix.
func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// truncate cuts s to at most width screen cells, appending an ellipsis
// when something was cut.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}

	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if used+w > width-1 {
			break
		}
		b.WriteString(g.Str())
		used += w
	}
	b.WriteString("…")
	return b.String()
}

// padRight pads s with fill to exactly width cells, truncating first if
// needed.
func padRight(s string, width int, fill rune) string {
	s = truncate(s, width)
	for uniseg.StringWidth(s) < width {
		s += string(fill)
	}
	return s
}

// padLeft right-aligns s in width cells with a leading space separator.
func padLeft(s string, width int) string {
	s = truncate(s, width-1)
	pad := width - uniseg.StringWidth(s)
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

// runeWidth returns the screen width of a single rune.
func runeWidth(r rune) int {
	w := uniseg.StringWidth(string(r))
	if w < 1 {
		w = 1
	}
	return w
}
