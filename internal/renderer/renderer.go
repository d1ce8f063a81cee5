// Package renderer draws the process table, the metric chart, and the
// status line onto a terminal backend.
package renderer

import (
	"fmt"

	"github.com/dshills/procscope/internal/renderer/backend"
	"github.com/dshills/procscope/internal/selection"
	"github.com/dshills/procscope/internal/timeline"
	"github.com/dshills/procscope/internal/view"
)

// Frame is everything the renderer needs for one draw.
type Frame struct {
	// Rows are the table rows in display order.
	Rows []view.Row

	// Cursor and Top come from the viewport.
	Cursor int
	Top    int

	// SortKey and SortDesc describe the active sort.
	SortKey  view.SortKey
	SortDesc bool

	// Filter is the active filter text; FilterInput is true while the
	// user is typing it.
	Filter      string
	FilterInput bool

	// Stale is true when the latest tick failed to ingest.
	Stale bool

	// Store supplies chart series; Selection the charted PIDs.
	Store     *timeline.Store
	Selection *selection.State

	// ChartMetric is the metric currently charted.
	ChartMetric timeline.Metric

	// ConfirmPID, when set, shows the kill confirmation prompt.
	ConfirmPID  int32
	ConfirmName string
	Confirming  bool
}

// chartMaxSeries caps how many chart lines are drawn.
const chartMaxSeries = 7

// Renderer draws frames onto a backend.
type Renderer struct {
	be      backend.Backend
	palette *selection.Palette

	width  int
	height int
}

// New creates a renderer for the given backend and palette.
func New(be backend.Backend, palette *selection.Palette) *Renderer {
	w, h := be.Size()
	return &Renderer{be: be, palette: palette, width: w, height: h}
}

// Resize updates the renderer's notion of the screen size.
func (r *Renderer) Resize(width, height int) {
	r.width = width
	r.height = height
}

// TableHeight returns how many table rows fit with the current layout;
// the viewport is sized with this.
func (r *Renderer) TableHeight(frame *Frame) int {
	h := r.height - 2 - r.chartLines(frame) // header + status
	if h < 1 {
		h = 1
	}
	return h
}

func (r *Renderer) chartLines(frame *Frame) int {
	if frame.Selection == nil || frame.Selection.Len() == 0 {
		return 0
	}
	n := frame.Selection.Len()
	if n > chartMaxSeries {
		n = chartMaxSeries
	}
	return n + 1 // title line
}

// Draw renders one frame.
func (r *Renderer) Draw(frame *Frame) {
	r.be.Clear()

	y := 0
	r.drawHeader(y, frame)
	y++

	tableH := r.TableHeight(frame)
	r.drawTable(y, tableH, frame)
	y += tableH

	if lines := r.chartLines(frame); lines > 0 {
		r.drawChart(y, frame)
		y += lines
	}

	r.drawStatus(r.height-1, frame)

	r.be.Show()
}

func (r *Renderer) drawHeader(y int, frame *Frame) {
	line := headerLine(frame.SortKey, frame.SortDesc, r.width)
	r.putLine(0, y, line, backend.Style{Reverse: true, DefaultFG: true, DefaultBG: true})
}

func (r *Renderer) drawTable(y, height int, frame *Frame) {
	for i := 0; i < height; i++ {
		idx := frame.Top + i
		if idx >= len(frame.Rows) {
			break
		}
		row := frame.Rows[idx]

		style := backend.StyleDefault
		if idx == frame.Cursor {
			style = backend.Style{Reverse: true, DefaultFG: true, DefaultBG: true}
		} else if frame.Selection != nil && frame.Selection.IsSelected(row.Entry.PID) {
			style = r.seriesStyle(row.Entry.PID, frame)
		}

		r.putLine(0, y+i, tableLine(row, r.width), style)
	}
}

func (r *Renderer) drawChart(y int, frame *Frame) {
	title := fmt.Sprintf("── %s ", frame.ChartMetric)
	r.putLine(0, y, padRight(title, r.width, '─'), backend.StyleDefault)
	y++

	legendW := 20
	chartW := r.width - legendW - 1
	if chartW < 1 {
		chartW = 1
	}

	selected := frame.Selection.Selected()
	if len(selected) > chartMaxSeries {
		selected = selected[:chartMaxSeries]
	}

	for i, pid := range selected {
		name, _ := frame.Store.Name(pid)
		legend := truncate(fmt.Sprintf("%7d %s", pid, name), legendW)

		style := r.seriesStyle(pid, frame)
		r.putLine(0, y+i, padRight(legend, legendW, ' '), style)

		samples, ok := frame.Store.Series(pid, frame.ChartMetric)
		if !ok {
			continue
		}
		r.putLine(legendW+1, y+i, sparkline(samples, chartW), style)
	}
}

func (r *Renderer) drawStatus(y int, frame *Frame) {
	var line string
	switch {
	case frame.Confirming:
		line = fmt.Sprintf("kill %d (%s)? y/n", frame.ConfirmPID, frame.ConfirmName)
	case frame.FilterInput:
		line = "/" + frame.Filter + "▏"
	case frame.Filter != "":
		line = fmt.Sprintf("/%s  [esc clears]  %s", frame.Filter, keyHints)
	default:
		line = keyHints
	}
	if frame.Stale {
		line = "[stale] " + line
	}
	r.putLine(0, y, truncate(line, r.width), backend.StyleDefault)
}

const keyHints = "q quit  / filter  ↑↓ move  → expand  space chart  tab metric  k kill  c/m/n sort"

func (r *Renderer) seriesStyle(pid int32, frame *Frame) backend.Style {
	idx, ok := frame.Selection.Index(pid)
	if !ok {
		return backend.StyleDefault
	}
	c := r.palette.ColorAt(idx, int(frame.ChartMetric))
	cr, cg, cb := c.RGB255()
	return backend.Style{
		FG:        backend.RGB{R: cr, G: cg, B: cb},
		DefaultBG: true,
	}
}

// putLine writes s at (x, y), clipping to the screen width.
func (r *Renderer) putLine(x, y int, s string, style backend.Style) {
	col := x
	for _, ch := range s {
		if col >= r.width {
			return
		}
		r.be.SetCell(col, y, ch, style)
		col += runeWidth(ch)
	}
}
