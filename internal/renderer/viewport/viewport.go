// Package viewport tracks the cursor and scroll window over the
// process table rows.
package viewport

// Viewport keeps a cursor position and the index of the first visible
// row for a list of rowCount rows shown in height screen lines. All
// movement clamps; the cursor is always kept on screen.
type Viewport struct {
	top      int
	cursor   int
	height   int
	rowCount int
}

// New creates a viewport with the given height. Height is clamped to a
// minimum of 1.
func New(height int) *Viewport {
	if height < 1 {
		height = 1
	}
	return &Viewport{height: height}
}

// Resize updates the visible height and re-clamps.
func (v *Viewport) Resize(height int) {
	if height < 1 {
		height = 1
	}
	v.height = height
	v.clamp()
}

// SetRowCount updates the number of rows and re-clamps. The cursor
// stays on the nearest valid row when rows disappear.
func (v *Viewport) SetRowCount(n int) {
	if n < 0 {
		n = 0
	}
	v.rowCount = n
	v.clamp()
}

// Height returns the visible height.
func (v *Viewport) Height() int {
	return v.height
}

// Top returns the index of the first visible row.
func (v *Viewport) Top() int {
	return v.top
}

// Cursor returns the cursor row index, or -1 when there are no rows.
func (v *Viewport) Cursor() int {
	if v.rowCount == 0 {
		return -1
	}
	return v.cursor
}

// MoveBy moves the cursor by delta rows, scrolling as needed.
func (v *Viewport) MoveBy(delta int) {
	v.cursor += delta
	v.clamp()
}

// MoveTo moves the cursor to row index i.
func (v *Viewport) MoveTo(i int) {
	v.cursor = i
	v.clamp()
}

// PageUp moves the cursor up one screen.
func (v *Viewport) PageUp() {
	v.MoveBy(-v.height)
}

// PageDown moves the cursor down one screen.
func (v *Viewport) PageDown() {
	v.MoveBy(v.height)
}

// Home moves the cursor to the first row.
func (v *Viewport) Home() {
	v.MoveTo(0)
}

// End moves the cursor to the last row.
func (v *Viewport) End() {
	v.MoveTo(v.rowCount - 1)
}

// Visible returns the half-open range [start, end) of visible rows.
func (v *Viewport) Visible() (start, end int) {
	start = v.top
	end = v.top + v.height
	if end > v.rowCount {
		end = v.rowCount
	}
	return start, end
}

// IsVisible reports whether row i is on screen.
func (v *Viewport) IsVisible(i int) bool {
	start, end := v.Visible()
	return i >= start && i < end
}

func (v *Viewport) clamp() {
	if v.cursor < 0 {
		v.cursor = 0
	}
	if v.rowCount > 0 && v.cursor > v.rowCount-1 {
		v.cursor = v.rowCount - 1
	}

	// Scroll to keep the cursor on screen.
	if v.cursor < v.top {
		v.top = v.cursor
	}
	if v.cursor >= v.top+v.height {
		v.top = v.cursor - v.height + 1
	}

	// Never leave blank space below when earlier rows could fill it.
	maxTop := v.rowCount - v.height
	if maxTop < 0 {
		maxTop = 0
	}
	if v.top > maxTop {
		v.top = maxTop
	}
	if v.top < 0 {
		v.top = 0
	}
}
