package backend

import (
	"strings"
	"sync"
)

// Memory is an in-memory Backend for tests. Events are fed through
// Send and surface via PollEvent.
type Memory struct {
	mu     sync.Mutex
	width  int
	height int
	cells  [][]rune
	events chan Event
	shown  int
}

// NewMemory creates a memory backend with the given size.
func NewMemory(width, height int) *Memory {
	m := &Memory{
		width:  width,
		height: height,
		events: make(chan Event, 16),
	}
	m.reset()
	return m
}

func (m *Memory) reset() {
	m.cells = make([][]rune, m.height)
	for y := range m.cells {
		m.cells[y] = make([]rune, m.width)
		for x := range m.cells[y] {
			m.cells[y][x] = ' '
		}
	}
}

func (m *Memory) Init() error { return nil }
func (m *Memory) Fini()       {}

func (m *Memory) Size() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, m.height
}

func (m *Memory) SetCell(x, y int, r rune, _ Style) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if y < 0 || y >= m.height || x < 0 || x >= m.width {
		return
	}
	m.cells[y][x] = r
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

func (m *Memory) Show() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shown++
}

func (m *Memory) PollEvent() Event {
	return <-m.events
}

func (m *Memory) Interrupt() {
	m.events <- Event{Type: EventInterrupt}
}

// Send queues an input event.
func (m *Memory) Send(ev Event) {
	m.events <- ev
}

// Line returns the rendered text of row y with trailing spaces trimmed.
func (m *Memory) Line(y int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if y < 0 || y >= m.height {
		return ""
	}
	return strings.TrimRight(string(m.cells[y]), " ")
}

// ShowCount returns how many times Show has been called.
func (m *Memory) ShowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shown
}
