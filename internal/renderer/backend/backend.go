// Package backend abstracts the terminal so the renderer can be tested
// against an in-memory screen.
package backend

// Key identifies a non-rune key press.
type Key int

// Keys the application reacts to.
const (
	KeyRune Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyTab
	KeyCtrlC
)

// EventType discriminates backend events.
type EventType int

// Event types.
const (
	EventNone EventType = iota
	EventKey
	EventResize
	EventInterrupt
)

// Event is one input event from the terminal.
type Event struct {
	Type EventType

	// Key and Rune are set for EventKey. Rune is meaningful when Key
	// is KeyRune.
	Key  Key
	Rune rune

	// Width and Height are set for EventResize.
	Width  int
	Height int
}

// Style is a terminal cell style with true-color foreground and
// background.
type Style struct {
	FG      RGB
	BG      RGB
	Bold    bool
	Reverse bool

	// DefaultFG/DefaultBG select the terminal's default colors
	// instead of FG/BG.
	DefaultFG bool
	DefaultBG bool
}

// RGB is a true-color value.
type RGB struct {
	R, G, B uint8
}

// StyleDefault uses the terminal's default colors.
var StyleDefault = Style{DefaultFG: true, DefaultBG: true}

// Backend is a drawable terminal surface plus its input event stream.
type Backend interface {
	Init() error
	Fini()
	Size() (width, height int)
	SetCell(x, y int, r rune, style Style)
	Clear()
	Show()
	PollEvent() Event

	// Interrupt unblocks a pending PollEvent with EventInterrupt.
	Interrupt()
}
