package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Terminal implements Backend using tcell for terminal output.
type Terminal struct {
	screen tcell.Screen
	mu     sync.Mutex
}

// NewTerminal creates a new terminal backend.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.HideCursor()
	return nil
}

func (t *Terminal) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

func (t *Terminal) SetCell(x, y int, r rune, style Style) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.SetContent(x, y, r, nil, convertStyle(style))
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

// PollEvent blocks for the next input event. It must be called from a
// single goroutine.
func (t *Terminal) PollEvent() Event {
	for {
		ev := t.screen.PollEvent()
		switch tev := ev.(type) {
		case *tcell.EventKey:
			return convertKeyEvent(tev)
		case *tcell.EventResize:
			w, h := tev.Size()
			return Event{Type: EventResize, Width: w, Height: h}
		case *tcell.EventInterrupt:
			return Event{Type: EventInterrupt}
		case nil:
			// Screen finalized.
			return Event{Type: EventInterrupt}
		default:
			// Ignore mouse/paste/focus events.
		}
	}
}

func (t *Terminal) Interrupt() {
	t.mu.Lock()
	defer t.mu.Unlock()

	_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func convertKeyEvent(ev *tcell.EventKey) Event {
	switch ev.Key() {
	case tcell.KeyUp:
		return Event{Type: EventKey, Key: KeyUp}
	case tcell.KeyDown:
		return Event{Type: EventKey, Key: KeyDown}
	case tcell.KeyLeft:
		return Event{Type: EventKey, Key: KeyLeft}
	case tcell.KeyRight:
		return Event{Type: EventKey, Key: KeyRight}
	case tcell.KeyPgUp:
		return Event{Type: EventKey, Key: KeyPageUp}
	case tcell.KeyPgDn:
		return Event{Type: EventKey, Key: KeyPageDown}
	case tcell.KeyHome:
		return Event{Type: EventKey, Key: KeyHome}
	case tcell.KeyEnd:
		return Event{Type: EventKey, Key: KeyEnd}
	case tcell.KeyEnter:
		return Event{Type: EventKey, Key: KeyEnter}
	case tcell.KeyEscape:
		return Event{Type: EventKey, Key: KeyEscape}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return Event{Type: EventKey, Key: KeyBackspace}
	case tcell.KeyTab:
		return Event{Type: EventKey, Key: KeyTab}
	case tcell.KeyCtrlC:
		return Event{Type: EventKey, Key: KeyCtrlC}
	case tcell.KeyRune:
		return Event{Type: EventKey, Key: KeyRune, Rune: ev.Rune()}
	default:
		return Event{Type: EventNone}
	}
}

func convertStyle(s Style) tcell.Style {
	st := tcell.StyleDefault
	if !s.DefaultFG {
		st = st.Foreground(tcell.NewRGBColor(int32(s.FG.R), int32(s.FG.G), int32(s.FG.B)))
	}
	if !s.DefaultBG {
		st = st.Background(tcell.NewRGBColor(int32(s.BG.R), int32(s.BG.G), int32(s.BG.B)))
	}
	if s.Bold {
		st = st.Bold(true)
	}
	if s.Reverse {
		st = st.Reverse(true)
	}
	return st
}
