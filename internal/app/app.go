package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dshills/procscope/internal/config"
	"github.com/dshills/procscope/internal/monitor"
	"github.com/dshills/procscope/internal/renderer"
	"github.com/dshills/procscope/internal/renderer/backend"
	"github.com/dshills/procscope/internal/renderer/viewport"
	"github.com/dshills/procscope/internal/selection"
	"github.com/dshills/procscope/internal/snapshot"
	"github.com/dshills/procscope/internal/timeline"
	"github.com/dshills/procscope/internal/view"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// StatePath is the path of the persisted UI state. Empty uses the
	// user config directory.
	StatePath string

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string

	// Interval overrides the configured sampling period when positive.
	Interval time.Duration
}

// Application coordinates the monitor session, the table/chart view
// state, and the terminal.
type Application struct {
	opts    Options
	cfg     config.Config
	logger  *Logger
	logFile *os.File

	session *monitor.Session
	table   *view.View
	palette *selection.Palette

	be   backend.Backend
	rend *renderer.Renderer
	vp   *viewport.Viewport

	// UI state owned by the run loop.
	rows        []view.Row
	chartMetric timeline.Metric
	filterText  []rune
	filterInput bool
	confirming  bool
	confirmPID  int32
	confirmName string

	cancel       context.CancelFunc
	backendUp    bool
	shutdownOnce sync.Once
}

// New creates an application from options. SetBackend and Run complete
// the startup.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}
	if opts.Interval > 0 {
		cfg.Interval = opts.Interval
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	app := &Application{
		opts:  opts,
		cfg:   cfg,
		table: view.New(),
	}

	logOut := os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, &InitError{Component: "log file", Err: err}
		}
		app.logFile = f
		logOut = f
	}
	app.logger = NewLogger(LoggerConfig{
		Level:  ParseLogLevel(cfg.LogLevel),
		Output: logOut,
	})

	app.palette = selection.DefaultPalette()
	if len(cfg.Palette) > 0 {
		p, err := selection.NewPalette(cfg.Palette)
		if err != nil {
			return nil, &InitError{Component: "palette", Err: err}
		}
		app.palette = p
	}

	session, err := monitor.NewSession(monitor.Options{
		Source:     snapshot.NewSystemSource(),
		Terminator: snapshot.NewSystemTerminator(),
		Interval:   cfg.Interval,
		Window:     cfg.Window,
		TopK:       cfg.TopK,
		Logger:     app.logger.WithComponent("monitor"),
	})
	if err != nil {
		return nil, &InitError{Component: "monitor", Err: err}
	}
	app.session = session

	app.restoreUIState()

	return app, nil
}

// SetBackend sets the terminal backend. Must be called before Run.
func (app *Application) SetBackend(be backend.Backend) {
	app.be = be
}

// Session returns the monitor session.
func (app *Application) Session() *monitor.Session {
	return app.session
}

// Run starts sampling and processes input until quit or teardown.
// A normal quit returns ErrQuit.
func (app *Application) Run() error {
	if app.be == nil {
		return ErrNoBackend
	}
	if err := app.be.Init(); err != nil {
		return &InitError{Component: "terminal", Err: err}
	}
	app.backendUp = true

	w, h := app.be.Size()
	app.rend = renderer.New(app.be, app.palette)
	app.rend.Resize(w, h)
	app.vp = viewport.New(h)

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel

	go app.session.Run(ctx)

	events := make(chan backend.Event)
	go func() {
		for {
			ev := app.be.PollEvent()
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	app.logger.Info("monitoring every %v, window %d", app.cfg.Interval, app.cfg.Window)
	app.draw()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-app.session.Updates():
			app.draw()
		case ev := <-events:
			switch ev.Type {
			case backend.EventResize:
				app.rend.Resize(ev.Width, ev.Height)
				app.draw()
			case backend.EventKey:
				if err := app.handleKey(ev); err != nil {
					return err
				}
				app.draw()
			case backend.EventInterrupt:
				select {
				case <-ctx.Done():
					return nil
				default:
				}
			}
		}
	}
}

// Shutdown tears everything down. Safe to call multiple times and on
// all exit paths.
func (app *Application) Shutdown() {
	app.shutdownOnce.Do(func() {
		if app.cancel != nil {
			app.cancel()
		}
		app.session.Close()
		if app.backendUp {
			app.be.Fini()
		}
		app.saveUIState()
		if app.logFile != nil {
			_ = app.logFile.Close()
		}
	})
}

// draw recomputes the rows and renders one frame.
func (app *Application) draw() {
	app.rows = app.table.Rows(app.session.Tree())

	key, desc := app.table.Sort()
	frame := &renderer.Frame{
		Rows:        app.rows,
		SortKey:     key,
		SortDesc:    desc,
		Filter:      string(app.filterText),
		FilterInput: app.filterInput,
		Stale:       app.session.Stale(),
		Store:       app.session.Store(),
		Selection:   app.session.Selection(),
		ChartMetric: app.chartMetric,
		ConfirmPID:  app.confirmPID,
		ConfirmName: app.confirmName,
		Confirming:  app.confirming,
	}

	app.vp.Resize(app.rend.TableHeight(frame))
	app.vp.SetRowCount(len(app.rows))
	frame.Cursor = app.vp.Cursor()
	frame.Top = app.vp.Top()

	app.rend.Draw(frame)
}

// handleKey routes one key event through the modal UI states.
func (app *Application) handleKey(ev backend.Event) error {
	if app.confirming {
		app.handleConfirmKey(ev)
		return nil
	}
	if app.filterInput {
		app.handleFilterKey(ev)
		return nil
	}

	switch ev.Key {
	case backend.KeyCtrlC:
		return ErrQuit
	case backend.KeyUp:
		app.vp.MoveBy(-1)
	case backend.KeyDown:
		app.vp.MoveBy(1)
	case backend.KeyPageUp:
		app.vp.PageUp()
	case backend.KeyPageDown:
		app.vp.PageDown()
	case backend.KeyHome:
		app.vp.Home()
	case backend.KeyEnd:
		app.vp.End()
	case backend.KeyRight, backend.KeyEnter:
		app.expandCursor()
	case backend.KeyLeft:
		app.collapseCursor()
	case backend.KeyTab:
		app.chartMetric = timeline.Metric((int(app.chartMetric) + 1) % timeline.MetricCount)
	case backend.KeyRune:
		return app.handleRune(ev.Rune)
	}
	return nil
}

func (app *Application) handleRune(r rune) error {
	switch r {
	case 'q':
		return ErrQuit
	case '/':
		app.filterInput = true
		app.filterText = nil
		app.table.SetFilter("")
	case ' ':
		if e, ok := app.cursorEntry(); ok {
			app.session.Selection().Toggle(e.PID)
		}
	case 'k':
		if e, ok := app.cursorEntry(); ok {
			app.confirming = true
			app.confirmPID = e.PID
			app.confirmName = e.Name
		}
	case 'n':
		app.table.ToggleSort(view.SortName)
	case 'p':
		app.table.ToggleSort(view.SortPID)
	case 'c':
		app.table.ToggleSort(view.SortCPU)
	case 'm':
		app.table.ToggleSort(view.SortMemory)
	case 'r':
		app.table.ToggleSort(view.SortDiskRead)
	case 'w':
		app.table.ToggleSort(view.SortDiskWrite)
	case 'i':
		app.table.ToggleSort(view.SortNetRecv)
	case 'o':
		app.table.ToggleSort(view.SortNetSent)
	case 'g':
		app.table.ToggleSort(view.SortGPU)
	}
	return nil
}

func (app *Application) handleConfirmKey(ev backend.Event) {
	if ev.Key == backend.KeyRune && (ev.Rune == 'y' || ev.Rune == 'Y') {
		pid := app.confirmPID
		if _, err := app.session.Terminate(pid); err != nil {
			app.logger.Warn("terminate failed: %v", err)
		}
	}
	app.confirming = false
	app.confirmPID = 0
	app.confirmName = ""
}

func (app *Application) handleFilterKey(ev backend.Event) {
	switch ev.Key {
	case backend.KeyEscape:
		app.filterInput = false
		app.filterText = nil
		app.table.SetFilter("")
	case backend.KeyEnter:
		app.filterInput = false
	case backend.KeyBackspace:
		if len(app.filterText) > 0 {
			app.filterText = app.filterText[:len(app.filterText)-1]
			app.table.SetFilter(string(app.filterText))
		}
	case backend.KeyRune:
		app.filterText = append(app.filterText, ev.Rune)
		app.table.SetFilter(string(app.filterText))
	}
}

// expandCursor reveals the cursor row's children; expansion is keyed by
// PID and meaningless while the filtered view is flat.
func (app *Application) expandCursor() {
	if app.table.Filtered() {
		return
	}
	e, ok := app.cursorEntry()
	if !ok || !e.HasChildren {
		return
	}
	if !app.table.IsExpanded(e.PID) {
		app.table.ToggleExpand(e.PID)
	}
}

func (app *Application) collapseCursor() {
	if app.table.Filtered() {
		return
	}
	e, ok := app.cursorEntry()
	if ok && app.table.IsExpanded(e.PID) {
		app.table.ToggleExpand(e.PID)
	}
}

func (app *Application) cursorEntry() (snapshot.Entry, bool) {
	i := app.vp.Cursor()
	if i < 0 || i >= len(app.rows) {
		return snapshot.Entry{}, false
	}
	return app.rows[i].Entry, true
}

// statePath resolves where UI state is persisted.
func (app *Application) statePath() string {
	if app.opts.StatePath != "" {
		return app.opts.StatePath
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "procscope", "state.json")
}

func (app *Application) restoreUIState() {
	path := app.statePath()
	if path == "" {
		return
	}
	st, ok := config.LoadState(path)
	if !ok {
		return
	}
	if key, found := sortKeyFromName(st.SortKey); found {
		app.table.ToggleSort(key)
		if st.SortDesc {
			app.table.ToggleSort(key)
		}
	}
}

func (app *Application) saveUIState() {
	path := app.statePath()
	if path == "" {
		return
	}
	key, desc := app.table.Sort()
	err := config.SaveState(path, config.UIState{SortKey: key.String(), SortDesc: desc})
	if err != nil {
		app.logger.Warn("save ui state: %v", err)
	}
}

func sortKeyFromName(name string) (view.SortKey, bool) {
	for k := view.SortName; k <= view.SortGPU; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// Logger returns the application logger.
func (app *Application) Logger() *Logger {
	return app.logger
}
