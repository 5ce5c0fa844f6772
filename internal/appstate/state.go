// Package appstate runs the editor window: shiny event handling, the
// background paint loop and shortcut dispatch into an editor session.
package appstate

import (
	"context"
	"fmt"
	"image"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/emotecrop/internal/drag"
	"github.com/example/emotecrop/internal/editor"
	"github.com/example/emotecrop/internal/render"
	"github.com/example/emotecrop/internal/theme"
	"github.com/example/emotecrop/internal/transform"
	"github.com/example/emotecrop/internal/view"
)

const (
	defaultWidth    = 1024
	defaultHeight   = 768
	messageDuration = 2 * time.Second
)

// AppState drives one editor session in a window.
type AppState struct {
	Editor *editor.Editor
	Theme  *theme.Theme
	Title  string

	mu          sync.Mutex
	sendControl func(controlEvent)

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithTheme sets the window colors.
func WithTheme(th *theme.Theme) Option { return func(a *AppState) { a.Theme = th } }

// WithTitle sets the window title.
func WithTitle(title string) Option { return func(a *AppState) { a.Title = title } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState for ed.
func New(ed *editor.Editor, opts ...Option) *AppState {
	a := &AppState{Editor: ed, Title: "emotecrop"}
	for _, o := range opts {
		o(a)
	}
	if a.Theme == nil {
		a.Theme = theme.Default()
	}
	return a
}

// controlEvent carries requests from other goroutines into the event loop.
type controlEvent struct {
	Command string
	Message string
}

// Execute queues command for the event loop. It is safe to call from any
// goroutine, for example a global hotkey listener.
func (a *AppState) Execute(command string) { a.send(controlEvent{Command: command}) }

// ShowMessage displays msg over the canvas for a moment.
func (a *AppState) ShowMessage(msg string) { a.send(controlEvent{Message: msg}) }

// ExportDone reports an asynchronous export outcome in the window.
func (a *AppState) ExportDone(res render.Result, err error) {
	if err != nil {
		a.ShowMessage(fmt.Sprintf("export failed: %v", err))
		return
	}
	a.ShowMessage(fmt.Sprintf("exported %d images", len(res.Paths)))
}

func (a *AppState) send(ev controlEvent) {
	a.mu.Lock()
	fn := a.sendControl
	a.mu.Unlock()
	if fn == nil {
		log.Printf("window not running, dropping %+v", ev)
		return
	}
	fn(ev)
}

func (a *AppState) setControlSender(fn func(controlEvent)) {
	a.mu.Lock()
	a.sendControl = fn
	a.mu.Unlock()
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		a.setControlSender(nil)
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

// previewSizes is every export size once, smallest first.
func previewSizes(presets []render.Preset) []int {
	seen := map[int]bool{}
	var out []int
	for _, p := range presets {
		for _, s := range p.Sizes {
			if s > 0 && !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	sort.Ints(out)
	return out
}

func statusLine(ed *editor.Editor) string {
	st := ed.State()
	if !ed.Loaded() {
		return fmt.Sprintf("no image  zoom %.0f%%", st.Scale()*100)
	}
	w, h := st.SourceSize()
	c := st.Crop()
	return fmt.Sprintf("%s  %dx%d  crop %.0fx%.0f at %.0f,%.0f  aspect %s  rot %.0f  zoom %.0f%%",
		ed.FileName(), w, h, c.Width, c.Height, c.X, c.Y, st.Lock(), st.Rotation(), st.Scale()*100)
}

func (a *AppState) Main(s screen.Screen) {
	ed := a.Editor
	th := a.Theme

	width, height := defaultWidth, defaultHeight
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: a.Title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()

	a.setControlSender(func(ev controlEvent) { w.Send(ev) })

	layout := ComputeLayout(width, height)
	ed.SetViewport(layout.Viewport())

	version := 0
	unsubscribe := ed.Subscribe(func(c transform.Change) {
		if c.Kind.ContentChanged() {
			version++
		}
		w.Send(paint.Event{})
	})
	defer unsubscribe()

	var message string
	var messageUntil time.Time
	showMessage := func(msg string) {
		message = msg
		messageUntil = time.Now().Add(messageDuration)
		log.Print(msg)
	}

	run := func(command string) {
		if err := ed.Execute(command); err != nil {
			showMessage(err.Error())
		}
		w.Send(paint.Event{})
	}

	buttons := toolbarButtons(th, run)
	layoutButtons(buttons, layout.Toolbar)
	hover := -1
	fitted := false

	ctrl := drag.NewController(ed.State())
	ctrl.OnRelease = func(drag.Handle) { ed.Checkpoint() }
	pan := drag.NewPan(ed.State())

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		p := &painter{}
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			p.drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	stopPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	canvasPoint := func(e mouse.Event) transform.Point {
		return transform.Point{
			X: float64(e.X) - float64(layout.Canvas.Min.X),
			Y: float64(e.Y) - float64(layout.Canvas.Min.Y),
		}
	}

	for {
		switch e := w.NextEvent().(type) {
		case controlEvent:
			if e.Message != "" {
				showMessage(e.Message)
			}
			if e.Command != "" {
				run(e.Command)
			}
			w.Send(paint.Event{})
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPaint()
				return
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			layout = ComputeLayout(width, height)
			ed.SetViewport(layout.Viewport())
			layoutButtons(buttons, layout.Toolbar)
			if !fitted && ed.Loaded() {
				ed.Fit()
			}
			fitted = true
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := paintState{
				width:        width,
				height:       height,
				layout:       layout,
				theme:        th,
				scene:        freeze(ed.State()),
				surface:      ed.SurfaceFunc(),
				version:      version,
				smooth:       ed.Settings().Smooth,
				previewSizes: previewSizes(ed.Settings().Presets),
				buttons:      buttons,
				hover:        hover,
				status:       statusLine(ed),
				message:      message,
				messageUntil: messageUntil,
			}
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			p := image.Pt(int(e.X), int(e.Y))
			if message != "" && time.Now().Before(messageUntil) && e.Direction == mouse.DirPress {
				messageUntil = time.Time{}
				w.Send(paint.Event{})
			}
			if e.Direction == mouse.DirStep {
				switch e.Button {
				case mouse.ButtonWheelUp:
					drag.Zoom(ed.State(), 1)
				case mouse.ButtonWheelDown:
					drag.Zoom(ed.State(), -1)
				}
				continue
			}
			if p.In(layout.Toolbar) && !ctrl.Active() && !pan.Active() {
				prev := hover
				hover = buttonAt(buttons, p)
				if hover >= 0 && e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
					buttons[hover].Activate()
				}
				if hover != prev {
					w.Send(paint.Event{})
				}
				continue
			}
			if hover != -1 {
				hover = -1
				w.Send(paint.Event{})
			}

			cp := canvasPoint(e)
			mods := drag.Modifiers{
				Shift:   e.Modifiers&key.ModShift != 0,
				Control: e.Modifiers&key.ModControl != 0,
			}
			switch e.Direction {
			case mouse.DirPress:
				switch e.Button {
				case mouse.ButtonLeft:
					if !ed.Loaded() || !p.In(layout.Canvas) {
						continue
					}
					if h, ok := view.HitTest(ed.State(), layout.Viewport(), cp); ok {
						ctrl.Press(h, cp)
					}
				case mouse.ButtonMiddle:
					pan.Press(cp)
				}
			case mouse.DirRelease:
				switch e.Button {
				case mouse.ButtonLeft:
					ctrl.Release()
				case mouse.ButtonMiddle:
					pan.Release()
				}
			case mouse.DirNone:
				ctrl.Drag(cp, mods)
				pan.Drag(cp)
			}
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			if sc, ok := shortcutFromKey(e); ok {
				if cmd, ok := ed.CommandForShortcut(sc); ok {
					run(cmd.Name)
					continue
				}
			}
			if e.Modifiers&(key.ModControl|key.ModMeta) != 0 {
				continue
			}
			switch e.Rune {
			case 'q', 'Q':
				stopPaint()
				return
			case '+', '=':
				drag.Zoom(ed.State(), 1)
			case '-':
				drag.Zoom(ed.State(), -1)
			}
		}
	}
}
