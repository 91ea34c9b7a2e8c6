package appstate

import (
	"context"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/snapframe/internal/render"
)

// Run shows the session in a window using shiny's driver and blocks until
// the window closes. The session is closed on return.
func (a *AppState) Run() { driver.Main(a.Main) }

// Main is the window event loop.
func (a *AppState) Main(s screen.Screen) {
	defer a.Close()

	km, kmErr := a.Keymap()
	if kmErr != nil {
		log.Printf("keymap: %v", kmErr)
	}
	c := newController(a, km)
	if kmErr != nil {
		c.setStatus(kmErr.Error(), true)
	}
	buttons := toolbarButtons(km)

	canvas := a.preview.Frame().Canvas.Size()
	width := canvas.X + toolbarWidth
	height := max(canvas.Y, len(buttons)*buttonHeight) + bottomHeight
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: windowTitle(a.Source)})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()
	a.setHost(func(ev any) { w.Send(ev) })
	defer a.setHost(nil)

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st)
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

	repaint := func() { w.Send(paint.Event{}) }
	hover := -1
	var view viewport

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPaint()
				return
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			repaint()
		case statusEvent:
			c.setStatus(e.text, e.err)
			time.AfterFunc(statusDuration, func() { a.send(paint.Event{}) })
			repaint()
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()

			snap := a.ed.Snapshot()
			st := paintState{
				width:    width,
				height:   height,
				theme:    a.theme,
				layer:    c.layer(),
				selected: a.engine.SelectedAnnotation(),
				buttons:  buttons,
				hover:    hover,
				tool:     a.engine.Tool(),
				canUndo:  snap.CanUndo,
				canRedo:  snap.CanRedo,
				busy:     a.Busy(),
				settings: snap.State.Settings,
			}
			st.status, st.statusErr, _ = c.statusText()
			if p, ok := a.preview.Latest(); ok {
				st.preview, st.hasPreview = p, true
				view = fitView(p.Frame.Canvas.Size(), canvasArea(width, height))
				st.view = view
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
			onCanvas := p.X >= toolbarWidth && p.Y < height-bottomHeight
			if !onCanvas {
				i := hitButton(buttons, p)
				if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress && i >= 0 {
					c.endEdit(true)
					if !c.perform(buttons[i].action, false) {
						stopPaint()
						return
					}
					repaint()
				}
				if i != hover {
					hover = i
					repaint()
				}
			} else if hover != -1 {
				hover = -1
				repaint()
			}
			var frame *render.Frame
			if prev, ok := a.preview.Latest(); ok {
				frame = &prev.Frame
			}
			if c.canvasMouse(e, view, frame, onCanvas) {
				repaint()
			}
		case key.Event:
			if !c.key(e) {
				stopPaint()
				return
			}
			repaint()
		}
	}
}
