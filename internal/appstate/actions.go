package appstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/snapframe/internal/annotation"
	"github.com/example/snapframe/internal/editor"
	"github.com/example/snapframe/internal/interact"
	"github.com/example/snapframe/internal/render"
)

// Step sizes for the keyboard adjustments.
const (
	blurStep       = 2
	noiseStep      = 5
	radiusStep     = 2
	shadowStep     = 4
	nudgeStep      = 1
	nudgeStepLarge = 10
)

const statusDuration = 3 * time.Second

var toolActions = map[string]interact.Tool{
	ActionSelect:    interact.ToolSelect,
	ActionRectangle: interact.ToolRectangle,
	ActionCircle:    interact.ToolCircle,
	ActionLine:      interact.ToolLine,
	ActionArrow:     interact.ToolArrow,
	ActionText:      interact.ToolText,
	ActionNumber:    interact.ToolNumber,
}

// controller holds the window side of a session: the keymap, text entry
// and the status line. It is only used from the event loop.
type controller struct {
	app  *AppState
	keys *Keymap

	// editing is true while typed keys go into the selected text
	// annotation. The text is committed as one edit when entry ends.
	// fresh marks a box placed by the latest edit, which the typed
	// content joins.
	editing bool
	fresh   bool
	buffer  string

	status      string
	statusErr   bool
	statusUntil time.Time

	async func(func())
	now   func() time.Time
}

func newController(a *AppState, km *Keymap) *controller {
	return &controller{
		app:   a,
		keys:  km,
		async: func(fn func()) { go fn() },
		now:   time.Now,
	}
}

func (c *controller) setStatus(text string, isErr bool) {
	c.status = text
	c.statusErr = isErr
	c.statusUntil = c.now().Add(statusDuration)
}

// statusText returns the message to show, if it has not expired.
func (c *controller) statusText() (string, bool, bool) {
	if c.status == "" || !c.now().Before(c.statusUntil) {
		return "", false, false
	}
	return c.status, c.statusErr, true
}

// key handles a key press. It returns false when the window should close.
func (c *controller) key(e key.Event) bool {
	if e.Direction == key.DirRelease {
		return true
	}
	if c.editing {
		c.editKey(e)
		return true
	}
	action, ok := c.keys.Action(e)
	if !ok {
		return true
	}
	return c.perform(action, e.Modifiers&key.ModShift != 0)
}

// perform runs action. large selects the bigger nudge step. It returns
// false for quit.
func (c *controller) perform(action string, large bool) bool {
	ed, en := c.app.ed, c.app.engine
	s := ed.Settings()
	if t, ok := toolActions[action]; ok {
		en.SetTool(t)
		return true
	}
	step := float64(nudgeStep)
	if large {
		step = nudgeStepLarge
	}
	switch action {
	case ActionUndo:
		ed.Undo()
	case ActionRedo:
		ed.Redo()
	case ActionDelete:
		en.KeyDelete(c.editing)
	case ActionEditText:
		c.beginEdit()
	case ActionCancel:
		if !en.Cancel() {
			en.ClearSelection()
		}
	case ActionSave:
		c.save()
	case ActionCopy:
		c.copy()
	case ActionQuit:
		return false
	case ActionBlurMore:
		ed.SetBlur(s.Blur + blurStep)
	case ActionBlurLess:
		ed.SetBlur(s.Blur - blurStep)
	case ActionNoiseMore:
		ed.SetNoise(s.Noise + noiseStep)
	case ActionNoiseLess:
		ed.SetNoise(s.Noise - noiseStep)
	case ActionRadiusMore:
		ed.SetBorderRadius(s.BorderRadius + radiusStep)
	case ActionRadiusLess:
		ed.SetBorderRadius(s.BorderRadius - radiusStep)
	case ActionShadowMore:
		ed.SetShadowBlur(s.Shadow.Blur + shadowStep)
	case ActionShadowLess:
		ed.SetShadowBlur(s.Shadow.Blur - shadowStep)
	case ActionBackground:
		ed.SetBackground(nextBackground(s.Background))
	case ActionSetDefault:
		c.async(func() {
			if err := c.app.SetDefaultBackground(); err != nil {
				c.app.send(statusEvent{text: fmt.Sprintf("default background: %v", err), err: true})
				return
			}
			c.app.send(statusEvent{text: "default background saved"})
		})
	case ActionNudgeLeft:
		en.Nudge(-step, 0)
	case ActionNudgeRight:
		en.Nudge(step, 0)
	case ActionNudgeUp:
		en.Nudge(0, -step)
	case ActionNudgeDown:
		en.Nudge(0, step)
	case ActionClearAll:
		ed.ClearAnnotations()
	case ActionResetEditing:
		ed.Reset()
	}
	return true
}

func (c *controller) save() {
	c.async(func() {
		path, err := c.app.Save(context.Background())
		switch {
		case errors.Is(err, ErrBusy):
			c.app.send(statusEvent{text: "busy"})
		case err != nil:
			c.app.send(statusEvent{text: fmt.Sprintf("save: %v", err), err: true})
		default:
			c.app.send(statusEvent{text: "saved " + path})
		}
	})
}

func (c *controller) copy() {
	c.async(func() {
		err := c.app.Copy(context.Background())
		switch {
		case errors.Is(err, ErrBusy):
			c.app.send(statusEvent{text: "busy"})
		case err != nil:
			c.app.send(statusEvent{text: fmt.Sprintf("copy: %v", err), err: true})
		default:
			c.app.send(statusEvent{text: "image copied to clipboard"})
		}
	})
}

// beginEdit starts text entry when a text annotation is selected.
func (c *controller) beginEdit() bool {
	t, ok := c.app.engine.SelectedAnnotation().(annotation.Text)
	if !ok {
		return false
	}
	c.editing = true
	c.fresh = false
	c.buffer = t.Content
	return true
}

// canvasMouse feeds a pointer event to the engine and reports whether a
// repaint is due. f is nil until a preview has been laid out. A left
// release always ends the gesture: off the canvas or without a usable view
// it is cancelled.
func (c *controller) canvasMouse(e mouse.Event, v viewport, f *render.Frame, onCanvas bool) bool {
	en := c.app.engine
	usable := onCanvas && f != nil && v.zoom > 0
	if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease {
		if !usable {
			return en.Cancel()
		}
		before := en.Tool()
		if !en.PointerUp(v.toImage(*f, e.X, e.Y)) {
			return false
		}
		c.pointerUp(before)
		return true
	}
	if !usable || e.Button > mouse.ButtonLeft || e.Button < mouse.ButtonNone {
		return false
	}
	pt := v.toImage(*f, e.X, e.Y)
	switch e.Direction {
	case mouse.DirPress:
		if e.Button != mouse.ButtonLeft {
			return false
		}
		ended := c.editing
		c.endEdit(true)
		return en.PointerDown(pt) || ended
	case mouse.DirNone:
		return en.PointerMove(pt)
	}
	return false
}

// pointerUp is called after the engine finished a gesture. A freshly
// drawn text box goes straight into text entry.
func (c *controller) pointerUp(before interact.Tool) {
	if before == interact.ToolText && c.app.engine.Tool() == interact.ToolSelect {
		if c.beginEdit() {
			c.fresh = true
			c.buffer = ""
		}
	}
}

func (c *controller) editKey(e key.Event) {
	switch e.Code {
	case key.CodeReturnEnter:
		c.endEdit(true)
		return
	case key.CodeEscape:
		c.endEdit(false)
		return
	case key.CodeDeleteBackspace:
		if r := []rune(c.buffer); len(r) > 0 {
			c.buffer = string(r[:len(r)-1])
		}
		return
	}
	if e.Rune > 0 && e.Modifiers&(key.ModControl|key.ModMeta) == 0 {
		c.buffer += string(e.Rune)
	}
}

// endEdit leaves text entry, committing the buffer when keep is set. An
// empty buffer keeps the existing text.
func (c *controller) endEdit(keep bool) {
	if !c.editing {
		return
	}
	c.editing = false
	switch {
	case !keep || c.buffer == "":
	case c.fresh:
		c.app.engine.CompleteSelectedText(c.buffer)
	default:
		c.app.engine.SetSelectedText(c.buffer)
	}
	c.fresh = false
	c.buffer = ""
}

// layer returns the annotations to draw, with the text being typed shown
// in place of the stored content.
func (c *controller) layer() []annotation.Annotation {
	list := c.app.engine.Layer()
	if !c.editing {
		return list
	}
	id := c.app.engine.Selected()
	out := make([]annotation.Annotation, len(list))
	copy(out, list)
	for i, a := range out {
		if t, ok := a.(annotation.Text); ok && t.ID == id {
			t.Content = c.buffer + "|"
			out[i] = t
		}
	}
	return out
}

// backgroundCycle is the order next_background walks through. Gradients
// are stepped through one preset at a time.
var backgroundCycle = []editor.BackgroundKind{
	editor.BackgroundTransparent,
	editor.BackgroundWhite,
	editor.BackgroundBlack,
	editor.BackgroundGray,
	editor.BackgroundGradient,
	editor.BackgroundColor,
	editor.BackgroundImage,
}

func nextBackground(bg editor.Background) editor.Background {
	if bg.Kind == editor.BackgroundGradient {
		for i, g := range editor.Gradients {
			if g.ID == bg.Gradient.ID && i+1 < len(editor.Gradients) {
				bg.Gradient = editor.Gradients[i+1]
				return bg
			}
		}
	}
	idx := 0
	for i, k := range backgroundCycle {
		if k == bg.Kind {
			idx = i
		}
	}
	for n := 1; n <= len(backgroundCycle); n++ {
		k := backgroundCycle[(idx+n)%len(backgroundCycle)]
		if k == editor.BackgroundImage && bg.Image == "" {
			continue
		}
		bg.Kind = k
		if k == editor.BackgroundGradient {
			bg.Gradient = editor.Gradients[0]
		}
		return bg
	}
	return bg
}
