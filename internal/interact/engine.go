// Package interact turns pointer and keyboard input into annotation edits.
// Coordinates are in image pixels; the host converts from view space.
package interact

import (
	"slices"
	"strings"
	"sync"

	"github.com/example/snapframe/internal/annotation"
	"github.com/example/snapframe/internal/editor"
	"github.com/example/snapframe/internal/fonts"
)

// Defaults for New.
const (
	DefaultHitTolerance = 4
	DefaultHandleRadius = 6
	DefaultPlaceholder  = "Text"
)

// Engine is the gesture state machine over an editor. The engine lock is
// never held while calling into the editor, so editor subscribers may call
// back into the engine.
type Engine struct {
	ed *editor.Editor

	mu       sync.Mutex
	tool     Tool
	phase    Phase
	selected annotation.ID

	// gesture
	anchor annotation.Point
	origin annotation.Annotation
	draft  annotation.Annotation
	handle annotation.Handle

	style        annotation.Style
	fontSize     float64
	placeholder  string
	tolerance    float64
	handleRadius float64
	onTool       func(Tool)

	unsubscribe func()
}

// Option configures an Engine.
type Option func(*Engine)

func WithStyle(s annotation.Style) Option { return func(e *Engine) { e.style = s } }
func WithFontSize(size float64) Option    { return func(e *Engine) { e.fontSize = size } }
func WithPlaceholder(text string) Option  { return func(e *Engine) { e.placeholder = text } }
func WithHitTolerance(px float64) Option  { return func(e *Engine) { e.tolerance = px } }
func WithHandleRadius(px float64) Option  { return func(e *Engine) { e.handleRadius = px } }
func WithToolChange(fn func(Tool)) Option { return func(e *Engine) { e.onTool = fn } }

// New returns an engine in select mode bound to ed.
func New(ed *editor.Editor, opts ...Option) *Engine {
	e := &Engine{
		ed:           ed,
		style:        annotation.DefaultStyle(),
		fontSize:     fonts.DefaultSize * 1.5,
		placeholder:  DefaultPlaceholder,
		tolerance:    DefaultHitTolerance,
		handleRadius: DefaultHandleRadius,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.unsubscribe = ed.Subscribe(e.stateChanged)
	return e
}

// Close detaches the engine from its editor.
func (e *Engine) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
	}
}

// stateChanged drops the selection, and any gesture on it, once its
// annotation is gone.
func (e *Engine) stateChanged(s editor.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected != "" && !s.State.Has(e.selected) {
		e.selected = ""
	}
	if (e.phase == PhaseDragging || e.phase == PhaseResizing) && !s.State.Has(e.origin.AnnotationID()) {
		e.resetGestureLocked()
	}
}

func (e *Engine) resetGestureLocked() {
	e.phase = PhaseIdle
	e.origin = nil
	e.draft = nil
	e.handle = annotation.HandleNone
}

func (e *Engine) Tool() Tool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tool
}

func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Selected returns the selected id, or "" when nothing is selected.
func (e *Engine) Selected() annotation.ID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

// SetTool switches mode. Any gesture in progress is abandoned and choosing
// a drawing tool clears the selection.
func (e *Engine) SetTool(t Tool) {
	if t < ToolSelect || t > ToolNumber {
		return
	}
	e.mu.Lock()
	changed := e.tool != t
	e.tool = t
	e.resetGestureLocked()
	if t != ToolSelect {
		e.selected = ""
	}
	fn := e.onTool
	e.mu.Unlock()
	if changed && fn != nil {
		fn(t)
	}
}

// OnToolChange registers fn to run whenever the tool changes, including the
// automatic switch back to select after drawing.
func (e *Engine) OnToolChange(fn func(Tool)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTool = fn
}

// Select selects id if it exists.
func (e *Engine) Select(id annotation.ID) bool {
	if !e.ed.State().Has(id) {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = id
	return true
}

func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = ""
}

// Style returns the style new annotations are drawn with.
func (e *Engine) Style() annotation.Style {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.style
}

// SetStyle changes the style used for new annotations.
func (e *Engine) SetStyle(s annotation.Style) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.style = s
}

func (e *Engine) FontSize() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fontSize
}

func (e *Engine) SetFontSize(size float64) {
	if size <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fontSize = size
}

// PointerDown starts a gesture. It reports whether the display needs
// redrawing.
func (e *Engine) PointerDown(p annotation.Point) bool {
	e.mu.Lock()
	if e.phase != PhaseIdle {
		e.mu.Unlock()
		return false
	}
	tool, selected := e.tool, e.selected
	e.mu.Unlock()

	state := e.ed.State()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.anchor = p
	if tool != ToolSelect {
		e.phase = PhaseDrawing
		e.draft = e.buildLocked(tool, p, p, state.Annotations)
		return true
	}

	if selected != "" {
		if a, i := state.Find(selected); i >= 0 {
			if h := annotation.HitHandle(a, p, e.handleRadius); h != annotation.HandleNone {
				e.phase = PhaseResizing
				e.handle = h
				e.origin, e.draft = a, a
				return true
			}
		}
	}
	i := annotation.HitTopmost(state.Annotations, p, e.tolerance)
	if i < 0 {
		changed := e.selected != ""
		e.selected = ""
		return changed
	}
	a := state.Annotations[i]
	e.selected = a.AnnotationID()
	e.phase = PhaseDragging
	e.origin, e.draft = a, a
	return true
}

// PointerMove updates the in-flight geometry. Nothing is recorded until
// PointerUp. It reports whether the display needs redrawing.
func (e *Engine) PointerMove(p annotation.Point) bool {
	var list []annotation.Annotation
	if e.Tool() == ToolNumber {
		list = e.ed.Annotations()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.moveLocked(p, list)
}

func (e *Engine) moveLocked(p annotation.Point, list []annotation.Annotation) bool {
	switch e.phase {
	case PhaseDrawing:
		e.draft = e.buildLocked(e.tool, e.anchor, p, list)
	case PhaseDragging:
		d := p.Sub(e.anchor)
		e.draft = e.origin.Moved(d.X, d.Y)
	case PhaseResizing:
		e.draft = annotation.Resize(e.origin, e.handle, p.Sub(e.anchor))
	default:
		return false
	}
	return true
}

// PointerUp ends the gesture and commits it as at most one history entry.
// A finished drawing is added and selected and the tool returns to select;
// degenerate drawings are dropped. Drags and resizes commit only their final
// geometry.
func (e *Engine) PointerUp(p annotation.Point) bool {
	list := e.ed.Annotations()

	e.mu.Lock()
	if e.phase == PhaseIdle {
		e.mu.Unlock()
		return false
	}
	e.moveLocked(p, list)
	phase, origin, draft := e.phase, e.origin, e.draft
	e.resetGestureLocked()
	e.mu.Unlock()

	switch phase {
	case PhaseDrawing:
		if draft == nil || annotation.Degenerate(draft) {
			return true
		}
		id := e.ed.AddAnnotation(draft)
		e.SetTool(ToolSelect)
		e.Select(id)
	case PhaseDragging, PhaseResizing:
		if draft != origin && !annotation.Degenerate(draft) {
			e.ed.UpdateAnnotation(draft)
		}
	}
	return true
}

// Cancel abandons the gesture in progress without recording anything.
func (e *Engine) Cancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseIdle {
		return false
	}
	e.resetGestureLocked()
	return true
}

// KeyDelete deletes the selection. It does nothing while a text input has
// focus, during a gesture or without a selection.
func (e *Engine) KeyDelete(textFocused bool) bool {
	if textFocused {
		return false
	}
	e.mu.Lock()
	id := e.selected
	if id == "" || e.phase != PhaseIdle {
		e.mu.Unlock()
		return false
	}
	e.selected = ""
	e.mu.Unlock()
	return e.ed.DeleteAnnotation(id)
}

// Nudge moves the selection by (dx, dy) as one history entry.
func (e *Engine) Nudge(dx, dy float64) bool {
	e.mu.Lock()
	id, idle := e.selected, e.phase == PhaseIdle
	e.mu.Unlock()
	if id == "" || !idle {
		return false
	}
	a, i := e.ed.State().Find(id)
	if i < 0 {
		return false
	}
	return e.ed.UpdateAnnotation(a.Moved(dx, dy))
}

// Restyle applies s to the selection.
func (e *Engine) Restyle(s annotation.Style) bool {
	id := e.Selected()
	if id == "" {
		return false
	}
	a, i := e.ed.State().Find(id)
	if i < 0 {
		return false
	}
	return e.ed.UpdateAnnotation(annotation.WithStyle(a, s))
}

// SetSelectedText replaces the content of the selected text annotation.
// Blank content deletes it.
func (e *Engine) SetSelectedText(content string) bool {
	return e.setSelectedText(content, e.ed.UpdateAnnotation)
}

// CompleteSelectedText is SetSelectedText for a text box placed by the
// latest edit: the content joins that history entry.
func (e *Engine) CompleteSelectedText(content string) bool {
	return e.setSelectedText(content, e.ed.AmendAnnotation)
}

func (e *Engine) setSelectedText(content string, update func(annotation.Annotation) bool) bool {
	id := e.Selected()
	a, i := e.ed.State().Find(id)
	if i < 0 {
		return false
	}
	t, ok := a.(annotation.Text)
	if !ok {
		return false
	}
	if strings.TrimSpace(content) == "" {
		e.ClearSelection()
		return e.ed.DeleteAnnotation(id)
	}
	t.Content = content
	return update(t)
}

// Draft returns the in-flight annotation, or nil outside a gesture.
func (e *Engine) Draft() annotation.Annotation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// SelectedAnnotation returns the selection as currently displayed,
// including any uncommitted drag.
func (e *Engine) SelectedAnnotation() annotation.Annotation {
	e.mu.Lock()
	id, draft := e.selected, e.draft
	e.mu.Unlock()
	if id == "" {
		return nil
	}
	if draft != nil && draft.AnnotationID() == id {
		return draft
	}
	a, _ := e.ed.State().Find(id)
	return a
}

// Layer returns the annotations to display: the committed list with the
// in-flight gesture applied on top.
func (e *Engine) Layer() []annotation.Annotation {
	list := e.ed.Annotations()
	e.mu.Lock()
	phase, draft := e.phase, e.draft
	e.mu.Unlock()

	switch {
	case draft == nil:
		return list
	case phase == PhaseDrawing:
		return append(slices.Clip(list), draft)
	default:
		out := slices.Clone(list)
		for i, a := range out {
			if a.AnnotationID() == draft.AnnotationID() {
				out[i] = draft
			}
		}
		return out
	}
}

// buildLocked makes the draft for tool spanning a to b. Text and labels are
// placed at b.
func (e *Engine) buildLocked(tool Tool, a, b annotation.Point, list []annotation.Annotation) annotation.Annotation {
	s := e.style
	switch tool {
	case ToolRectangle:
		return annotation.Rectangle{Box: annotation.BoxFromPoints(a, b), Style: s}
	case ToolCircle:
		return annotation.Circle{Box: annotation.BoxFromPoints(a, b), Style: s}
	case ToolLine:
		return annotation.Line{Start: a, End: b, Style: s}
	case ToolArrow:
		return annotation.Arrow{Start: a, End: b, Style: s}
	case ToolText:
		s.Fill, s.BorderWidth = s.Border, 0
		return annotation.Text{Origin: b, Content: e.placeholder, FontSize: e.fontSize, Style: s}
	case ToolNumber:
		s.Fill = s.Border
		return annotation.Label{Center: b, Number: annotation.NextLabelNumber(list), FontSize: e.fontSize, Style: s}
	}
	return nil
}
