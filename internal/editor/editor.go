// Package editor holds the undoable state of one editing session: the
// visual settings and the annotation list, recorded together in a bounded
// history and published to subscribers after every change.
package editor

import (
	"fmt"
	"image/color"
	"log"
	"slices"
	"strings"
	"sync"

	"github.com/example/snapframe/internal/annotation"
	"github.com/example/snapframe/internal/history"
	"github.com/example/snapframe/internal/settings"
)

// Snapshot is published to subscribers after every change.
type Snapshot struct {
	State   State
	Version uint64
	CanUndo bool
	CanRedo bool
}

// Editor is safe for concurrent use. Every mutator is atomic and either
// records exactly one history entry or, when it would not change anything,
// none at all.
type Editor struct {
	mu      sync.Mutex
	hist    *history.Store[State]
	version uint64
	initial Settings

	ids      annotation.Generator
	limit    int
	defaults settings.Store

	subs    map[int]func(Snapshot)
	nextSub int
	ready   chan struct{}
}

// Option configures an Editor.
type Option func(*Editor)

// WithIDGenerator replaces the UUID based annotation id source.
func WithIDGenerator(g annotation.Generator) Option {
	return func(e *Editor) {
		if g != nil {
			e.ids = g
		}
	}
}

// WithSettings sets the initial settings.
func WithSettings(s Settings) Option {
	return func(e *Editor) { e.initial = s }
}

// WithHistoryLimit overrides the number of undo steps kept.
func WithHistoryLimit(n int) Option {
	return func(e *Editor) { e.limit = n }
}

// WithDefaults loads the default background reference from store in the
// background. The load replaces the initial state without creating a
// history entry, and is dropped if the session was edited first.
func WithDefaults(store settings.Store) Option {
	return func(e *Editor) { e.defaults = store }
}

// New returns an editor with an empty annotation list.
func New(opts ...Option) *Editor {
	e := &Editor{
		ids:     annotation.UUIDGenerator(),
		initial: DefaultSettings(),
		subs:    map[int]func(Snapshot){},
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.hist = history.New(State{Settings: e.initial}, e.limit)
	if e.defaults == nil {
		close(e.ready)
	} else {
		go e.loadDefaultBackground(e.defaults)
	}
	return e
}

// Ready is closed once the default background load has finished, whatever
// its outcome.
func (e *Editor) Ready() <-chan struct{} { return e.ready }

func (e *Editor) loadDefaultBackground(store settings.Store) {
	defer close(e.ready)
	ref, ok := store.Get(settings.KeyDefaultBackground)
	if !ok || strings.TrimSpace(ref) == "" {
		return
	}

	e.mu.Lock()
	if e.hist.CanUndo() || e.hist.CanRedo() {
		e.mu.Unlock()
		log.Printf("default background: session already edited, ignoring %q", ref)
		return
	}
	cur := e.hist.Current()
	bg, err := ParseBackgroundRef(ref, cur.Settings.Background)
	if err != nil {
		e.mu.Unlock()
		log.Printf("default background: %v", err)
		return
	}
	next := cur
	next.Settings.Background = bg
	e.initial = next.Settings
	e.hist.Reset(next)
	snap, subs := e.changedLocked()
	e.mu.Unlock()
	notify(subs, snap)
}

// State returns the current state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.Current()
}

// Snapshot returns the current state with its version and undo flags.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Version increases by one on every change, including undo and redo.
func (e *Editor) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.CanUndo()
}

func (e *Editor) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.CanRedo()
}

// Undo restores the previous state. It reports whether anything changed.
func (e *Editor) Undo() bool { return e.step((*history.Store[State]).Undo) }

// Redo re-applies the last undone state. It reports whether anything changed.
func (e *Editor) Redo() bool { return e.step((*history.Store[State]).Redo) }

func (e *Editor) step(fn func(*history.Store[State]) bool) bool {
	e.mu.Lock()
	if !fn(e.hist) {
		e.mu.Unlock()
		return false
	}
	snap, subs := e.changedLocked()
	e.mu.Unlock()
	notify(subs, snap)
	return true
}

// Subscribe registers fn to be called after every change. Calls happen on
// the goroutine that made the change, outside the editor lock. The returned
// func removes the subscription.
func (e *Editor) Subscribe(fn func(Snapshot)) (cancel func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs, id)
	}
}

func (e *Editor) snapshotLocked() Snapshot {
	return Snapshot{
		State:   e.hist.Current(),
		Version: e.version,
		CanUndo: e.hist.CanUndo(),
		CanRedo: e.hist.CanRedo(),
	}
}

func (e *Editor) changedLocked() (Snapshot, []func(Snapshot)) {
	e.version++
	subs := make([]func(Snapshot), 0, len(e.subs))
	for id := 0; id < e.nextSub; id++ {
		if fn, ok := e.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	return e.snapshotLocked(), subs
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}

// apply records fn(current) unless it equals current.
func (e *Editor) apply(fn func(State) State) bool {
	e.mu.Lock()
	cur := e.hist.Current()
	next := fn(cur)
	if next.Equal(cur) {
		e.mu.Unlock()
		return false
	}
	e.hist.Set(next)
	snap, subs := e.changedLocked()
	e.mu.Unlock()
	notify(subs, snap)
	return true
}

// amend folds fn(current) into the latest history entry unless it equals
// current.
func (e *Editor) amend(fn func(State) State) bool {
	e.mu.Lock()
	cur := e.hist.Current()
	next := fn(cur)
	if next.Equal(cur) {
		e.mu.Unlock()
		return false
	}
	e.hist.Amend(next)
	snap, subs := e.changedLocked()
	e.mu.Unlock()
	notify(subs, snap)
	return true
}

func (e *Editor) applySettings(fn func(*Settings)) bool {
	return e.apply(func(s State) State {
		fn(&s.Settings)
		return s
	})
}

// SetBackground replaces the whole background.
func (e *Editor) SetBackground(bg Background) bool {
	if bg.Kind < BackgroundTransparent || bg.Kind > BackgroundImage {
		return false
	}
	return e.applySettings(func(s *Settings) { s.Background = bg })
}

// SetBackgroundKind switches kind, keeping the stored colour, gradient and
// image for later.
func (e *Editor) SetBackgroundKind(k BackgroundKind) bool {
	if k < BackgroundTransparent || k > BackgroundImage {
		return false
	}
	return e.applySettings(func(s *Settings) { s.Background.Kind = k })
}

// SetBackgroundColor selects a solid custom colour.
func (e *Editor) SetBackgroundColor(c color.RGBA) bool {
	return e.applySettings(func(s *Settings) {
		s.Background.Kind = BackgroundColor
		s.Background.Color = c
	})
}

// SetGradient selects a gradient.
func (e *Editor) SetGradient(g GradientRef) bool {
	return e.applySettings(func(s *Settings) {
		s.Background.Kind = BackgroundGradient
		s.Background.Gradient = g
	})
}

// SetBackgroundImage selects an image by asset identifier or path.
func (e *Editor) SetBackgroundImage(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}
	return e.applySettings(func(s *Settings) {
		s.Background.Kind = BackgroundImage
		s.Background.Image = ref
	})
}

// SetBlur sets the background blur radius, clamped to [0, MaxBlur].
func (e *Editor) SetBlur(v float64) bool {
	return e.applySettings(func(s *Settings) { s.Blur = clamp(v, 0, MaxBlur) })
}

// SetNoise sets the background grain amount, clamped to [0, MaxNoise].
func (e *Editor) SetNoise(v float64) bool {
	return e.applySettings(func(s *Settings) { s.Noise = clamp(v, 0, MaxNoise) })
}

// SetBorderRadius sets the screenshot corner radius, clamped to
// [0, MaxBorderRadius].
func (e *Editor) SetBorderRadius(v float64) bool {
	return e.applySettings(func(s *Settings) { s.BorderRadius = clamp(v, 0, MaxBorderRadius) })
}

// SetShadow replaces the whole shadow descriptor.
func (e *Editor) SetShadow(sh Shadow) bool {
	return e.applySettings(func(s *Settings) { s.Shadow = clampShadow(sh) })
}

func (e *Editor) SetShadowBlur(v float64) bool {
	return e.applySettings(func(s *Settings) { s.Shadow.Blur = clamp(v, 0, MaxShadowBlur) })
}

func (e *Editor) SetShadowOffset(x, y float64) bool {
	return e.applySettings(func(s *Settings) {
		s.Shadow.OffsetX = clamp(x, -MaxShadowOffset, MaxShadowOffset)
		s.Shadow.OffsetY = clamp(y, -MaxShadowOffset, MaxShadowOffset)
	})
}

func (e *Editor) SetShadowOpacity(v float64) bool {
	return e.applySettings(func(s *Settings) { s.Shadow.Opacity = clamp(v, 0, 1) })
}

// AddAnnotation appends a on top of the others under a fresh id and returns
// that id. Any id already carried by a is ignored.
func (e *Editor) AddAnnotation(a annotation.Annotation) annotation.ID {
	if a == nil {
		return ""
	}
	var id annotation.ID
	e.apply(func(s State) State {
		id = e.freshID(s)
		list := slices.Clone(s.Annotations)
		list = append(list, a.WithID(id))
		return s.withAnnotations(list)
	})
	return id
}

const maxIDAttempts = 8

// freshID asks the generator until it yields an unused id, then falls back
// to suffixing so a misbehaving generator cannot loop forever.
func (e *Editor) freshID(s State) annotation.ID {
	id := e.ids()
	for n := 1; id == "" || s.Has(id); n++ {
		if n < maxIDAttempts {
			id = e.ids()
			continue
		}
		id = annotation.ID(fmt.Sprintf("a%d-%d", e.version, n))
	}
	return id
}

// UpdateAnnotation replaces the annotation with the same id, keeping its
// position in the z-order. Unknown ids are ignored.
func (e *Editor) UpdateAnnotation(a annotation.Annotation) bool {
	if a == nil {
		return false
	}
	return e.apply(func(s State) State {
		_, i := s.Find(a.AnnotationID())
		if i < 0 {
			return s
		}
		list := slices.Clone(s.Annotations)
		list[i] = a
		return s.withAnnotations(list)
	})
}

// AmendAnnotation is UpdateAnnotation folded into the latest history
// entry instead of recording a new one. It finishes an edit that the latest
// entry began, such as typing the content of a text box just placed.
func (e *Editor) AmendAnnotation(a annotation.Annotation) bool {
	if a == nil {
		return false
	}
	return e.amend(func(s State) State {
		_, i := s.Find(a.AnnotationID())
		if i < 0 {
			return s
		}
		list := slices.Clone(s.Annotations)
		list[i] = a
		return s.withAnnotations(list)
	})
}

// DeleteAnnotation removes the annotation with id. Unknown ids are ignored.
func (e *Editor) DeleteAnnotation(id annotation.ID) bool {
	return e.apply(func(s State) State {
		_, i := s.Find(id)
		if i < 0 {
			return s
		}
		return s.withAnnotations(slices.Delete(slices.Clone(s.Annotations), i, i+1))
	})
}

// ClearAnnotations removes every annotation in one step.
func (e *Editor) ClearAnnotations() bool {
	return e.apply(func(s State) State { return s.withAnnotations(nil) })
}

// Reset returns to the session's starting settings with no annotations. It
// is undoable.
func (e *Editor) Reset() bool {
	e.mu.Lock()
	initial := e.initial
	e.mu.Unlock()
	return e.apply(func(State) State { return State{Settings: initial} })
}

// Annotations returns the current annotation list. Callers must not modify it.
func (e *Editor) Annotations() []annotation.Annotation { return e.State().Annotations }

// Settings returns the current settings.
func (e *Editor) Settings() Settings { return e.State().Settings }
