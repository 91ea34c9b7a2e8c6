package render

import (
	"context"
	"errors"
	"image"
	"log"
	"sync"
	"time"

	"github.com/example/snapframe/internal/editor"
)

// Defaults for NewPreviewer.
const (
	DefaultDebounce    = 120 * time.Millisecond
	DefaultPreviewSize = 1280
)

// Preview is one interactive frame. Annotations are not included; the host
// draws them on their own layer with DrawAnnotations using Frame.
type Preview struct {
	Image    *image.RGBA
	Frame    Frame
	Settings editor.Settings
	Seq      uint64
}

// composeBase is swapped out by tests.
var composeBase = ComposeBase

// ErrSuperseded is returned for a render finished after a newer one.
var ErrSuperseded = errors.New("preview superseded")

// Previewer re-renders the scaled base image after settings changes.
// Bursts of triggers within the debounce delay collapse into one render.
// A failed render keeps the previous preview.
type Previewer struct {
	src     image.Image
	opts    Options
	delay   time.Duration
	maxSide int

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	timer     *time.Timer
	seq       uint64
	pending   editor.Settings
	requested bool
	latest    Preview
	hasLatest bool
	onReady   func(Preview)
	onError   func(error)
	closed    bool
}

// PreviewOption configures a Previewer.
type PreviewOption func(*Previewer)

// WithDebounce sets the quiet period before a render starts.
func WithDebounce(d time.Duration) PreviewOption {
	return func(p *Previewer) { p.delay = d }
}

// WithMaxSize bounds the preview canvas's longer side.
func WithMaxSize(px int) PreviewOption {
	return func(p *Previewer) { p.maxSide = px }
}

// WithBackgrounds sets the resolver for image backgrounds.
func WithBackgrounds(src BackgroundSource) PreviewOption {
	return func(p *Previewer) { p.opts.Backgrounds = src }
}

// OnPreview is called with every new preview, from the render goroutine.
func OnPreview(fn func(Preview)) PreviewOption {
	return func(p *Previewer) { p.onReady = fn }
}

// OnPreviewError is called when a render fails.
func OnPreviewError(fn func(error)) PreviewOption {
	return func(p *Previewer) { p.onError = fn }
}

// NewPreviewer returns a previewer for src. No render happens until
// Trigger or RenderNow.
func NewPreviewer(src image.Image, opts ...PreviewOption) *Previewer {
	p := &Previewer{src: src, delay: DefaultDebounce, maxSide: DefaultPreviewSize}
	for _, opt := range opts {
		opt(p)
	}
	if src != nil {
		b := src.Bounds()
		p.opts.Scale = FitScale(b.Dx(), b.Dy(), p.maxSide)
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())
	return p
}

// Frame returns the layout previews are rendered with.
func (p *Previewer) Frame() Frame {
	if p.src == nil {
		return Frame{Scale: 1}
	}
	b := p.src.Bounds()
	return Layout(b.Dx(), b.Dy(), p.opts.Scale)
}

// Trigger schedules a render for s after the debounce delay, replacing any
// render still waiting. Settings equal to the last request are ignored.
func (p *Previewer) Trigger(s editor.Settings) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || (p.requested && p.pending == s) {
		return
	}
	p.seq++
	p.pending = s
	p.requested = true
	if p.timer == nil {
		p.timer = time.AfterFunc(p.delay, p.fire)
		return
	}
	p.timer.Reset(p.delay)
}

func (p *Previewer) fire() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	s, seq := p.pending, p.seq
	p.mu.Unlock()

	if _, err := p.render(p.ctx, s, seq); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, ErrSuperseded) {
		log.Printf("preview: %v", err)
	}
}

// RenderNow renders s synchronously, bypassing the debounce.
func (p *Previewer) RenderNow(ctx context.Context, s editor.Settings) (Preview, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Preview{}, context.Canceled
	}
	p.seq++
	seq := p.seq
	p.pending, p.requested = s, true
	p.mu.Unlock()
	return p.render(ctx, s, seq)
}

func (p *Previewer) render(ctx context.Context, s editor.Settings, seq uint64) (Preview, error) {
	img, f, err := composeBase(ctx, p.src, s, p.opts)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Preview{}, context.Canceled
	}
	if p.hasLatest && seq < p.latest.Seq {
		p.mu.Unlock()
		return Preview{}, ErrSuperseded
	}
	if err != nil {
		// allow an identical retry
		if p.seq == seq {
			p.requested = false
		}
		fn := p.onError
		p.mu.Unlock()
		if fn != nil {
			fn(err)
		}
		return Preview{}, err
	}
	prev := Preview{Image: img, Frame: f, Settings: s, Seq: seq}
	p.latest, p.hasLatest = prev, true
	fn := p.onReady
	p.mu.Unlock()
	if fn != nil {
		fn(prev)
	}
	return prev, nil
}

// Latest returns the most recent successful preview.
func (p *Previewer) Latest() (Preview, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.hasLatest
}

// Close stops pending renders. Previews already delivered stay valid.
func (p *Previewer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
	}
	p.cancel()
}
