// Package render composes the framed output image: background, effects,
// the rounded and shadowed screenshot, and the annotations on top. The same
// layout drives the scaled interactive preview and the full size export.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"

	"github.com/example/snapframe/internal/editor"
	"github.com/example/snapframe/internal/imageio"
)

// ErrRender marks compositing failures such as an unreadable background.
var ErrRender = errors.New("render failed")

// Options controls a render.
type Options struct {
	// Scale is output pixels per screenshot pixel; zero means 1.
	Scale float64
	// Backgrounds resolves image backgrounds. Required only when the
	// settings select one.
	Backgrounds BackgroundSource
}

// ComposeBase renders everything except the annotations. Nothing is
// returned on error.
func ComposeBase(ctx context.Context, src image.Image, s editor.Settings, opts Options) (*image.RGBA, Frame, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, Frame{}, fmt.Errorf("%w: no screenshot", imageio.ErrLoad)
	}
	b := src.Bounds()
	f := Layout(b.Dx(), b.Dy(), opts.Scale)

	canvas := image.NewRGBA(f.Canvas)
	if err := paintBackground(ctx, canvas, s.Background, opts.Backgrounds); err != nil {
		return nil, Frame{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Frame{}, err
	}
	if !flatBackground(s.Background) {
		canvas = blurBackground(canvas, s.Blur*f.Scale)
	}
	if s.Background.Kind != editor.BackgroundTransparent {
		canvas = addGrain(canvas, s.Noise/editor.MaxNoise)
	}
	if err := ctx.Err(); err != nil {
		return nil, Frame{}, err
	}

	size := f.Content.Size()
	shot := scaleTo(src, size)
	mask := roundedMask(size.X, size.Y, s.BorderRadius*f.Scale)
	castShadow(canvas, mask, f.Content.Min, shadowOptions(s.Shadow, f))
	draw.DrawMask(canvas, f.Content, shot, shot.Bounds().Min, mask, image.Point{}, draw.Over)
	return canvas, f, nil
}

func scaleTo(src image.Image, size image.Point) *image.RGBA {
	if src.Bounds().Size() == size {
		return clone.AsRGBA(src)
	}
	return transform.Resize(src, size.X, size.Y, transform.Linear)
}

// Compose renders the complete image for st.
func Compose(ctx context.Context, src image.Image, st editor.State, opts Options) (*image.RGBA, Frame, error) {
	canvas, f, err := ComposeBase(ctx, src, st.Settings, opts)
	if err != nil {
		return nil, Frame{}, err
	}
	if err := DrawAnnotations(canvas, f, st.Annotations); err != nil {
		return nil, Frame{}, fmt.Errorf("%w: annotations: %v", ErrRender, err)
	}
	return canvas, f, nil
}

// Export renders st at full resolution and encodes it as PNG.
func Export(ctx context.Context, src image.Image, st editor.State, opts Options) ([]byte, error) {
	opts.Scale = 1
	img, _, err := Compose(ctx, src, st, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

// ExportFile loads the screenshot at path and exports it.
func ExportFile(ctx context.Context, path string, st editor.State, opts Options) ([]byte, error) {
	src, err := imageio.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return Export(ctx, src, st, opts)
}
