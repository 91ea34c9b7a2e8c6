package render

import (
	"image"
	"math"

	"github.com/example/snapframe/internal/annotation"
)

// Padding is a fraction of the screenshot's larger side, never less than
// MinPadding source pixels.
const (
	PaddingRatio = 0.08
	MinPadding   = 16
)

// Frame places the screenshot inside the output canvas. Preview and export
// use the same frame at different scales, so positions agree up to rounding.
type Frame struct {
	// Canvas is the whole output, anchored at the origin.
	Canvas image.Rectangle
	// Content is where the screenshot lands.
	Content image.Rectangle
	// Padding is the gap around Content in output pixels.
	Padding int
	// Scale is output pixels per screenshot pixel.
	Scale float64
}

// PaddingFor returns the padding in screenshot pixels for a w by h image.
func PaddingFor(w, h int) int {
	p := int(math.Round(float64(max(w, h)) * PaddingRatio))
	return max(p, MinPadding)
}

// Layout computes the frame for a w by h screenshot rendered at scale.
// A non-positive scale means 1.
func Layout(w, h int, scale float64) Frame {
	if scale <= 0 {
		scale = 1
	}
	pad := int(math.Round(float64(PaddingFor(w, h)) * scale))
	cw := max(int(math.Round(float64(w)*scale)), 1)
	ch := max(int(math.Round(float64(h)*scale)), 1)
	return Frame{
		Canvas:  image.Rect(0, 0, cw+2*pad, ch+2*pad),
		Content: image.Rect(pad, pad, pad+cw, pad+ch),
		Padding: pad,
		Scale:   scale,
	}
}

// FitScale returns the largest scale, at most 1, at which the full canvas
// of a w by h screenshot fits in a square of maxSide pixels.
func FitScale(w, h, maxSide int) float64 {
	if maxSide <= 0 {
		return 1
	}
	total := max(w, h) + 2*PaddingFor(w, h)
	if total <= maxSide {
		return 1
	}
	return float64(maxSide) / float64(total)
}

// ToCanvas maps a screenshot position to output coordinates.
func (f Frame) ToCanvas(p annotation.Point) (x, y float64) {
	return float64(f.Content.Min.X) + p.X*f.Scale, float64(f.Content.Min.Y) + p.Y*f.Scale
}

// FromCanvas maps output coordinates back to a screenshot position.
func (f Frame) FromCanvas(x, y float64) annotation.Point {
	return annotation.Pt((x-float64(f.Content.Min.X))/f.Scale, (y-float64(f.Content.Min.Y))/f.Scale)
}

// canvasPoint is ToCanvas rounded to whole pixels.
func (f Frame) canvasPoint(p annotation.Point) image.Point {
	x, y := f.ToCanvas(p)
	return image.Pt(int(math.Round(x)), int(math.Round(y)))
}

// canvasBox maps a screenshot box to output pixels.
func (f Frame) canvasBox(b annotation.Box) image.Rectangle {
	return image.Rectangle{
		Min: f.canvasPoint(b.Min()),
		Max: f.canvasPoint(b.Max()),
	}
}

// px scales a screenshot length, keeping at least one pixel for positive
// input.
func (f Frame) px(v float64) int {
	if v <= 0 {
		return 0
	}
	return max(int(math.Round(v*f.Scale)), 1)
}
