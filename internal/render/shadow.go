package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/example/snapframe/internal/editor"
)

// ShadowOptions configures the drop shadow cast by the screenshot, in output
// pixels.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

func shadowOptions(s editor.Shadow, f Frame) ShadowOptions {
	return ShadowOptions{
		Radius: f.px(s.Blur),
		Offset: image.Pt(
			int(math.Round(s.OffsetX*f.Scale)),
			int(math.Round(s.OffsetY*f.Scale)),
		),
		Opacity: s.Opacity,
	}
}

// castShadow paints the blurred silhouette of mask onto dst. The mask's
// origin is placed at at, then moved by opts.Offset.
func castShadow(dst *image.RGBA, mask *image.Alpha, at image.Point, opts ShadowOptions) {
	if mask == nil || mask.Bounds().Empty() || opts.Opacity <= 0 {
		return
	}
	opacity := math.Min(opts.Opacity, 1)
	radius := max(opts.Radius, 0)

	mb := mask.Bounds()
	padded := mb.Inset(-radius)
	silhouette := image.NewAlpha(padded.Sub(padded.Min))
	for y := mb.Min.Y; y < mb.Max.Y; y++ {
		src := mask.Pix[mask.PixOffset(mb.Min.X, y):mask.PixOffset(mb.Max.X, y)]
		off := silhouette.PixOffset(mb.Min.X-padded.Min.X, y-padded.Min.Y)
		copy(silhouette.Pix[off:], src)
	}
	blurred := blurAlpha(silhouette, radius)

	shade := image.NewUniform(color.RGBA{A: uint8(opacity*255 + 0.5)})
	pos := at.Add(opts.Offset).Add(padded.Min.Sub(mb.Min))
	draw.DrawMask(dst, blurred.Bounds().Add(pos), shade, image.Point{}, blurred, image.Point{}, draw.Over)
}

// blurAlpha is a separable box blur using running sums, applied twice so the
// falloff looks closer to a gaussian.
func blurAlpha(src *image.Alpha, radius int) *image.Alpha {
	if radius <= 0 {
		out := image.NewAlpha(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}
	half := max(radius/2, 1)
	return boxBlurAlpha(boxBlurAlpha(src, half), half)
}

func boxBlurAlpha(src *image.Alpha, radius int) *image.Alpha {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	tmp := image.NewAlpha(bounds)
	dst := image.NewAlpha(bounds)

	prefix := make([]int, max(w, h)+1)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(row[x])
		}
		out := tmp.Pix[y*tmp.Stride:]
		for x := 0; x < w; x++ {
			x0, x1 := max(x-radius, 0), min(x+radius, w-1)
			out[x] = uint8((prefix[x1+1] - prefix[x0]) / (x1 - x0 + 1))
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			y0, y1 := max(y-radius, 0), min(y+radius, h-1)
			dst.Pix[y*dst.Stride+x] = uint8((prefix[y1+1] - prefix[y0]) / (y1 - y0 + 1))
		}
	}
	return dst
}
