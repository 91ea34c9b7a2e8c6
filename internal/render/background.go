package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/example/snapframe/internal/colorspec"
	"github.com/example/snapframe/internal/editor"
)

// BackgroundSource resolves image background references.
type BackgroundSource interface {
	Background(ctx context.Context, ref string) (image.Image, error)
}

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	gray  = color.RGBA{128, 128, 128, 255}
)

// gradientSteps bounds the colour lookups done per gradient.
const gradientSteps = 1024

func paintBackground(ctx context.Context, dst *image.RGBA, bg editor.Background, src BackgroundSource) error {
	r := dst.Bounds()
	switch bg.Kind {
	case editor.BackgroundTransparent:
		draw.Draw(dst, r, image.Transparent, image.Point{}, draw.Src)
	case editor.BackgroundWhite:
		fill(dst, white)
	case editor.BackgroundBlack:
		fill(dst, black)
	case editor.BackgroundGray:
		fill(dst, gray)
	case editor.BackgroundColor:
		fill(dst, bg.Color)
	case editor.BackgroundGradient:
		paintGradient(dst, bg.Gradient.From, bg.Gradient.To)
	case editor.BackgroundImage:
		if src == nil {
			return fmt.Errorf("%w: no source for background %q", ErrRender, bg.Image)
		}
		img, err := src.Background(ctx, bg.Image)
		if err != nil {
			return fmt.Errorf("%w: background %q: %v", ErrRender, bg.Image, err)
		}
		if img == nil || img.Bounds().Empty() {
			return fmt.Errorf("%w: background %q is empty", ErrRender, bg.Image)
		}
		cover(dst, img)
	default:
		return fmt.Errorf("%w: unknown background kind %v", ErrRender, bg.Kind)
	}
	return nil
}

func fill(dst *image.RGBA, c color.RGBA) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// paintGradient runs from the top left corner to the bottom right one.
func paintGradient(dst *image.RGBA, from, to color.RGBA) {
	var lut [gradientSteps]color.RGBA
	for i := range lut {
		lut[i] = colorspec.Blend(from, to, float64(i)/float64(gradientSteps-1))
	}
	b := dst.Bounds()
	w, h := float64(max(b.Dx()-1, 1)), float64(max(b.Dy()-1, 1))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		ty := float64(y-b.Min.Y) / h
		for x := b.Min.X; x < b.Max.X; x++ {
			t := (float64(x-b.Min.X)/w + ty) / 2
			dst.SetRGBA(x, y, lut[int(t*(gradientSteps-1)+0.5)])
		}
	}
}

// cover scales img to fill dst completely, cropping the overflow evenly.
func cover(dst *image.RGBA, img image.Image) {
	db, sb := dst.Bounds(), img.Bounds()
	dw, dh := float64(db.Dx()), float64(db.Dy())
	sw, sh := float64(sb.Dx()), float64(sb.Dy())

	crop := sb
	if sw/sh > dw/dh {
		w := int(sh * dw / dh)
		x := sb.Min.X + (sb.Dx()-w)/2
		crop = image.Rect(x, sb.Min.Y, x+w, sb.Max.Y)
	} else {
		h := int(sw * dh / dw)
		y := sb.Min.Y + (sb.Dy()-h)/2
		crop = image.Rect(sb.Min.X, y, sb.Max.X, y+h)
	}
	xdraw.CatmullRom.Scale(dst, db, img, crop, draw.Src, nil)
}

// flatBackground reports whether bg has no texture for blur to act on.
func flatBackground(bg editor.Background) bool {
	switch bg.Kind {
	case editor.BackgroundGradient, editor.BackgroundImage:
		return false
	}
	return true
}
