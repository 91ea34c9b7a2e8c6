package render

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/noise"
)

// noiseSeed keeps grain identical between renders of the same settings.
const noiseSeed = 0x5eed

// maxGrainOpacity is the overlay strength at the top of the noise range.
const maxGrainOpacity = 0.6

func blurBackground(img *image.RGBA, radius float64) *image.RGBA {
	if radius <= 0 {
		return img
	}
	return blur.Gaussian(img, radius)
}

// addGrain overlays monochrome noise. amount is in [0, 1].
func addGrain(img *image.RGBA, amount float64) *image.RGBA {
	if amount <= 0 {
		return img
	}
	b := img.Bounds()
	rng := rand.New(rand.NewPCG(noiseSeed, uint64(b.Dx())<<32|uint64(b.Dy())))
	grain := noise.Generate(b.Dx(), b.Dy(), &noise.Options{
		NoiseFn:    func() uint8 { return uint8(rng.IntN(256)) },
		Monochrome: true,
	})
	overlaid := blend.Overlay(img, grain)
	return blend.Opacity(img, overlaid, math.Min(amount, 1)*maxGrainOpacity)
}

// roundedMask returns an antialiased alpha mask for a w by h rectangle with
// corners of radius r.
func roundedMask(w, h int, r float64) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r = math.Min(r, math.Min(float64(w), float64(h))/2)
	if r <= 0 {
		for i := range mask.Pix {
			mask.Pix[i] = 0xff
		}
		return mask
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mask.SetAlpha(x, y, color.Alpha{A: cornerCoverage(float64(x)+0.5, float64(y)+0.5, float64(w), float64(h), r)})
		}
	}
	return mask
}

// cornerCoverage approximates how much of the pixel centred at (px, py) is
// inside the rounded rectangle.
func cornerCoverage(px, py, w, h, r float64) uint8 {
	cx := math.Max(r, math.Min(px, w-r))
	cy := math.Max(r, math.Min(py, h-r))
	d := math.Hypot(px-cx, py-cy)
	switch {
	case d <= r-0.5:
		return 0xff
	case d >= r+0.5:
		return 0
	}
	return uint8((r + 0.5 - d) * 255)
}
