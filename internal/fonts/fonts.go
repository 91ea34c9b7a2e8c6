// Package fonts provides the Go Regular faces shared by annotation geometry
// and rendering so that measured text bounds match what gets drawn.
package fonts

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultSize is the point size used when a non-positive size is requested.
const DefaultSize = 16

var (
	parseOnce sync.Once
	parsed    *opentype.Font
	parseErr  error

	faces sync.Map // map[float64]font.Face
)

func regular() (*opentype.Font, error) {
	parseOnce.Do(func() {
		parsed, parseErr = opentype.Parse(goregular.TTF)
		if parseErr != nil {
			parseErr = fmt.Errorf("parse font: %w", parseErr)
		}
	})
	return parsed, parseErr
}

// Face returns a cached face for size. Sizes are rounded to a tenth of a point
// so slider input does not create an unbounded number of faces.
func Face(size float64) (font.Face, error) {
	if size <= 0 {
		size = DefaultSize
	}
	size = math.Round(size*10) / 10
	if f, ok := faces.Load(size); ok {
		return f.(font.Face), nil
	}
	f, err := regular()
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("font face %.1f: %w", size, err)
	}
	actual, _ := faces.LoadOrStore(size, face)
	return actual.(font.Face), nil
}

// Metrics describes the box of a rendered string. Baseline is the offset from
// the top of the box to the text baseline.
type Metrics struct {
	Width    int
	Height   int
	Baseline int
}

// Measure returns the box text occupies at size.
func Measure(text string, size float64) (Metrics, error) {
	face, err := Face(size)
	if err != nil {
		return Metrics{}, err
	}
	d := &font.Drawer{Face: face}
	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	return Metrics{
		Width:    d.MeasureString(text).Ceil(),
		Height:   ascent + m.Descent.Ceil(),
		Baseline: ascent,
	}, nil
}

// DrawString renders text with its top-left corner at (x, y).
func DrawString(dst draw.Image, x, y int, text string, col color.Color, size float64) error {
	face, err := Face(size)
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
	return nil
}
