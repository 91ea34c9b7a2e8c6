package appstate

import (
	"image"
	"math"

	"github.com/example/snapframe/internal/annotation"
	"github.com/example/snapframe/internal/render"
)

// viewport is where the preview canvas is shown inside the window.
type viewport struct {
	dst  image.Rectangle
	zoom float64
}

// canvasArea is the window region left for the canvas.
func canvasArea(width, height int) image.Rectangle {
	return image.Rect(toolbarWidth, 0, width, height-bottomHeight)
}

// fitView scales a canvas of the given size to fit area, centred.
func fitView(canvas image.Point, area image.Rectangle) viewport {
	if canvas.X <= 0 || canvas.Y <= 0 || area.Empty() {
		return viewport{dst: image.Rectangle{Min: area.Min, Max: area.Min}, zoom: 1}
	}
	z := math.Min(float64(area.Dx())/float64(canvas.X), float64(area.Dy())/float64(canvas.Y))
	w := int(math.Round(float64(canvas.X) * z))
	h := int(math.Round(float64(canvas.Y) * z))
	min := image.Pt(area.Min.X+(area.Dx()-w)/2, area.Min.Y+(area.Dy()-h)/2)
	return viewport{dst: image.Rectangle{Min: min, Max: min.Add(image.Pt(w, h))}, zoom: z}
}

// toImage maps a window position to screenshot coordinates.
func (v viewport) toImage(f render.Frame, x, y float32) annotation.Point {
	return f.FromCanvas((float64(x)-float64(v.dst.Min.X))/v.zoom, (float64(y)-float64(v.dst.Min.Y))/v.zoom)
}
