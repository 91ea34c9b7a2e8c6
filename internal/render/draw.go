package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// setBrush stamps a round brush of diameter thick centred on (x, y).
func setBrush(img *image.RGBA, x, y, thick int, col color.Color) {
	r := thick / 2
	if r <= 0 {
		img.Set(x, y, col)
		return
	}
	limit := r*r + r
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= limit {
				img.Set(x+dx, y+dy, col)
			}
		}
	}
}

// drawLine is Bresenham with a round brush.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setBrush(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	x0, y0, x1, y1 := rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y
	drawLine(img, x0, y0, x1, y0, col, thick)
	drawLine(img, x1, y0, x1, y1, col, thick)
	drawLine(img, x1, y1, x0, y1, col, thick)
	drawLine(img, x0, y1, x0, y0, col, thick)
}

// drawEllipse strokes the ellipse inscribed in rect.
func drawEllipse(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	cx := float64(rect.Min.X+rect.Max.X) / 2
	cy := float64(rect.Min.Y+rect.Max.Y) / 2
	rx := float64(rect.Dx()) / 2
	ry := float64(rect.Dy()) / 2
	steps := max(int(math.Ceil(2*math.Pi*math.Sqrt((rx*rx+ry*ry)/2))), 8)
	var px, py int
	for i := 0; i <= steps; i++ {
		angle := 2 * math.Pi * float64(i) / float64(steps)
		x := int(math.Round(cx + math.Cos(angle)*rx))
		y := int(math.Round(cy + math.Sin(angle)*ry))
		if i > 0 {
			drawLine(img, px, py, x, y, col, thick)
		}
		px, py = x, y
	}
}

// fillEllipse fills the ellipse inscribed in rect.
func fillEllipse(img *image.RGBA, rect image.Rectangle, col color.Color) {
	cx := float64(rect.Min.X+rect.Max.X) / 2
	cy := float64(rect.Min.Y+rect.Max.Y) / 2
	rx := float64(rect.Dx()) / 2
	ry := float64(rect.Dy()) / 2
	if rx <= 0 || ry <= 0 {
		return
	}
	src := image.NewUniform(col)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		dy := (float64(y) + 0.5 - cy) / ry
		if dy*dy > 1 {
			continue
		}
		span := rx * math.Sqrt(1-dy*dy)
		x0 := int(math.Round(cx - span))
		x1 := int(math.Round(cx + span))
		draw.Draw(img, image.Rect(x0, y, x1, y+1), src, image.Point{}, draw.Src)
	}
}

func fillCircle(img *image.RGBA, cx, cy, r int, col color.Color) {
	fillEllipse(img, image.Rect(cx-r, cy-r, cx+r+1, cy+r+1), col)
}

// drawArrow draws the shaft and a two stroke head of length head at (x1, y1).
func drawArrow(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int, head float64) {
	drawLine(img, x0, y0, x1, y1, col, thick)
	angle := math.Atan2(float64(y1-y0), float64(x1-x0))
	for _, a := range []float64{angle + math.Pi/6, angle - math.Pi/6} {
		hx := x1 - int(math.Round(math.Cos(a)*head))
		hy := y1 - int(math.Round(math.Sin(a)*head))
		drawLine(img, x1, y1, hx, hy, col, thick)
	}
}

// drawDashedRect outlines rect with alternating c1 and c2 dashes so it stays
// visible on any background.
func drawDashedRect(img *image.RGBA, rect image.Rectangle, dash, thick int, c1, c2 color.Color) {
	if dash <= 0 {
		dash = 4
	}
	x0, y0, x1, y1 := rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y
	edges := [][4]int{{x0, y0, x1, y0}, {x1, y0, x1, y1}, {x1, y1, x0, y1}, {x0, y1, x0, y0}}
	for _, e := range edges {
		drawDashedLine(img, e[0], e[1], e[2], e[3], dash, thick, c1, c2)
	}
}

// drawDashedLine handles axis aligned segments only.
func drawDashedLine(img *image.RGBA, x0, y0, x1, y1, dash, thick int, c1, c2 color.Color) {
	horiz := y0 == y1
	length := abs(x1 - x0)
	if !horiz {
		length = abs(y1 - y0)
	}
	sx, sy := sign(x1-x0), sign(y1-y0)
	for i := 0; i <= length; i++ {
		col := c1
		if (i/dash)%2 == 1 {
			col = c2
		}
		x, y := x0+sx*i, y0+sy*i
		for t := 0; t < thick; t++ {
			if horiz {
				img.Set(x, y+t, col)
			} else {
				img.Set(x+t, y, col)
			}
		}
	}
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// handleRects returns squares of side size centred on each point.
func handleRects(points []image.Point, size int) []image.Rectangle {
	hs := size / 2
	out := make([]image.Rectangle, len(points))
	for i, p := range points {
		out[i] = image.Rect(p.X-hs, p.Y-hs, p.X+hs, p.Y+hs)
	}
	return out
}
