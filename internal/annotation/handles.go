package annotation

import "math"

// Handle names a grab point used to resize an annotation.
type Handle int

const (
	HandleNone Handle = iota
	HandleTopLeft
	HandleTop
	HandleTopRight
	HandleRight
	HandleBottomRight
	HandleBottom
	HandleBottomLeft
	HandleLeft
	HandleStart
	HandleEnd
)

// HandlePoint is a handle and the position it is drawn at.
type HandlePoint struct {
	Handle Handle
	At     Point
}

// Handles returns the resize handles of a. Boxes get eight, segments get
// their two endpoints, text and labels get none.
func Handles(a Annotation) []HandlePoint {
	switch v := a.(type) {
	case Rectangle:
		return boxHandles(v.Box)
	case Circle:
		return boxHandles(v.Box)
	case Line:
		return []HandlePoint{{HandleStart, v.Start}, {HandleEnd, v.End}}
	case Arrow:
		return []HandlePoint{{HandleStart, v.Start}, {HandleEnd, v.End}}
	}
	return nil
}

func boxHandles(b Box) []HandlePoint {
	x0, y0 := b.X, b.Y
	x1, y1 := b.X+b.Width, b.Y+b.Height
	mx, my := (x0+x1)/2, (y0+y1)/2
	return []HandlePoint{
		{HandleTopLeft, Point{x0, y0}},
		{HandleTop, Point{mx, y0}},
		{HandleTopRight, Point{x1, y0}},
		{HandleRight, Point{x1, my}},
		{HandleBottomRight, Point{x1, y1}},
		{HandleBottom, Point{mx, y1}},
		{HandleBottomLeft, Point{x0, y1}},
		{HandleLeft, Point{x0, my}},
	}
}

// HitHandle returns the handle of a whose square of half size r contains p.
func HitHandle(a Annotation, p Point, r float64) Handle {
	for _, h := range Handles(a) {
		if math.Abs(p.X-h.At.X) <= r && math.Abs(p.Y-h.At.Y) <= r {
			return h.Handle
		}
	}
	return HandleNone
}

// Resize moves handle h of a by delta and returns the result. Boxes are
// normalised so dragging an edge past its opposite flips the box.
func Resize(a Annotation, h Handle, delta Point) Annotation {
	switch v := a.(type) {
	case Rectangle:
		v.Box = resizeBox(v.Box, h, delta)
		return v
	case Circle:
		v.Box = resizeBox(v.Box, h, delta)
		return v
	case Line:
		v.Start, v.End = moveEndpoint(v.Start, v.End, h, delta)
		return v
	case Arrow:
		v.Start, v.End = moveEndpoint(v.Start, v.End, h, delta)
		return v
	}
	return a
}

func resizeBox(b Box, h Handle, d Point) Box {
	x0, y0 := b.X, b.Y
	x1, y1 := b.X+b.Width, b.Y+b.Height
	switch h {
	case HandleTopLeft:
		x0, y0 = x0+d.X, y0+d.Y
	case HandleTop:
		y0 += d.Y
	case HandleTopRight:
		x1, y0 = x1+d.X, y0+d.Y
	case HandleRight:
		x1 += d.X
	case HandleBottomRight:
		x1, y1 = x1+d.X, y1+d.Y
	case HandleBottom:
		y1 += d.Y
	case HandleBottomLeft:
		x0, y1 = x0+d.X, y1+d.Y
	case HandleLeft:
		x0 += d.X
	default:
		return b
	}
	return BoxFromPoints(Point{x0, y0}, Point{x1, y1})
}

func moveEndpoint(start, end Point, h Handle, d Point) (Point, Point) {
	switch h {
	case HandleStart:
		start = start.Add(d)
	case HandleEnd:
		end = end.Add(d)
	}
	return start, end
}
