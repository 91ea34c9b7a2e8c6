package annotation

import (
	"math"
	"strings"
)

// MinExtent is the smallest width, height or length a drawn shape may have.
// Gestures producing anything smaller are treated as accidental clicks.
const MinExtent = 2.0

// Point is a position in image pixel space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Box is an axis aligned rectangle with non-negative size.
type Box struct {
	X, Y          float64
	Width, Height float64
}

// BoxFromPoints returns the normalised box spanning a and b, whichever
// corner each one is.
func BoxFromPoints(a, b Point) Box {
	return Box{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

func (b Box) Min() Point    { return Point{b.X, b.Y} }
func (b Box) Max() Point    { return Point{b.X + b.Width, b.Y + b.Height} }
func (b Box) Center() Point { return Point{b.X + b.Width/2, b.Y + b.Height/2} }

// Add translates b by d.
func (b Box) Add(d Point) Box {
	b.X += d.X
	b.Y += d.Y
	return b
}

// Inflate grows b by d on every side. Negative d shrinks it, never below zero.
func (b Box) Inflate(d float64) Box {
	out := Box{X: b.X - d, Y: b.Y - d, Width: b.Width + 2*d, Height: b.Height + 2*d}
	if out.Width < 0 {
		out.X, out.Width = b.Center().X, 0
	}
	if out.Height < 0 {
		out.Y, out.Height = b.Center().Y, 0
	}
	return out
}

// Contains reports whether p is inside b, edges included.
func (b Box) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.Width && p.Y >= b.Y && p.Y <= b.Y+b.Height
}

// Union returns the smallest box covering b and o.
func (b Box) Union(o Box) Box {
	return BoxFromPoints(
		Point{math.Min(b.X, o.X), math.Min(b.Y, o.Y)},
		Point{math.Max(b.X+b.Width, o.X+o.Width), math.Max(b.Y+b.Height, o.Y+o.Height)},
	)
}

// Degenerate reports whether a is too small to keep. Boxes need both sides
// of at least MinExtent, segments a length of at least MinExtent, text must
// not be blank. Labels are never degenerate.
func Degenerate(a Annotation) bool {
	switch v := a.(type) {
	case Rectangle:
		return v.Box.Width < MinExtent || v.Box.Height < MinExtent
	case Circle:
		return v.Box.Width < MinExtent || v.Box.Height < MinExtent
	case Line:
		return v.Start.Dist(v.End) < MinExtent
	case Arrow:
		return v.Start.Dist(v.End) < MinExtent
	case Text:
		return strings.TrimSpace(v.Content) == ""
	}
	return false
}

// HitTest reports whether p touches a, allowing tol pixels of slack.
// Rectangles and circles hit anywhere inside, filled or not, so thin
// outlines stay easy to grab.
func HitTest(a Annotation, p Point, tol float64) bool {
	switch v := a.(type) {
	case Rectangle:
		return v.Box.Inflate(v.Style.BorderWidth/2 + tol).Contains(p)
	case Circle:
		return inEllipse(v.Box.Inflate(v.Style.BorderWidth/2+tol), p)
	case Line:
		return segmentDist(p, v.Start, v.End) <= strokeSlack(v.Style)+tol
	case Arrow:
		if segmentDist(p, v.Start, v.End) <= strokeSlack(v.Style)+tol {
			return true
		}
		return v.End.Dist(p) <= ArrowHeadLength(v.Style.BorderWidth)+tol
	case Text:
		return v.Bounds().Inflate(tol).Contains(p)
	case Label:
		return v.Center.Dist(p) <= v.Radius()+tol
	}
	return false
}

// ArrowHeadLength is the head size drawn for an arrow with stroke width w.
func ArrowHeadLength(w float64) float64 {
	return 6 + 3*math.Max(w, 1)
}

func strokeSlack(s Style) float64 {
	return math.Max(s.BorderWidth/2, 1)
}

func inEllipse(b Box, p Point) bool {
	rx, ry := b.Width/2, b.Height/2
	if rx <= 0 || ry <= 0 {
		return false
	}
	c := b.Center()
	dx, dy := (p.X-c.X)/rx, (p.Y-c.Y)/ry
	return dx*dx+dy*dy <= 1
}

func segmentDist(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(Point{a.X + t*dx, a.Y + t*dy})
}

// HitTopmost returns the index of the last annotation in list touched by p,
// or -1. Later entries render on top so they win.
func HitTopmost(list []Annotation, p Point, tol float64) int {
	for i := len(list) - 1; i >= 0; i-- {
		if HitTest(list[i], p, tol) {
			return i
		}
	}
	return -1
}
