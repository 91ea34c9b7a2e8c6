// Package annotation defines the drawable overlay objects placed on a
// screenshot. Annotations are values: every edit produces a new value that
// keeps the same ID, so snapshots holding them can be shared freely.
package annotation

import (
	"image/color"
	"math"

	"github.com/example/snapframe/internal/fonts"
)

// ID identifies an annotation for its whole lifetime.
type ID string

// Kind enumerates the annotation variants.
type Kind int

const (
	KindRectangle Kind = iota
	KindCircle
	KindLine
	KindArrow
	KindText
	KindLabel
)

var kindNames = [...]string{"rectangle", "circle", "line", "arrow", "text", "label"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Align controls how a text annotation is laid out around its origin.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Style is the paint shared by all variants. A zero Fill alpha means the
// shape is not filled. Opacity is in (0, 1]; zero means fully opaque.
type Style struct {
	Fill        color.RGBA
	Border      color.RGBA
	BorderWidth float64
	Opacity     float64
}

// DefaultStyle is a red 4px outline with no fill.
func DefaultStyle() Style {
	return Style{
		Border:      color.RGBA{255, 0, 0, 255},
		BorderWidth: 4,
		Opacity:     1,
	}
}

// Alpha returns the effective opacity in [0, 1].
func (s Style) Alpha() float64 {
	if s.Opacity <= 0 || s.Opacity > 1 {
		return 1
	}
	return s.Opacity
}

// Annotation is implemented only by the variants in this package.
type Annotation interface {
	AnnotationID() ID
	Kind() Kind
	// Bounds is the axis aligned box the rendered annotation occupies,
	// excluding stroke overhang.
	Bounds() Box
	// Moved returns a copy translated by (dx, dy).
	Moved(dx, dy float64) Annotation
	// WithID returns a copy carrying id.
	WithID(id ID) Annotation

	annotation()
}

// Rectangle is an outlined and optionally filled box.
type Rectangle struct {
	ID    ID
	Box   Box
	Style Style
}

// Circle is an ellipse inscribed in Box.
type Circle struct {
	ID    ID
	Box   Box
	Style Style
}

// Line is a straight segment.
type Line struct {
	ID         ID
	Start, End Point
	Style      Style
}

// Arrow is a segment with a head at End.
type Arrow struct {
	ID         ID
	Start, End Point
	Style      Style
}

// Text is a single line of text. Origin is the top of the text box; its X is
// the left edge, centre or right edge depending on Align. Style.Fill is the
// text colour.
type Text struct {
	ID       ID
	Origin   Point
	Content  string
	FontSize float64
	Align    Align
	Style    Style
}

// Label is a numbered disc centred on Center. Style.Fill paints the disc.
type Label struct {
	ID       ID
	Center   Point
	Number   int
	FontSize float64
	Style    Style
}

func (a Rectangle) AnnotationID() ID { return a.ID }
func (a Circle) AnnotationID() ID    { return a.ID }
func (a Line) AnnotationID() ID      { return a.ID }
func (a Arrow) AnnotationID() ID     { return a.ID }
func (a Text) AnnotationID() ID      { return a.ID }
func (a Label) AnnotationID() ID     { return a.ID }

func (Rectangle) Kind() Kind { return KindRectangle }
func (Circle) Kind() Kind    { return KindCircle }
func (Line) Kind() Kind      { return KindLine }
func (Arrow) Kind() Kind     { return KindArrow }
func (Text) Kind() Kind      { return KindText }
func (Label) Kind() Kind     { return KindLabel }

func (Rectangle) annotation() {}
func (Circle) annotation()    {}
func (Line) annotation()      {}
func (Arrow) annotation()     {}
func (Text) annotation()      {}
func (Label) annotation()     {}

func (a Rectangle) Bounds() Box { return a.Box }
func (a Circle) Bounds() Box    { return a.Box }
func (a Line) Bounds() Box      { return BoxFromPoints(a.Start, a.End) }
func (a Arrow) Bounds() Box     { return BoxFromPoints(a.Start, a.End) }

func (a Text) Bounds() Box {
	m, err := fonts.Measure(a.Content, a.FontSize)
	if err != nil {
		size := a.FontSize
		if size <= 0 {
			size = fonts.DefaultSize
		}
		return Box{X: a.Origin.X, Y: a.Origin.Y, Height: size}
	}
	w := float64(m.Width)
	x := a.Origin.X
	switch a.Align {
	case AlignCenter:
		x -= w / 2
	case AlignRight:
		x -= w
	}
	return Box{X: x, Y: a.Origin.Y, Width: w, Height: float64(m.Height)}
}

// Radius is the disc radius, derived from the font size.
func (a Label) Radius() float64 {
	size := a.FontSize
	if size <= 0 {
		size = fonts.DefaultSize
	}
	return math.Max(size, 8)
}

func (a Label) Bounds() Box {
	r := a.Radius()
	return Box{X: a.Center.X - r, Y: a.Center.Y - r, Width: 2 * r, Height: 2 * r}
}

func (a Rectangle) Moved(dx, dy float64) Annotation { a.Box = a.Box.Add(Pt(dx, dy)); return a }
func (a Circle) Moved(dx, dy float64) Annotation    { a.Box = a.Box.Add(Pt(dx, dy)); return a }

func (a Line) Moved(dx, dy float64) Annotation {
	a.Start, a.End = a.Start.Add(Pt(dx, dy)), a.End.Add(Pt(dx, dy))
	return a
}

func (a Arrow) Moved(dx, dy float64) Annotation {
	a.Start, a.End = a.Start.Add(Pt(dx, dy)), a.End.Add(Pt(dx, dy))
	return a
}

func (a Text) Moved(dx, dy float64) Annotation  { a.Origin = a.Origin.Add(Pt(dx, dy)); return a }
func (a Label) Moved(dx, dy float64) Annotation { a.Center = a.Center.Add(Pt(dx, dy)); return a }

func (a Rectangle) WithID(id ID) Annotation { a.ID = id; return a }
func (a Circle) WithID(id ID) Annotation    { a.ID = id; return a }
func (a Line) WithID(id ID) Annotation      { a.ID = id; return a }
func (a Arrow) WithID(id ID) Annotation     { a.ID = id; return a }
func (a Text) WithID(id ID) Annotation      { a.ID = id; return a }
func (a Label) WithID(id ID) Annotation     { a.ID = id; return a }

// StyleOf returns the style carried by a.
func StyleOf(a Annotation) Style {
	switch v := a.(type) {
	case Rectangle:
		return v.Style
	case Circle:
		return v.Style
	case Line:
		return v.Style
	case Arrow:
		return v.Style
	case Text:
		return v.Style
	case Label:
		return v.Style
	}
	return Style{}
}

// WithStyle returns a copy of a using s.
func WithStyle(a Annotation, s Style) Annotation {
	switch v := a.(type) {
	case Rectangle:
		v.Style = s
		return v
	case Circle:
		v.Style = s
		return v
	case Line:
		v.Style = s
		return v
	case Arrow:
		v.Style = s
		return v
	case Text:
		v.Style = s
		return v
	case Label:
		v.Style = s
		return v
	}
	return a
}

// CountLabels returns how many numbered labels are in list.
func CountLabels(list []Annotation) int {
	n := 0
	for _, a := range list {
		if a.Kind() == KindLabel {
			n++
		}
	}
	return n
}

// NextLabelNumber is the number shown on a label created now. Numbers are
// not compacted after deletes.
func NextLabelNumber(list []Annotation) int {
	return CountLabels(list) + 1
}
