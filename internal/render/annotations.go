package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"github.com/example/snapframe/internal/annotation"
	"github.com/example/snapframe/internal/colorspec"
	"github.com/example/snapframe/internal/fonts"
)

// HandleSize is the side of a selection handle square in output pixels.
const HandleSize = 8

// DrawAnnotations renders list onto dst in order, later entries on top.
// Each annotation is drawn on its own layer so opacity applies to the
// whole shape.
func DrawAnnotations(dst *image.RGBA, f Frame, list []annotation.Annotation) error {
	for _, a := range list {
		if err := drawAnnotation(dst, f, a); err != nil {
			return err
		}
	}
	return nil
}

func drawAnnotation(dst *image.RGBA, f Frame, a annotation.Annotation) error {
	style := annotation.StyleOf(a)
	r := layerRect(f, a, style).Intersect(dst.Bounds())
	if r.Empty() {
		return nil
	}
	layer := image.NewRGBA(r)
	if err := paintAnnotation(layer, f, a, style); err != nil {
		return err
	}
	alpha := uint8(style.Alpha()*255 + 0.5)
	draw.DrawMask(dst, r, layer, r.Min, image.NewUniform(color.Alpha{A: alpha}), image.Point{}, draw.Over)
	return nil
}

// layerRect covers everything a may paint, strokes and arrow heads included.
func layerRect(f Frame, a annotation.Annotation, s annotation.Style) image.Rectangle {
	extra := s.BorderWidth + 2
	if a.Kind() == annotation.KindArrow {
		extra += annotation.ArrowHeadLength(s.BorderWidth)
	}
	return f.canvasBox(a.Bounds()).Inset(-f.px(extra) - 1)
}

func paintAnnotation(img *image.RGBA, f Frame, a annotation.Annotation, s annotation.Style) error {
	thick := f.px(s.BorderWidth)
	switch v := a.(type) {
	case annotation.Rectangle:
		r := f.canvasBox(v.Box)
		if s.Fill.A > 0 {
			draw.Draw(img, r, image.NewUniform(s.Fill), image.Point{}, draw.Src)
		}
		if thick > 0 && s.Border.A > 0 {
			drawRect(img, r, s.Border, thick)
		}
	case annotation.Circle:
		r := f.canvasBox(v.Box)
		if s.Fill.A > 0 {
			fillEllipse(img, r, s.Fill)
		}
		if thick > 0 && s.Border.A > 0 {
			drawEllipse(img, r, s.Border, thick)
		}
	case annotation.Line:
		p0, p1 := f.canvasPoint(v.Start), f.canvasPoint(v.End)
		drawLine(img, p0.X, p0.Y, p1.X, p1.Y, s.Border, max(thick, 1))
	case annotation.Arrow:
		p0, p1 := f.canvasPoint(v.Start), f.canvasPoint(v.End)
		head := annotation.ArrowHeadLength(s.BorderWidth) * f.Scale
		drawArrow(img, p0.X, p0.Y, p1.X, p1.Y, s.Border, max(thick, 1), head)
	case annotation.Text:
		return paintText(img, f, v, s)
	case annotation.Label:
		return paintLabel(img, f, v, s)
	}
	return nil
}

func paintText(img *image.RGBA, f Frame, t annotation.Text, s annotation.Style) error {
	col := s.Fill
	if col.A == 0 {
		col = s.Border
	}
	size := t.FontSize * f.Scale
	at := f.canvasPoint(t.Bounds().Min())
	if w := f.px(s.BorderWidth); w > 0 && s.Border.A > 0 && s.Border != col {
		for _, d := range [][2]int{{-w, 0}, {w, 0}, {0, -w}, {0, w}, {-w, -w}, {w, w}, {-w, w}, {w, -w}} {
			if err := fonts.DrawString(img, at.X+d[0], at.Y+d[1], t.Content, s.Border, size); err != nil {
				return err
			}
		}
	}
	return fonts.DrawString(img, at.X, at.Y, t.Content, col, size)
}

func paintLabel(img *image.RGBA, f Frame, l annotation.Label, s annotation.Style) error {
	c := f.canvasPoint(l.Center)
	r := int(math.Round(l.Radius() * f.Scale))
	disc := s.Fill
	if disc.A == 0 {
		disc = s.Border
	}
	fillCircle(img, c.X, c.Y, r, disc)
	if w := f.px(s.BorderWidth); w > 0 && s.Border.A > 0 && s.Border != disc {
		drawEllipse(img, image.Rect(c.X-r, c.Y-r, c.X+r, c.Y+r), s.Border, w)
	}

	text := strconv.Itoa(l.Number)
	size := l.FontSize * f.Scale
	m, err := fonts.Measure(text, size)
	if err != nil {
		return err
	}
	return fonts.DrawString(img, c.X-m.Width/2, c.Y-m.Height/2, text, colorspec.Contrast(disc), size)
}

// DrawSelection outlines a with a dashed box and draws its resize handles.
func DrawSelection(dst *image.RGBA, f Frame, a annotation.Annotation) {
	if a == nil {
		return
	}
	if k := a.Kind(); k != annotation.KindLine && k != annotation.KindArrow {
		drawDashedRect(dst, f.canvasBox(a.Bounds()).Inset(-2), 4, 1, color.White, color.Black)
	}
	handles := annotation.Handles(a)
	points := make([]image.Point, len(handles))
	for i, h := range handles {
		points[i] = f.canvasPoint(h.At)
	}
	for _, hr := range handleRects(points, HandleSize) {
		draw.Draw(dst, hr, image.NewUniform(color.White), image.Point{}, draw.Src)
		drawRect(dst, hr, color.Black, 1)
	}
}
