package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/snapframe/internal/annotation"
	"github.com/example/snapframe/internal/colorspec"
	"github.com/example/snapframe/internal/fonts"
)

// annotationList collects repeated -annotate flags.
type annotationList []string

func (l *annotationList) String() string {
	return strings.Join(*l, "; ")
}

func (l *annotationList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// textSize matches the size the editor gives new text and labels.
const textSize = fonts.DefaultSize * 1.5

// parseAnnotation reads one -annotate value. The first word is the shape,
// followed by its coordinates in screenshot pixels and optional key=value
// style settings:
//
//	rect x0 y0 x1 y1 [color=red] [fill=#ff000040] [width=4] [opacity=1]
//	circle x0 y0 x1 y1
//	line x0 y0 x1 y1
//	arrow x0 y0 x1 y1
//	text x y words... [size=24] [align=left|center|right]
//	number x y [size=24]
//
// Numbers are assigned after the labels already in existing.
func parseAnnotation(spec string, existing []annotation.Annotation) (annotation.Annotation, error) {
	var words []string
	opts := map[string]string{}
	for _, f := range strings.Fields(spec) {
		if k, v, ok := strings.Cut(f, "="); ok && k != "" && !strings.ContainsAny(k, "\"'") {
			opts[strings.ToLower(k)] = v
			continue
		}
		words = append(words, f)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("empty annotation")
	}
	shape := strings.ToLower(words[0])
	args := words[1:]

	style := annotation.DefaultStyle()
	if err := applyStyle(&style, opts); err != nil {
		return nil, fmt.Errorf("%s: %w", shape, err)
	}
	size := textSize
	if v, ok := opts["size"]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("%s: invalid size %q", shape, v)
		}
		size = f
	}

	switch shape {
	case "rect", "rectangle", "circle", "line", "arrow":
		n, err := expectFloats(args, 4, shape)
		if err != nil {
			return nil, err
		}
		a, b := annotation.Pt(n[0], n[1]), annotation.Pt(n[2], n[3])
		switch shape {
		case "circle":
			return annotation.Circle{Box: annotation.BoxFromPoints(a, b), Style: style}, nil
		case "line":
			return annotation.Line{Start: a, End: b, Style: style}, nil
		case "arrow":
			return annotation.Arrow{Start: a, End: b, Style: style}, nil
		}
		return annotation.Rectangle{Box: annotation.BoxFromPoints(a, b), Style: style}, nil
	case "text":
		if len(args) < 3 {
			return nil, fmt.Errorf("text expects x y and the text")
		}
		n, err := expectFloats(args[:2], 2, shape)
		if err != nil {
			return nil, err
		}
		align, err := parseAlign(opts["align"])
		if err != nil {
			return nil, err
		}
		if _, ok := opts["fill"]; !ok {
			style.Fill = style.Border
		}
		style.BorderWidth = 0
		return annotation.Text{
			Origin:   annotation.Pt(n[0], n[1]),
			Content:  strings.Join(args[2:], " "),
			FontSize: size,
			Align:    align,
			Style:    style,
		}, nil
	case "number", "label":
		n, err := expectFloats(args, 2, shape)
		if err != nil {
			return nil, err
		}
		if _, ok := opts["fill"]; !ok {
			style.Fill = style.Border
		}
		return annotation.Label{
			Center:   annotation.Pt(n[0], n[1]),
			Number:   annotation.NextLabelNumber(existing),
			FontSize: size,
			Style:    style,
		}, nil
	}
	return nil, fmt.Errorf("unknown shape %q", shape)
}

func applyStyle(s *annotation.Style, opts map[string]string) error {
	for k, v := range opts {
		switch k {
		case "color", "colour", "border":
			c, err := colorspec.Parse(v)
			if err != nil {
				return err
			}
			s.Border = c
		case "fill":
			c, err := colorspec.Parse(v)
			if err != nil {
				return err
			}
			s.Fill = c
		case "width":
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid width %q", v)
			}
			s.BorderWidth = f
		case "opacity":
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f <= 0 || f > 1 {
				return fmt.Errorf("opacity must be in (0, 1], got %q", v)
			}
			s.Opacity = f
		case "size", "align":
		default:
			return fmt.Errorf("unknown option %q", k)
		}
	}
	return nil
}

func parseAlign(v string) (annotation.Align, error) {
	switch strings.ToLower(v) {
	case "", "left":
		return annotation.AlignLeft, nil
	case "center", "centre":
		return annotation.AlignCenter, nil
	case "right":
		return annotation.AlignRight, nil
	}
	return annotation.AlignLeft, fmt.Errorf("invalid align %q", v)
}

func expectFloats(args []string, n int, shape string) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s expects %d coordinates, got %d", shape, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid coordinate %q", shape, a)
		}
		out[i] = v
	}
	return out, nil
}
