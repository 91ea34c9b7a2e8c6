package main

import (
	"image/color"
	"testing"

	"github.com/example/snapframe/internal/annotation"
)

func TestParseAnnotation(t *testing.T) {
	red := annotation.DefaultStyle()

	tests := []struct {
		spec string
		want annotation.Annotation
	}{
		{"rect 10 20 0 5", annotation.Rectangle{Box: annotation.Box{X: 0, Y: 5, Width: 10, Height: 15}, Style: red}},
		{"circle 0 0 4 4", annotation.Circle{Box: annotation.Box{Width: 4, Height: 4}, Style: red}},
		{"line 1 2 3 4", annotation.Line{Start: annotation.Pt(1, 2), End: annotation.Pt(3, 4), Style: red}},
		{"ARROW 1 2 3 4 width=2", annotation.Arrow{Start: annotation.Pt(1, 2), End: annotation.Pt(3, 4), Style: annotation.Style{Border: red.Border, BorderWidth: 2, Opacity: 1}}},
		{"rect 0 0 1 1 color=blue fill=#00ff00 opacity=0.5", annotation.Rectangle{
			Box:   annotation.Box{Width: 1, Height: 1},
			Style: annotation.Style{Border: color.RGBA{0, 0, 255, 255}, Fill: color.RGBA{0, 255, 0, 255}, BorderWidth: 4, Opacity: 0.5},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := parseAnnotation(tt.spec, nil)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseAnnotationText(t *testing.T) {
	got, err := parseAnnotation("text 5 6 Look here align=center", nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	txt, ok := got.(annotation.Text)
	if !ok {
		t.Fatalf("expected text, got %T", got)
	}
	if txt.Content != "Look here" || txt.Align != annotation.AlignCenter || txt.FontSize != textSize {
		t.Fatalf("unexpected text %+v", txt)
	}
	if txt.Style.Fill != annotation.DefaultStyle().Border || txt.Style.BorderWidth != 0 {
		t.Fatalf("text should be filled with the stroke colour, got %+v", txt.Style)
	}
}

func TestParseAnnotationNumbersFollowExisting(t *testing.T) {
	existing := []annotation.Annotation{
		annotation.Label{ID: "a", Number: 1},
		annotation.Rectangle{ID: "b"},
		annotation.Label{ID: "c", Number: 2},
	}
	got, err := parseAnnotation("number 3 4", existing)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if n := got.(annotation.Label).Number; n != 3 {
		t.Fatalf("expected number 3, got %d", n)
	}
}

func TestParseAnnotationErrors(t *testing.T) {
	for _, spec := range []string{
		"",
		"hexagon 1 2 3 4",
		"rect 1 2 3",
		"rect 1 2 3 x",
		"rect 1 2 3 4 color=notacolour",
		"rect 1 2 3 4 opacity=2",
		"rect 1 2 3 4 glow=1",
		"text 1 2",
		"text 1 2 hi align=diagonal",
		"number 1 2 size=-3",
	} {
		if _, err := parseAnnotation(spec, nil); err == nil {
			t.Errorf("expected error for %q", spec)
		}
	}
}
