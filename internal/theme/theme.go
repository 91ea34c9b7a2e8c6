// Package theme holds the colours of the editor window chrome.
package theme

import (
	"image/color"
	"sort"
	"strings"
)

// Theme defines the colour palette for the editor UI.
type Theme struct {
	Name string

	Background color.RGBA // behind the canvas
	Foreground color.RGBA // toolbar and status text

	ToolbarBackground color.RGBA
	ButtonBackground  color.RGBA
	ButtonActive      color.RGBA // the current tool
	ButtonBorder      color.RGBA
	StatusError       color.RGBA

	// Transparent canvas areas are drawn as a checkerboard.
	CheckerLight color.RGBA
	CheckerDark  color.RGBA
}

// Default returns the light theme.
func Default() *Theme {
	return &Theme{
		Name:              "light",
		Background:        color.RGBA{220, 220, 220, 255},
		Foreground:        color.RGBA{0, 0, 0, 255},
		ToolbarBackground: color.RGBA{235, 235, 235, 255},
		ButtonBackground:  color.RGBA{205, 205, 205, 255},
		ButtonActive:      color.RGBA{150, 180, 230, 255},
		ButtonBorder:      color.RGBA{90, 90, 90, 255},
		StatusError:       color.RGBA{190, 30, 30, 255},
		CheckerLight:      color.RGBA{220, 220, 220, 255},
		CheckerDark:       color.RGBA{192, 192, 192, 255},
	}
}

// Dark returns the dark theme.
func Dark() *Theme {
	return &Theme{
		Name:              "dark",
		Background:        color.RGBA{40, 42, 46, 255},
		Foreground:        color.RGBA{230, 230, 230, 255},
		ToolbarBackground: color.RGBA{28, 30, 33, 255},
		ButtonBackground:  color.RGBA{58, 61, 66, 255},
		ButtonActive:      color.RGBA{60, 100, 170, 255},
		ButtonBorder:      color.RGBA{110, 110, 110, 255},
		StatusError:       color.RGBA{240, 100, 100, 255},
		CheckerLight:      color.RGBA{80, 80, 80, 255},
		CheckerDark:       color.RGBA{60, 60, 60, 255},
	}
}

var builtin = map[string]func() *Theme{
	"light":   Default,
	"default": Default,
	"dark":    Dark,
}

// Builtin returns a fresh copy of the named built in theme.
func Builtin(name string) (*Theme, bool) {
	fn, ok := builtin[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// Names lists the built in themes.
func Names() []string {
	out := make([]string, 0, len(builtin))
	for n := range builtin {
		if n != "default" {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// Clone returns a copy of t.
func (t *Theme) Clone() *Theme {
	c := *t
	return &c
}
