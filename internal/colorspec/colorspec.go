// Package colorspec parses and formats the colour strings used by settings,
// the CLI and the config file.
package colorspec

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ErrInvalid is returned for strings that are not a known colour.
var ErrInvalid = errors.New("invalid colour")

// Parse accepts #rgb, #rrggbb, #rrggbbaa, "transparent" and the SVG colour
// names (case insensitive).
func Parse(s string) (color.RGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return color.RGBA{}, fmt.Errorf("%w: empty", ErrInvalid)
	}
	if v == "transparent" || v == "none" {
		return color.RGBA{}, nil
	}
	if c, ok := colornames.Map[v]; ok {
		return c, nil
	}
	if !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	if len(v) == 9 {
		a, err := strconv.ParseUint(v[7:], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalid, s)
		}
		c, err := parseHex(v[:7], s)
		if err != nil {
			return color.RGBA{}, err
		}
		c.A = uint8(a)
		return premultiply(c), nil
	}
	return parseHex(v, s)
}

func parseHex(v, orig string) (color.RGBA, error) {
	c, err := colorful.Hex(v)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalid, orig)
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}, nil
}

// premultiply converts a straight alpha colour into color.RGBA's
// premultiplied form.
func premultiply(c color.RGBA) color.RGBA {
	a := uint32(c.A)
	return color.RGBA{
		R: uint8(uint32(c.R) * a / 255),
		G: uint8(uint32(c.G) * a / 255),
		B: uint8(uint32(c.B) * a / 255),
		A: c.A,
	}
}

// MustParse is Parse for compile time constants.
func MustParse(s string) color.RGBA {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Format renders c as #rrggbb, or #rrggbbaa when it is not opaque.
func Format(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	if c.A == 0 {
		return "transparent"
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

// Blend interpolates from a to b in CIE-L*a*b* space, which keeps gradient
// midpoints from going muddy. t is clamped to [0, 1].
func Blend(a, b color.RGBA, t float64) color.RGBA {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	ca, _ := colorful.MakeColor(opaque(a))
	cb, _ := colorful.MakeColor(opaque(b))
	r, g, bl := ca.BlendLab(cb, t).Clamped().RGB255()
	alpha := float64(a.A)*(1-t) + float64(b.A)*t
	return premultiply(color.RGBA{r, g, bl, uint8(alpha + 0.5)})
}

func opaque(c color.RGBA) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 255
	return n
}

// Luminance returns the relative brightness of c in [0, 1].
func Luminance(c color.RGBA) float64 {
	return (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255
}

// Contrast returns black or white, whichever reads better on c.
func Contrast(c color.RGBA) color.RGBA {
	if Luminance(c) > 0.6 {
		return color.RGBA{0, 0, 0, 255}
	}
	return color.RGBA{255, 255, 255, 255}
}
