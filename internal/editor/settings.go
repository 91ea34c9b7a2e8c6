package editor

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/example/snapframe/internal/colorspec"
)

// BackgroundKind selects what is painted behind the screenshot.
type BackgroundKind int

const (
	BackgroundTransparent BackgroundKind = iota
	BackgroundWhite
	BackgroundBlack
	BackgroundGray
	BackgroundGradient
	BackgroundColor
	BackgroundImage
)

var backgroundKindNames = [...]string{"transparent", "white", "black", "gray", "gradient", "color", "image"}

func (k BackgroundKind) String() string {
	if k < 0 || int(k) >= len(backgroundKindNames) {
		return "unknown"
	}
	return backgroundKindNames[k]
}

// ParseBackgroundKind is the inverse of BackgroundKind.String.
func ParseBackgroundKind(s string) (BackgroundKind, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "grey" {
		v = "gray"
	}
	for i, n := range backgroundKindNames {
		if n == v {
			return BackgroundKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown background kind %q", s)
}

// GradientRef is a named two stop linear gradient.
type GradientRef struct {
	ID       string
	From, To color.RGBA
}

// Gradients are the built in presets. The first one is the default.
var Gradients = []GradientRef{
	{ID: "sunset", From: colorspec.MustParse("#ff7e5f"), To: colorspec.MustParse("#feb47b")},
	{ID: "ocean", From: colorspec.MustParse("#2193b0"), To: colorspec.MustParse("#6dd5ed")},
	{ID: "lavender", From: colorspec.MustParse("#8e2de2"), To: colorspec.MustParse("#c1a1f5")},
	{ID: "mint", From: colorspec.MustParse("#11998e"), To: colorspec.MustParse("#38ef7d")},
	{ID: "midnight", From: colorspec.MustParse("#232526"), To: colorspec.MustParse("#414345")},
}

// GradientByID looks up a preset.
func GradientByID(id string) (GradientRef, bool) {
	for _, g := range Gradients {
		if strings.EqualFold(g.ID, id) {
			return g, true
		}
	}
	return GradientRef{}, false
}

// Background describes the backdrop. Only the field matching Kind is
// meaningful; the others keep their last value so switching kinds back and
// forth does not lose choices.
type Background struct {
	Kind     BackgroundKind
	Color    color.RGBA
	Gradient GradientRef
	// Image is an asset identifier ("asset:<name>") or a file path.
	Image string
}

// Shadow is the drop shadow under the screenshot.
type Shadow struct {
	Blur    float64
	OffsetX float64
	OffsetY float64
	Opacity float64
}

// Settings is the visual part of the editor state.
type Settings struct {
	Background   Background
	Blur         float64
	Noise        float64
	BorderRadius float64
	Shadow       Shadow
}

// Ranges accepted by the setters. Values outside are clamped.
const (
	MaxBlur         = 50
	MaxNoise        = 100
	MaxBorderRadius = 64
	MaxShadowBlur   = 100
	MaxShadowOffset = 100
)

// DefaultSettings is the state every session starts from.
func DefaultSettings() Settings {
	return Settings{
		Background: Background{
			Kind:     BackgroundGradient,
			Color:    color.RGBA{255, 255, 255, 255},
			Gradient: Gradients[0],
		},
		BorderRadius: 12,
		Shadow: Shadow{
			Blur:    20,
			OffsetY: 8,
			Opacity: 0.35,
		},
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func clampShadow(s Shadow) Shadow {
	return Shadow{
		Blur:    clamp(s.Blur, 0, MaxShadowBlur),
		OffsetX: clamp(s.OffsetX, -MaxShadowOffset, MaxShadowOffset),
		OffsetY: clamp(s.OffsetY, -MaxShadowOffset, MaxShadowOffset),
		Opacity: clamp(s.Opacity, 0, 1),
	}
}

// ParseBackgroundRef turns a stored default background reference into a
// Background based on base. Accepted forms are the plain kind names,
// "gradient" (the first gradient), "gradient:<id>", "color:<colour>" and
// anything else as an image reference (asset identifiers and legacy file
// paths alike). Bare "color" and "image" are rejected.
func ParseBackgroundRef(ref string, base Background) (Background, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return base, fmt.Errorf("empty background reference")
	}
	if prefix, rest, ok := strings.Cut(ref, ":"); ok {
		switch strings.ToLower(prefix) {
		case "gradient":
			g, found := GradientByID(rest)
			if !found {
				return base, fmt.Errorf("unknown gradient %q", rest)
			}
			base.Kind, base.Gradient = BackgroundGradient, g
			return base, nil
		case "color", "colour":
			c, err := colorspec.Parse(rest)
			if err != nil {
				return base, err
			}
			base.Kind, base.Color = BackgroundColor, c
			return base, nil
		}
	}
	switch strings.ToLower(ref) {
	case "gradient":
		base.Kind, base.Gradient = BackgroundGradient, Gradients[0]
		return base, nil
	case "color", "colour":
		return base, fmt.Errorf("background %q needs a colour, for example color:#336699", ref)
	case "image":
		return base, fmt.Errorf("background %q needs an image, for example asset:<name> or a file path", ref)
	}
	if k, err := ParseBackgroundKind(ref); err == nil && k <= BackgroundGray {
		base.Kind = k
		return base, nil
	}
	base.Kind, base.Image = BackgroundImage, ref
	return base, nil
}

// FormatBackgroundRef is the inverse of ParseBackgroundRef.
func FormatBackgroundRef(bg Background) string {
	switch bg.Kind {
	case BackgroundGradient:
		return "gradient:" + bg.Gradient.ID
	case BackgroundColor:
		return "color:" + colorspec.Format(bg.Color)
	case BackgroundImage:
		return bg.Image
	}
	return bg.Kind.String()
}
