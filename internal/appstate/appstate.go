// Package appstate hosts an editing session: the session itself with its
// save and copy operations, and the shiny window that drives it.
package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"path/filepath"
	"strings"

	"golang.org/x/exp/shiny/screen"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/snapframe/internal/annotation"
	"github.com/example/snapframe/internal/colorspec"
	"github.com/example/snapframe/internal/editor"
	"github.com/example/snapframe/internal/interact"
	"github.com/example/snapframe/internal/render"
	"github.com/example/snapframe/internal/theme"
)

// ProgramTitle is shown in the window title.
const ProgramTitle = "Snapframe"

const (
	buttonHeight = 24
	bottomHeight = 24
	checkerSize  = 8
	// frameDropThreshold is how many frames in a row may be abandoned for
	// a newer one before a draw is allowed to finish.
	frameDropThreshold = 10
)

var toolbarWidth = 48

func windowTitle(source string) string {
	if source == "" {
		return ProgramTitle
	}
	return ProgramTitle + " - " + filepath.Base(source)
}

// button is a toolbar entry that triggers an action.
type button struct {
	label  string
	action string
	tool   interact.Tool
	isTool bool
	rect   image.Rectangle
}

var toolbarEntries = []struct {
	action string
	name   string
}{
	{ActionSelect, "Move"},
	{ActionRectangle, "Rect"},
	{ActionCircle, "Circle"},
	{ActionLine, "Line"},
	{ActionArrow, "Arrow"},
	{ActionText, "Text"},
	{ActionNumber, "Num"},
	{"", ""},
	{ActionUndo, "Undo"},
	{ActionRedo, "Redo"},
	{ActionDelete, "Delete"},
	{ActionBackground, "Bg"},
	{ActionSave, "Save"},
	{ActionCopy, "Copy"},
}

// shortLabel renders a chord compactly, "ctrl+z" as "^Z".
func shortLabel(chord string) string {
	s := strings.ToUpper(chord)
	s = strings.ReplaceAll(s, "CTRL+", "^")
	return s
}

// toolbarButtons lays out the toolbar and widens it to fit the labels.
func toolbarButtons(km *Keymap) []button {
	d := &font.Drawer{Face: basicfont.Face7x13}
	widest := d.MeasureString(ProgramTitle).Ceil() + 8
	var out []button
	y := 0
	for _, e := range toolbarEntries {
		if e.action == "" {
			y += buttonHeight / 3
			continue
		}
		b := button{label: e.name, action: e.action}
		if km != nil {
			if l := km.Label(e.action); l != "" {
				b.label = shortLabel(l) + ":" + e.name
			}
		}
		if t, ok := toolActions[e.action]; ok {
			b.tool, b.isTool = t, true
		}
		b.rect = image.Rect(0, y, 0, y+buttonHeight)
		widest = max(widest, d.MeasureString(b.label).Ceil()+8)
		out = append(out, b)
		y += buttonHeight
	}
	toolbarWidth = max(toolbarWidth, widest)
	for i := range out {
		out[i].rect.Max.X = toolbarWidth
	}
	return out
}

// hitButton returns the index of the button under p, or -1.
func hitButton(buttons []button, p image.Point) int {
	for i, b := range buttons {
		if p.In(b.rect) {
			return i
		}
	}
	return -1
}

// paintState is everything drawFrame needs, copied out of the event loop.
type paintState struct {
	width, height int
	theme         *theme.Theme

	preview    render.Preview
	hasPreview bool
	view       viewport
	layer      []annotation.Annotation
	selected   annotation.Annotation

	buttons  []button
	hover    int
	tool     interact.Tool
	canUndo  bool
	canRedo  bool
	busy     bool
	settings editor.Settings

	status    string
	statusErr bool
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()

	draw.Draw(dst, dst.Bounds(), image.NewUniform(st.theme.Background), image.Point{}, draw.Src)
	if st.hasPreview {
		drawCanvas(dst, st)
	} else {
		drawLabel(dst, canvasArea(st.width, st.height).Min.Add(image.Pt(8, 16)), "rendering", st.theme.Foreground)
	}
	if ctx.Err() != nil {
		return
	}

	drawToolbar(dst, st)
	drawStatus(dst, st)
	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// drawCanvas shows the preview with the annotation layer on top. The
// annotations are drawn onto a copy so the preview stays reusable.
func drawCanvas(dst *image.RGBA, st paintState) {
	src := st.preview.Image
	canvas := image.NewRGBA(src.Bounds())
	draw.Draw(canvas, canvas.Bounds(), src, src.Bounds().Min, draw.Src)
	if err := render.DrawAnnotations(canvas, st.preview.Frame, st.layer); err != nil {
		log.Printf("draw annotations: %v", err)
	}
	render.DrawSelection(canvas, st.preview.Frame, st.selected)

	if st.preview.Settings.Background.Kind == editor.BackgroundTransparent {
		drawCheckerboard(dst, st.view.dst, checkerSize, st.theme.CheckerLight, st.theme.CheckerDark)
	}
	xdraw.ApproxBiLinear.Scale(dst, st.view.dst, canvas, canvas.Bounds(), draw.Over, nil)
}

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	rect = rect.Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

func drawToolbar(dst *image.RGBA, st paintState) {
	t := st.theme
	bar := image.Rect(0, 0, toolbarWidth, st.height-bottomHeight)
	draw.Draw(dst, bar, image.NewUniform(t.ToolbarBackground), image.Point{}, draw.Src)
	for i, b := range st.buttons {
		bg := t.ButtonBackground
		switch {
		case b.isTool && b.tool == st.tool:
			bg = t.ButtonActive
		case i == st.hover:
			bg = colorspec.Blend(t.ButtonBackground, t.ButtonActive, 0.5)
		}
		r := b.rect.Inset(1)
		draw.Draw(dst, r, image.NewUniform(bg), image.Point{}, draw.Src)
		outline(dst, r, t.ButtonBorder)
		fg := t.Foreground
		if (b.action == ActionUndo && !st.canUndo) || (b.action == ActionRedo && !st.canRedo) {
			fg = colorspec.Blend(t.Foreground, t.ButtonBackground, 0.6)
		}
		drawLabel(dst, image.Pt(r.Min.X+4, r.Max.Y-7), b.label, fg)
	}
}

func drawStatus(dst *image.RGBA, st paintState) {
	t := st.theme
	bar := image.Rect(0, st.height-bottomHeight, st.width, st.height)
	draw.Draw(dst, bar, image.NewUniform(t.ToolbarBackground), image.Point{}, draw.Src)
	text, col := settingsSummary(st.settings, st.tool), t.Foreground
	if st.busy {
		text = "working: " + text
	}
	if st.status != "" {
		text = st.status
		if st.statusErr {
			col = t.StatusError
		}
	}
	drawLabel(dst, image.Pt(bar.Min.X+4, bar.Max.Y-7), text, col)
}

func settingsSummary(s editor.Settings, tool interact.Tool) string {
	return fmt.Sprintf("%s | bg %s | blur %.0f | noise %.0f | radius %.0f | shadow %.0f",
		tool, editor.FormatBackgroundRef(s.Background), s.Blur, s.Noise, s.BorderRadius, s.Shadow.Blur)
}

func drawLabel(dst *image.RGBA, at image.Point, text string, col color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: basicfont.Face7x13}
	d.Dot = fixed.P(at.X, at.Y)
	d.DrawString(text)
}

func outline(dst *image.RGBA, r image.Rectangle, col color.Color) {
	u := image.NewUniform(col)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}
