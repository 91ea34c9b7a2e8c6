package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/example/snapframe/internal/editor"
	"github.com/example/snapframe/internal/imageio"
	"github.com/example/snapframe/internal/render"
	"github.com/example/snapframe/internal/settings"
)

// exportCmd frames and annotates a screenshot without opening a window.
type exportCmd struct {
	*root
	fs            *flag.FlagSet
	file          string
	output        string
	toClipboard   bool
	background    string
	blur          float64
	noise         float64
	radius        float64
	shadowBlur    float64
	shadowOffset  string
	shadowOpacity float64
	annotations   annotationList
	set           map[string]bool
}

func (e *exportCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	e := &exportCmd{root: r.subcommand("export"), fs: fs}
	fs.Usage = usageFunc(e)
	def := editor.DefaultSettings()
	fs.StringVar(&e.file, "file", "", "screenshot to export")
	fs.StringVar(&e.output, "output", "", "output PNG file, - for stdout (default: a new file in the save directory)")
	fs.BoolVar(&e.toClipboard, "to-clipboard", false, "also copy the result to the clipboard")
	fs.StringVar(&e.background, "background", "", "background reference: transparent, white, black, gray, gradient:<id>, color:<colour> or an image (default: the stored default)")
	fs.Float64Var(&e.blur, "blur", def.Blur, "background blur radius")
	fs.Float64Var(&e.noise, "noise", def.Noise, "background grain, 0 to 100")
	fs.Float64Var(&e.radius, "radius", def.BorderRadius, "screenshot corner radius")
	fs.Float64Var(&e.shadowBlur, "shadow-blur", def.Shadow.Blur, "drop shadow blur radius")
	fs.StringVar(&e.shadowOffset, "shadow-offset", formatOffset(def.Shadow), "drop shadow offset as x,y")
	fs.Float64Var(&e.shadowOpacity, "shadow-opacity", def.Shadow.Opacity, "drop shadow opacity, 0 to 1")
	fs.Var(&e.annotations, "annotate", "annotation such as \"rect 10 10 200 80 color=red\" (repeatable)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if e.file == "" && fs.NArg() == 1 {
		e.file = fs.Arg(0)
	} else if fs.NArg() > 0 {
		return nil, &UsageError{of: e}
	}
	if e.file == "" {
		return nil, &UsageError{of: e}
	}
	e.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { e.set[f.Name] = true })
	return e, nil
}

func formatOffset(s editor.Shadow) string {
	return strconv.FormatFloat(s.OffsetX, 'f', -1, 64) + "," + strconv.FormatFloat(s.OffsetY, 'f', -1, 64)
}

func parseOffset(v string) (x, y float64, err error) {
	xs, ys, ok := strings.Cut(v, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid shadow offset %q, want x,y", v)
	}
	if x, err = strconv.ParseFloat(strings.TrimSpace(xs), 64); err != nil {
		return 0, 0, fmt.Errorf("invalid shadow offset %q, want x,y", v)
	}
	if y, err = strconv.ParseFloat(strings.TrimSpace(ys), 64); err != nil {
		return 0, 0, fmt.Errorf("invalid shadow offset %q, want x,y", v)
	}
	return x, y, nil
}

// buildState applies the stored default background, the flags and the
// annotations to a fresh editor.
func (e *exportCmd) buildState(store settings.Store) (editor.State, error) {
	ed := editor.New()
	if store != nil {
		if ref, ok := store.Get(settings.KeyDefaultBackground); ok && ref != "" {
			if bg, err := editor.ParseBackgroundRef(ref, ed.Settings().Background); err == nil {
				ed.SetBackground(bg)
			} else {
				fmt.Fprintf(e.errOut(), "warning: stored default background: %v\n", err)
			}
		}
	}
	if e.background != "" {
		ref := e.backgrounds().Canonical(e.background)
		bg, err := editor.ParseBackgroundRef(ref, ed.Settings().Background)
		if err != nil {
			return editor.State{}, err
		}
		ed.SetBackground(bg)
	}
	if e.set["blur"] {
		ed.SetBlur(e.blur)
	}
	if e.set["noise"] {
		ed.SetNoise(e.noise)
	}
	if e.set["radius"] {
		ed.SetBorderRadius(e.radius)
	}
	if e.set["shadow-blur"] {
		ed.SetShadowBlur(e.shadowBlur)
	}
	if e.set["shadow-offset"] {
		x, y, err := parseOffset(e.shadowOffset)
		if err != nil {
			return editor.State{}, err
		}
		ed.SetShadowOffset(x, y)
	}
	if e.set["shadow-opacity"] {
		ed.SetShadowOpacity(e.shadowOpacity)
	}
	for _, spec := range e.annotations {
		a, err := parseAnnotation(spec, ed.Annotations())
		if err != nil {
			return editor.State{}, fmt.Errorf("-annotate %q: %w", spec, err)
		}
		ed.AddAnnotation(a)
	}
	return ed.State(), nil
}

func (e *exportCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := e.openSettings()
	if err != nil {
		return err
	}
	st, err := e.buildState(store)
	if err != nil {
		return err
	}
	data, err := render.ExportFile(ctx, e.file, st, render.Options{Backgrounds: e.backgrounds()})
	if err != nil {
		return err
	}

	saver := imageio.NewFileSaver()
	switch e.output {
	case "-":
		if _, err := e.out().Write(data); err != nil {
			return err
		}
	case "":
		path, err := saver.SaveImage(ctx, data, e.exportDir(store), e.toClipboard)
		if path != "" {
			fmt.Fprintln(e.out(), path)
			e.notifySave(path)
		}
		if err != nil {
			e.notifyError(err)
			return err
		}
		if e.toClipboard {
			e.notifyCopy("image")
		}
		return nil
	default:
		if err := os.WriteFile(e.output, data, 0o644); err != nil {
			err = fmt.Errorf("%w: %v", imageio.ErrSave, err)
			e.notifyError(err)
			return err
		}
		e.notifySave(e.output)
	}
	if e.toClipboard {
		if err := saver.Copy(ctx, data); err != nil {
			e.notifyError(err)
			return err
		}
		e.notifyCopy("image")
	}
	return nil
}
