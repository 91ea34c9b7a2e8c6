package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/draw"

	"github.com/example/snapframe/internal/appstate"
	"github.com/example/snapframe/internal/clipboard"
)

// readClipboardFn is replaced in tests.
var readClipboardFn = clipboard.ReadImage

// editCmd opens an existing screenshot in the editor.
type editCmd struct {
	*root
	fs            *flag.FlagSet
	file          string
	fromClipboard bool
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	e := &editCmd{root: r.subcommand("edit"), fs: fs}
	fs.Usage = usageFunc(e)
	fs.StringVar(&e.file, "file", "", "image file to edit")
	fs.BoolVar(&e.fromClipboard, "from-clipboard", false, "edit the image on the clipboard")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if e.file == "" && fs.NArg() == 1 {
		e.file = fs.Arg(0)
	} else if fs.NArg() > 0 {
		return nil, &UsageError{of: e}
	}
	switch {
	case e.file == "" && !e.fromClipboard:
		return nil, &UsageError{of: e}
	case e.file != "" && e.fromClipboard:
		return nil, fmt.Errorf("-file and -from-clipboard are mutually exclusive")
	}
	return e, nil
}

func (e *editCmd) Run() error {
	store, err := e.openSettings()
	if err != nil {
		return err
	}
	opts := e.sessionOptions(store)

	var a *appstate.AppState
	if e.fromClipboard {
		img, cerr := readClipboardFn()
		if cerr != nil {
			return fmt.Errorf("failed to read clipboard: %w", cerr)
		}
		a, err = appstate.New(append(opts, appstate.WithImage(toRGBA(img)))...)
	} else {
		a, err = appstate.Open(context.Background(), e.file, opts...)
	}
	if err != nil {
		return err
	}
	runSession(a)
	return nil
}

func toRGBA(img image.Image) *image.RGBA {
	if img == nil {
		return nil
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
