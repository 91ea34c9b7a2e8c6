package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"

	"github.com/example/snapframe/internal/appstate"
	"github.com/example/snapframe/internal/capture"
	"github.com/example/snapframe/internal/clipboard"
)

// captureImageFn is replaced in tests.
var captureImageFn = capture.CaptureImage

// captureCmd grabs a screenshot through the desktop portal and either opens
// it for editing, writes it out or copies it.
type captureCmd struct {
	*root
	fs          *flag.FlagSet
	mode        capture.Mode
	edit        bool
	output      string
	toClipboard bool
	cursor      bool
	decorations bool
}

func (c *captureCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseCaptureCmd(args []string, r *root) (*captureCmd, error) {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	c := &captureCmd{root: r.subcommand("capture"), fs: fs}
	fs.Usage = usageFunc(c)
	fs.BoolVar(&c.edit, "edit", false, "open the capture in the editor")
	fs.StringVar(&c.output, "output", "", "write the capture as PNG to this file (- for stdout)")
	fs.BoolVar(&c.toClipboard, "to-clipboard", false, "copy the capture to the clipboard")
	fs.BoolVar(&c.cursor, "cursor", false, "include the mouse pointer")
	fs.BoolVar(&c.decorations, "decorations", true, "include window decorations when capturing a window")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	mode, err := capture.ParseMode(fs.Arg(0))
	if err != nil {
		return nil, &UsageError{of: c, msg: err.Error()}
	}
	c.mode = mode
	if c.edit && c.output == "-" {
		return nil, fmt.Errorf("-edit cannot be combined with -output -")
	}
	return c, nil
}

func (c *captureCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	img, path, err := captureImageFn(ctx, c.mode, capture.Options{
		IncludeCursor:      c.cursor,
		IncludeDecorations: c.decorations,
	})
	if errors.Is(err, capture.ErrCancelled) {
		fmt.Fprintln(c.errOut(), "capture cancelled")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to capture %s: %w", c.mode, err)
	}
	c.notifyCapture(c.mode.String(), img)

	if c.output != "" {
		if err := c.writeOutput(img); err != nil {
			return err
		}
	}
	if c.toClipboard {
		if err := clipboard.WriteImage(img); err != nil {
			c.notifyError(err)
			return fmt.Errorf("failed to copy capture: %w", err)
		}
		c.notifyCopy("capture")
	}
	if c.edit {
		return c.openEditor(img, path)
	}
	if c.output == "" && !c.toClipboard {
		fmt.Fprintln(c.out(), path)
	}
	return nil
}

func (c *captureCmd) writeOutput(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode capture: %w", err)
	}
	if c.output == "-" {
		_, err := c.out().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(c.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.output, err)
	}
	c.notifySave(c.output)
	return nil
}

func (c *captureCmd) openEditor(img *image.RGBA, path string) error {
	store, err := c.openSettings()
	if err != nil {
		return err
	}
	opts := append(c.sessionOptions(store), appstate.WithImage(img), appstate.WithSource(path))
	a, err := appstate.New(opts...)
	if err != nil {
		return err
	}
	runSession(a)
	return nil
}
