package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/snapframe/internal/appstate"
	"github.com/example/snapframe/internal/capture"
	"github.com/example/snapframe/internal/config"
	"github.com/example/snapframe/internal/imageio"
	"github.com/example/snapframe/internal/theme"
)

func newTestRoot(t *testing.T) (*root, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &root{
		program:      "snapframe",
		config:       config.New(),
		settingsPath: filepath.Join(t.TempDir(), "settings.toml"),
		saveDir:      t.TempDir(),
		activeTheme:  theme.Default(),
		stdout:       &out,
		stderr:       &bytes.Buffer{},
	}, &out
}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func stubCapture(t *testing.T, img *image.RGBA, path string, err error) {
	t.Helper()
	original := captureImageFn
	captureImageFn = func(context.Context, capture.Mode, capture.Options) (*image.RGBA, string, error) {
		return img, path, err
	}
	t.Cleanup(func() { captureImageFn = original })
}

func stubSession(t *testing.T) *[]*appstate.AppState {
	t.Helper()
	var got []*appstate.AppState
	original := runSession
	runSession = func(a *appstate.AppState) {
		got = append(got, a)
		a.Close()
	}
	t.Cleanup(func() { runSession = original })
	return &got
}

func TestCaptureRunCaptureError(t *testing.T) {
	sentinel := errors.New("boom")
	stubCapture(t, nil, "", sentinel)
	r, _ := newTestRoot(t)

	cmd, err := parseCaptureCmd([]string{"screen"}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err == nil {
		t.Fatalf("expected error")
	} else {
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected wrapped error, got %v", err)
		}
		if want := "failed to capture screen"; !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error to contain %q, got %v", want, err)
		}
	}
}

func TestCaptureCancelledIsNotAnError(t *testing.T) {
	stubCapture(t, nil, "", capture.ErrCancelled)
	r, out := newTestRoot(t)

	cmd, err := parseCaptureCmd([]string{"region"}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("expected cancel to be quiet, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestCapturePrintsPath(t *testing.T) {
	stubCapture(t, solidImage(4, 4, color.RGBA{255, 0, 0, 255}), "/tmp/Screenshot.png", nil)
	r, out := newTestRoot(t)

	cmd, err := parseCaptureCmd([]string{"window"}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "/tmp/Screenshot.png" {
		t.Fatalf("expected capture path, got %q", got)
	}
}

func TestCaptureWritesOutput(t *testing.T) {
	stubCapture(t, solidImage(6, 3, color.RGBA{0, 0, 255, 255}), "/tmp/Screenshot.png", nil)
	r, _ := newTestRoot(t)
	path := filepath.Join(t.TempDir(), "out.png")

	cmd, err := parseCaptureCmd([]string{"-output", path, "screen"}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(6, 3) {
		t.Fatalf("expected 6x3 image, got %v", got)
	}
}

func TestCaptureEditOpensSession(t *testing.T) {
	stubCapture(t, solidImage(8, 5, color.RGBA{0, 255, 0, 255}), "/tmp/Screenshot.png", nil)
	sessions := stubSession(t)
	r, _ := newTestRoot(t)

	cmd, err := parseCaptureCmd([]string{"-edit", "region"}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(*sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(*sessions))
	}
	a := (*sessions)[0]
	if a.Source != "/tmp/Screenshot.png" {
		t.Fatalf("expected source to be the capture path, got %q", a.Source)
	}
	if a.SaveDir() != r.saveDir {
		t.Fatalf("expected save dir %q, got %q", r.saveDir, a.SaveDir())
	}
}

func TestParseCaptureRejectsUnknownMode(t *testing.T) {
	r, _ := newTestRoot(t)
	_, err := parseCaptureCmd([]string{"monitor"}, r)
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "snapframe capture") {
		t.Fatalf("expected help for the capture command, got %q", err.Error())
	}
}

func TestParseCaptureEditToStdout(t *testing.T) {
	r, _ := newTestRoot(t)
	if _, err := parseCaptureCmd([]string{"-edit", "-output", "-", "screen"}, r); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEditMissingFile(t *testing.T) {
	stubSession(t)
	r, _ := newTestRoot(t)
	cmd, err := parseEditCmd([]string{filepath.Join(t.TempDir(), "missing.png")}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); !errors.Is(err, imageio.ErrLoad) {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestEditFromClipboard(t *testing.T) {
	sessions := stubSession(t)
	original := readClipboardFn
	readClipboardFn = func() (image.Image, error) {
		return image.NewNRGBA(image.Rect(0, 0, 3, 2)), nil
	}
	t.Cleanup(func() { readClipboardFn = original })

	r, _ := newTestRoot(t)
	cmd, err := parseEditCmd([]string{"-from-clipboard"}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(*sessions) != 1 || (*sessions)[0].Image.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Fatalf("expected a 3x2 session, got %v", *sessions)
	}
}

func TestParseEditRequiresInput(t *testing.T) {
	r, _ := newTestRoot(t)
	_, err := parseEditCmd(nil, r)
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if _, err := parseEditCmd([]string{"-file", "a.png", "-from-clipboard"}, r); err == nil {
		t.Fatalf("expected error for conflicting inputs")
	}
}

func TestRootUnknownCommand(t *testing.T) {
	r := newRoot()
	r.stdout, r.stderr = &bytes.Buffer{}, &bytes.Buffer{}
	err := r.Run([]string{"frobnicate"})
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), `unknown command "frobnicate"`) {
		t.Fatalf("expected the command to be named, got %q", err.Error())
	}
}

func TestHelpTemplatesRender(t *testing.T) {
	r, _ := newTestRoot(t)
	parsers := map[string]func() (HelpData, error){
		"capture":  func() (HelpData, error) { return parseCaptureCmd(nil, r) },
		"export":   func() (HelpData, error) { return parseExportCmd(nil, r) },
		"settings": func() (HelpData, error) { return parseSettingsCmd(nil, r) },
		"config":   func() (HelpData, error) { return parseConfigCmd(nil, r) },
	}
	for name, parse := range parsers {
		t.Run(name, func(t *testing.T) {
			_, err := parse()
			var uerr *UsageError
			if !errors.As(err, &uerr) {
				t.Fatalf("expected usage error, got %v", err)
			}
			if !strings.Contains(err.Error(), "snapframe "+name) {
				t.Fatalf("expected program name in help, got %q", err.Error())
			}
		})
	}
}
