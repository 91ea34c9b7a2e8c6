// Package capture takes screenshots through the desktop portal. Each capture
// produces an image file on disk; the editor opens it from there.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/example/snapframe/internal/imageio"
)

var (
	// ErrCancelled is returned when the user dismisses the capture dialog.
	ErrCancelled = errors.New("capture cancelled")
	// ErrUnsupported is returned where no capture backend exists.
	ErrUnsupported = errors.New("screen capture is not supported on this platform")
)

// Mode selects what is captured.
type Mode int

const (
	// Region lets the user drag out an area.
	Region Mode = iota
	// Window lets the user pick a window.
	Window
	// Fullscreen captures every screen without asking.
	Fullscreen
)

var modeNames = [...]string{"region", "window", "screen"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode accepts the names printed by String plus a few aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "region", "area", "selection":
		return Region, nil
	case "window":
		return Window, nil
	case "screen", "fullscreen", "full":
		return Fullscreen, nil
	}
	return 0, fmt.Errorf("unknown capture mode %q", s)
}

// interactive reports whether the portal should show its picker.
func (m Mode) interactive() bool { return m != Fullscreen }

// Options tweaks what the portal includes in the shot.
type Options struct {
	IncludeCursor      bool
	IncludeDecorations bool
}

// request performs one portal request and returns the resulting file URI.
// Tests replace it.
var request = portalScreenshot

// Capture asks the portal for a screenshot and returns the saved file path.
func Capture(ctx context.Context, mode Mode, opts Options) (string, error) {
	if mode < Region || mode > Fullscreen {
		return "", fmt.Errorf("capture: invalid mode %v", mode)
	}
	uri, err := request(ctx, mode.interactive(), opts)
	if err != nil {
		return "", err
	}
	path, err := uriPath(uri)
	if err != nil {
		return "", fmt.Errorf("capture %s: %w", mode, err)
	}
	return path, nil
}

// CaptureImage captures and decodes the screenshot, returning it with the
// path it was saved to.
func CaptureImage(ctx context.Context, mode Mode, opts Options) (*image.RGBA, string, error) {
	path, err := Capture(ctx, mode, opts)
	if err != nil {
		return nil, "", err
	}
	img, err := imageio.Load(ctx, path)
	if err != nil {
		return nil, path, err
	}
	return img, path, nil
}

func uriPath(uri string) (string, error) {
	if uri == "" {
		return "", errors.New("response missing image uri")
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("bad image uri %q: %w", uri, err)
	}
	switch u.Scheme {
	case "file":
		return u.Path, nil
	case "":
		return uri, nil
	}
	return "", fmt.Errorf("unsupported image uri %q", uri)
}
