//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	portalDest      = "org.freedesktop.portal.Desktop"
	portalPath      = "/org/freedesktop/portal/desktop"
	portalMethod    = "org.freedesktop.portal.Screenshot.Screenshot"
	responseSignal  = "org.freedesktop.portal.Request.Response"
	responseSuccess = 0
	responseCancel  = 1
)

var portalHandleToken = newPortalHandleToken

func portalScreenshot(ctx context.Context, interactive bool, captureOpts Options) (string, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return "", fmt.Errorf("dbus connect: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Printf("dbus close: %v", cerr)
		}
	}()

	// Subscribe before calling so a fast response is not missed.
	sigc := make(chan *dbus.Signal, 4)
	conn.Signal(sigc)
	defer conn.RemoveSignal(sigc)
	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.portal.Request"),
		dbus.WithMatchMember("Response"),
	); err != nil {
		return "", fmt.Errorf("portal screenshot subscribe: %w", err)
	}

	obj := conn.Object(portalDest, portalPath)
	var handle dbus.ObjectPath
	call := obj.CallWithContext(ctx, portalMethod, 0, "", portalScreenshotOptions(interactive, captureOpts))
	if call.Err != nil {
		return "", fmt.Errorf("portal screenshot call: %w", call.Err)
	}
	if err := call.Store(&handle); err != nil {
		return "", fmt.Errorf("portal screenshot response: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case sig, ok := <-sigc:
			if !ok {
				return "", fmt.Errorf("portal screenshot: connection closed")
			}
			if sig.Path != handle || sig.Name != responseSignal {
				continue
			}
			return parseResponse(sig.Body)
		}
	}
}

// parseResponse decodes the (u response, a{sv} results) Response body.
func parseResponse(body []any) (string, error) {
	if len(body) < 2 {
		return "", fmt.Errorf("portal screenshot: malformed response")
	}
	code, _ := body[0].(uint32)
	switch code {
	case responseSuccess:
	case responseCancel:
		return "", ErrCancelled
	default:
		return "", fmt.Errorf("portal screenshot failed with code %d", code)
	}
	results, _ := body[1].(map[string]dbus.Variant)
	uri, _ := results["uri"].Value().(string)
	if uri == "" {
		return "", fmt.Errorf("portal screenshot: response missing image data")
	}
	return uri, nil
}

func newPortalHandleToken() string {
	return fmt.Sprintf("snapframe_%d", time.Now().UnixNano())
}

func portalScreenshotOptions(interactive bool, captureOpts Options) map[string]dbus.Variant {
	cursorMode := "hidden"
	if captureOpts.IncludeCursor {
		cursorMode = "embedded"
	}
	return map[string]dbus.Variant{
		"interactive":        dbus.MakeVariant(interactive),
		"handle_token":       dbus.MakeVariant(portalHandleToken()),
		"modal":              dbus.MakeVariant(interactive),
		"cursor_mode":        dbus.MakeVariant(cursorMode),
		"include-decoration": dbus.MakeVariant(captureOpts.IncludeDecorations),
	}
}
