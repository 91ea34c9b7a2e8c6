//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import "context"

func portalScreenshot(context.Context, bool, Options) (string, error) {
	return "", ErrUnsupported
}
