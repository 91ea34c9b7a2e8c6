//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package clipboard

func WritePNG([]byte) error { return ErrUnsupported }

func ReadPNG() ([]byte, error) { return nil, ErrUnsupported }
