// Package imageio loads screenshots from disk and writes exported images
// back out, optionally copying them to the clipboard.
package imageio

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/anthonynsimon/bild/clone"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrLoad marks a screenshot that could not be read or decoded.
	ErrLoad = errors.New("load image")
	// ErrSave marks a failed save or clipboard copy.
	ErrSave = errors.New("save image")
)

// sniffLen is how much of a file filetype needs to recognise it.
const sniffLen = 262

var decodable = map[string]bool{
	"png":  true,
	"jpg":  true,
	"gif":  true,
	"bmp":  true,
	"webp": true,
	"tif":  true,
}

// Load reads and decodes the image at path.
func Load(ctx context.Context, path string) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer f.Close()
	return Decode(ctx, f)
}

// Decode sniffs and decodes an image from r.
func Decode(ctx context.Context, r io.ReadSeeker) (*image.RGBA, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	kind, _ := filetype.Image(head[:n])
	if kind == filetype.Unknown {
		return nil, fmt.Errorf("%w: unrecognised image data", ErrLoad)
	}
	if !decodable[kind.Extension] {
		return nil, fmt.Errorf("%w: unsupported format %s", ErrLoad, kind.MIME.Value)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrLoad, kind.Extension, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrLoad)
	}
	return clone.AsRGBA(img), nil
}
