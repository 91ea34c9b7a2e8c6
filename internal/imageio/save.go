package imageio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mitchellh/go-homedir"

	"github.com/example/snapframe/internal/clipboard"
)

// DefaultPrefix starts every saved file name.
const DefaultPrefix = "snapframe"

// maxAttempts bounds the numbered suffixes tried when a name is taken.
const maxAttempts = 1000

// FileSaver writes PNG data into a directory.
type FileSaver struct {
	// Prefix defaults to DefaultPrefix.
	Prefix string
	// Now defaults to time.Now.
	Now func() time.Time
	// Clipboard defaults to clipboard.WritePNG.
	Clipboard func([]byte) error
}

// NewFileSaver returns a saver using the real clock and clipboard.
func NewFileSaver() *FileSaver {
	return &FileSaver{}
}

func (s *FileSaver) prefix() string {
	if s == nil || s.Prefix == "" {
		return DefaultPrefix
	}
	return s.Prefix
}

func (s *FileSaver) now() time.Time {
	if s == nil || s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *FileSaver) clip() func([]byte) error {
	if s == nil || s.Clipboard == nil {
		return clipboard.WritePNG
	}
	return s.Clipboard
}

// SaveImage writes data as <prefix>-<timestamp>.png in dir and returns the
// absolute path. When copy is set the data also goes to the clipboard; a
// clipboard failure is reported after the file is written.
func (s *FileSaver) SaveImage(ctx context.Context, data []byte, dir string, copy bool) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: no image data", ErrSave)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir, err := resolveDir(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %v", ErrSave, dir, err)
	}
	path, err := s.writeUnique(dir, data)
	if err != nil {
		return "", err
	}
	if copy {
		if err := s.clip()(data); err != nil {
			return path, fmt.Errorf("%w: copy to clipboard: %v", ErrSave, err)
		}
	}
	return path, nil
}

// Copy puts data on the clipboard.
func (s *FileSaver) Copy(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: no image data", ErrSave)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.clip()(data); err != nil {
		return fmt.Errorf("%w: copy to clipboard: %v", ErrSave, err)
	}
	return nil
}

func (s *FileSaver) writeUnique(dir string, data []byte) (string, error) {
	base := s.prefix() + "-" + s.now().Format("20060102-150405")
	for i := 0; i < maxAttempts; i++ {
		name := base
		if i > 0 {
			name += "-" + strconv.Itoa(i)
		}
		path := filepath.Join(dir, name+".png")
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrSave, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("%w: write %s: %v", ErrSave, path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("%w: close %s: %v", ErrSave, path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("%w: no free file name for %s in %s", ErrSave, base, dir)
}

func resolveDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSave, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSave, err)
	}
	return abs, nil
}
