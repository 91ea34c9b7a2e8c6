package imageio

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 20, B: 20, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadPNG(t *testing.T) {
	path := writeFile(t, "shot.png", encodePNG(t, 12, 7))

	img, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 7), img.Bounds())
	assert.Equal(t, color.RGBA{R: 200, G: 20, B: 20, A: 255}, img.RGBAAt(3, 3))
}

func TestLoadJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil))
	path := writeFile(t, "shot.jpg", buf.Bytes())

	img, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
}

func TestLoadFailures(t *testing.T) {
	ctx := context.Background()

	_, err := Load(ctx, filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, ErrLoad)

	_, err = Load(ctx, writeFile(t, "notes.png", []byte("definitely not an image")))
	assert.ErrorIs(t, err, ErrLoad)

	truncated := encodePNG(t, 16, 16)[:40]
	_, err = Load(ctx, writeFile(t, "cut.png", truncated))
	assert.ErrorIs(t, err, ErrLoad)
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, writeFile(t, "shot.png", encodePNG(t, 2, 2)))
	assert.ErrorIs(t, err, context.Canceled)
}

func fixedSaver(copied *[][]byte) *FileSaver {
	return &FileSaver{
		Now: func() time.Time { return time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC) },
		Clipboard: func(data []byte) error {
			*copied = append(*copied, data)
			return nil
		},
	}
}

func TestSaveImageWritesTimestampedFile(t *testing.T) {
	var copied [][]byte
	s := fixedSaver(&copied)
	dir := filepath.Join(t.TempDir(), "nested", "shots")
	data := encodePNG(t, 3, 3)

	path, err := s.SaveImage(context.Background(), data, dir, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "snapframe-20240309-140506.png"), path)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Empty(t, copied)
}

func TestSaveImageAvoidsOverwrite(t *testing.T) {
	var copied [][]byte
	s := fixedSaver(&copied)
	dir := t.TempDir()
	data := encodePNG(t, 3, 3)

	first, err := s.SaveImage(context.Background(), data, dir, false)
	require.NoError(t, err)
	second, err := s.SaveImage(context.Background(), data, dir, false)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, "snapframe-20240309-140506-1.png", filepath.Base(second))
}

func TestSaveImageCopiesToClipboard(t *testing.T) {
	var copied [][]byte
	s := fixedSaver(&copied)
	data := encodePNG(t, 3, 3)

	_, err := s.SaveImage(context.Background(), data, t.TempDir(), true)
	require.NoError(t, err)
	require.Len(t, copied, 1)
	assert.Equal(t, data, copied[0])
}

func TestSaveImageClipboardFailureKeepsFile(t *testing.T) {
	s := &FileSaver{Clipboard: func([]byte) error { return errors.New("no display") }}

	path, err := s.SaveImage(context.Background(), encodePNG(t, 2, 2), t.TempDir(), true)
	assert.ErrorIs(t, err, ErrSave)
	assert.FileExists(t, path)
}

func TestSaveImageErrors(t *testing.T) {
	s := &FileSaver{}
	_, err := s.SaveImage(context.Background(), nil, t.TempDir(), false)
	assert.ErrorIs(t, err, ErrSave)

	blocker := writeFile(t, "file", []byte("x"))
	_, err = s.SaveImage(context.Background(), []byte("png"), filepath.Join(blocker, "sub"), false)
	assert.ErrorIs(t, err, ErrSave)
}

func TestSaveImageExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	var copied [][]byte
	s := fixedSaver(&copied)

	path, err := s.SaveImage(context.Background(), []byte("png"), "~/Pictures", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Pictures"), filepath.Dir(path))
}

func TestCopy(t *testing.T) {
	var copied [][]byte
	s := fixedSaver(&copied)
	require.NoError(t, s.Copy(context.Background(), []byte("png")))
	assert.Len(t, copied, 1)

	failing := &FileSaver{Clipboard: func([]byte) error { return errors.New("boom") }}
	assert.ErrorIs(t, failing.Copy(context.Background(), []byte("png")), ErrSave)
	assert.ErrorIs(t, failing.Copy(context.Background(), nil), ErrSave)
}
