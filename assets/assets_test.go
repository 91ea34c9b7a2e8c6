package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestBackgroundAsset(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "paper.png"), color.RGBA{R: 10, A: 255})
	r := NewResolver(dir)

	img, err := r.Background(context.Background(), "asset:paper")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())

	again, err := r.Background(context.Background(), "asset:paper.png")
	require.NoError(t, err)
	assert.Same(t, img, again)
}

func TestBackgroundLegacyPath(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "waves.png"), color.RGBA{G: 10, A: 255})
	r := NewResolver(dir)

	img, err := r.Background(context.Background(), "/usr/share/oldapp/backgrounds/waves.png")
	require.NoError(t, err)
	assert.NotNil(t, img)

	other := filepath.Join(t.TempDir(), "custom.png")
	writePNG(t, other, color.RGBA{B: 10, A: 255})
	img, err = r.Background(context.Background(), other)
	require.NoError(t, err)
	assert.NotNil(t, img)
}

func TestBackgroundMissing(t *testing.T) {
	r := NewResolver(t.TempDir())
	for _, ref := range []string{"", "asset:nope", "relative/nope.png", "/no/such/file.png", "asset:../escape"} {
		_, err := r.Background(context.Background(), ref)
		assert.ErrorIs(t, err, ErrNotFound, ref)
	}
}

func TestBackgroundRetriesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png"), 0o644))
	r := NewResolver(dir)

	_, err := r.Background(context.Background(), "asset:broken")
	require.Error(t, err)

	writePNG(t, path, color.RGBA{A: 255})
	_, err = r.Background(context.Background(), "asset:broken")
	assert.NoError(t, err)
}

func TestCanonical(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "waves.png"), color.RGBA{A: 255})
	r := NewResolver(dir)

	assert.Equal(t, "asset:waves", r.Canonical("/old/install/waves.png"))
	assert.Equal(t, "asset:anything", r.Canonical("asset:anything"))
	assert.Equal(t, "/elsewhere/gone.png", r.Canonical("/elsewhere/gone.png"))
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), color.RGBA{A: 255})
	writePNG(t, filepath.Join(dir, "a.png"), color.RGBA{A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	got, err := NewResolver(dir).List()
	require.NoError(t, err)
	assert.Equal(t, []string{"asset:a", "asset:b"}, got)

	none, err := NewResolver("").List()
	require.NoError(t, err)
	assert.Empty(t, none)
}
