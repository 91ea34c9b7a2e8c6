package fonts

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasureGrowsWithText(t *testing.T) {
	short, err := Measure("ab", 16)
	require.NoError(t, err)
	long, err := Measure("abcdef", 16)
	require.NoError(t, err)

	assert.Greater(t, long.Width, short.Width)
	assert.Equal(t, short.Height, long.Height)
	assert.Positive(t, short.Baseline)
	assert.LessOrEqual(t, short.Baseline, short.Height)
}

func TestFaceIsCached(t *testing.T) {
	a, err := Face(20)
	require.NoError(t, err)
	b, err := Face(20.04)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestDrawStringWritesPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 60, 30))
	require.NoError(t, DrawString(img, 2, 2, "Hi", color.RGBA{255, 0, 0, 255}, 16))

	painted := false
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			painted = true
			break
		}
	}
	assert.True(t, painted)
}
