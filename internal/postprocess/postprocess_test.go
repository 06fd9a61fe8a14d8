package postprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(size int, r image.Rectangle, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestFrameShrinksSupersampledRender(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	img := square(256, image.Rect(32, 64, 224, 192), red)

	out := Frame(img, 64, 0.75)
	require.Equal(t, image.Rect(0, 0, 64, 64), out.Bounds())
	assert.Equal(t, red, out.NRGBAAt(32, 32))
	box, ok := opaqueBounds(out)
	require.True(t, ok)
	assert.InDelta(t, 48, box.Dx(), 1)
	assert.InDelta(t, 32, box.Dy(), 1)
}

func TestFrameKeepsEdgeColor(t *testing.T) {
	img := square(200, image.Rect(50, 50, 150, 150), color.NRGBA{R: 255, A: 160})

	out := Frame(img, 37, 0.9)
	seen := 0
	for i := 0; i < len(out.Pix); i += 4 {
		a := out.Pix[i+3]
		if a <= 16 {
			continue
		}
		seen++
		assert.GreaterOrEqual(t, out.Pix[i], uint8(240), "pixel %d", i/4)
		assert.Zero(t, out.Pix[i+1])
		assert.Zero(t, out.Pix[i+2])
	}
	assert.Positive(t, seen)
}

func TestFrameCentersSubject(t *testing.T) {
	img := square(100, image.Rect(10, 10, 30, 20), color.NRGBA{B: 255, A: 255})

	out := Frame(img, 50, 0.8)
	require.Equal(t, image.Rect(0, 0, 50, 50), out.Bounds())
	box, ok := opaqueBounds(out)
	require.True(t, ok)
	assert.InDelta(t, 40, box.Dx(), 1)
	assert.InDelta(t, 20, box.Dy(), 1)
	assert.InDelta(t, 25, (box.Min.X+box.Max.X)/2, 1)
	assert.InDelta(t, 25, (box.Min.Y+box.Max.Y)/2, 1)
}

func TestFrameEmpty(t *testing.T) {
	out := Frame(image.NewNRGBA(image.Rect(0, 0, 10, 10)), 20, 0.9)
	_, ok := opaqueBounds(out)
	assert.False(t, ok)
	assert.Equal(t, 20, out.Bounds().Dx())
}
