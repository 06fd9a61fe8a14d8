package raster

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haptics-installer/internal/mathutil"
	"haptics-installer/internal/mesh"
)

func opaqueCount(pix []uint8) int {
	n := 0
	for i := 3; i < len(pix); i += 4 {
		if pix[i] > 0 {
			n++
		}
	}
	return n
}

func TestRenderMeshesEmpty(t *testing.T) {
	img := RenderMeshes(nil, Front, 32, 2)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Zero(t, opaqueCount(img.Pix))
}

func TestRenderMeshesSphereCentered(t *testing.T) {
	items := []Item{{
		Mesh:      mesh.Icosphere(1, 1),
		Transform: mgl64.Translate3D(5, -2, 1),
		Color:     color.NRGBA{R: 200, G: 80, B: 40, A: 255},
	}}
	for _, v := range []View{Front, Side, Top} {
		img := RenderMeshes(items, v, 64, 1)
		require.Equal(t, 64, img.Bounds().Dy(), v.String())
		assert.Greater(t, opaqueCount(img.Pix), 600, v.String())
		assert.Equal(t, uint8(255), img.NRGBAAt(32, 32).A, v.String())
		assert.Zero(t, img.NRGBAAt(1, 1).A, v.String())
	}
}

func TestRasterizeTriangleDepth(t *testing.T) {
	fb := NewFrameBuffer(16, 16)
	lt := PreviewLighting()
	far := color.NRGBA{R: 255, A: 255}
	near := color.NRGBA{B: 255, A: 255}

	RasterizeTriangle(fb, mathutil.Vec3{0, 0, 5}, mathutil.Vec3{16, 0, 5}, mathutil.Vec3{0, 16, 5}, near, &lt)
	RasterizeTriangle(fb, mathutil.Vec3{0, 0, 1}, mathutil.Vec3{16, 0, 1}, mathutil.Vec3{0, 16, 1}, far, &lt)

	c := fb.Image().NRGBAAt(3, 3)
	assert.Greater(t, c.B, c.R)
	assert.Equal(t, 5.0, fb.ZBuf[3*16+3])
}

func TestRasterizeTriangleBlends(t *testing.T) {
	fb := NewFrameBuffer(8, 8)
	lt := PreviewLighting()
	RasterizeTriangle(fb, mathutil.Vec3{0, 0, 0}, mathutil.Vec3{8, 0, 0}, mathutil.Vec3{0, 8, 0}, color.NRGBA{G: 255, A: 128}, &lt)

	c := fb.Image().NRGBAAt(1, 1)
	assert.InDelta(t, 128, int(c.A), 1)
	assert.Greater(t, c.G, uint8(0))
}

func TestLightingApply(t *testing.T) {
	lt := PreviewLighting()
	base := color.NRGBA{R: 200, G: 100, B: 0, A: 90}

	dim := lt.Apply(base, 0.2)
	bright := lt.Apply(base, 2)
	assert.Less(t, dim.R, bright.R)
	assert.Equal(t, uint8(90), bright.A)
	assert.Zero(t, bright.B)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, lt.Apply(color.NRGBA{R: 255, G: 255, B: 255, A: 255}, lt.White/lt.Exposure))

	up := lt.Shade(mathutil.Vec3{0, 1, 0})
	down := lt.Shade(mathutil.Vec3{0, -1, 0})
	assert.Greater(t, up, down)
	assert.InDelta(t, lt.Shade(mathutil.Vec3{0, 0, 1}), lt.Shade(mathutil.Vec3{0, 0, -1}), 1e-12)
}
