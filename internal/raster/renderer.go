// Package raster is a small software renderer for previewing haptic
// visuals: flat-shaded, orthographic, z-buffered.
package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"haptics-installer/internal/mathutil"
	"haptics-installer/internal/mesh"
)

// View is a preview camera direction.
type View int

const (
	Front View = iota
	Side
	Top
)

func (v View) String() string {
	switch v {
	case Front:
		return "front"
	case Side:
		return "side"
	case Top:
		return "top"
	}
	return "view?"
}

// Rotation maps world space into view space, where the camera looks down
// -z with +y up.
func (v View) Rotation() mgl64.Mat4 {
	switch v {
	case Side:
		return mgl64.HomogRotate3DY(-math.Pi / 2)
	case Top:
		return mgl64.HomogRotate3DX(math.Pi / 2)
	}
	return mgl64.Ident4()
}

// Item is one mesh to draw, placed by Transform, in a flat color.
type Item struct {
	Mesh      *mesh.Mesh
	Transform mgl64.Mat4
	Color     color.NRGBA
}

// RenderMeshes draws items orthographically from view into a square image
// of size*supersample pixels, framing the union of their bounds with a
// margin. An empty item list gives a transparent image.
func RenderMeshes(items []Item, view View, size, supersample int) *image.NRGBA {
	if supersample < 1 {
		supersample = 1
	}
	renderSize := size * supersample
	R := view.Rotation()

	// Bounding box of all transformed vertices
	box := mathutil.EmptyBox()
	var transformed [][]mathutil.Vec3
	for _, it := range items {
		if it.Mesh == nil {
			transformed = append(transformed, nil)
			continue
		}
		m := R.Mul4(it.Transform)
		vs := make([]mathutil.Vec3, len(it.Mesh.Vertices))
		for i, v := range it.Mesh.Vertices {
			vs[i] = mathutil.MulPoint(m, v)
			box = mathutil.Extend(box, vs[i])
		}
		transformed = append(transformed, vs)
	}
	if mathutil.BoxIsEmpty(box) {
		return image.NewNRGBA(image.Rect(0, 0, renderSize, renderSize))
	}

	center := mathutil.BoxCenter(box)
	span := math.Max(box.Max.X-box.Min.X, box.Max.Y-box.Min.Y)
	if span < 0.001 {
		span = 0.001
	}
	margin := 16 * supersample
	scale := float64(renderSize-2*margin) / span
	half := float64(renderSize) / 2

	project := func(v mathutil.Vec3) mathutil.Vec3 {
		return mathutil.Vec3{
			half + (v[0]-center[0])*scale,
			half - (v[1]-center[1])*scale,
			(v[2] - center[2]) * scale,
		}
	}

	fb := NewFrameBuffer(renderSize, renderSize)
	lt := PreviewLighting()
	for i, it := range items {
		vs := transformed[i]
		if vs == nil {
			continue
		}
		px := make([]mathutil.Vec3, len(vs))
		for j, v := range vs {
			px[j] = project(v)
		}
		idx := it.Mesh.Indices
		for t := 0; t+2 < len(idx); t += 3 {
			RasterizeTriangle(fb, px[idx[t]], px[idx[t+1]], px[idx[t+2]], it.Color, &lt)
		}
	}
	return fb.Image()
}
