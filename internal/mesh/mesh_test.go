package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haptics-installer/internal/mathutil"
)

func TestIcosphereCounts(t *testing.T) {
	low := Icosphere(0, 1)
	assert.Equal(t, 20, low.TriangleCount())
	assert.Len(t, low.Vertices, 12)
	assert.Equal(t, "Icosphere_20", low.Name)

	high := Icosphere(1, 1)
	assert.Equal(t, 80, high.TriangleCount())
	assert.Len(t, high.Vertices, 42)
}

func TestIcosphereRadiusAndNormals(t *testing.T) {
	m := Icosphere(1, 0.5)
	require.Len(t, m.Normals, len(m.Vertices))
	for i, v := range m.Vertices {
		assert.InDelta(t, 0.5, v.Len(), 1e-9)
		// outward facing
		assert.Greater(t, m.Normals[i].Dot(v), 0.0)
	}
	assert.InDelta(t, -0.5, m.Bounds.Min.Y, 0.1)
	assert.InDelta(t, 0.5, m.Bounds.Max.Y, 0.1)
}

func TestCombineOnePartPerInstance(t *testing.T) {
	src := Icosphere(0, 1)
	instances := []CombineInstance{
		{Mesh: src, Transform: mgl64.Translate3D(10, 0, 0)},
		{Mesh: nil, Transform: mgl64.Ident4()},
		{Mesh: src, Transform: mgl64.Translate3D(-10, 0, 0).Mul4(mgl64.Scale3D(2, 2, 2))},
	}
	out := Combine("VisMesh_Head", instances)

	assert.Equal(t, "VisMesh_Head", out.Name)
	require.Len(t, out.Parts, 2)
	assert.Equal(t, 40, out.TriangleCount())
	assert.Equal(t, Part{Start: 60, Count: 60}, out.Parts[1])
	assert.Len(t, out.Normals, len(out.Vertices))

	assert.InDelta(t, -10+2*src.Bounds.Min.X, out.Bounds.Min.X, 1e-9)
	assert.InDelta(t, 10+src.Bounds.Max.X, out.Bounds.Max.X, 1e-9)

	for _, v := range out.PartVertices(0) {
		assert.InDelta(t, 1, v.Sub(mathutil.Vec3{10, 0, 0}).Len(), 1e-9)
	}
	// source untouched
	assert.InDelta(t, 1, src.Vertices[0].Len(), 1e-9)
}

func TestCloneIsDeep(t *testing.T) {
	src := Icosphere(0, 1)
	c := src.Clone()
	c.Vertices[0] = mathutil.Vec3{9, 9, 9}
	c.Indices[0] = 3
	assert.NotEqual(t, c.Vertices[0], src.Vertices[0])
	assert.Equal(t, 0, src.Indices[0])
}

func TestTransform(t *testing.T) {
	m := Icosphere(0, 1)
	m.Transform(mgl64.Translate3D(0, 5, 0))
	assert.InDelta(t, 4, m.Bounds.Min.Y, 0.2)
	assert.InDelta(t, 6, m.Bounds.Max.Y, 0.2)
}

func TestRecalculateBoundsEmpty(t *testing.T) {
	m := &Mesh{}
	m.RecalculateBounds()
	assert.Equal(t, 0.0, m.Bounds.Max.X)
}
