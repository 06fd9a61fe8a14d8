// Package mesh holds indexed triangle meshes and the operations the
// consolidation step needs: combining instances into sub-mesh parts,
// recomputing normals and bounds, and generating the icosphere visual.
package mesh

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"

	"haptics-installer/internal/mathutil"
)

// Part is one sub-mesh: a contiguous range of the index buffer.
type Part struct {
	Start int // first index
	Count int // number of indices, a multiple of 3
}

// Mesh is an indexed triangle list. Indices refer into Vertices; Normals is
// either empty or parallel to Vertices.
type Mesh struct {
	Name     string
	Vertices []mathutil.Vec3
	Normals  []mathutil.Vec3
	Indices  []int
	Parts    []Part
	Bounds   r3.Box
}

// Material is the surface description shared by renderers.
type Material struct {
	Name    string
	Color   color.NRGBA
	Texture string // texture path relative to the asset dir, may be empty
}

// Clone returns a copy of the material.
func (m *Material) Clone() *Material {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// TriangleCount returns the number of triangles in the index buffer.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c mathutil.Vec3) {
	return m.Vertices[m.Indices[i*3]], m.Vertices[m.Indices[i*3+1]], m.Vertices[m.Indices[i*3+2]]
}

// Clone deep-copies the mesh buffers.
func (m *Mesh) Clone() *Mesh {
	if m == nil {
		return nil
	}
	return &Mesh{
		Name:     m.Name,
		Vertices: append([]mathutil.Vec3(nil), m.Vertices...),
		Normals:  append([]mathutil.Vec3(nil), m.Normals...),
		Indices:  append([]int(nil), m.Indices...),
		Parts:    append([]Part(nil), m.Parts...),
		Bounds:   m.Bounds,
	}
}

// RecalculateBounds recomputes the axis-aligned bounds from the vertices.
// An empty mesh gets a zero box.
func (m *Mesh) RecalculateBounds() {
	if len(m.Vertices) == 0 {
		m.Bounds = r3.Box{}
		return
	}
	b := mathutil.EmptyBox()
	for _, v := range m.Vertices {
		b = mathutil.Extend(b, v)
	}
	m.Bounds = b
}

// RecalculateNormals rebuilds smooth vertex normals by summing the
// area-weighted face normals of every triangle touching a vertex.
func (m *Mesh) RecalculateNormals() {
	normals := make([]mathutil.Vec3, len(m.Vertices))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		ia, ib, ic := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		a, b, c := m.Vertices[ia], m.Vertices[ib], m.Vertices[ic]
		n := b.Sub(a).Cross(c.Sub(a))
		normals[ia] = normals[ia].Add(n)
		normals[ib] = normals[ib].Add(n)
		normals[ic] = normals[ic].Add(n)
	}
	for i := range normals {
		normals[i] = mathutil.Normalize(normals[i])
	}
	m.Normals = normals
}

// Transform applies m4 to every vertex in place. Normals are recomputed
// when the mesh had them.
func (m *Mesh) Transform(m4 mgl64.Mat4) {
	for i, v := range m.Vertices {
		m.Vertices[i] = mathutil.MulPoint(m4, v)
	}
	if len(m.Normals) > 0 {
		m.RecalculateNormals()
	}
	m.RecalculateBounds()
}
