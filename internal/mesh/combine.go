package mesh

import (
	"github.com/go-gl/mathgl/mgl64"

	"haptics-installer/internal/mathutil"
)

// CombineInstance is one source mesh placed into the combined mesh's space.
type CombineInstance struct {
	Mesh      *Mesh
	Transform mgl64.Mat4
}

// Combine merges the instances into one mesh named name. Each instance
// becomes its own Part, in input order. Instances with a nil or empty mesh
// are ignored. Normals and bounds are recomputed on the result.
func Combine(name string, instances []CombineInstance) *Mesh {
	out := &Mesh{Name: name}
	for _, inst := range instances {
		if inst.Mesh == nil || len(inst.Mesh.Indices) == 0 {
			continue
		}
		base := len(out.Vertices)
		for _, v := range inst.Mesh.Vertices {
			out.Vertices = append(out.Vertices, mathutil.MulPoint(inst.Transform, v))
		}
		start := len(out.Indices)
		for _, idx := range inst.Mesh.Indices {
			out.Indices = append(out.Indices, base+idx)
		}
		out.Parts = append(out.Parts, Part{Start: start, Count: len(inst.Mesh.Indices)})
	}
	out.RecalculateNormals()
	out.RecalculateBounds()
	return out
}

// PartVertices returns the distinct vertices referenced by part p, in first
// reference order.
func (m *Mesh) PartVertices(p int) []mathutil.Vec3 {
	part := m.Parts[p]
	seen := make(map[int]bool, part.Count)
	var out []mathutil.Vec3
	for _, idx := range m.Indices[part.Start : part.Start+part.Count] {
		if seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, m.Vertices[idx])
	}
	return out
}
