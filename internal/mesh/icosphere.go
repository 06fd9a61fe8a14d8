package mesh

import (
	"fmt"
	"math"

	"haptics-installer/internal/mathutil"
)

// Icosphere builds a unit-radius-scaled icosphere. Zero subdivisions give
// the 20-triangle icosahedron; each level multiplies the count by four.
func Icosphere(subdivisions int, radius float64) *Mesh {
	t := (1 + math.Sqrt(5)) / 2
	verts := []mathutil.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	for i := range verts {
		verts[i] = mathutil.Normalize(verts[i])
	}
	faces := []int{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}

	for level := 0; level < subdivisions; level++ {
		mid := make(map[[2]int]int)
		midpoint := func(a, b int) int {
			key := [2]int{min(a, b), max(a, b)}
			if i, ok := mid[key]; ok {
				return i
			}
			p := mathutil.Normalize(verts[a].Add(verts[b]).Mul(0.5))
			verts = append(verts, p)
			mid[key] = len(verts) - 1
			return len(verts) - 1
		}
		next := make([]int, 0, len(faces)*4)
		for i := 0; i < len(faces); i += 3 {
			a, b, c := faces[i], faces[i+1], faces[i+2]
			ab, bc, ca := midpoint(a, b), midpoint(b, c), midpoint(c, a)
			next = append(next,
				a, ab, ca,
				b, bc, ab,
				c, ca, bc,
				ab, bc, ca,
			)
		}
		faces = next
	}

	m := &Mesh{
		Name:    fmt.Sprintf("Icosphere_%d", len(faces)/3),
		Indices: faces,
		Parts:   []Part{{Start: 0, Count: len(faces)}},
	}
	m.Vertices = make([]mathutil.Vec3, len(verts))
	for i, v := range verts {
		m.Vertices[i] = v.Mul(radius)
	}
	m.RecalculateNormals()
	m.RecalculateBounds()
	return m
}
