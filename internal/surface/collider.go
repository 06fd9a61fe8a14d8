// Package surface is the read-only body collider used for fitting: the
// body mesh baked into world space with a bounding volume hierarchy for
// ray queries.
package surface

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"

	"haptics-installer/internal/mathutil"
	"haptics-installer/internal/mesh"
)

const leafSize = 4

// Hit is the closest intersection of a ray with the surface.
type Hit struct {
	Point    mathutil.Vec3
	Distance float64
	Normal   mathutil.Vec3 // geometric normal of the hit triangle
	Triangle int
	BackFace bool // the ray hit the inside of the surface
}

type triangle struct {
	a, b, c  mathutil.Vec3
	centroid mathutil.Vec3
	box      r3.Box
}

type node struct {
	box         r3.Box
	left, right int // child node indices, leaf when count > 0
	start       int // first entry in Collider.order
	count       int
}

// Collider answers ray queries against a triangle mesh. It is immutable
// after construction and safe for concurrent use.
type Collider struct {
	tris  []triangle
	order []int
	nodes []node
}

// NewCollider bakes m into world space with toWorld and builds the
// hierarchy. Degenerate triangles are kept; they never report hits.
func NewCollider(m *mesh.Mesh, toWorld mgl64.Mat4) *Collider {
	c := &Collider{}
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, cc := m.Triangle(i)
		t := triangle{
			a: mathutil.MulPoint(toWorld, a),
			b: mathutil.MulPoint(toWorld, b),
			c: mathutil.MulPoint(toWorld, cc),
		}
		t.centroid = t.a.Add(t.b).Add(t.c).Mul(1.0 / 3)
		t.box = mathutil.Extend(mathutil.Extend(mathutil.Extend(mathutil.EmptyBox(), t.a), t.b), t.c)
		c.tris = append(c.tris, t)
	}
	c.order = make([]int, len(c.tris))
	for i := range c.order {
		c.order[i] = i
	}
	if len(c.tris) > 0 {
		c.build(0, len(c.tris))
	}
	return c
}

// build creates the node covering order[start:end] and returns its index.
func (c *Collider) build(start, end int) int {
	box := mathutil.EmptyBox()
	centers := mathutil.EmptyBox()
	for _, ti := range c.order[start:end] {
		box = mathutil.Union(box, c.tris[ti].box)
		centers = mathutil.Extend(centers, c.tris[ti].centroid)
	}
	idx := len(c.nodes)
	c.nodes = append(c.nodes, node{box: box})
	if end-start <= leafSize {
		c.nodes[idx].start, c.nodes[idx].count = start, end-start
		return idx
	}

	// split at the median centroid along the longest axis
	ext := r3.Sub(centers.Max, centers.Min)
	axis := 0
	if ext.Y > ext.X && ext.Y >= ext.Z {
		axis = 1
	} else if ext.Z > ext.X && ext.Z > ext.Y {
		axis = 2
	}
	slices.SortFunc(c.order[start:end], func(i, j int) int {
		ci, cj := c.tris[i].centroid[axis], c.tris[j].centroid[axis]
		switch {
		case ci < cj:
			return -1
		case ci > cj:
			return 1
		}
		return i - j
	})
	mid := (start + end) / 2
	left := c.build(start, mid)
	right := c.build(mid, end)
	c.nodes[idx].left, c.nodes[idx].right = left, right
	return idx
}

// TriangleCount returns the number of triangles.
func (c *Collider) TriangleCount() int { return len(c.tris) }

// Bounds returns the world-space bounds, or a zero box when empty.
func (c *Collider) Bounds() r3.Box {
	if len(c.nodes) == 0 {
		return r3.Box{}
	}
	return c.nodes[0].box
}

// Raycast returns the closest hit along dir from origin within maxDist.
// A maxDist of zero, negative or +Inf means unlimited. Both front and back
// faces are hit. dir need not be normalized; a zero dir never hits.
func (c *Collider) Raycast(origin, dir mathutil.Vec3, maxDist float64) (Hit, bool) {
	d := mathutil.Normalize(dir)
	if d == (mathutil.Vec3{}) || len(c.nodes) == 0 {
		return Hit{}, false
	}
	if maxDist <= 0 || math.IsInf(maxDist, 1) {
		maxDist = math.MaxFloat64
	}
	ray := mathutil.Ray{Origin: origin, Dir: d}

	best := maxDist + mathutil.HitTolerance
	bestTri := -1
	stack := []int{0}
	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &c.nodes[ni]
		if _, ok := mathutil.IntersectBox(ray, n.box, best); !ok {
			continue
		}
		if n.count > 0 {
			for _, ti := range c.order[n.start : n.start+n.count] {
				t := &c.tris[ti]
				if dist, ok := mathutil.IntersectTriangle(ray, t.a, t.b, t.c); ok && dist <= best {
					if dist < best || bestTri < 0 || ti < bestTri {
						best, bestTri = dist, ti
					}
				}
			}
			continue
		}
		stack = append(stack, n.left, n.right)
	}
	if bestTri < 0 {
		return Hit{}, false
	}
	t := &c.tris[bestTri]
	normal := mathutil.Normalize(t.b.Sub(t.a).Cross(t.c.Sub(t.a)))
	return Hit{
		Point:    ray.At(best),
		Distance: best,
		Normal:   normal,
		Triangle: bestTri,
		BackFace: normal.Dot(d) > 0,
	}, true
}
