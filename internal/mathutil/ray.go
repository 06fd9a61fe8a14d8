package mathutil

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Ray is a half-line with a unit direction.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// IntersectTriangle returns the distance to triangle abc along r.
// Both faces count as hits (Möller–Trumbore without culling).
func IntersectTriangle(r Ray, a, b, c Vec3) (float64, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if det > -1e-12 && det < 1e-12 {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < -HitTolerance || u > 1+HitTolerance {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Dir.Dot(q) * inv
	if v < -HitTolerance || u+v > 1+HitTolerance {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < -HitTolerance {
		return 0, false
	}
	return math.Max(t, 0), true
}

// IntersectBox returns the entry distance of r into b (0 when the origin is
// inside), or false when the ray misses b within maxDist.
func IntersectBox(r Ray, b r3.Box, maxDist float64) (float64, bool) {
	tmin, tmax := 0.0, maxDist
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}
	for k := 0; k < 3; k++ {
		if math.Abs(r.Dir[k]) < 1e-15 {
			if r.Origin[k] < lo[k]-HitTolerance || r.Origin[k] > hi[k]+HitTolerance {
				return 0, false
			}
			continue
		}
		inv := 1 / r.Dir[k]
		t0 := (lo[k] - HitTolerance - r.Origin[k]) * inv
		t1 := (hi[k] + HitTolerance - r.Origin[k]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tmin {
			tmin = t0
		}
		if t1 < tmax {
			tmax = t1
		}
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}
