package mathutil

// Tolerances shared by the geometry code.
const (
	// Epsilon is the length below which a vector is treated as zero.
	Epsilon = 1e-9

	// HitTolerance lets a ray starting exactly on a triangle still report
	// the hit at t≈0, which keeps surface snapping stable on re-runs.
	HitTolerance = 1e-7
)
