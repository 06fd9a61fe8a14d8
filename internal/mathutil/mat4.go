package mathutil

import "github.com/go-gl/mathgl/mgl64"

// TRS builds the affine matrix translate × rotate × scale.
func TRS(pos Vec3, rot mgl64.Quat, scale Vec3) mgl64.Mat4 {
	t := mgl64.Translate3D(pos[0], pos[1], pos[2])
	s := mgl64.Scale3D(scale[0], scale[1], scale[2])
	return t.Mul4(rot.Normalize().Mat4()).Mul4(s)
}

// MulPoint transforms a point (w=1) by m.
func MulPoint(m mgl64.Mat4, v Vec3) Vec3 {
	return mgl64.TransformCoordinate(v, m)
}

// MulDir transforms a direction (w=0) by m.
func MulDir(m mgl64.Mat4, v Vec3) Vec3 {
	return mgl64.TransformNormal(v, m)
}

// Translation returns the translation column of m.
func Translation(m mgl64.Mat4) Vec3 {
	return m.Col(3).Vec3()
}

// IsIdentity checks if the matrix is approximately identity.
func IsIdentity(m mgl64.Mat4) bool {
	return m.ApproxEqualThreshold(mgl64.Ident4(), 1e-8)
}
