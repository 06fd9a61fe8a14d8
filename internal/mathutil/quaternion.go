package mathutil

import "github.com/go-gl/mathgl/mgl64"

// EulerToQuat converts Euler angles in degrees to a quaternion using the
// rig convention: rotate about Z, then X, then Y (q = qY · qX · qZ).
func EulerToQuat(x, y, z float64) mgl64.Quat {
	qx := mgl64.QuatRotate(mgl64.DegToRad(x), Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(mgl64.DegToRad(y), Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(mgl64.DegToRad(z), Vec3{0, 0, 1})
	return qy.Mul(qx).Mul(qz).Normalize()
}

// Up is the local up axis of a bone or object.
var Up = Vec3{0, 1, 0}
