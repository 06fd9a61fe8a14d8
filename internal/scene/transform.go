package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"haptics-installer/internal/mathutil"
)

// LocalMatrix is translate × rotate × scale of the local values.
func (o *Object) LocalMatrix() mgl64.Mat4 {
	return mathutil.TRS(o.Position, o.Rotation, o.Scale)
}

// WorldMatrix chains the local matrices from the root down (parent × local).
func (o *Object) WorldMatrix() mgl64.Mat4 {
	if o.parent == nil {
		return o.LocalMatrix()
	}
	return o.parent.WorldMatrix().Mul4(o.LocalMatrix())
}

// WorldToLocalMatrix maps world space into o's local space.
func (o *Object) WorldToLocalMatrix() mgl64.Mat4 {
	return o.WorldMatrix().Inv()
}

// WorldPosition returns the origin of o in world space.
func (o *Object) WorldPosition() mathutil.Vec3 {
	return mathutil.Translation(o.WorldMatrix())
}

// SetWorldPosition moves o so its origin lands on p, keeping rotation
// and scale.
func (o *Object) SetWorldPosition(p mathutil.Vec3) {
	if o.parent == nil {
		o.Position = p
		return
	}
	o.Position = mathutil.MulPoint(o.parent.WorldToLocalMatrix(), p)
}

// WorldRotation composes the rotations from the root down.
func (o *Object) WorldRotation() mgl64.Quat {
	if o.parent == nil {
		return o.Rotation
	}
	return o.parent.WorldRotation().Mul(o.Rotation).Normalize()
}

// SetWorldRotation rotates o so its world rotation equals q.
func (o *Object) SetWorldRotation(q mgl64.Quat) {
	if o.parent == nil {
		o.Rotation = q
		return
	}
	o.Rotation = o.parent.WorldRotation().Inverse().Mul(q).Normalize()
}

// LossyScale is the product of the local scales up the chain, ignoring
// rotation. It is exact when no ancestor combines rotation with
// non-uniform scale.
func (o *Object) LossyScale() mathutil.Vec3 {
	s := o.Scale
	for p := o.parent; p != nil; p = p.parent {
		s = mathutil.Vec3{s[0] * p.Scale[0], s[1] * p.Scale[1], s[2] * p.Scale[2]}
	}
	return s
}

// Up returns o's local up axis in world space.
func (o *Object) Up() mathutil.Vec3 {
	return o.WorldRotation().Rotate(mathutil.Up)
}
