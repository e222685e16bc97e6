// Package math provides the vector and matrix helpers shared by the simulators.
package math

import "math"

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// WorldUp is the +Y axis.
var WorldUp = Vec3{0, 1, 0}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Normalize returns a unit vector, or the zero vector when v has no length.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// IsZero reports whether every component is exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// RotateAroundAxis rotates v by angle radians around axis (Rodrigues' formula).
// The axis is normalized before use.
func RotateAroundAxis(v, axis Vec3, angle float32) Vec3 {
	u := axis.Normalize()
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))
	dot := u.Dot(v)

	return Vec3{
		X: v.X*c + (u.Y*v.Z-u.Z*v.Y)*s + u.X*dot*(1-c),
		Y: v.Y*c + (u.Z*v.X-u.X*v.Z)*s + u.Y*dot*(1-c),
		Z: v.Z*c + (u.X*v.Y-u.Y*v.X)*s + u.Z*dot*(1-c),
	}
}

// ForwardFromYawPitch returns the aircraft forward direction.
// Yaw 0, pitch 0 faces -Z; positive pitch climbs.
func ForwardFromYawPitch(yaw, pitch float32) Vec3 {
	cy, sy := float32(math.Cos(float64(yaw))), float32(math.Sin(float64(yaw)))
	cp, sp := float32(math.Cos(float64(pitch))), float32(math.Sin(float64(pitch)))
	return Vec3{sy * cp, sp, -cy * cp}
}

// degenerateCross is the length below which cross(WorldUp, fwd) counts as parallel.
const degenerateCross = 1e-4

// BasisFromDirection builds an orthonormal (right, up, forward) frame whose
// forward axis follows dir. A zero dir faces WorldUp, and a vertical forward
// uses +X as right.
func BasisFromDirection(dir Vec3) (right, up, forward Vec3) {
	forward = dir.Normalize()
	if forward.IsZero() {
		forward = WorldUp
	}
	right = WorldUp.Cross(forward)
	if right.Length() < degenerateCross {
		right = Vec3{1, 0, 0}
	}
	right = right.Normalize()
	up = forward.Cross(right).Normalize()
	return right, up, forward
}
