// Package vecmath provides the vector and matrix primitives used by the
// particle simulation and the render contract.
package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vector and matrix types are mgl32's, so they can be handed to GL as-is.
type (
	Vec2 = mgl32.Vec2
	Vec3 = mgl32.Vec3
	Vec4 = mgl32.Vec4
	Mat4 = mgl32.Mat4
)

// Tau is a full turn in radians.
const Tau = 2 * math.Pi

// Polar returns the cartesian vector for the given radius and angle.
func Polar(radius, angle float32) Vec2 {
	s, c := math.Sincos(float64(angle))
	return Vec2{radius * float32(c), radius * float32(s)}
}

// Normalize returns v scaled to unit length, or the zero vector when v has
// zero length.
func Normalize(v Vec2) Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return v.Mul(1 / l)
}

// Rotate rotates v counter-clockwise by angle radians.
func Rotate(v Vec2, angle float32) Vec2 {
	return mgl32.Rotate2D(angle).Mul2x1(v)
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// LerpVec4 interpolates componentwise between a and b.
func LerpVec4(a, b Vec4, t float32) Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}

// MulVec2 multiplies componentwise.
func MulVec2(a, b Vec2) Vec2 {
	return Vec2{a[0] * b[0], a[1] * b[1]}
}

// MulVec4 multiplies componentwise.
func MulVec4(a, b Vec4) Vec4 {
	return Vec4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}

// Identity returns the 4x4 identity matrix.
func Identity() Mat4 {
	return mgl32.Ident4()
}

// Orthographic builds an orthographic projection. Arguments follow the
// (left, right, top, bottom) order, and depth maps with a positive 2/(far-near)
// scale, so z is not flipped.
func Orthographic(left, right, top, bottom, near, far float32) Mat4 {
	dx := right - left
	dy := top - bottom
	dz := far - near

	// Column-major.
	return Mat4{
		2 / dx, 0, 0, 0,
		0, 2 / dy, 0, 0,
		0, 0, 2 / dz, 0,
		-(right + left) / dx, -(top + bottom) / dy, -(far + near) / dz, 1,
	}
}

// Transform applies m to the point p (w = 1).
func Transform(m Mat4, p Vec3) Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// Clamp restricts x to [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
