package math

import "math"

// Vec3 is a 3D vector. Y is up.
type Vec3 struct {
	X, Y, Z float32
}

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

// Normalize returns a unit vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// XZ returns the horizontal components as Vec2 (Z stored in Y).
func (v Vec3) XZ() Vec2 {
	return Vec2{v.X, v.Z}
}

// WithXZ returns v with its horizontal components replaced.
func (v Vec3) WithXZ(h Vec2) Vec3 {
	return Vec3{h.X, v.Y, h.Y}
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	return IsFinite(v.X) && IsFinite(v.Y) && IsFinite(v.Z)
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float32) bool {
	d := float64(f)
	return !math.IsNaN(d) && !math.IsInf(d, 0)
}

// Clampf limits v to [lo, hi].
func Clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Absf returns the absolute value of a float32.
func Absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// Sqrtf returns the square root of a float32.
func Sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
