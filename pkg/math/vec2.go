// Package math provides the small float32 vector and matrix types shared by
// the locomotion core and its presentation collaborators.
package math

import "math"

// Vec2 is a 2D vector. Horizontal (XZ) quantities store Z in Y.
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product.
func (v Vec2) Dot(other Vec2) float32 {
	return v.X*other.X + v.Y*other.Y
}

// LengthSq returns the squared magnitude.
func (v Vec2) LengthSq() float32 {
	return v.X*v.X + v.Y*v.Y
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.LengthSq())))
}

// Normalize returns a unit vector, or the zero vector for zero input.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Clamp limits each component to the rectangle [min, max].
func (v Vec2) Clamp(min, max Vec2) Vec2 {
	return Vec2{Clampf(v.X, min.X, max.X), Clampf(v.Y, min.Y, max.Y)}
}

// IsZero reports whether both components are exactly zero.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}
