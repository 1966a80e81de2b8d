// Package collision owns the static collider registry and the cylinder
// push-out resolver the movement integrator runs every substep.
package collision

import (
	"github.com/Faultbox/midgard-walk/pkg/math"
)

// Box is a world-space axis-aligned bounding box.
type Box struct {
	Min  math.Vec3
	Max  math.Vec3
	Name string // source volume, for diagnostics and contact callbacks
}

// Expand returns b grown by margin on every axis.
func (b Box) Expand(margin float32) Box {
	m := math.Vec3{X: margin, Y: margin, Z: margin}
	return Box{Min: b.Min.Sub(m), Max: b.Max.Add(m), Name: b.Name}
}

// Size returns the box extents.
func (b Box) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// MaxExtent returns the largest of the three extents.
func (b Box) MaxExtent() float32 {
	s := b.Size()
	return max(s.X, s.Y, s.Z)
}

// Valid reports whether the corners are finite and not inverted.
// Zero-thickness boxes are valid.
func (b Box) Valid() bool {
	return b.Min.IsFinite() && b.Max.IsFinite() &&
		b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// ClosestXZ returns the point of the box's XZ footprint nearest to p.
func (b Box) ClosestXZ(p math.Vec2) math.Vec2 {
	return p.Clamp(b.Min.XZ(), b.Max.XZ())
}

// Body is the player's collision cylinder.
type Body struct {
	Radius    float32
	Height    float32
	EyeOffset float32 // eye height above the feet
}

// Span returns the cylinder's vertical extent for an eye position.
func (b Body) Span(eyeY float32) (feet, head float32) {
	feet = eyeY - b.EyeOffset
	return feet, feet + b.Height
}
