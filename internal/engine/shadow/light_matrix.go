// Package shadow computes a directional light frustum that follows the player.
package shadow

import (
	"sync"

	"github.com/Faultbox/midgard-walk/internal/engine/movement"
	"github.com/Faultbox/midgard-walk/pkg/math"
)

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the center point of the AABB.
func (b AABB) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Radius returns the distance from center to corner (half-diagonal).
func (b AABB) Radius() float32 {
	return b.Max.Sub(b.Min).Scale(0.5).Length()
}

// LightMatrix computes an orthographic view-projection for a directional
// light looking at focus. lightDir points toward the light; halfSize is the
// half-width of the covered square and depth the distance the frustum spans
// behind the focus.
func LightMatrix(lightDir math.Vec3, focus math.Vec3, halfSize, depth float32) math.Mat4 {
	dir := lightDir.Normalize()
	distance := halfSize + depth
	lightPos := focus.Add(dir.Scale(distance))

	up := math.Vec3{Y: 1}
	if math.Absf(dir.Y) > 0.99 {
		up = math.Vec3{Z: 1}
	}

	view := math.LookAt(lightPos, focus, up)
	proj := math.Ortho(-halfSize, halfSize, -halfSize, halfSize, 0.1, distance+depth)
	return proj.Mul(view)
}

// Follower keeps a shadow frustum centred on the player's ground position.
// It consumes movement frames and never writes back into player state.
type Follower struct {
	LightDir math.Vec3
	Bounds   AABB // scene bounds, caps the covered area and depth
	Radius   float32

	mu     sync.RWMutex
	focus  math.Vec3
	matrix math.Mat4
	valid  bool
}

// NewFollower creates a follower covering radius world units around the
// player. A non-positive radius covers the whole scene.
func NewFollower(lightDir math.Vec3, bounds AABB, radius float32) *Follower {
	return &Follower{LightDir: lightDir, Bounds: bounds, Radius: radius}
}

// OnFrame recenters the frustum on the frame's ground position.
func (f *Follower) OnFrame(frame movement.Frame) {
	if !frame.Ground.IsFinite() {
		return
	}

	sceneRadius := f.Bounds.Radius()
	radius := f.Radius
	if radius <= 0 || (sceneRadius > 0 && radius > sceneRadius) {
		radius = sceneRadius
	}
	if radius <= 0 {
		return
	}

	depth := f.Bounds.Max.Y - f.Bounds.Min.Y
	if depth < radius {
		depth = radius
	}

	focus := frame.Ground
	m := LightMatrix(f.LightDir, focus, radius*1.1, depth)

	f.mu.Lock()
	f.focus = focus
	f.matrix = m
	f.valid = true
	f.mu.Unlock()
}

// Matrix returns the latest light matrix and whether any frame was seen.
func (f *Follower) Matrix() (math.Mat4, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.matrix, f.valid
}

// Focus returns the point the frustum is centred on.
func (f *Follower) Focus() math.Vec3 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.focus
}
