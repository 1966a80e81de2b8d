// Package camera provides the first-person look camera whose yaw steers
// movement and whose pitch only affects the view.
package camera

import (
	gomath "math"

	"github.com/Faultbox/midgard-walk/pkg/math"
)

// FirstPerson holds look orientation. Yaw 0 looks down -Z; positive yaw
// turns left.
type FirstPerson struct {
	Yaw   float32 // radians, wrapped to [-pi, pi)
	Pitch float32 // radians, positive looks up

	MinPitch    float32
	MaxPitch    float32
	Sensitivity float32 // radians per pixel of mouse motion
}

// NewFirstPerson creates a camera looking down -Z with default limits.
func NewFirstPerson() *FirstPerson {
	return &FirstPerson{
		MinPitch:    -1.5,
		MaxPitch:    1.5,
		Sensitivity: 0.0025,
	}
}

// HandleLook applies a mouse delta in pixels. Moving right turns right,
// moving down looks down.
func (c *FirstPerson) HandleLook(deltaX, deltaY float32) {
	if !math.IsFinite(deltaX) || !math.IsFinite(deltaY) {
		return
	}
	c.Yaw = wrapAngle(c.Yaw - deltaX*c.Sensitivity)
	c.Pitch = math.Clampf(c.Pitch-deltaY*c.Sensitivity, c.MinPitch, c.MaxPitch)
}

// Forward returns the unit view direction.
func (c *FirstPerson) Forward() math.Vec3 {
	cp := float32(gomath.Cos(float64(c.Pitch)))
	return math.Vec3{
		X: -float32(gomath.Sin(float64(c.Yaw))) * cp,
		Y: float32(gomath.Sin(float64(c.Pitch))),
		Z: -float32(gomath.Cos(float64(c.Yaw))) * cp,
	}
}

// ViewMatrix returns the view matrix for an eye position.
func (c *FirstPerson) ViewMatrix(eye math.Vec3) math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(eye, eye.Add(c.Forward()), up)
}

func wrapAngle(a float32) float32 {
	const twoPi = 2 * gomath.Pi
	w := gomath.Mod(float64(a)+gomath.Pi, twoPi)
	if w < 0 {
		w += twoPi
	}
	return float32(w - gomath.Pi)
}
