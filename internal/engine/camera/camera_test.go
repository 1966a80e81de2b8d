package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/midgard-walk/pkg/math"
)

func near(a, b float32) bool {
	return math.Absf(a-b) < 1e-4
}

func TestForwardAtRest(t *testing.T) {
	c := NewFirstPerson()
	f := c.Forward()
	if !near(f.X, 0) || !near(f.Y, 0) || !near(f.Z, -1) {
		t.Errorf("Forward() = %v, want (0, 0, -1)", f)
	}
}

func TestHandleLookTurnsRight(t *testing.T) {
	c := NewFirstPerson()
	c.Sensitivity = 0.01

	// 157 px * 0.01 rad = quarter turn to the right.
	c.HandleLook(157.07964, 0)
	f := c.Forward()
	if !near(f.X, 1) || !near(f.Z, 0) {
		t.Errorf("Forward() after right turn = %v, want (1, 0, 0)", f)
	}
}

func TestHandleLookClampsPitch(t *testing.T) {
	c := NewFirstPerson()
	c.HandleLook(0, -100000)
	if c.Pitch != c.MaxPitch {
		t.Errorf("Pitch = %v, want clamp at %v", c.Pitch, c.MaxPitch)
	}
	c.HandleLook(0, 100000)
	if c.Pitch != c.MinPitch {
		t.Errorf("Pitch = %v, want clamp at %v", c.Pitch, c.MinPitch)
	}
}

func TestYawWraps(t *testing.T) {
	c := NewFirstPerson()
	c.Sensitivity = 1
	for i := 0; i < 50; i++ {
		c.HandleLook(1, 0)
	}
	if c.Yaw < -gomath.Pi || c.Yaw >= gomath.Pi {
		t.Errorf("Yaw = %v, want within [-pi, pi)", c.Yaw)
	}
}

func TestHandleLookIgnoresNaN(t *testing.T) {
	c := NewFirstPerson()
	c.HandleLook(float32(gomath.NaN()), 3)
	if c.Yaw != 0 || c.Pitch != 0 {
		t.Errorf("NaN look changed orientation to yaw=%v pitch=%v", c.Yaw, c.Pitch)
	}
}

func TestViewMatrixLooksForward(t *testing.T) {
	c := NewFirstPerson()
	eye := math.Vec3{X: 3, Y: 2, Z: 1}
	view := c.ViewMatrix(eye)

	p := view.TransformVec3(eye.Add(math.Vec3{Z: -5}))
	if !near(p.X, 0) || !near(p.Y, 0) || !near(p.Z, -5) {
		t.Errorf("point ahead in view space = %v, want (0, 0, -5)", p)
	}
}
