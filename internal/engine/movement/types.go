// Package movement is the per-frame locomotion integrator: it turns input
// intent into a corrected eye position against terrain and colliders.
package movement

import (
	"time"

	"github.com/Faultbox/midgard-walk/internal/engine/collision"
	"github.com/Faultbox/midgard-walk/pkg/math"
)

// Intent is one frame of movement input.
type Intent struct {
	Forward float32 // -1..1, positive walks toward the look direction
	Strafe  float32 // -1..1, positive walks right
	Run     bool
	Jump    bool // a fresh press this frame; held keys must not repeat it
}

// Player is the integrated player state. Position is the eye position.
type Player struct {
	Position math.Vec3
	Velocity math.Vec3
	Grounded bool
	Body     collision.Body
}

// Feet returns the ground-relative position (eye minus eye offset).
func (p *Player) Feet() math.Vec3 {
	return math.Vec3{X: p.Position.X, Y: p.Position.Y - p.Body.EyeOffset, Z: p.Position.Z}
}

// Params holds integrator tuning.
type Params struct {
	WalkSpeed          float32
	RunSpeed           float32
	JumpVelocity       float32
	Gravity            float32
	MaxStepDistance    float32
	MaxSubsteps        int
	MaxDelta           time.Duration
	GroundEpsilon      float32
	EdgeBuffer         float32
	EdgeMargin         float32
	ResolverIterations int
	Skin               float32
}

// Ground answers height queries. Both methods report ok=false while no
// terrain is available.
type Ground interface {
	HeightAt(x, z float32) (float32, bool)
	Footprint() (min, max math.Vec2, ok bool)
}

// Obstacles supplies the current collider snapshot.
type Obstacles interface {
	Boxes() []collision.Box
}

// Frame is what one integration step emits to presentation collaborators.
type Frame struct {
	Eye         math.Vec3 // corrected eye position
	Ground      math.Vec3 // eye minus eye offset
	Velocity    math.Vec3
	Grounded    bool
	HasGround   bool // terrain was defined under the player at frame start
	Jumped      bool
	Substeps    int
	Reverted    int // substeps undone for lack of terrain or non-finite state
	Corrections int // collider push-outs applied
	Delta       time.Duration
}

// FrameSink consumes emitted frames. Sinks get copies and cannot write
// back into the player state.
type FrameSink interface {
	OnFrame(f Frame)
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(f Frame)

// OnFrame calls fn(f).
func (fn FrameSinkFunc) OnFrame(f Frame) { fn(f) }
