package movement

import (
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-walk/internal/engine/collision"
	"github.com/Faultbox/midgard-walk/internal/logger"
	"github.com/Faultbox/midgard-walk/pkg/math"
)

// Integrator advances the player once per frame. It is the only writer of
// the player state and is not safe for concurrent use; run it on the frame
// loop goroutine.
type Integrator struct {
	params    Params
	player    Player
	ground    Ground
	obstacles Obstacles
	resolver  collision.Resolver

	// jumpPending is set by a fresh jump press and cleared when a grounded
	// frame consumes it, on Place, or on a frame without terrain.
	jumpPending bool

	sinks []FrameSink
	log   *zap.Logger
}

// NewIntegrator creates an integrator for a player with the given body.
func NewIntegrator(p Params, body collision.Body, ground Ground, obstacles Obstacles) *Integrator {
	return &Integrator{
		params:    p,
		player:    Player{Body: body},
		ground:    ground,
		obstacles: obstacles,
		resolver: collision.Resolver{
			Body:          body,
			MaxIterations: p.ResolverIterations,
			Skin:          p.Skin,
		},
		log: logger.Throttled(logger.Named("movement"), 5, 100),
	}
}

// AddSink registers a consumer for emitted frames.
func (in *Integrator) AddSink(s FrameSink) {
	in.sinks = append(in.sinks, s)
}

// OnContact installs a callback fired for every collider correction.
func (in *Integrator) OnContact(fn collision.ContactFunc) {
	in.resolver.OnContact = fn
}

// Player returns a copy of the current player state.
func (in *Integrator) Player() Player {
	return in.player
}

// Place puts the player at eye position pos with zero velocity. If terrain
// is defined there and pos is below the floor, it is lifted onto it.
func (in *Integrator) Place(pos math.Vec3) {
	if !pos.IsFinite() {
		in.log.Warn("ignoring non-finite placement", zap.Any("position", pos))
		return
	}
	in.player.Velocity = math.Vec3{}
	in.jumpPending = false
	in.player.Grounded = false
	if g, ok := in.ground.HeightAt(pos.X, pos.Z); ok {
		floor := g + in.player.Body.EyeOffset
		if pos.Y <= floor {
			pos.Y = floor
		}
		in.player.Position = pos
		in.updateGrounded(g, true)
		return
	}
	in.player.Position = pos
}

// Step integrates one frame of dt under intent, with the look direction
// given by yaw in radians (0 looks down -Z). It returns the emitted frame.
func (in *Integrator) Step(dt time.Duration, intent Intent, yaw float32) Frame {
	dt = in.clampDelta(dt)
	secs := float32(dt.Seconds())
	p := &in.player
	start := p.Position

	if intent.Jump {
		in.jumpPending = true
	}

	move := moveVector(intent, yaw)
	speed := in.params.WalkSpeed
	if intent.Run && !move.IsZero() {
		speed = in.params.RunSpeed
	}
	horizontal := move.Scale(speed)
	p.Velocity.X, p.Velocity.Z = horizontal.X, horizontal.Y

	groundY, hasGround := in.ground.HeightAt(p.Position.X, p.Position.Z)
	in.updateGrounded(groundY, hasGround)
	if !hasGround {
		// Presses over missing terrain are dropped, not buffered.
		in.jumpPending = false
	}

	frame := Frame{HasGround: hasGround, Delta: dt}
	if in.jumpPending && p.Grounded {
		p.Velocity.Y = in.params.JumpVelocity
		p.Grounded = false
		in.jumpPending = false
		frame.Jumped = true
	}

	if hasGround {
		p.Velocity.Y -= in.params.Gravity * secs
	} else {
		p.Velocity.Y = 0
	}
	if !p.Velocity.IsFinite() {
		in.log.Warn("non-finite velocity, stopping player", zap.Any("velocity", p.Velocity))
		p.Velocity = math.Vec3{}
	}

	steps := in.substeps(horizontal.Length(), secs)
	stepSecs := secs / float32(steps)
	boxes := in.obstacles.Boxes()

	lastY, lastOK := groundY, hasGround
	for i := 0; i < steps; i++ {
		before := p.Position
		next := before.Add(p.Velocity.Scale(stepSecs))

		next, n := in.resolver.Resolve(boxes, next, before)
		frame.Corrections += n
		next = in.clampToFootprint(next)

		g, ok := in.ground.HeightAt(next.X, next.Z)
		if !ok {
			// Never drift over undefined terrain.
			p.Velocity.Y = 0
			frame.Reverted++
			lastY, lastOK = in.ground.HeightAt(before.X, before.Z)
			continue
		}
		if floor := g + p.Body.EyeOffset; next.Y < floor {
			next.Y = floor
			p.Velocity.Y = 0
		}
		if !next.IsFinite() {
			p.Velocity = math.Vec3{}
			frame.Reverted++
			continue
		}
		p.Position = next
		lastY, lastOK = g, true
	}

	if !p.Position.IsFinite() {
		in.log.Warn("non-finite position, restoring frame start", zap.Any("start", start))
		p.Position = start
		p.Velocity = math.Vec3{}
	}
	in.updateGrounded(lastY, lastOK)

	if frame.Reverted > 0 {
		in.log.Debug("substeps reverted",
			zap.Int("reverted", frame.Reverted),
			zap.Int("substeps", steps))
	}

	frame.Eye = p.Position
	frame.Ground = p.Feet()
	frame.Velocity = p.Velocity
	frame.Grounded = p.Grounded
	frame.Substeps = steps
	for _, s := range in.sinks {
		s.OnFrame(frame)
	}
	return frame
}

// updateGrounded applies the grounded/airborne transitions for a ground
// sample under the current position. Unknown ground is never stood on.
func (in *Integrator) updateGrounded(groundY float32, ok bool) {
	p := &in.player
	if !ok {
		p.Grounded = false
		return
	}
	threshold := groundY + p.Body.EyeOffset + in.params.GroundEpsilon
	switch {
	case p.Position.Y > threshold:
		p.Grounded = false
	case p.Velocity.Y <= 0:
		p.Grounded = true
	}
}

func (in *Integrator) clampDelta(dt time.Duration) time.Duration {
	if dt < 0 {
		return 0
	}
	if in.params.MaxDelta > 0 && dt > in.params.MaxDelta {
		return in.params.MaxDelta
	}
	return dt
}

// substeps returns how many slices keep each horizontal advance at or below
// MaxStepDistance, capped at MaxSubsteps.
func (in *Integrator) substeps(speed, secs float32) int {
	if in.params.MaxStepDistance <= 0 {
		return 1
	}
	n := int(gomath.Ceil(float64(speed * secs / in.params.MaxStepDistance)))
	if n < 1 {
		n = 1
	}
	if in.params.MaxSubsteps > 0 && n > in.params.MaxSubsteps {
		n = in.params.MaxSubsteps
	}
	return n
}

// clampToFootprint keeps the XZ position inside the terrain footprint shrunk
// by the edge buffer, body radius and margin.
func (in *Integrator) clampToFootprint(pos math.Vec3) math.Vec3 {
	lo, hi, ok := in.ground.Footprint()
	if !ok {
		return pos
	}
	inset := in.params.EdgeBuffer + in.player.Body.Radius + in.params.EdgeMargin
	lo = lo.Add(math.Vec2{X: inset, Y: inset})
	hi = hi.Sub(math.Vec2{X: inset, Y: inset})
	if lo.X > hi.X {
		lo.X = (lo.X + hi.X) / 2
		hi.X = lo.X
	}
	if lo.Y > hi.Y {
		lo.Y = (lo.Y + hi.Y) / 2
		hi.Y = lo.Y
	}
	return pos.WithXZ(pos.XZ().Clamp(lo, hi))
}

// moveVector rotates the intent axes by yaw into a unit world XZ direction.
func moveVector(intent Intent, yaw float32) math.Vec2 {
	fwdAxis := math.Clampf(intent.Forward, -1, 1)
	strafeAxis := math.Clampf(intent.Strafe, -1, 1)
	if !math.IsFinite(fwdAxis) || !math.IsFinite(strafeAxis) || !math.IsFinite(yaw) {
		return math.Vec2{}
	}
	sin := float32(gomath.Sin(float64(yaw)))
	cos := float32(gomath.Cos(float64(yaw)))
	forward := math.Vec2{X: -sin, Y: -cos}
	right := math.Vec2{X: cos, Y: -sin}
	return forward.Scale(fwdAxis).Add(right.Scale(strafeAxis)).Normalize()
}
