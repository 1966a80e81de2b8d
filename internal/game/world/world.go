// Package world is the simulation context: it owns the heightfield sampler,
// the collider registry and the movement integrator, builds them from a
// scene in the background and steps the player once per frame.
package world

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-walk/internal/config"
	"github.com/Faultbox/midgard-walk/internal/engine/camera"
	"github.com/Faultbox/midgard-walk/internal/engine/collision"
	"github.com/Faultbox/midgard-walk/internal/engine/movement"
	"github.com/Faultbox/midgard-walk/internal/engine/terrain"
	"github.com/Faultbox/midgard-walk/internal/logger"
	"github.com/Faultbox/midgard-walk/internal/metrics"
	"github.com/Faultbox/midgard-walk/internal/scene"
	"github.com/Faultbox/midgard-walk/pkg/math"
)

// ErrSuperseded is returned by a load whose scene was replaced by a later
// Load before its results could be published.
var ErrSuperseded = errors.New("world: load superseded")

// World wires the locomotion core together. Load and Update must be called
// from the frame goroutine; the builds Load starts run in the background.
type World struct {
	cfg *config.Config

	Terrain   *terrain.Sampler
	Colliders *collision.Registry
	Camera    *camera.FirstPerson

	integrator *movement.Integrator
	metrics    *metrics.Frame
	log        *zap.Logger

	spawn   *scene.Spawn
	spawned bool

	// publishMu orders publication against Load: a build publishes only
	// while its generation is current, and Load bumps the generation and
	// clears the previous scene under the same lock.
	publishMu  sync.Mutex
	generation atomic.Uint64
	cancelLoad context.CancelFunc
}

// New creates an empty world. m may be nil.
func New(cfg *config.Config, m *metrics.Frame) *World {
	w := &World{
		cfg:     cfg,
		Terrain: terrain.NewSampler(),
		Colliders: collision.NewRegistry(cfg.Collision.Clearance, collision.ClassifyOptions{
			MinExtent:  cfg.Collision.MinExtent,
			MinOpacity: cfg.Collision.MinOpacity,
		}),
		Camera:  camera.NewFirstPerson(),
		metrics: m,
		log:     logger.Named("world"),
	}

	w.integrator = movement.NewIntegrator(Params(cfg), Body(cfg), w.Terrain, w.Colliders)
	if m != nil {
		w.integrator.AddSink(m)
	}

	contacts := logger.Throttled(w.log, 1, 50)
	w.integrator.OnContact(func(b collision.Box, push math.Vec2) {
		contacts.Debug("collider contact", zap.String("collider", b.Name), zap.Float32("push", push.Length()))
	})
	return w
}

// Params converts the movement and collision sections into integrator tuning.
func Params(cfg *config.Config) movement.Params {
	mv := cfg.Movement
	return movement.Params{
		WalkSpeed:          mv.WalkSpeed,
		RunSpeed:           mv.RunSpeed,
		JumpVelocity:       mv.JumpVelocity,
		Gravity:            mv.Gravity,
		MaxStepDistance:    mv.MaxStepDistance,
		MaxSubsteps:        mv.MaxSubsteps,
		MaxDelta:           mv.MaxDelta,
		GroundEpsilon:      mv.GroundEpsilon,
		EdgeBuffer:         mv.EdgeBuffer,
		EdgeMargin:         mv.EdgeMargin,
		ResolverIterations: cfg.Collision.MaxIterations,
		Skin:               cfg.Collision.Skin,
	}
}

// Body converts the player section into a collision body.
func Body(cfg *config.Config) collision.Body {
	return collision.Body{
		Radius:    cfg.Player.Radius,
		Height:    cfg.Player.Height,
		EyeOffset: cfg.Player.EyeOffset,
	}
}

// AddSink registers a frame consumer.
func (w *World) AddSink(s movement.FrameSink) {
	w.integrator.AddSink(s)
}

// Player returns a copy of the player state.
func (w *World) Player() movement.Player {
	return w.integrator.Player()
}

// Ready reports whether both the terrain and the collider set are published.
func (w *World) Ready() bool {
	return w.Terrain.Ready() && w.Colliders.Ready()
}

// Load replaces the current scene. Any load still in flight is cancelled
// and can no longer publish. The previous terrain and colliders are dropped
// at once; the new ones are built in the background and each is published
// as soon as it is complete. The returned task reports readiness and the
// first error. Nothing is published for a part that failed, was cancelled
// or was superseded.
func (w *World) Load(ctx context.Context, s *scene.Scene) *Task {
	if w.cancelLoad != nil {
		w.cancelLoad()
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancelLoad = cancel

	w.publishMu.Lock()
	gen := w.generation.Add(1)
	w.Terrain.Reset()
	w.Colliders.Clear()
	w.publishMu.Unlock()

	w.spawn = s.Spawn
	w.spawned = false

	params := s.BuildParams(w.cfg.Terrain)
	return startTask(ctx, cancel, s.Name,
		func(ctx context.Context) error {
			raster, err := s.Raster()
			if err != nil {
				return err
			}
			grid, err := terrain.Build(raster, params)
			if err != nil {
				return err
			}
			return w.publish(ctx, gen, func() {
				w.Terrain.Publish(grid)
			})
		},
		func(ctx context.Context) error {
			volumes := s.Volumes()
			return w.publish(ctx, gen, func() {
				n := w.Colliders.Rebuild(volumes)
				if w.metrics != nil {
					w.metrics.SetColliders(n)
				}
			})
		},
	)
}

// publish runs fn only if the load of generation gen is still current.
func (w *World) publish(ctx context.Context, gen uint64, fn func()) error {
	w.publishMu.Lock()
	defer w.publishMu.Unlock()

	if w.generation.Load() != gen {
		return ErrSuperseded
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	fn()
	return nil
}

// Update steps the player one frame with the camera's yaw. The first frame
// after terrain becomes available drops the player at the spawn point.
func (w *World) Update(dt time.Duration, intent movement.Intent) movement.Frame {
	if !w.spawned && w.Terrain.Ready() {
		w.placeAtSpawn()
	}
	return w.integrator.Step(dt, intent, w.Camera.Yaw)
}

// Teleport moves the player to eye position pos.
func (w *World) Teleport(pos math.Vec3) {
	w.integrator.Place(pos)
}

func (w *World) placeAtSpawn() {
	w.spawned = true

	var pos math.Vec3
	if w.spawn != nil {
		pos = math.Vec3{X: w.spawn.Position[0], Y: w.spawn.Position[1], Z: w.spawn.Position[2]}
		w.Camera.Yaw = w.spawn.Yaw
	} else if lo, hi, ok := w.Terrain.Footprint(); ok {
		c := lo.Add(hi).Scale(0.5)
		pos = math.Vec3{X: c.X, Z: c.Y}
	}

	w.integrator.Place(pos)
	p := w.integrator.Player()
	w.log.Info("player spawned",
		zap.Float32("x", p.Position.X),
		zap.Float32("y", p.Position.Y),
		zap.Float32("z", p.Position.Z),
		zap.Bool("grounded", p.Grounded))
}
