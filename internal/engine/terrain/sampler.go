package terrain

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-walk/internal/logger"
	"github.com/Faultbox/midgard-walk/pkg/math"
)

// Sampler is the published heightfield the movement loop reads from.
// A background build publishes a grid with a single atomic swap; readers
// never observe a partially built grid. Before anything is published every
// query reports no data.
type Sampler struct {
	grid atomic.Pointer[HeightGrid]
	log  *zap.Logger
}

// NewSampler returns an empty sampler.
func NewSampler() *Sampler {
	return &Sampler{log: logger.Named("terrain")}
}

// Publish makes g the active grid. A nil grid resets the sampler.
func (s *Sampler) Publish(g *HeightGrid) {
	s.grid.Store(g)
	if g == nil {
		return
	}
	s.log.Info("heightfield published",
		zap.Int("cols", g.cols),
		zap.Int("rows", g.rows),
		zap.Int("stride", g.stride),
		zap.Float32("max_height", g.maxH))
}

// Reset drops the active grid.
func (s *Sampler) Reset() {
	s.grid.Store(nil)
}

// Ready reports whether a grid has been published.
func (s *Sampler) Ready() bool {
	return s.grid.Load() != nil
}

// Grid returns the active grid, or nil.
func (s *Sampler) Grid() *HeightGrid {
	return s.grid.Load()
}

// HeightAt returns the ground height at world (x, z).
func (s *Sampler) HeightAt(x, z float32) (float32, bool) {
	return s.grid.Load().HeightAtWorld(x, z)
}

// Footprint returns the world XZ rectangle of the active grid.
func (s *Sampler) Footprint() (min, max math.Vec2, ok bool) {
	g := s.grid.Load()
	if g == nil {
		return math.Vec2{}, math.Vec2{}, false
	}
	min, max = g.Footprint()
	return min, max, true
}
