package collision

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-walk/internal/logger"
)

// Registry holds the static collider set. Rebuild prepares a complete new
// slice and publishes it with one atomic swap, so a frame reading Boxes sees
// either the old set or the new one, never a mix. Published slices are
// never written again.
type Registry struct {
	boxes     atomic.Pointer[[]Box]
	clearance float32
	opts      ClassifyOptions
	log       *zap.Logger
}

// NewRegistry returns an empty registry that expands every collider by clearance.
func NewRegistry(clearance float32, opts ClassifyOptions) *Registry {
	return &Registry{
		clearance: clearance,
		opts:      opts,
		log:       logger.Named("collision"),
	}
}

// Clearance returns the expansion margin.
func (r *Registry) Clearance() float32 {
	return r.clearance
}

// Rebuild classifies volumes and replaces the whole collider set.
// It returns the number of colliders now registered.
func (r *Registry) Rebuild(volumes []Volume) int {
	candidates, stats := ClassifyAll(volumes, r.opts)

	boxes := make([]Box, len(candidates))
	for i, c := range candidates {
		boxes[i] = c.Bounds.Expand(r.clearance)
	}
	r.boxes.Store(&boxes)

	r.log.Info("colliders rebuilt",
		zap.Int("volumes", len(volumes)),
		zap.Int("colliders", len(boxes)),
		zap.Int("invisible", stats[Invisible]),
		zap.Int("tagged", stats[Tagged]),
		zap.Int("transparent", stats[Transparent]),
		zap.Int("too_small", stats[TooSmall]),
		zap.Int("malformed", stats[Malformed]))
	return len(boxes)
}

// Clear drops every collider. The registry reports not ready afterwards.
func (r *Registry) Clear() {
	r.boxes.Store(nil)
}

// Ready reports whether a collider set has been published. An empty
// published set is ready.
func (r *Registry) Ready() bool {
	return r.boxes.Load() != nil
}

// Boxes returns the current collider snapshot, or nil before the first
// build. Callers must not modify it.
func (r *Registry) Boxes() []Box {
	p := r.boxes.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Len returns the number of registered colliders.
func (r *Registry) Len() int {
	return len(r.Boxes())
}
