// Package terrain provides the heightfield sampler: a downsampled elevation
// grid answering ground-height queries by bilinear interpolation.
package terrain

import (
	"errors"

	"github.com/Faultbox/midgard-walk/pkg/math"
)

var (
	// ErrInvalidRaster is returned when raster dimensions and samples disagree.
	ErrInvalidRaster = errors.New("terrain: invalid raster")
	// ErrInvalidParams is returned for unusable build parameters.
	ErrInvalidParams = errors.New("terrain: invalid build parameters")
)

// Raster is a row-major grid of raw elevation samples in [0,1].
// Row index runs along Z, column index along X.
type Raster struct {
	Width   int
	Height  int
	Samples []float32
}

// At returns the raw sample at column x, row z.
func (r *Raster) At(x, z int) float32 {
	return r.Samples[z*r.Width+x]
}

// BuildParams controls how a raster becomes a HeightGrid.
type BuildParams struct {
	Size        math.Vec2 // footprint width (X) and depth (Z) in meters
	Origin      math.Vec3 // world position of local (0,0); Y is added to every height
	ElevMin     float32
	ElevMax     float32
	MaxSegments int // at most MaxSegments+1 samples per side after downsampling
}

// HeightGrid is an immutable downsampled elevation grid.
// Heights are shifted so that 0 is the minimum elevation.
type HeightGrid struct {
	heights []float32 // rows*cols, row-major
	cols    int
	rows    int
	stride  int
	size    math.Vec2
	origin  math.Vec3
	maxH    float32
}

// Cols returns the number of samples along X.
func (g *HeightGrid) Cols() int { return g.cols }

// Rows returns the number of samples along Z.
func (g *HeightGrid) Rows() int { return g.rows }

// Stride returns the raster stride used to build the grid.
func (g *HeightGrid) Stride() int { return g.stride }

// Size returns the footprint size.
func (g *HeightGrid) Size() math.Vec2 { return g.size }

// Origin returns the world offset of the footprint.
func (g *HeightGrid) Origin() math.Vec3 { return g.origin }

// MaxHeight returns the shifted elevation range (ElevMax-ElevMin).
func (g *HeightGrid) MaxHeight() float32 { return g.maxH }

// Sample returns the shifted height at grid column c, row r.
func (g *HeightGrid) Sample(c, r int) float32 {
	return g.heights[r*g.cols+c]
}

// Footprint returns the world-space XZ rectangle covered by the grid.
func (g *HeightGrid) Footprint() (min, max math.Vec2) {
	min = g.origin.XZ()
	return min, min.Add(g.size)
}
