package terrain

import (
	"fmt"
	gomath "math"

	"github.com/aquilax/go-perlin"
)

// NoiseParams controls procedural raster generation.
type NoiseParams struct {
	Width  int
	Height int
	Seed   int64
	Scale  float64 // noise-space units per raster sample
	Alpha  float64 // weight falloff between octaves
	Beta   float64 // frequency growth between octaves
	Octave int32
}

// DefaultNoise returns noise settings for rolling hills.
func DefaultNoise(width, height int, seed int64) NoiseParams {
	return NoiseParams{
		Width:  width,
		Height: height,
		Seed:   seed,
		Scale:  1.0 / 64,
		Alpha:  2,
		Beta:   2,
		Octave: 3,
	}
}

// GenerateRaster builds a Perlin-noise raster normalized to [0,1].
// The result is deterministic for a given seed.
func GenerateRaster(p NoiseParams) (*Raster, error) {
	if p.Width < 1 || p.Height < 1 {
		return nil, fmt.Errorf("%w: noise raster %dx%d", ErrInvalidParams, p.Width, p.Height)
	}
	if p.Scale <= 0 {
		return nil, fmt.Errorf("%w: noise scale %v", ErrInvalidParams, p.Scale)
	}

	gen := perlin.NewPerlin(p.Alpha, p.Beta, p.Octave, p.Seed)

	raw := make([]float64, p.Width*p.Height)
	lo, hi := gomath.Inf(1), gomath.Inf(-1)
	for z := 0; z < p.Height; z++ {
		for x := 0; x < p.Width; x++ {
			n := gen.Noise2D(float64(x)*p.Scale, float64(z)*p.Scale)
			raw[z*p.Width+x] = n
			lo = gomath.Min(lo, n)
			hi = gomath.Max(hi, n)
		}
	}

	samples := make([]float32, len(raw))
	span := hi - lo
	for i, n := range raw {
		if span > 0 {
			samples[i] = float32((n - lo) / span)
		}
	}

	return &Raster{Width: p.Width, Height: p.Height, Samples: samples}, nil
}
