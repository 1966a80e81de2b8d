package terrain

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-walk/pkg/math"
)

const eps = 1e-4

// unitGrid builds a 2x2 grid over a unit footprint whose shifted heights are
// exactly the given values (elevation range 10, samples scaled down by 10).
func unitGrid(t *testing.T, h00, h10, h01, h11 float32) *HeightGrid {
	t.Helper()
	raster := &Raster{Width: 2, Height: 2, Samples: []float32{h00 / 10, h10 / 10, h01 / 10, h11 / 10}}
	g, err := Build(raster, BuildParams{Size: math.Vec2{X: 1, Y: 1}, ElevMin: 5, ElevMax: 15, MaxSegments: 8})
	require.NoError(t, err)
	return g
}

func TestBilinearCellCenter(t *testing.T) {
	g := unitGrid(t, 0, 2, 4, 6)

	h, ok := g.HeightAtLocal(0.5, 0.5)
	require.True(t, ok)
	assert.InDelta(t, 3.0, h, eps)
}

func TestBilinearCornersAndEdges(t *testing.T) {
	g := unitGrid(t, 0, 2, 4, 6)

	tests := []struct {
		x, z, want float32
	}{
		{0, 0, 0},
		{1, 0, 2},
		{0, 1, 4},
		{1, 1, 6},
		{0.5, 0, 1},
		{0, 0.5, 2},
		{0.25, 0.75, 3.5},
	}
	for _, tt := range tests {
		h, ok := g.HeightAtLocal(tt.x, tt.z)
		require.True(t, ok, "(%v, %v)", tt.x, tt.z)
		assert.InDelta(t, tt.want, h, eps, "(%v, %v)", tt.x, tt.z)
	}
}

func TestHeightAtLocalOutsideFootprint(t *testing.T) {
	g := unitGrid(t, 1, 1, 1, 1)

	for _, p := range [][2]float32{{-0.001, 0.5}, {1.001, 0.5}, {0.5, -0.001}, {0.5, 1.001}} {
		_, ok := g.HeightAtLocal(p[0], p[1])
		assert.False(t, ok, "(%v, %v) should be outside", p[0], p[1])
	}

	nan := float32(gomath.NaN())
	_, ok := g.HeightAtLocal(nan, 0.5)
	assert.False(t, ok, "NaN query must report no data")
}

func TestHeightAtWorldAppliesOrigin(t *testing.T) {
	raster := &Raster{Width: 2, Height: 2, Samples: []float32{0, 0.2, 0.4, 0.6}}
	g, err := Build(raster, BuildParams{
		Size:        math.Vec2{X: 10, Y: 10},
		Origin:      math.Vec3{X: -5, Y: 100, Z: 20},
		ElevMin:     0,
		ElevMax:     10,
		MaxSegments: 4,
	})
	require.NoError(t, err)

	h, ok := g.HeightAtWorld(0, 25)
	require.True(t, ok)
	assert.InDelta(t, 103.0, h, eps)

	_, ok = g.HeightAtWorld(-5.5, 25)
	assert.False(t, ok)
}

func TestBuildStride(t *testing.T) {
	samples := make([]float32, 1000*600)
	for i := range samples {
		samples[i] = float32(i%1000) / 999
	}
	raster := &Raster{Width: 1000, Height: 600, Samples: samples}

	g, err := Build(raster, BuildParams{Size: math.Vec2{X: 100, Y: 60}, ElevMax: 1, MaxSegments: 99})
	require.NoError(t, err)

	// ceil(1000 / 100) = 10
	assert.Equal(t, 10, g.Stride())
	assert.LessOrEqual(t, g.Cols(), 100)
	assert.LessOrEqual(t, g.Rows(), 100)
	assert.Equal(t, 100, g.Cols())
	assert.Equal(t, 60, g.Rows())
	// Grid column 3 takes raster column 30.
	assert.InDelta(t, float32(30)/999, g.Sample(3, 0), eps)
}

func TestStrideNeverBelowOne(t *testing.T) {
	assert.Equal(t, 1, Stride(4, 4, 255))
	assert.Equal(t, 2, Stride(256, 3, 127))
	assert.Equal(t, 3, Stride(257, 3, 127))
	assert.Equal(t, 3, Stride(3, 257, 85))
}

func TestBuildClampsAndShifts(t *testing.T) {
	raster := &Raster{Width: 3, Height: 1, Samples: []float32{-1, float32(gomath.NaN()), 2}}
	g, err := Build(raster, BuildParams{Size: math.Vec2{X: 2, Y: 1}, ElevMin: 100, ElevMax: 140, MaxSegments: 8})
	require.NoError(t, err)

	assert.Equal(t, float32(0), g.Sample(0, 0))
	assert.Equal(t, float32(0), g.Sample(1, 0))
	assert.Equal(t, float32(40), g.Sample(2, 0))
	assert.Equal(t, float32(40), g.MaxHeight())
}

func TestBuildRejectsMalformedInput(t *testing.T) {
	good := BuildParams{Size: math.Vec2{X: 1, Y: 1}, ElevMax: 1, MaxSegments: 4}

	_, err := Build(nil, good)
	assert.ErrorIs(t, err, ErrInvalidRaster)

	_, err = Build(&Raster{Width: 2, Height: 2, Samples: []float32{0}}, good)
	assert.ErrorIs(t, err, ErrInvalidRaster)

	r := &Raster{Width: 1, Height: 1, Samples: []float32{0}}

	bad := good
	bad.Size = math.Vec2{X: 0, Y: 1}
	_, err = Build(r, bad)
	assert.ErrorIs(t, err, ErrInvalidParams)

	bad = good
	bad.ElevMin, bad.ElevMax = 2, 1
	_, err = Build(r, bad)
	assert.ErrorIs(t, err, ErrInvalidParams)

	bad = good
	bad.MaxSegments = 0
	_, err = Build(r, bad)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestSingleSampleGrid(t *testing.T) {
	r := &Raster{Width: 1, Height: 1, Samples: []float32{0.5}}
	g, err := Build(r, BuildParams{Size: math.Vec2{X: 4, Y: 4}, ElevMax: 8, MaxSegments: 4})
	require.NoError(t, err)

	h, ok := g.HeightAtLocal(2, 3)
	require.True(t, ok)
	assert.InDelta(t, 4.0, h, eps)
}

func TestHeightDefinedInsideAndBounded(t *testing.T) {
	raster, err := GenerateRaster(DefaultNoise(65, 65, 7))
	require.NoError(t, err)

	g, err := Build(raster, BuildParams{Size: math.Vec2{X: 64, Y: 64}, ElevMin: -20, ElevMax: 30, MaxSegments: 32})
	require.NoError(t, err)

	for z := float32(0.01); z < 64; z += 1.37 {
		for x := float32(0.01); x < 64; x += 1.91 {
			h, ok := g.HeightAtLocal(x, z)
			require.True(t, ok, "(%v, %v)", x, z)
			assert.GreaterOrEqual(t, h, float32(0))
			assert.LessOrEqual(t, h, float32(50))
		}
	}

	_, ok := g.HeightAtLocal(64.01, 10)
	assert.False(t, ok)
	_, ok = g.HeightAtLocal(10, -0.01)
	assert.False(t, ok)
}
