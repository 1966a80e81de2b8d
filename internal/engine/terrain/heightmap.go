package terrain

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/midgard-walk/pkg/math"
)

// Build downsamples raster into a HeightGrid. The stride is the smallest
// integer keeping both sides at or below MaxSegments+1 samples, and each grid
// point takes the raster sample at (i*stride, j*stride).
func Build(raster *Raster, p BuildParams) (*HeightGrid, error) {
	if raster == nil || raster.Width < 1 || raster.Height < 1 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidRaster)
	}
	if len(raster.Samples) != raster.Width*raster.Height {
		return nil, fmt.Errorf("%w: %dx%d raster carries %d samples",
			ErrInvalidRaster, raster.Width, raster.Height, len(raster.Samples))
	}
	if p.MaxSegments < 1 {
		return nil, fmt.Errorf("%w: max segments %d", ErrInvalidParams, p.MaxSegments)
	}
	if !(p.Size.X > 0) || !(p.Size.Y > 0) || !math.IsFinite(p.Size.X) || !math.IsFinite(p.Size.Y) {
		return nil, fmt.Errorf("%w: footprint size %v", ErrInvalidParams, p.Size)
	}
	if !p.Origin.IsFinite() {
		return nil, fmt.Errorf("%w: origin %v", ErrInvalidParams, p.Origin)
	}
	elevRange := p.ElevMax - p.ElevMin
	if !(elevRange >= 0) || !math.IsFinite(elevRange) {
		return nil, fmt.Errorf("%w: elevation range [%v, %v]", ErrInvalidParams, p.ElevMin, p.ElevMax)
	}

	stride := Stride(raster.Width, raster.Height, p.MaxSegments)
	cols := (raster.Width + stride - 1) / stride
	rows := (raster.Height + stride - 1) / stride

	heights := make([]float32, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			raw := raster.At(c*stride, r*stride)
			if !math.IsFinite(raw) {
				raw = 0
			}
			heights[r*cols+c] = math.Clampf(raw, 0, 1) * elevRange
		}
	}

	return &HeightGrid{
		heights: heights,
		cols:    cols,
		rows:    rows,
		stride:  stride,
		size:    p.Size,
		origin:  p.Origin,
		maxH:    elevRange,
	}, nil
}

// Stride returns ceil(max(width, height) / (maxSegments+1)), at least 1.
func Stride(width, height, maxSegments int) int {
	side := width
	if height > side {
		side = height
	}
	per := maxSegments + 1
	stride := (side + per - 1) / per
	if stride < 1 {
		stride = 1
	}
	return stride
}

// HeightAtLocal returns the interpolated height at footprint-local (x, z),
// where (0,0) is one corner and Size the opposite one. ok is false outside
// the footprint.
func (g *HeightGrid) HeightAtLocal(x, z float32) (float32, bool) {
	if g == nil || len(g.heights) == 0 {
		return 0, false
	}

	u := x / g.size.X
	v := z / g.size.Y
	// Negated comparisons also reject NaN.
	if !(u >= 0 && u <= 1) || !(v >= 0 && v <= 1) {
		return 0, false
	}

	gx := u * float32(g.cols-1)
	gz := v * float32(g.rows-1)

	c0, fx := cell(gx, g.cols)
	r0, fz := cell(gz, g.rows)
	c1 := min(c0+1, g.cols-1)
	r1 := min(r0+1, g.rows-1)

	h00 := g.Sample(c0, r0)
	h10 := g.Sample(c1, r0)
	h01 := g.Sample(c0, r1)
	h11 := g.Sample(c1, r1)

	// Lerp along X on both rows, then along Z.
	near := h00*(1-fx) + h10*fx
	far := h01*(1-fx) + h11*fx
	return near*(1-fz) + far*fz, true
}

// HeightAtWorld shifts world (x, z) into the footprint, samples it, and
// returns the height shifted back by the origin's Y.
func (g *HeightGrid) HeightAtWorld(x, z float32) (float32, bool) {
	if g == nil {
		return 0, false
	}
	h, ok := g.HeightAtLocal(x-g.origin.X, z-g.origin.Z)
	if !ok {
		return 0, false
	}
	return h + g.origin.Y, true
}

// cell splits a fractional grid coordinate into its lower sample index and
// the fraction toward the next one. The last row/column folds back into the
// final cell with fraction 1.
func cell(coord float32, samples int) (int, float32) {
	if samples < 2 {
		return 0, 0
	}
	i := int(gomath.Floor(float64(coord)))
	if i > samples-2 {
		i = samples - 2
	}
	if i < 0 {
		i = 0
	}
	return i, math.Clampf(coord-float32(i), 0, 1)
}
