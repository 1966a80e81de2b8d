package terrain

import (
	"image"
	"image/color"
)

// RasterFromImage converts a decoded heightmap image into a raster using
// 16-bit luminance, so 16-bit grayscale sources keep their precision.
func RasterFromImage(img image.Image) *Raster {
	b := img.Bounds()
	r := &Raster{
		Width:   b.Dx(),
		Height:  b.Dy(),
		Samples: make([]float32, b.Dx()*b.Dy()),
	}
	for z := 0; z < r.Height; z++ {
		for x := 0; x < r.Width; x++ {
			g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+z)).(color.Gray16)
			r.Samples[z*r.Width+x] = float32(g.Y) / 0xffff
		}
	}
	return r
}
