package scene

import (
	"fmt"
	"image"
	_ "image/png" // heightmap decoders
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/Faultbox/midgard-walk/internal/config"
	"github.com/Faultbox/midgard-walk/internal/engine/terrain"
	"github.com/Faultbox/midgard-walk/pkg/math"
)

// Raster produces the scene's elevation raster, decoding the heightmap
// image (PNG, TIFF or BMP) or generating Perlin noise.
func (s *Scene) Raster() (*terrain.Raster, error) {
	t := s.Terrain
	switch {
	case t.Heightmap != "" && t.Procedural == nil:
		return DecodeHeightmap(s.resolve(t.Heightmap))
	case t.Procedural != nil && t.Heightmap == "":
		p := terrain.DefaultNoise(t.Procedural.Width, t.Procedural.Height, t.Procedural.Seed)
		if t.Procedural.Scale > 0 {
			p.Scale = t.Procedural.Scale
		}
		return terrain.GenerateRaster(p)
	}
	return nil, ErrUnknownSource
}

// BuildParams merges the scene's terrain placement over the configured defaults.
func (s *Scene) BuildParams(cfg config.TerrainConfig) terrain.BuildParams {
	p := DefaultBuildParams(cfg)
	t := s.Terrain
	if t.Size != nil {
		p.Size = math.Vec2{X: t.Size[0], Y: t.Size[1]}
	}
	if t.Origin != nil {
		p.Origin = math.Vec3{X: t.Origin[0], Y: t.Origin[1], Z: t.Origin[2]}
	}
	if t.ElevMin != nil {
		p.ElevMin = *t.ElevMin
	}
	if t.ElevMax != nil {
		p.ElevMax = *t.ElevMax
	}
	return p
}

// DefaultBuildParams converts the terrain configuration section.
func DefaultBuildParams(cfg config.TerrainConfig) terrain.BuildParams {
	return terrain.BuildParams{
		Size:        math.Vec2{X: cfg.Size[0], Y: cfg.Size[1]},
		Origin:      math.Vec3{X: cfg.Origin[0], Y: cfg.Origin[1], Z: cfg.Origin[2]},
		ElevMin:     cfg.ElevationMin,
		ElevMax:     cfg.ElevationMax,
		MaxSegments: cfg.MaxSegments,
	}
}

// DecodeHeightmap reads a grayscale heightmap image from disk.
func DecodeHeightmap(path string) (*terrain.Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening heightmap: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding heightmap %s: %w", path, err)
	}
	return terrain.RasterFromImage(img), nil
}

func (s *Scene) resolve(path string) string {
	if filepath.IsAbs(path) || s.Dir == "" {
		return path
	}
	return filepath.Join(s.Dir, path)
}
