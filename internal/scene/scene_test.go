package scene

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-walk/internal/config"
	"github.com/Faultbox/midgard-walk/internal/engine/collision"
)

const sampleScene = `
name: plaza
terrain:
  procedural:
    width: 16
    height: 16
    seed: 7
  size: [64, 64]
  origin: [-32, 0, -32]
spawn:
  position: [1, 0, 2]
  yaw: 0.5
nodes:
  - name: house
    position: [10, 0, 0]
    bounds:
      min: [-2, 0, -1]
      max: [2, 3, 1]
    children:
      - name: chimney
        position: [1, 3, 0]
        bounds:
          min: [-0.25, 0, -0.25]
          max: [0.25, 1, 0.25]
  - name: fence
    rotation: 90
    scale: [2, 1, 1]
    bounds:
      min: [-1, 0, -0.1]
      max: [1, 1, 0.1]
  - name: decor
    tags: [no_collide]
    children:
      - name: lamp
        bounds:
          min: [0, 0, 0]
          max: [1, 2, 1]
  - name: ghost
    visible: false
    opacity: 0.5
    children:
      - name: glass
        force_include: true
        opacity: 0.5
        bounds:
          min: [0, 0, 0]
          max: [1, 1, 1]
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sampleScene))
	require.NoError(t, err)

	assert.Equal(t, "plaza", s.Name)
	require.NotNil(t, s.Terrain.Procedural)
	assert.Equal(t, int64(7), s.Terrain.Procedural.Seed)
	require.NotNil(t, s.Spawn)
	assert.Equal(t, [3]float32{1, 0, 2}, s.Spawn.Position)
	assert.Len(t, s.Nodes, 4)
}

func TestParseRequiresOneSource(t *testing.T) {
	_, err := Parse([]byte("name: empty\n"))
	assert.ErrorIs(t, err, ErrUnknownSource)

	both := "terrain:\n  heightmap: h.png\n  procedural: {width: 4, height: 4}\n"
	_, err = Parse([]byte(both))
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestParseRejectsBadNodes(t *testing.T) {
	zeroScale := `
terrain: {heightmap: h.png}
nodes:
  - name: flat
    scale: [1, 0, 1]
`
	_, err := Parse([]byte(zeroScale))
	assert.ErrorIs(t, err, ErrInvalidNode)

	badOpacity := `
terrain: {heightmap: h.png}
nodes:
  - name: a
    children:
      - name: b
        opacity: 2
`
	_, err = Parse([]byte(badOpacity))
	assert.ErrorIs(t, err, ErrInvalidNode)
}

func byName(vols []collision.Volume) map[string]collision.Volume {
	out := make(map[string]collision.Volume, len(vols))
	for _, v := range vols {
		out[v.Name] = v
	}
	return out
}

func TestVolumesFlattenTree(t *testing.T) {
	s, err := Parse([]byte(sampleScene))
	require.NoError(t, err)

	vols := byName(s.Volumes())
	require.Len(t, vols, 5)

	house := vols["/house"]
	assert.InDelta(t, 8, house.Bounds.Min.X, 1e-4)
	assert.InDelta(t, 12, house.Bounds.Max.X, 1e-4)
	assert.True(t, house.Visible)
	assert.Equal(t, float32(1), house.Opacity)

	// Children inherit the parent transform.
	chimney := vols["/house/chimney"]
	assert.InDelta(t, 10.75, chimney.Bounds.Min.X, 1e-4)
	assert.InDelta(t, 3, chimney.Bounds.Min.Y, 1e-4)
	assert.InDelta(t, 4, chimney.Bounds.Max.Y, 1e-4)

	// Quarter turn swaps the X and Z extents after scaling.
	fence := vols["/fence"]
	assert.InDelta(t, -0.1, fence.Bounds.Min.X, 1e-4)
	assert.InDelta(t, 0.1, fence.Bounds.Max.X, 1e-4)
	assert.InDelta(t, -2, fence.Bounds.Min.Z, 1e-4)
	assert.InDelta(t, 2, fence.Bounds.Max.Z, 1e-4)

	// Ancestor tags and visibility propagate.
	assert.True(t, vols["/decor/lamp"].NoCollide)
	glass := vols["/ghost/glass"]
	assert.False(t, glass.Visible)
	assert.True(t, glass.ForceInclude)
	assert.InDelta(t, 0.25, glass.Opacity, 1e-6)
}

func TestVolumesClassify(t *testing.T) {
	s, err := Parse([]byte(sampleScene))
	require.NoError(t, err)

	kept, stats := collision.ClassifyAll(s.Volumes(), collision.ClassifyOptions{MinExtent: 0.2, MinOpacity: 0.3})
	assert.Len(t, kept, 3)
	assert.Equal(t, 1, stats[collision.Tagged])
	assert.Equal(t, 1, stats[collision.Transparent])
}

func TestInvertedBoundsStayMalformed(t *testing.T) {
	s := &Scene{Nodes: []Node{{
		Name:     "bad",
		Position: [3]float32{5, 0, 0},
		Bounds:   &Bounds{Min: [3]float32{1, 0, 0}, Max: [3]float32{0, 1, 1}},
	}}}
	vols := s.Volumes()
	require.Len(t, vols, 1)
	assert.Equal(t, collision.Malformed, collision.Classify(vols[0], collision.ClassifyOptions{}))
}

func TestProceduralRaster(t *testing.T) {
	s, err := Parse([]byte(sampleScene))
	require.NoError(t, err)

	r, err := s.Raster()
	require.NoError(t, err)
	assert.Equal(t, 16, r.Width)
	assert.Equal(t, 16, r.Height)

	again, err := s.Raster()
	require.NoError(t, err)
	assert.Equal(t, r.Samples, again.Samples)
}

func TestHeightmapRaster(t *testing.T) {
	dir := t.TempDir()

	img := image.NewGray16(image.Rect(0, 0, 3, 2))
	img.SetGray16(2, 1, color.Gray16{Y: 0xffff})
	f, err := os.Create(filepath.Join(dir, "height.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	scenePath := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(scenePath, []byte("terrain:\n  heightmap: height.png\n"), 0644))

	s, err := Load(scenePath)
	require.NoError(t, err)

	r, err := s.Raster()
	require.NoError(t, err)
	assert.Equal(t, 3, r.Width)
	assert.Equal(t, 2, r.Height)
	assert.Equal(t, float32(1), r.At(2, 1))
	assert.Equal(t, float32(0), r.At(0, 0))
}

func TestHeightmapMissing(t *testing.T) {
	s := &Scene{Terrain: Terrain{Heightmap: "nope.png"}, Dir: t.TempDir()}
	_, err := s.Raster()
	assert.Error(t, err)
}

func TestHeightmapCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))

	_, err := DecodeHeightmap(path)
	assert.Error(t, err)
}

func TestBuildParamsOverrides(t *testing.T) {
	cfg := config.Default().Terrain
	s, err := Parse([]byte(sampleScene))
	require.NoError(t, err)

	p := s.BuildParams(cfg)
	assert.Equal(t, float32(64), p.Size.X)
	assert.Equal(t, float32(-32), p.Origin.X)
	assert.Equal(t, cfg.ElevationMax, p.ElevMax)
	assert.Equal(t, cfg.MaxSegments, p.MaxSegments)
}

func TestScriptFrames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.yaml")
	script := `
delta: 20ms
steps:
  - frames: 3
    forward: 1
    jump: true
  - frames: 2
    strafe: -1
    run: true
    yaw: 1.5
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0644))

	s, err := LoadScript(path)
	require.NoError(t, err)
	frames := s.Frames()
	require.Len(t, frames, 5)

	assert.Equal(t, 20*time.Millisecond, frames[0].Delta)
	assert.True(t, frames[0].Intent.Jump)
	assert.False(t, frames[1].Intent.Jump, "jump fires once per step")
	assert.Equal(t, float32(1), frames[2].Intent.Forward)
	assert.Equal(t, float32(-1), frames[3].Intent.Strafe)
	assert.True(t, frames[4].Intent.Run)
	assert.Equal(t, float32(1.5), frames[4].Yaw)
}

func TestEmptyScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps: []\n"), 0644))

	_, err := LoadScript(path)
	assert.ErrorIs(t, err, ErrEmptyScript)
}
