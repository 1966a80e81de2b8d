// Package scene loads scene descriptions: the terrain source and the tree of
// placed obstacle nodes that becomes the collider set.
package scene

import (
	"errors"
	"fmt"
	gomath "math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-walk/internal/engine/collision"
	"github.com/Faultbox/midgard-walk/pkg/math"
)

var (
	// ErrUnknownSource is returned when a scene names no terrain source or more than one.
	ErrUnknownSource = errors.New("scene: terrain needs exactly one of heightmap or procedural")
	// ErrInvalidNode is returned for obstacle nodes that cannot be placed.
	ErrInvalidNode = errors.New("scene: invalid node")
)

// TagNoCollide marks a node and its descendants as non-collidable.
const TagNoCollide = "no_collide"

// Scene is a parsed scene file.
type Scene struct {
	Name    string  `yaml:"name"`
	Terrain Terrain `yaml:"terrain"`
	Spawn   *Spawn  `yaml:"spawn,omitempty"`
	Nodes   []Node  `yaml:"nodes"`

	// Dir is the directory relative paths resolve against.
	Dir string `yaml:"-"`
}

// Spawn is the initial player placement. Y is ignored when terrain is
// present; the player is dropped onto the ground.
type Spawn struct {
	Position [3]float32 `yaml:"position"`
	Yaw      float32    `yaml:"yaw"`
}

// Terrain describes where the elevation raster comes from and how it maps
// into the world. Zero-valued sizes fall back to the engine configuration.
type Terrain struct {
	Heightmap  string      `yaml:"heightmap,omitempty"`
	Procedural *Procedural `yaml:"procedural,omitempty"`

	Size    *[2]float32 `yaml:"size,omitempty"`
	Origin  *[3]float32 `yaml:"origin,omitempty"`
	ElevMin *float32    `yaml:"elevation_min,omitempty"`
	ElevMax *float32    `yaml:"elevation_max,omitempty"`
}

// Procedural selects a Perlin-noise raster.
type Procedural struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Seed   int64   `yaml:"seed"`
	Scale  float64 `yaml:"scale,omitempty"`
}

// Node is a placed object. Its transform applies to Bounds and to every
// child. Nodes without bounds are pure grouping nodes.
type Node struct {
	Name     string      `yaml:"name"`
	Position [3]float32  `yaml:"position"`
	Rotation float32     `yaml:"rotation"` // degrees about Y
	Scale    *[3]float32 `yaml:"scale,omitempty"`
	Bounds   *Bounds     `yaml:"bounds,omitempty"`

	Tags         []string `yaml:"tags,omitempty"`
	Visible      *bool    `yaml:"visible,omitempty"`
	Opacity      *float32 `yaml:"opacity,omitempty"`
	ForceInclude bool     `yaml:"force_include,omitempty"`

	Children []Node `yaml:"children,omitempty"`
}

// Bounds is a model-space box.
type Bounds struct {
	Min [3]float32 `yaml:"min"`
	Max [3]float32 `yaml:"max"`
}

// Load reads and validates a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	s.Dir = filepath.Dir(path)
	return s, nil
}

// Parse decodes and validates scene YAML.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the terrain source and node tree.
func (s *Scene) Validate() error {
	hasImage := s.Terrain.Heightmap != ""
	hasNoise := s.Terrain.Procedural != nil
	if hasImage == hasNoise {
		return ErrUnknownSource
	}
	if p := s.Terrain.Procedural; p != nil && (p.Width < 2 || p.Height < 2) {
		return fmt.Errorf("%w: procedural raster %dx%d", ErrUnknownSource, p.Width, p.Height)
	}
	return validateNodes(s.Nodes, "")
}

func validateNodes(nodes []Node, parent string) error {
	for i := range nodes {
		n := &nodes[i]
		path := parent + "/" + n.Name
		if n.Scale != nil {
			for _, v := range n.Scale {
				if v == 0 || !math.IsFinite(v) {
					return fmt.Errorf("%w: %s has scale %v", ErrInvalidNode, path, *n.Scale)
				}
			}
		}
		if n.Opacity != nil && (*n.Opacity < 0 || *n.Opacity > 1) {
			return fmt.Errorf("%w: %s has opacity %v", ErrInvalidNode, path, *n.Opacity)
		}
		if err := validateNodes(n.Children, path); err != nil {
			return err
		}
	}
	return nil
}

// placement is the state inherited down the node tree.
type placement struct {
	world     math.Mat4
	path      string
	visible   bool
	noCollide bool
	opacity   float32
}

// Volumes flattens the node tree into world-space collision volumes.
// Ancestor transforms, visibility, opacity and no_collide tags are folded
// into each volume so classification sees only the volume itself.
func (s *Scene) Volumes() []collision.Volume {
	var out []collision.Volume
	root := placement{world: math.Identity(), visible: true, opacity: 1}
	for i := range s.Nodes {
		out = flatten(&s.Nodes[i], root, out)
	}
	return out
}

func flatten(n *Node, parent placement, out []collision.Volume) []collision.Volume {
	p := placement{
		world:     parent.world.Mul(n.local()),
		path:      parent.path + "/" + n.Name,
		visible:   parent.visible,
		noCollide: parent.noCollide || n.hasTag(TagNoCollide),
		opacity:   parent.opacity,
	}
	if n.Visible != nil && !*n.Visible {
		p.visible = false
	}
	if n.Opacity != nil {
		p.opacity *= *n.Opacity
	}

	if n.Bounds != nil {
		out = append(out, collision.Volume{
			Name:         p.path,
			Bounds:       worldBox(p.world, n.Bounds),
			Visible:      p.visible,
			ForceInclude: n.ForceInclude,
			NoCollide:    p.noCollide,
			Opacity:      p.opacity,
		})
	}

	for i := range n.Children {
		out = flatten(&n.Children[i], p, out)
	}
	return out
}

func (n *Node) local() math.Mat4 {
	sx, sy, sz := float32(1), float32(1), float32(1)
	if n.Scale != nil {
		sx, sy, sz = n.Scale[0], n.Scale[1], n.Scale[2]
	}
	const degToRad = gomath.Pi / 180
	return math.Translate(n.Position[0], n.Position[1], n.Position[2]).
		Mul(math.RotateY(n.Rotation * degToRad)).
		Mul(math.Scale(sx, sy, sz))
}

func (n *Node) hasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// worldBox transforms the eight corners and returns their axis-aligned hull.
// Inverted or non-finite bounds are passed through untransformed so the
// registry rejects them as malformed.
func worldBox(m math.Mat4, b *Bounds) collision.Box {
	raw := collision.Box{
		Min: math.Vec3{X: b.Min[0], Y: b.Min[1], Z: b.Min[2]},
		Max: math.Vec3{X: b.Max[0], Y: b.Max[1], Z: b.Max[2]},
	}
	if !raw.Valid() {
		return raw
	}

	var out collision.Box
	for i := 0; i < 8; i++ {
		corner := math.Vec3{X: b.Min[0], Y: b.Min[1], Z: b.Min[2]}
		if i&1 != 0 {
			corner.X = b.Max[0]
		}
		if i&2 != 0 {
			corner.Y = b.Max[1]
		}
		if i&4 != 0 {
			corner.Z = b.Max[2]
		}
		p := m.TransformVec3(corner)
		if i == 0 {
			out.Min, out.Max = p, p
			continue
		}
		out.Min = math.Vec3{X: min(out.Min.X, p.X), Y: min(out.Min.Y, p.Y), Z: min(out.Min.Z, p.Z)}
		out.Max = math.Vec3{X: max(out.Max.X, p.X), Y: max(out.Max.Y, p.Y), Z: max(out.Max.Z, p.Z)}
	}
	return out
}
