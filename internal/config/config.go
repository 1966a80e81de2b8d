// Package config handles locomotion configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all simulation settings.
type Config struct {
	Player    PlayerConfig    `yaml:"player"`
	Movement  MovementConfig  `yaml:"movement"`
	Collision CollisionConfig `yaml:"collision"`
	Terrain   TerrainConfig   `yaml:"terrain"`
	Scene     SceneConfig     `yaml:"scene"`
	Window    WindowConfig    `yaml:"window"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// PlayerConfig describes the player's collision cylinder. Lengths are meters.
type PlayerConfig struct {
	Radius    float32 `yaml:"radius"`
	Height    float32 `yaml:"height"`
	EyeOffset float32 `yaml:"eye_offset"` // eye height above the feet
}

// MovementConfig holds integrator tuning.
type MovementConfig struct {
	WalkSpeed       float32       `yaml:"walk_speed"` // m/s
	RunSpeed        float32       `yaml:"run_speed"`
	JumpVelocity    float32       `yaml:"jump_velocity"`
	Gravity         float32       `yaml:"gravity"` // m/s², positive is down
	MaxStepDistance float32       `yaml:"max_step_distance"`
	MaxSubsteps     int           `yaml:"max_substeps"`
	MaxDelta        time.Duration `yaml:"max_delta"`
	GroundEpsilon   float32       `yaml:"ground_epsilon"`
	EdgeBuffer      float32       `yaml:"edge_buffer"`
	EdgeMargin      float32       `yaml:"edge_margin"`
}

// CollisionConfig holds collider registry and resolver settings.
type CollisionConfig struct {
	Clearance     float32 `yaml:"clearance"`
	Skin          float32 `yaml:"skin"`
	MaxIterations int     `yaml:"max_iterations"`
	MinExtent     float32 `yaml:"min_extent"`
	MinOpacity    float32 `yaml:"min_opacity"`
}

// TerrainConfig holds heightfield build settings.
type TerrainConfig struct {
	MaxSegments  int        `yaml:"max_segments"`
	ElevationMin float32    `yaml:"elevation_min"`
	ElevationMax float32    `yaml:"elevation_max"`
	Size         [2]float32 `yaml:"size"`   // footprint width (X) and depth (Z)
	Origin       [3]float32 `yaml:"origin"` // world position of the footprint's local origin
}

// SceneConfig points at the scene description.
type SceneConfig struct {
	Path string `yaml:"path"`
	Seed int64  `yaml:"seed"` // procedural terrain seed when the scene has no heightmap
}

// WindowConfig holds settings for the interactive input window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// MetricsConfig holds Prometheus exposure settings.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty disables the HTTP endpoint
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Player: PlayerConfig{
			Radius:    0.35,
			Height:    1.8,
			EyeOffset: 1.7,
		},
		Movement: MovementConfig{
			WalkSpeed:       4,
			RunSpeed:        8,
			JumpVelocity:    5.5,
			Gravity:         20,
			MaxStepDistance: 0.25,
			MaxSubsteps:     8,
			MaxDelta:        33 * time.Millisecond,
			GroundEpsilon:   0.05,
			EdgeBuffer:      1,
			EdgeMargin:      0.1,
		},
		Collision: CollisionConfig{
			Clearance:     0.35,
			Skin:          0.02,
			MaxIterations: 4,
			MinExtent:     0.2,
			MinOpacity:    0.3,
		},
		Terrain: TerrainConfig{
			MaxSegments:  255,
			ElevationMin: 0,
			ElevationMax: 40,
			Size:         [2]float32{512, 512},
			Origin:       [3]float32{-256, 0, -256},
		},
		Window: WindowConfig{
			Title:  "midgard-walk",
			Width:  1280,
			Height: 720,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks the values the locomotion core relies on.
func (c *Config) Validate() error {
	switch {
	case c.Player.Radius <= 0:
		return fmt.Errorf("%w: player.radius must be positive", ErrInvalid)
	case c.Player.Height <= 0:
		return fmt.Errorf("%w: player.height must be positive", ErrInvalid)
	case c.Player.EyeOffset < 0 || c.Player.EyeOffset > c.Player.Height:
		return fmt.Errorf("%w: player.eye_offset must be within [0, height]", ErrInvalid)
	case c.Movement.MaxStepDistance <= 0:
		return fmt.Errorf("%w: movement.max_step_distance must be positive", ErrInvalid)
	case c.Movement.MaxSubsteps < 1:
		return fmt.Errorf("%w: movement.max_substeps must be at least 1", ErrInvalid)
	case c.Movement.MaxDelta <= 0:
		return fmt.Errorf("%w: movement.max_delta must be positive", ErrInvalid)
	case c.Movement.WalkSpeed < 0 || c.Movement.RunSpeed < 0:
		return fmt.Errorf("%w: movement speeds must not be negative", ErrInvalid)
	case c.Collision.Clearance < c.Player.Radius:
		return fmt.Errorf("%w: collision.clearance (%v) must be at least player.radius (%v)",
			ErrInvalid, c.Collision.Clearance, c.Player.Radius)
	case c.Collision.Skin < 0:
		return fmt.Errorf("%w: collision.skin must not be negative", ErrInvalid)
	case c.Collision.MaxIterations < 1:
		return fmt.Errorf("%w: collision.max_iterations must be at least 1", ErrInvalid)
	case c.Terrain.MaxSegments < 1:
		return fmt.Errorf("%w: terrain.max_segments must be at least 1", ErrInvalid)
	case c.Terrain.ElevationMax < c.Terrain.ElevationMin:
		return fmt.Errorf("%w: terrain.elevation_max is below elevation_min", ErrInvalid)
	case c.Terrain.Size[0] <= 0 || c.Terrain.Size[1] <= 0:
		return fmt.Errorf("%w: terrain.size must be positive", ErrInvalid)
	}
	return nil
}
