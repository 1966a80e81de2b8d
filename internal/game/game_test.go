package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-walk/internal/config"
	"github.com/Faultbox/midgard-walk/internal/engine/movement"
	"github.com/Faultbox/midgard-walk/internal/game/world"
	"github.com/Faultbox/midgard-walk/internal/scene"
)

const hills = `
name: hills
terrain:
  procedural: {width: 33, height: 33, seed: 3}
  size: [64, 64]
  origin: [-32, 0, -32]
  elevation_max: 4
spawn:
  position: [0, 0, 0]
`

func loaded(t *testing.T) *world.World {
	t.Helper()
	s, err := scene.Parse([]byte(hills))
	require.NoError(t, err)

	w := world.New(config.Default(), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Load(ctx, s).Wait(ctx))
	return w
}

func TestRunScriptJumpAndWalk(t *testing.T) {
	w := loaded(t)

	script := &scene.Script{
		Delta: 16 * time.Millisecond,
		Steps: []scene.Step{
			{Frames: 10},
			{Frames: 60, Jump: true},
			{Frames: 60, Forward: 1, Yaw: 1},
		},
	}
	sum := RunScript(w, script.Frames())

	assert.Equal(t, 130, sum.Frames)
	assert.Equal(t, 1, sum.Jumps)
	assert.Greater(t, sum.Airborne, 0)
	assert.Zero(t, sum.Reverted)
	assert.True(t, sum.Final.HasGround)
	assert.Equal(t, float32(1), w.Camera.Yaw)

	// Yaw 1 walks toward -X and -Z.
	assert.Less(t, sum.Final.Eye.X, float32(0))
	assert.Less(t, sum.Final.Eye.Z, float32(0))
}

func TestRunScriptEmpty(t *testing.T) {
	w := loaded(t)
	sum := RunScript(w, nil)
	assert.Zero(t, sum.Frames)
	assert.Equal(t, movement.Frame{}, sum.Final)
}

func TestDescribe(t *testing.T) {
	f := movement.Frame{Grounded: true}
	f.Eye.X, f.Eye.Y, f.Eye.Z = 1, 2.5, -3
	assert.Equal(t, "(1.00, 2.50, -3.00) ground", describe(f))
}
