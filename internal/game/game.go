// Package game runs the frame loop: interactively from an SDL window or
// headless from a scripted input sequence.
package game

import (
	"context"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-walk/internal/config"
	"github.com/Faultbox/midgard-walk/internal/engine/input"
	"github.com/Faultbox/midgard-walk/internal/engine/movement"
	"github.com/Faultbox/midgard-walk/internal/engine/window"
	"github.com/Faultbox/midgard-walk/internal/game/world"
	"github.com/Faultbox/midgard-walk/internal/logger"
	"github.com/Faultbox/midgard-walk/internal/scene"
)

// frameInterval paces the interactive loop; there is no vsync without a
// renderer.
const frameInterval = time.Second / 60

// Game is the interactive session.
type Game struct {
	cfg    *config.Config
	world  *world.World
	window *window.Window
	input  *input.Controller
}

// New opens the input window for w.
func New(cfg *config.Config, w *world.World) (*Game, error) {
	logger.Info("initializing game",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height))

	win, err := window.New(window.Config{
		Title:     cfg.Window.Title,
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		GrabMouse: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	return &Game{
		cfg:    cfg,
		world:  w,
		window: win,
		input:  input.NewController(input.DefaultBindings()),
	}, nil
}

// Run loops until the window closes, escape is pressed or ctx is done.
func (g *Game) Run(ctx context.Context) error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	lastTime := time.Now()
	titleTimer := time.Now()
	frames := 0

	logger.Info("starting game loop")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		g.input.Poll()
		if g.input.QuitRequested() || g.input.Held(sdl.SCANCODE_ESCAPE) {
			return nil
		}

		g.world.Camera.HandleLook(g.input.LookDelta())
		f := g.world.Update(dt, g.input.Intent())

		frames++
		if time.Since(titleTimer) >= 250*time.Millisecond {
			g.window.SetTitle(fmt.Sprintf("%s  %s  %.0f fps", g.cfg.Window.Title, describe(f),
				float64(frames)/time.Since(titleTimer).Seconds()))
			frames = 0
			titleTimer = time.Now()
		}
	}
}

// Close releases the window.
func (g *Game) Close() {
	logger.Info("closing game")
	if g.window != nil {
		g.window.Close()
	}
}

// Summary describes a headless run.
type Summary struct {
	Frames      int
	Jumps       int
	Reverted    int
	Corrections int
	Airborne    int
	Final       movement.Frame
}

// RunScript feeds a scripted input sequence to w and returns what happened.
// Frames are stepped back to back without wall-clock pacing.
func RunScript(w *world.World, frames []scene.ScriptFrame) Summary {
	var s Summary
	for _, sf := range frames {
		w.Camera.Yaw = sf.Yaw
		f := w.Update(sf.Delta, sf.Intent)

		s.Frames++
		s.Reverted += f.Reverted
		s.Corrections += f.Corrections
		if f.Jumped {
			s.Jumps++
		}
		if !f.Grounded {
			s.Airborne++
		}
		s.Final = f
	}
	return s
}

func describe(f movement.Frame) string {
	state := "air"
	if f.Grounded {
		state = "ground"
	}
	return fmt.Sprintf("(%.2f, %.2f, %.2f) %s", f.Eye.X, f.Eye.Y, f.Eye.Z, state)
}
