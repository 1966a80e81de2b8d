// Package main is the entry point for the locomotion simulator.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-walk/internal/config"
	"github.com/Faultbox/midgard-walk/internal/engine/shadow"
	"github.com/Faultbox/midgard-walk/internal/game"
	"github.com/Faultbox/midgard-walk/internal/game/world"
	"github.com/Faultbox/midgard-walk/internal/logger"
	"github.com/Faultbox/midgard-walk/internal/metrics"
	"github.com/Faultbox/midgard-walk/internal/scene"
	"github.com/Faultbox/midgard-walk/pkg/math"
)

var (
	flagScript      = flag.String("script", "", "Run headless from a frame script")
	flagInteractive = flag.Bool("interactive", false, "Open an input window and walk with WASD and the mouse")
	flagLoadTimeout = flag.Duration("load-timeout", 30*time.Second, "Maximum time to wait for the scene build in headless mode")
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Midgard Walk ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("walksim failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := loadScene(cfg)
	if err != nil {
		return err
	}

	m := metrics.New()
	if cfg.Metrics.Listen != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Listen); err != nil {
				logger.Error("metrics endpoint failed", zap.Error(err))
			}
		}()
	}

	w := world.New(cfg, m)
	params := sc.BuildParams(cfg.Terrain)
	bounds := shadow.AABB{
		Min: params.Origin,
		Max: params.Origin.Add(math.Vec3{X: params.Size.X, Y: params.ElevMax - params.ElevMin, Z: params.Size.Y}),
	}
	follower := shadow.NewFollower(math.Vec3{X: 0.4, Y: 1, Z: 0.3}, bounds, 64)
	w.AddSink(follower)

	task := w.Load(ctx, sc)

	if *flagInteractive {
		g, err := game.New(cfg, w)
		if err != nil {
			return err
		}
		defer g.Close()
		return g.Run(ctx)
	}

	waitCtx, cancel := context.WithTimeout(ctx, *flagLoadTimeout)
	defer cancel()
	if err := task.Wait(waitCtx); err != nil {
		return fmt.Errorf("loading scene: %w", err)
	}

	frames := defaultScript().Frames()
	if *flagScript != "" {
		script, err := scene.LoadScript(*flagScript)
		if err != nil {
			return err
		}
		frames = script.Frames()
	}

	runHeadless(w, follower, frames)
	return nil
}

// runHeadless steps the scripted frames and logs what happened, including
// where the shadow frustum ended up.
func runHeadless(w *world.World, follower *shadow.Follower, frames []scene.ScriptFrame) game.Summary {
	start := time.Now()
	sum := game.RunScript(w, frames)
	f := sum.Final
	logger.Info("headless run complete",
		zap.Int("frames", sum.Frames),
		zap.Int("jumps", sum.Jumps),
		zap.Int("airborne", sum.Airborne),
		zap.Int("reverted", sum.Reverted),
		zap.Int("corrections", sum.Corrections),
		zap.Float32("x", f.Eye.X),
		zap.Float32("y", f.Eye.Y),
		zap.Float32("z", f.Eye.Z),
		zap.Bool("grounded", f.Grounded),
		zap.Duration("elapsed", time.Since(start)))

	if _, ok := follower.Matrix(); ok {
		focus := follower.Focus()
		logger.Info("shadow frustum",
			zap.Float32("focus_x", focus.X),
			zap.Float32("focus_y", focus.Y),
			zap.Float32("focus_z", focus.Z))
	}
	return sum
}

// loadScene reads the configured scene file, or builds a procedural one
// from the configured seed.
func loadScene(cfg *config.Config) (*scene.Scene, error) {
	if cfg.Scene.Path != "" {
		return scene.Load(cfg.Scene.Path)
	}

	n := cfg.Terrain.MaxSegments + 1
	return &scene.Scene{
		Name: fmt.Sprintf("procedural-%d", cfg.Scene.Seed),
		Terrain: scene.Terrain{
			Procedural: &scene.Procedural{Width: n, Height: n, Seed: cfg.Scene.Seed},
		},
	}, nil
}

// defaultScript idles, walks a square and jumps once per side.
func defaultScript() *scene.Script {
	s := &scene.Script{Delta: time.Second / 60}
	s.Steps = append(s.Steps, scene.Step{Frames: 30})
	for i := 0; i < 4; i++ {
		yaw := float32(i) * 1.5707964
		s.Steps = append(s.Steps,
			scene.Step{Frames: 90, Forward: 1, Yaw: yaw, Jump: true},
			scene.Step{Frames: 30, Forward: 1, Run: true, Yaw: yaw},
		)
	}
	return s
}
