package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagScene       = flag.String("scene", "", "Path to scene file")
	flagSeed        = flag.Int64("seed", 0, "Procedural terrain seed")
	flagMetrics     = flag.String("metrics", "", "Prometheus listen address, e.g. :2112")
	flagMaxSegments = flag.Int("max-segments", 0, "Heightfield segments per axis")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagScene != "" {
		cfg.Scene.Path = *flagScene
	}
	if *flagSeed != 0 {
		cfg.Scene.Seed = *flagSeed
	}
	if *flagMetrics != "" {
		cfg.Metrics.Listen = *flagMetrics
	}
	if *flagMaxSegments > 0 {
		cfg.Terrain.MaxSegments = *flagMaxSegments
	}
}
