package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagHeightmap = flag.String("heightmap", "", "Heightmap image, relative to the asset dir")
	flagAssets    = flag.String("assets", "", "Asset directory")
	flagGrid      = flag.Int("grid", 0, "Terrain grid resolution")
	flagSeed      = flag.Int64("seed", -1, "Random seed")
	flagMuted     = flag.Bool("muted", false, "Mute audio output")
	flagDuration  = flag.Duration("duration", 0, "Simulated time to run")
	flagOut       = flag.String("out", "", "Telemetry output directory")
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
	if *flagHeightmap != "" {
		cfg.Terrain.Heightmap = *flagHeightmap
	}
	if *flagAssets != "" {
		cfg.Terrain.AssetDir = *flagAssets
	}
	if *flagGrid > 0 {
		cfg.Terrain.Grid = *flagGrid
	}
	if *flagSeed >= 0 {
		cfg.Sim.Seed = uint64(*flagSeed)
	}
	if *flagMuted {
		cfg.Audio.Muted = true
	}
	if *flagDuration > 0 {
		cfg.Sim.Duration = *flagDuration
	}
	if *flagOut != "" {
		cfg.Telemetry.OutputDir = *flagOut
		cfg.Telemetry.Enabled = true
	}
}
