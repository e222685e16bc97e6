// Package main is the headless skyraid driver. It loads a heightmap, flies a
// scripted strafing run at a fixed timestep and writes per-window telemetry.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/skyraid/internal/assets"
	"github.com/Faultbox/skyraid/internal/config"
	"github.com/Faultbox/skyraid/internal/engine/audio"
	"github.com/Faultbox/skyraid/internal/engine/audio/sfx"
	"github.com/Faultbox/skyraid/internal/engine/terrain"
	"github.com/Faultbox/skyraid/internal/game"
	"github.com/Faultbox/skyraid/internal/logger"
	"github.com/Faultbox/skyraid/internal/telemetry"
	vmath "github.com/Faultbox/skyraid/pkg/math"
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

	logger.Info("=== skyraid ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("run failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	am := assets.NewManager()
	defer am.Close()
	if err := am.AddDir(cfg.Terrain.AssetDir); err != nil {
		return err
	}

	img, err := am.LoadImage(cfg.Terrain.Heightmap)
	if err != nil {
		return fmt.Errorf("heightmap: %w", err)
	}

	rec := &sfx.Recorder{}
	deps := game.Deps{
		Terrain: terrain.New(),
		Sink:    rec,
		RNG:     rand.New(rand.NewPCG(cfg.Sim.Seed, cfg.Sim.Seed+1)),
		Log:     logger.Named("game"),
	}

	mgr := startAudio(cfg, am)
	if mgr != nil {
		defer mgr.Close()
		deps.Sink = sfx.Tee{mgr, rec}
		if cfg.Audio.FollowAircraft {
			deps.Listener = mgr
		}
		deps.Engine = mgr.StartLoop(sfx.SoundEngine, 1)
	}

	g := game.New(gameConfig(cfg), deps)
	if err := g.LoadTerrain(img, cfg.Terrain.Grid, cfg.Terrain.Size, cfg.Terrain.HeightScale); err != nil {
		return err
	}

	var out *telemetry.OutputManager
	if cfg.Telemetry.Enabled {
		out, err = telemetry.NewOutputManager(cfg.Telemetry.OutputDir)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := out.WriteConfig(cfg); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}

	step := cfg.Sim.Step
	dt := float32(step.Seconds())
	frames := int(cfg.Sim.Duration / step)
	collector := telemetry.NewCollector(cfg.Telemetry.Window, step.Seconds())

	// Pace to wall-clock time only when someone can hear it.
	var tick <-chan time.Time
	if mgr != nil && !cfg.Audio.Muted {
		t := time.NewTicker(step)
		defer t.Stop()
		tick = t.C
	}

	logger.Info("simulation starting",
		zap.Int("frames", frames),
		zap.Duration("step", step),
		zap.Uint64("seed", cfg.Sim.Seed))

	var total telemetry.FrameSample
	start := time.Now()
	for i := 0; i < frames; i++ {
		if tick != nil {
			select {
			case <-tick:
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			logger.Warn("interrupted", zap.Int("frame", i))
			break
		}

		s := g.Update(dt)
		total.Fired += s.Fired
		total.Expired += s.Expired
		total.Impacted += s.Impacted

		collector.Record(s)
		if collector.ShouldFlush() {
			if err := out.WriteWindow(collector.Flush()); err != nil {
				return err
			}
		}
	}
	if collector.Pending() > 0 {
		if err := out.WriteWindow(collector.Flush()); err != nil {
			return err
		}
	}

	logger.Info("simulation finished",
		zap.Int("frames", g.Frames()),
		zap.Duration("wall", time.Since(start)),
		zap.Int("pairs_fired", total.Fired),
		zap.Int("impacted", total.Impacted),
		zap.Int("expired", total.Expired),
		zap.Int("fire_sounds", rec.Count(g.Bullets().Config().FireSound)),
		zap.Int("sound_triggers", len(rec.Triggers)))

	fmt.Printf("frames=%d sim_time=%.2fs pairs=%d impacts=%d expired=%d live_bullets=%d live_sparks=%d",
		g.Frames(), g.Time(), total.Fired, total.Impacted, total.Expired, g.Bullets().Len(), g.Sparks().Len())
	if dir := out.Dir(); dir != "" {
		fmt.Printf(" telemetry=%s", dir)
	}
	fmt.Println()
	return nil
}

// startAudio brings up the speaker and loads the sound manifest. Returns nil
// when audio is disabled or unavailable; the run continues silently. A muted
// manager still loads sounds but plays nothing.
func startAudio(cfg *config.Config, am *assets.Manager) *audio.Manager {
	if !cfg.Audio.Enabled {
		return nil
	}
	log := logger.Named("audio")

	mgr := audio.New()
	if err := mgr.Init(); err != nil {
		log.Warn("audio unavailable, continuing without sound", zap.Error(err))
		return nil
	}
	mgr.SetMasterVolume(float64(cfg.Audio.MasterVolume))
	mgr.SetSFXVolume(float64(cfg.Audio.SFXVolume))
	mgr.SetMuted(cfg.Audio.Muted)
	mgr.SetListener(vmath.Vec3{
		X: cfg.Sim.Aircraft.Start[0],
		Y: cfg.Sim.Aircraft.Start[1],
		Z: cfg.Sim.Aircraft.Start[2],
	})

	if err := mgr.LoadSounds(am, cfg.Audio.SoundsDir, sfx.DefaultManifest); err != nil {
		log.Warn("some sounds failed to load", zap.Error(err))
	}
	return mgr
}

func gameConfig(cfg *config.Config) game.Config {
	ac := cfg.Sim.Aircraft
	return game.Config{
		Projectile: cfg.Weapons.Projectile(),
		Sparks:     cfg.Sparks.Sparks(),
		Autopilot: game.AutopilotConfig{
			Speed:       ac.Speed,
			TurnRate:    ac.TurnRate,
			StrafePitch: ac.StrafePitch,
			PitchRate:   ac.PitchRate,
			Bank:        ac.Bank,
			MinAltitude: ac.MinAltitude,
		},
		Start: game.Aircraft{
			Pos:   vmath.Vec3{X: ac.Start[0], Y: ac.Start[1], Z: ac.Start[2]},
			Yaw:   ac.Yaw,
			Speed: ac.Speed,
		},
		FireRate: cfg.Weapons.FireRate,

		// Loop.SetVolume does not reapply master and SFX levels.
		EngineVolume: cfg.Audio.EngineVolume * cfg.Audio.MasterVolume * cfg.Audio.SFXVolume,
	}
}
