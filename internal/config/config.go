// Package config handles simulation configuration loading and management.
package config

import (
	"time"

	"github.com/Faultbox/skyraid/internal/engine/audio/sfx"
	"github.com/Faultbox/skyraid/internal/engine/projectile"
	"github.com/Faultbox/skyraid/internal/engine/sparks"
)

// Config holds all settings.
type Config struct {
	Terrain   TerrainConfig   `yaml:"terrain"`
	Weapons   WeaponsConfig   `yaml:"weapons"`
	Sparks    SparksConfig    `yaml:"sparks"`
	Audio     AudioConfig     `yaml:"audio"`
	Sim       SimConfig       `yaml:"sim"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// TerrainConfig holds heightmap source and world extents.
type TerrainConfig struct {
	AssetDir    string  `yaml:"asset_dir"` // Root for heightmap and sounds
	Heightmap   string  `yaml:"heightmap"` // Relative to AssetDir
	Grid        int     `yaml:"grid"`
	Size        float32 `yaml:"size"` // World half extent
	HeightScale float32 `yaml:"height_scale"`
}

// WeaponsConfig holds gun and bullet settings.
type WeaponsConfig struct {
	MuzzleSpeed    float32  `yaml:"muzzle_speed"`
	TTL            float32  `yaml:"ttl"`
	Gravity        float32  `yaml:"gravity"`
	SideOffset     float32  `yaml:"side_offset"`
	Radius         float32  `yaml:"radius"`
	Length         float32  `yaml:"length"`
	ContactEpsilon float32  `yaml:"contact_epsilon"`
	FireRate       float32  `yaml:"fire_rate"` // Pairs per second
	FireSound      string   `yaml:"fire_sound"`
	FireVolume     float32  `yaml:"fire_volume"`
	RicochetSounds []string `yaml:"ricochet_sounds"`
	RicochetVolume float32  `yaml:"ricochet_volume"`
	MaxBullets     int      `yaml:"max_bullets"` // 0 = unlimited
}

// SparksConfig holds impact spark settings.
type SparksConfig struct {
	Count      int     `yaml:"count"`
	Gravity    float32 `yaml:"gravity"`
	SpeedMin   float32 `yaml:"speed_min"`
	SpeedRange float32 `yaml:"speed_range"`
	LifeMin    float32 `yaml:"life_min"`
	LifeRange  float32 `yaml:"life_range"`
	SizeMin    float32 `yaml:"size_min"`
	SizeRange  float32 `yaml:"size_range"`
	Bounce     float32 `yaml:"bounce"`
	Friction   float32 `yaml:"friction"`
	MaxSparks  int     `yaml:"max_sparks"` // 0 = unlimited
}

// AudioConfig holds audio settings.
type AudioConfig struct {
	Enabled        bool    `yaml:"enabled"`
	MasterVolume   float32 `yaml:"master_volume"`
	SFXVolume      float32 `yaml:"sfx_volume"`
	EngineVolume   float32 `yaml:"engine_volume"`
	Muted          bool    `yaml:"muted"`
	SoundsDir      string  `yaml:"sounds_dir"`      // Relative to the asset dir
	FollowAircraft bool    `yaml:"follow_aircraft"` // Listener tracks the aircraft
}

// SimConfig holds the fixed-step run and the scripted aircraft.
type SimConfig struct {
	Step     time.Duration  `yaml:"step"`
	Duration time.Duration  `yaml:"duration"`
	Seed     uint64         `yaml:"seed"`
	Aircraft AircraftConfig `yaml:"aircraft"`
}

// AircraftConfig describes the autopilot flight.
type AircraftConfig struct {
	Start       [3]float32 `yaml:"start"`
	Yaw         float32    `yaml:"yaw"`          // Radians, 0 faces -Z
	Speed       float32    `yaml:"speed"`        // Units per second
	TurnRate    float32    `yaml:"turn_rate"`    // Radians per second
	StrafePitch float32    `yaml:"strafe_pitch"` // Target pitch while firing, radians
	PitchRate   float32    `yaml:"pitch_rate"`   // Max pitch change, radians per second
	Bank        float32    `yaml:"bank"`         // Roll held during the turn, radians
	MinAltitude float32    `yaml:"min_altitude"` // Above ground; pull up below this
}

// TelemetryConfig holds per-frame stats output.
type TelemetryConfig struct {
	Enabled   bool   `yaml:"enabled"`
	OutputDir string `yaml:"output_dir"`
	Window    int    `yaml:"window"` // Frames per summary row
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	p := projectile.DefaultConfig()
	s := sparks.DefaultConfig()

	ricochets := make([]string, len(p.RicochetSounds))
	for i, id := range p.RicochetSounds {
		ricochets[i] = string(id)
	}

	return &Config{
		Terrain: TerrainConfig{
			AssetDir:    "assets",
			Heightmap:   "heightmap.png",
			Grid:        128,
			Size:        4000,
			HeightScale: 600,
		},
		Weapons: WeaponsConfig{
			MuzzleSpeed:    p.MuzzleSpeed,
			TTL:            p.TTL,
			Gravity:        p.Gravity,
			SideOffset:     p.SideOffset,
			Radius:         p.Radius,
			Length:         p.Length,
			ContactEpsilon: p.ContactEpsilon,
			FireRate:       12,
			FireSound:      string(p.FireSound),
			FireVolume:     p.FireVolume,
			RicochetSounds: ricochets,
			RicochetVolume: p.RicochetVolume,
		},
		Sparks: SparksConfig{
			Count:      s.Count,
			Gravity:    s.Gravity,
			SpeedMin:   s.SpeedMin,
			SpeedRange: s.SpeedRange,
			LifeMin:    s.LifeMin,
			LifeRange:  s.LifeRange,
			SizeMin:    s.SizeMin,
			SizeRange:  s.SizeRange,
			Bounce:     s.Bounce,
			Friction:   s.Friction,
		},
		Audio: AudioConfig{
			Enabled:        false,
			MasterVolume:   0.8,
			SFXVolume:      1.0,
			EngineVolume:   0.35,
			SoundsDir:      "sounds",
			FollowAircraft: true,
		},
		Sim: SimConfig{
			Step:     time.Second / 60,
			Duration: 20 * time.Second,
			Seed:     1,
			Aircraft: AircraftConfig{
				Start:       [3]float32{0, 900, 2500},
				Speed:       220,
				TurnRate:    0.15,
				StrafePitch: -0.35,
				PitchRate:   0.5,
				Bank:        0.3,
				MinAltitude: 250,
			},
		},
		Telemetry: TelemetryConfig{
			Enabled:   true,
			OutputDir: "telemetry",
			Window:    60,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Projectile maps the weapons section onto the bullet simulator tuning.
func (w WeaponsConfig) Projectile() projectile.Config {
	cfg := projectile.DefaultConfig()
	cfg.MuzzleSpeed = w.MuzzleSpeed
	cfg.TTL = w.TTL
	cfg.Gravity = w.Gravity
	cfg.SideOffset = w.SideOffset
	cfg.Radius = w.Radius
	cfg.Length = w.Length
	cfg.ContactEpsilon = w.ContactEpsilon
	cfg.FireSound = sfx.SoundID(w.FireSound)
	cfg.FireVolume = w.FireVolume
	cfg.RicochetSounds = make([]sfx.SoundID, len(w.RicochetSounds))
	for i, id := range w.RicochetSounds {
		cfg.RicochetSounds[i] = sfx.SoundID(id)
	}
	cfg.RicochetVolume = w.RicochetVolume
	cfg.MaxBullets = w.MaxBullets
	return cfg
}

// Sparks maps the sparks section onto the spark simulator tuning.
func (s SparksConfig) Sparks() sparks.Config {
	cfg := sparks.DefaultConfig()
	cfg.Count = s.Count
	cfg.Gravity = s.Gravity
	cfg.SpeedMin = s.SpeedMin
	cfg.SpeedRange = s.SpeedRange
	cfg.LifeMin = s.LifeMin
	cfg.LifeRange = s.LifeRange
	cfg.SizeMin = s.SizeMin
	cfg.SizeRange = s.SizeRange
	cfg.Bounce = s.Bounce
	cfg.Friction = s.Friction
	cfg.MaxSparks = s.MaxSparks
	return cfg
}
