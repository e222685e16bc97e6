// Package game runs one simulation step at a time: the scripted aircraft,
// its guns, bullets, impact sparks and the sounds they trigger, all against
// the loaded terrain.
package game

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/Faultbox/skyraid/internal/engine/audio/sfx"
	"github.com/Faultbox/skyraid/internal/engine/projectile"
	"github.com/Faultbox/skyraid/internal/engine/sparks"
	"github.com/Faultbox/skyraid/internal/engine/terrain"
	"github.com/Faultbox/skyraid/internal/telemetry"
	vmath "github.com/Faultbox/skyraid/pkg/math"
)

// Config holds game configuration.
type Config struct {
	Projectile projectile.Config
	Sparks     sparks.Config
	Autopilot  AutopilotConfig
	Start      Aircraft
	FireRate   float32 // Pairs per second

	// Engine loop gain; its rate follows airspeed relative to cruise.
	EngineVolume float32
}

// Listener is moved to the aircraft every step.
type Listener interface {
	SetListener(pos vmath.Vec3)
}

// LoopControl is a running sound loop the game modulates.
type LoopControl interface {
	SetVolume(gain float64)
	SetRate(rate float64)
	SetPan(pan float64)
}

// Deps are the collaborators a Game runs against. Only Terrain is required.
type Deps struct {
	Terrain  *terrain.Terrain
	Sink     sfx.Sink
	Listener Listener    // Optional
	Engine   LoopControl // Optional
	RNG      *rand.Rand  // Nil seeds from Seed
	Seed     uint64
	Log      *zap.Logger
}

// Game is the simulation state. It is not safe for concurrent use.
type Game struct {
	cfg Config
	log *zap.Logger

	terrain  *terrain.Terrain
	bullets  *projectile.Simulator
	sparks   *sparks.Simulator
	listener Listener
	engine   LoopControl

	aircraft Aircraft
	pilot    *Autopilot
	guns     *FireLimiter

	frame int
	time  float64
}

// New creates a game over d.Terrain, which may still be empty.
func New(cfg Config, d Deps) *Game {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	rng := d.RNG
	if rng == nil {
		rng = rand.New(rand.NewPCG(d.Seed, d.Seed^0x9e3779b97f4a7c15))
	}
	tr := d.Terrain
	if tr == nil {
		tr = terrain.New()
	}

	sp := sparks.New(cfg.Sparks, rng, log.Named("sparks"))
	g := &Game{
		cfg:      cfg,
		log:      log,
		terrain:  tr,
		sparks:   sp,
		bullets:  projectile.New(cfg.Projectile, sp, d.Sink, rng, log.Named("bullets")),
		listener: d.Listener,
		engine:   d.Engine,
		aircraft: cfg.Start,
		pilot:    NewAutopilot(cfg.Autopilot),
		guns:     NewFireLimiter(cfg.FireRate),
	}
	if g.aircraft.Speed == 0 {
		g.aircraft.Speed = cfg.Autopilot.Speed
	}
	if g.engine != nil {
		g.engine.SetVolume(float64(cfg.EngineVolume))
	}
	return g
}

// LoadTerrain rebuilds the terrain from img. On failure the previous terrain
// stays in place.
func (g *Game) LoadTerrain(img *terrain.Image, grid int, size, heightScale float32) error {
	if err := g.terrain.Load(img, grid, size, heightScale); err != nil {
		return fmt.Errorf("loading terrain: %w", err)
	}

	m := g.terrain.Mesh()
	g.log.Info("terrain loaded",
		zap.Int("grid", grid),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", len(m.Indices)/3),
		zap.Float32("min_y", m.Bounds.Min[1]),
		zap.Float32("max_y", m.Bounds.Max[1]),
		zap.Uint64("generation", g.terrain.Generation()))
	return nil
}

// Fire shoots one pair from the aircraft right now, bypassing the fire rate.
func (g *Game) Fire() bool {
	a := &g.aircraft
	return g.bullets.SpawnPair(a.Pos, a.Yaw, a.Pitch, a.Roll, a.Speed)
}

// Update advances the whole simulation by dt seconds: aircraft, guns,
// bullets, then sparks.
func (g *Game) Update(dt float32) telemetry.FrameSample {
	ground := terrain.HeightFunc(g.terrain.Sample)

	g.pilot.Step(&g.aircraft, dt, ground)

	fired := 0
	if g.guns.Ready(dt, g.pilot.Strafing()) && g.Fire() {
		fired = 1
	}

	stats := g.bullets.Tick(dt, ground)
	g.sparks.Tick(dt, ground)

	if g.listener != nil {
		g.listener.SetListener(g.aircraft.Pos)
	}
	if g.engine != nil && g.cfg.Autopilot.Speed > 0 {
		g.engine.SetRate(float64(g.aircraft.Speed / g.cfg.Autopilot.Speed))
	}

	if stats.Impacted > 0 {
		g.log.Debug("impacts",
			zap.Int("frame", g.frame),
			zap.Int("count", stats.Impacted),
			zap.Int("sparks", g.sparks.Len()))
	}

	sample := telemetry.FrameSample{
		Frame:    g.frame,
		Bullets:  g.bullets.Len(),
		Sparks:   g.sparks.Len(),
		Fired:    fired,
		Expired:  stats.Expired,
		Impacted: stats.Impacted,
	}
	g.frame++
	g.time += float64(dt)
	return sample
}

// Frame is everything a renderer needs for one frame.
type Frame struct {
	Bullets           []projectile.Instance
	Sparks            []sparks.Instance
	Aircraft          Aircraft
	Terrain           *terrain.Mesh // Nil until loaded
	TerrainGeneration uint64
}

// Frame returns draw data for the current state.
func (g *Game) Frame() Frame {
	return Frame{
		Bullets:           g.bullets.RenderPoses(),
		Sparks:            g.sparks.RenderPoses(),
		Aircraft:          g.aircraft,
		Terrain:           g.terrain.Mesh(),
		TerrainGeneration: g.terrain.Generation(),
	}
}

// Aircraft returns the aircraft state.
func (g *Game) Aircraft() Aircraft {
	return g.aircraft
}

// Terrain returns the terrain the game runs against.
func (g *Game) Terrain() *terrain.Terrain {
	return g.terrain
}

// Frames returns the number of completed steps.
func (g *Game) Frames() int {
	return g.frame
}

// Time returns the simulated seconds elapsed.
func (g *Game) Time() float64 {
	return g.time
}

// Bullets exposes the bullet simulator.
func (g *Game) Bullets() *projectile.Simulator {
	return g.bullets
}

// Sparks exposes the spark simulator.
func (g *Game) Sparks() *sparks.Simulator {
	return g.sparks
}
