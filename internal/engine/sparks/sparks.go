// Package sparks simulates the short-lived debris thrown up by bullet impacts.
package sparks

import (
	"math"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/Faultbox/skyraid/internal/engine/terrain"
	vmath "github.com/Faultbox/skyraid/pkg/math"
)

// Config holds spark tuning. Speeds are units/s and lifetimes seconds; each
// Min/Range pair samples uniformly from [Min, Min+Range).
type Config struct {
	Count      int
	Gravity    float32
	SpeedMin   float32
	SpeedRange float32
	LifeMin    float32
	LifeRange  float32
	SizeMin    float32
	SizeRange  float32
	SizeScale  float32

	// HintBlend weights the incoming direction in the launch direction.
	HintBlend float32

	// Ground response: sparks rest GroundOffset above the ground, keep
	// Bounce of their (inverted) vertical speed and Friction of their
	// horizontal speed.
	GroundOffset float32
	Bounce       float32
	Friction     float32

	// Thickness is the box cross-section as a fraction of size.
	Thickness float32
	Color     [3]float32

	// MaxSparks caps the live population; 0 means unlimited.
	MaxSparks int
}

// DefaultConfig returns the stock spark tuning.
func DefaultConfig() Config {
	return Config{
		Count:        14,
		Gravity:      26,
		SpeedMin:     120,
		SpeedRange:   220,
		LifeMin:      0.35,
		LifeRange:    0.35,
		SizeMin:      3,
		SizeRange:    4,
		SizeScale:    0.25,
		HintBlend:    0.6,
		GroundOffset: 0.05,
		Bounce:       0.15,
		Friction:     0.7,
		Thickness:    0.15,
		Color:        [3]float32{1.0, 0.75, 0.2},
	}
}

// Spark is a single debris particle.
type Spark struct {
	Pos   vmath.Vec3
	Vel   vmath.Vec3
	TTL   float32 // Seconds left
	Life  float32 // Total lifetime, for fading
	Size  float32
	Color [3]float32
}

// Alpha returns the remaining-life fade factor in [0, 1].
func (s *Spark) Alpha() float32 {
	if s.Life <= 0 {
		return 0
	}
	return min(1, max(0, s.TTL/s.Life))
}

// Instance is one spark ready to draw as a unit cube.
type Instance struct {
	Transform vmath.Mat4
	Color     [3]float32
	Alpha     float32
}

// Simulator owns the live sparks. It is not safe for concurrent use.
type Simulator struct {
	cfg    Config
	rng    *rand.Rand
	log    *zap.Logger
	sparks []Spark
	spare  []Spark
}

// New creates a spark simulator. rng drives burst randomness; pass a seeded
// source for reproducible runs.
func New(cfg Config, rng *rand.Rand, log *zap.Logger) *Simulator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{cfg: cfg, rng: rng, log: log}
}

// Config returns the simulator tuning.
func (s *Simulator) Config() Config {
	return s.cfg
}

// SpawnBurst throws cfg.Count sparks out of contact, biased upward and along
// the horizontal part of velHint.
func (s *Simulator) SpawnBurst(contact, velHint vmath.Vec3) {
	hint := velHint.Normalize()
	if hint.IsZero() {
		hint = vmath.Vec3{Y: -1}
	}

	spawned := 0
	for range s.cfg.Count {
		if s.full() {
			break
		}
		a := s.rng.Float64() * 2 * math.Pi
		u := s.rng.Float32()
		elev := s.rng.Float32()*0.7 + 0.3 // favor upward

		dir := vmath.Vec3{
			X: float32(math.Cos(a))*(1-u) + hint.X*s.cfg.HintBlend,
			Y: elev,
			Z: float32(math.Sin(a))*(1-u) + hint.Z*s.cfg.HintBlend,
		}.Normalize()

		speed := s.cfg.SpeedMin + s.rng.Float32()*s.cfg.SpeedRange
		life := s.cfg.LifeMin + s.rng.Float32()*s.cfg.LifeRange
		size := (s.cfg.SizeMin + s.rng.Float32()*s.cfg.SizeRange) * s.cfg.SizeScale

		s.sparks = append(s.sparks, Spark{
			Pos:   contact,
			Vel:   dir.Scale(speed),
			TTL:   life,
			Life:  life,
			Size:  size,
			Color: s.cfg.Color,
		})
		spawned++
	}

	if spawned < s.cfg.Count {
		s.log.Debug("spark cap reached",
			zap.Int("spawned", spawned),
			zap.Int("live", len(s.sparks)))
	}
}

// Spawn inserts a spark as is. It still respects MaxSparks.
func (s *Simulator) Spawn(sp Spark) bool {
	if s.full() {
		return false
	}
	s.sparks = append(s.sparks, sp)
	return true
}

func (s *Simulator) full() bool {
	return s.cfg.MaxSparks > 0 && len(s.sparks) >= s.cfg.MaxSparks
}

// Tick advances every spark by dt seconds and drops the expired ones.
// Sparks that sink below the ground are lifted back onto it and bounce once
// with heavy damping. A nil ground, or one that reports NoGround, never
// collides. Returns the number of
// sparks that expired.
func (s *Simulator) Tick(dt float32, ground terrain.HeightFunc) int {
	out := s.spare[:0]
	expired := 0
	for _, sp := range s.sparks {
		sp.TTL -= dt
		if sp.TTL <= 0 {
			expired++
			continue
		}

		sp.Vel.Y -= s.cfg.Gravity * dt
		sp.Pos = sp.Pos.Add(sp.Vel.Scale(dt))

		gy := terrain.NoGround
		if ground != nil {
			gy = ground(sp.Pos.X, sp.Pos.Z)
		}
		if rest := gy + s.cfg.GroundOffset; gy != terrain.NoGround && sp.Pos.Y < rest {
			sp.Pos.Y = rest
			sp.Vel.Y *= -s.cfg.Bounce
			sp.Vel.X *= s.cfg.Friction
			sp.Vel.Z *= s.cfg.Friction
		}

		out = append(out, sp)
	}
	s.spare = s.sparks
	s.sparks = out
	return expired
}

// RenderPoses returns a thin box per spark aligned with its velocity, faded by
// remaining life.
func (s *Simulator) RenderPoses() []Instance {
	out := make([]Instance, 0, len(s.sparks))
	for i := range s.sparks {
		sp := &s.sparks[i]
		right, up, fwd := vmath.BasisFromDirection(sp.Vel)
		thick := sp.Size * s.cfg.Thickness
		out = append(out, Instance{
			Transform: vmath.FromBasis(sp.Pos, right, up, fwd, thick, thick, sp.Size),
			Color:     sp.Color,
			Alpha:     sp.Alpha(),
		})
	}
	return out
}

// Len returns the number of live sparks.
func (s *Simulator) Len() int {
	return len(s.sparks)
}

// Sparks returns a copy of the live sparks.
func (s *Simulator) Sparks() []Spark {
	out := make([]Spark, len(s.sparks))
	copy(out, s.sparks)
	return out
}

// Reset drops every spark.
func (s *Simulator) Reset() {
	s.sparks = s.sparks[:0]
}
