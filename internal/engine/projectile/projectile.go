// Package projectile simulates machine-gun bullets: paired muzzle spawns,
// ballistic flight, expiry and ground impacts that throw sparks and ricochet
// sounds.
package projectile

import (
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/Faultbox/skyraid/internal/engine/audio/sfx"
	"github.com/Faultbox/skyraid/internal/engine/sparks"
	"github.com/Faultbox/skyraid/internal/engine/terrain"
	vmath "github.com/Faultbox/skyraid/pkg/math"
)

// Config holds bullet tuning. Distances are world units, times seconds.
type Config struct {
	MuzzleSpeed float32
	TTL         float32
	Gravity     float32

	// SideOffset is the distance of each gun from the aircraft center.
	SideOffset float32

	// Render box: Radius across, Length along the velocity.
	Radius float32
	Length float32
	Color  [3]float32

	// A bullet impacts once it is within ContactEpsilon of the ground.
	// Sparks spawn ImpactLift above the contact point.
	ContactEpsilon float32
	ImpactLift     float32

	FireSound      sfx.SoundID
	FireVolume     float32
	RicochetSounds []sfx.SoundID
	RicochetVolume float32

	// MaxBullets caps the live population; 0 means unlimited.
	MaxBullets int
}

// DefaultConfig returns the stock bullet tuning.
func DefaultConfig() Config {
	return Config{
		MuzzleSpeed:    1950,
		TTL:            3,
		Gravity:        0,
		SideOffset:     6,
		Radius:         0.8,
		Length:         34,
		Color:          [3]float32{1.0, 0.8, 0.2},
		ContactEpsilon: 0.2,
		ImpactLift:     0.1,
		FireSound:      sfx.SoundMachineGun2,
		FireVolume:     0.45,
		RicochetSounds: []sfx.SoundID{
			sfx.SoundRicochet1,
			sfx.SoundRicochet2,
			sfx.SoundRicochet3,
			sfx.SoundRicochet4,
		},
		RicochetVolume: 0.55,
	}
}

// Bullet is a single live projectile. Right, Up and Forward are the aircraft
// frame it was fired in.
type Bullet struct {
	Pos     vmath.Vec3
	Vel     vmath.Vec3
	TTL     float32
	Right   vmath.Vec3
	Up      vmath.Vec3
	Forward vmath.Vec3
	Color   [3]float32
}

// Instance is one bullet ready to draw as a unit cube.
type Instance struct {
	Transform vmath.Mat4
	Color     [3]float32
	Alpha     float32
}

// TickStats counts what happened to bullets during one Tick.
type TickStats struct {
	Expired  int
	Impacted int
}

// Simulator owns the live bullets. It is not safe for concurrent use.
type Simulator struct {
	cfg     Config
	sparks  *sparks.Simulator
	sink    sfx.Sink
	rng     *rand.Rand
	log     *zap.Logger
	bullets []Bullet
	spare   []Bullet
}

// New creates a bullet simulator. Impacts feed sp (may be nil) and sound
// triggers go to sink; a nil sink discards them.
func New(cfg Config, sp *sparks.Simulator, sink sfx.Sink, rng *rand.Rand, log *zap.Logger) *Simulator {
	if sink == nil {
		sink = sfx.NopSink{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{cfg: cfg, sparks: sp, sink: sink, rng: rng, log: log}
}

// Config returns the simulator tuning.
func (s *Simulator) Config() Config {
	return s.cfg
}

// degenerateCross is the length below which the aircraft counts as pointing
// straight up or down.
const degenerateCross = 1e-4

// Frame returns the orthonormal aircraft frame for the given attitude in
// radians. Yaw 0 faces -Z.
func Frame(yaw, pitch, roll float32) (right, up, forward vmath.Vec3) {
	forward = vmath.ForwardFromYawPitch(yaw, pitch).Normalize()
	right = vmath.WorldUp.Cross(forward)
	if right.Length() < degenerateCross {
		// Fixed +X, not the normalized near-zero cross product, whose
		// sign would follow rounding in yaw.
		right = vmath.Vec3{X: 1}
	}
	right = vmath.RotateAroundAxis(right.Normalize(), forward, roll).Normalize()
	up = forward.Cross(right).Normalize()
	return right, up, forward
}

// SpawnPair fires one bullet from each wing gun and triggers the fire sound
// once at origin. speedHint is the aircraft airspeed added to the muzzle
// speed; negative values count as zero.
func (s *Simulator) SpawnPair(origin vmath.Vec3, yaw, pitch, roll, speedHint float32) bool {
	if s.cfg.MaxBullets > 0 && len(s.bullets)+2 > s.cfg.MaxBullets {
		s.log.Debug("bullet cap reached, pair dropped", zap.Int("live", len(s.bullets)))
		return false
	}

	right, up, fwd := Frame(yaw, pitch, roll)
	vel := fwd.Scale(s.cfg.MuzzleSpeed + max(0, speedHint))
	offset := right.Scale(s.cfg.SideOffset)

	for _, pos := range [2]vmath.Vec3{origin.Sub(offset), origin.Add(offset)} {
		s.bullets = append(s.bullets, Bullet{
			Pos:     pos,
			Vel:     vel,
			TTL:     s.cfg.TTL,
			Right:   right,
			Up:      up,
			Forward: fwd,
			Color:   s.cfg.Color,
		})
	}

	s.sink.PlayOneShot(s.cfg.FireSound, sfx.OneShot{Position: origin, Volume: s.cfg.FireVolume})
	return true
}

// Spawn inserts a bullet as is. It still respects MaxBullets.
func (s *Simulator) Spawn(b Bullet) bool {
	if s.cfg.MaxBullets > 0 && len(s.bullets) >= s.cfg.MaxBullets {
		return false
	}
	s.bullets = append(s.bullets, b)
	return true
}

// Tick advances every bullet by dt seconds. Bullets whose TTL runs out are
// dropped silently. Bullets that reach the ground are dropped with a spark
// burst and one ricochet sound. A nil ground, or one that reports NoGround,
// never collides.
func (s *Simulator) Tick(dt float32, ground terrain.HeightFunc) TickStats {
	var stats TickStats
	out := s.spare[:0]
	for _, b := range s.bullets {
		b.TTL -= dt
		if b.TTL <= 0 {
			stats.Expired++
			continue
		}

		b.Vel.Y -= s.cfg.Gravity * dt
		b.Pos = b.Pos.Add(b.Vel.Scale(dt))

		gy := terrain.NoGround
		if ground != nil {
			gy = ground(b.Pos.X, b.Pos.Z)
		}
		if gy != terrain.NoGround && b.Pos.Y <= gy+s.cfg.ContactEpsilon {
			stats.Impacted++
			s.impact(b, gy)
			continue
		}

		out = append(out, b)
	}
	s.spare = s.bullets
	s.bullets = out
	return stats
}

func (s *Simulator) impact(b Bullet, gy float32) {
	if s.sparks != nil {
		s.sparks.SpawnBurst(vmath.Vec3{X: b.Pos.X, Y: gy + s.cfg.ImpactLift, Z: b.Pos.Z}, b.Vel)
	}
	if n := len(s.cfg.RicochetSounds); n > 0 {
		id := s.cfg.RicochetSounds[s.rng.IntN(n)]
		s.sink.PlayOneShot(id, sfx.OneShot{
			Position: vmath.Vec3{X: b.Pos.X, Y: gy, Z: b.Pos.Z},
			Volume:   s.cfg.RicochetVolume,
		})
	}
}

// RenderPoses returns a long thin box per bullet aligned with its current
// velocity.
func (s *Simulator) RenderPoses() []Instance {
	out := make([]Instance, 0, len(s.bullets))
	for i := range s.bullets {
		b := &s.bullets[i]
		right, up, fwd := vmath.BasisFromDirection(b.Vel)
		out = append(out, Instance{
			Transform: vmath.FromBasis(b.Pos, right, up, fwd, s.cfg.Radius, s.cfg.Radius, s.cfg.Length),
			Color:     b.Color,
			Alpha:     1,
		})
	}
	return out
}

// Len returns the number of live bullets.
func (s *Simulator) Len() int {
	return len(s.bullets)
}

// Bullets returns a copy of the live bullets.
func (s *Simulator) Bullets() []Bullet {
	out := make([]Bullet, len(s.bullets))
	copy(out, s.bullets)
	return out
}

// Reset drops every bullet.
func (s *Simulator) Reset() {
	s.bullets = s.bullets[:0]
}
