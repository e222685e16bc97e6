package game

import (
	"math"

	"github.com/Faultbox/skyraid/internal/engine/terrain"
	vmath "github.com/Faultbox/skyraid/pkg/math"
)

// Aircraft is the player plane. Angles are radians; yaw 0 faces -Z.
type Aircraft struct {
	Pos   vmath.Vec3
	Yaw   float32
	Pitch float32
	Roll  float32
	Speed float32
}

// Forward returns the unit nose direction.
func (a *Aircraft) Forward() vmath.Vec3 {
	return vmath.ForwardFromYawPitch(a.Yaw, a.Pitch)
}

// AutopilotConfig scripts a circling strafe run.
type AutopilotConfig struct {
	Speed       float32 // Cruise speed, units per second
	TurnRate    float32 // Yaw change, radians per second
	StrafePitch float32 // Nose-down pitch held while above MinAltitude
	PitchRate   float32 // Max pitch change, radians per second
	Bank        float32 // Roll held during the turn
	MinAltitude float32 // Height above ground that triggers a pull-up
}

// Autopilot flies an Aircraft in a descending circle, pulling up whenever it
// gets too close to the ground.
type Autopilot struct {
	cfg     AutopilotConfig
	pulling bool
}

// NewAutopilot creates an autopilot.
func NewAutopilot(cfg AutopilotConfig) *Autopilot {
	return &Autopilot{cfg: cfg}
}

// Strafing reports whether the current leg is a dive, when the guns should
// fire.
func (p *Autopilot) Strafing() bool {
	return !p.pulling
}

// Step advances the aircraft by dt seconds. With no ground loaded, altitude is
// measured from y = 0.
func (p *Autopilot) Step(a *Aircraft, dt float32, ground terrain.HeightFunc) {
	gy := float32(0)
	if ground != nil {
		if h := ground(a.Pos.X, a.Pos.Z); h != terrain.NoGround {
			gy = h
		}
	}
	alt := a.Pos.Y - gy

	// Hysteresis: pull up below MinAltitude, dive again once twice as high.
	switch {
	case alt < p.cfg.MinAltitude:
		p.pulling = true
	case alt > 2*p.cfg.MinAltitude:
		p.pulling = false
	}

	target := p.cfg.StrafePitch
	if p.pulling {
		target = float32(math.Abs(float64(p.cfg.StrafePitch)))
	}
	a.Pitch = approach(a.Pitch, target, p.cfg.PitchRate*dt)
	a.Roll = approach(a.Roll, p.cfg.Bank, p.cfg.PitchRate*dt)
	a.Yaw = wrapAngle(a.Yaw + p.cfg.TurnRate*dt)

	// Gain speed in a dive, lose it in a climb.
	sp := float32(math.Sin(float64(a.Pitch)))
	a.Speed = approach(a.Speed, p.cfg.Speed*(1-0.5*sp), p.cfg.Speed*0.5*dt)

	a.Pos = a.Pos.Add(a.Forward().Scale(a.Speed * dt))
}

// approach moves v toward target by at most step.
func approach(v, target, step float32) float32 {
	switch {
	case v < target:
		return min(v+step, target)
	case v > target:
		return max(v-step, target)
	}
	return v
}

func wrapAngle(a float32) float32 {
	const twoPi = 2 * math.Pi
	for a >= twoPi {
		a -= twoPi
	}
	for a < 0 {
		a += twoPi
	}
	return a
}

// FireLimiter spaces shots at a fixed rate.
type FireLimiter struct {
	interval float32
	cooldown float32
}

// NewFireLimiter allows rate shots per second; rate <= 0 never fires.
func NewFireLimiter(rate float32) *FireLimiter {
	if rate <= 0 {
		return &FireLimiter{}
	}
	return &FireLimiter{interval: 1 / rate}
}

// Ready reports whether a shot fires this step and then advances the
// limiter by dt. At most one shot fires per call and idle time is not banked.
func (f *FireLimiter) Ready(dt float32, trigger bool) bool {
	if f.interval <= 0 {
		return false
	}
	fire := trigger && f.cooldown <= 0
	if fire {
		f.cooldown += f.interval
	}
	f.cooldown = max(f.cooldown-dt, -f.interval)
	if !trigger {
		f.cooldown = max(f.cooldown, 0)
	}
	return fire
}
