package projectile

import (
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/Faultbox/skyraid/internal/engine/audio/sfx"
	"github.com/Faultbox/skyraid/internal/engine/sparks"
	"github.com/Faultbox/skyraid/internal/engine/terrain"
	vmath "github.com/Faultbox/skyraid/pkg/math"
)

type harness struct {
	sim    *Simulator
	sparks *sparks.Simulator
	rec    *sfx.Recorder
}

func newHarness(cfg Config) harness {
	rng := rand.New(rand.NewPCG(7, 11))
	sp := sparks.New(sparks.DefaultConfig(), rng, nil)
	rec := &sfx.Recorder{}
	return harness{sim: New(cfg, sp, rec, rng, nil), sparks: sp, rec: rec}
}

func near(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func vecNear(a, b vmath.Vec3, eps float32) bool {
	return near(a.X, b.X, eps) && near(a.Y, b.Y, eps) && near(a.Z, b.Z, eps)
}

func TestBulletExpiry(t *testing.T) {
	h := newHarness(DefaultConfig())
	h.sim.Spawn(Bullet{Pos: vmath.Vec3{Y: 100}, Vel: vmath.Vec3{Z: -10}, TTL: 0.05})

	stats := h.sim.Tick(0.1, nil)
	if stats.Expired != 1 || stats.Impacted != 0 {
		t.Errorf("stats = %+v, want 1 expired", stats)
	}
	if h.sim.Len() != 0 {
		t.Errorf("live bullets = %d, want 0", h.sim.Len())
	}
	if h.sparks.Len() != 0 || len(h.rec.Triggers) != 0 {
		t.Errorf("expiry produced %d sparks and %d triggers, want none", h.sparks.Len(), len(h.rec.Triggers))
	}
}

func TestBulletImpact(t *testing.T) {
	h := newHarness(DefaultConfig())
	h.sim.Spawn(Bullet{Pos: vmath.Vec3{X: 3, Y: 1, Z: 4}, Vel: vmath.Vec3{Y: -1}, TTL: 1})

	ground := func(x, z float32) float32 { return 0.95 }
	stats := h.sim.Tick(0.01, ground)

	if stats.Impacted != 1 || stats.Expired != 0 {
		t.Fatalf("stats = %+v, want 1 impacted", stats)
	}
	if h.sim.Len() != 0 {
		t.Errorf("live bullets = %d, want 0", h.sim.Len())
	}
	if h.sparks.Len() != 14 {
		t.Errorf("sparks = %d, want 14", h.sparks.Len())
	}
	if len(h.rec.Triggers) != 1 {
		t.Fatalf("triggers = %d, want 1", len(h.rec.Triggers))
	}

	tr := h.rec.Triggers[0]
	if !strings.HasPrefix(string(tr.ID), "ric") {
		t.Errorf("trigger id = %q, want a ricochet", tr.ID)
	}
	if tr.Opts.Volume != 0.55 {
		t.Errorf("ricochet volume = %v, want 0.55", tr.Opts.Volume)
	}
	if !vecNear(tr.Opts.Position, vmath.Vec3{X: 3, Y: 0.95, Z: 4}, 1e-5) {
		t.Errorf("ricochet position = %v, want (3, 0.95, 4)", tr.Opts.Position)
	}
	for _, sp := range h.sparks.Sparks() {
		if !vecNear(sp.Pos, vmath.Vec3{X: 3, Y: 1.05, Z: 4}, 1e-5) {
			t.Errorf("spark spawned at %v, want (3, 1.05, 4)", sp.Pos)
			break
		}
	}
}

func TestBulletFliesAboveGround(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 10
	h := newHarness(cfg)
	h.sim.Spawn(Bullet{Pos: vmath.Vec3{Y: 100}, Vel: vmath.Vec3{Z: -100}, TTL: 1})

	stats := h.sim.Tick(0.1, func(x, z float32) float32 { return 0 })
	if stats != (TickStats{}) {
		t.Errorf("stats = %+v, want none", stats)
	}
	b := h.sim.Bullets()[0]
	if !vecNear(b.Pos, vmath.Vec3{Y: 99.9, Z: -10}, 1e-4) {
		t.Errorf("pos = %v, want (0, 99.9, -10)", b.Pos)
	}
	if !near(b.Vel.Y, -1, 1e-5) || !near(b.TTL, 0.9, 1e-6) {
		t.Errorf("vel.y = %v ttl = %v, want -1/0.9", b.Vel.Y, b.TTL)
	}
}

func TestNilGroundNeverImpacts(t *testing.T) {
	h := newHarness(DefaultConfig())
	h.sim.Spawn(Bullet{Pos: vmath.Vec3{Y: -1000}, Vel: vmath.Vec3{Y: -100}, TTL: 1})

	if stats := h.sim.Tick(0.1, nil); stats.Impacted != 0 {
		t.Errorf("impacted = %d with no ground", stats.Impacted)
	}
	if h.sim.Len() != 1 {
		t.Errorf("live = %d, want 1", h.sim.Len())
	}
}

func TestUnloadedTerrainNeverImpacts(t *testing.T) {
	h := newHarness(DefaultConfig())
	h.sim.Spawn(Bullet{Pos: vmath.Vec3{Y: -200000}, Vel: vmath.Vec3{Y: -100}, TTL: 1})

	// Below the NoGround value itself, which must not act as a floor.
	if stats := h.sim.Tick(0.1, terrain.New().Sample); stats.Impacted != 0 {
		t.Errorf("impacted = %d against an unloaded terrain", stats.Impacted)
	}
	if h.sim.Len() != 1 || h.sparks.Len() != 0 || len(h.rec.Triggers) != 0 {
		t.Errorf("live = %d sparks = %d triggers = %d, want 1/0/0",
			h.sim.Len(), h.sparks.Len(), len(h.rec.Triggers))
	}
	if got := h.sim.Bullets()[0].Pos.Y; !near(got, -200010, 1e-2) {
		t.Errorf("pos.y = %v, want -200010", got)
	}
}

func TestSpawnPairSymmetry(t *testing.T) {
	h := newHarness(DefaultConfig())
	origin := vmath.Vec3{X: 10, Y: 200, Z: 30}
	if !h.sim.SpawnPair(origin, 0, 0, 0, 0) {
		t.Fatal("SpawnPair refused")
	}

	bullets := h.sim.Bullets()
	if len(bullets) != 2 {
		t.Fatalf("bullets = %d, want 2", len(bullets))
	}
	a, b := bullets[0], bullets[1]

	// Yaw 0 faces -Z, so right is -X.
	if !vecNear(a.Right, vmath.Vec3{X: -1}, 1e-6) || !vecNear(a.Up, vmath.WorldUp, 1e-6) {
		t.Errorf("frame right=%v up=%v", a.Right, a.Up)
	}
	if !vecNear(a.Pos, vmath.Vec3{X: 16, Y: 200, Z: 30}, 1e-4) ||
		!vecNear(b.Pos, vmath.Vec3{X: 4, Y: 200, Z: 30}, 1e-4) {
		t.Errorf("positions = %v, %v", a.Pos, b.Pos)
	}
	mid := a.Pos.Add(b.Pos).Scale(0.5)
	if !vecNear(mid, origin, 1e-4) {
		t.Errorf("pair midpoint = %v, want %v", mid, origin)
	}
	if a.Vel != b.Vel {
		t.Errorf("velocities differ: %v vs %v", a.Vel, b.Vel)
	}
	if !vecNear(a.Vel, vmath.Vec3{Z: -1950}, 1e-2) {
		t.Errorf("velocity = %v, want (0, 0, -1950)", a.Vel)
	}
	if a.TTL != 3 || a.Color != [3]float32{1.0, 0.8, 0.2} {
		t.Errorf("ttl/color = %v/%v", a.TTL, a.Color)
	}

	if len(h.rec.Triggers) != 1 || h.rec.Count(sfx.SoundMachineGun2) != 1 {
		t.Fatalf("triggers = %+v, want exactly one mg2", h.rec.Triggers)
	}
	if tr := h.rec.Triggers[0]; tr.Opts.Position != origin || tr.Opts.Volume != 0.45 {
		t.Errorf("fire trigger = %+v", tr.Opts)
	}
}

func TestSpawnPairSpeedHint(t *testing.T) {
	h := newHarness(DefaultConfig())
	h.sim.SpawnPair(vmath.Vec3{}, 0, 0, 0, 50)
	h.sim.SpawnPair(vmath.Vec3{}, 0, 0, 0, -500)

	bullets := h.sim.Bullets()
	if got := bullets[0].Vel.Length(); !near(got, 2000, 1e-2) {
		t.Errorf("speed with hint = %v, want 2000", got)
	}
	if got := bullets[2].Vel.Length(); !near(got, 1950, 1e-2) {
		t.Errorf("speed with negative hint = %v, want 1950", got)
	}
}

func TestFrame(t *testing.T) {
	tests := []struct {
		name             string
		yaw, pitch, roll float32
		right, up, fwd   vmath.Vec3
	}{
		{"level north", 0, 0, 0, vmath.Vec3{X: -1}, vmath.Vec3{Y: 1}, vmath.Vec3{Z: -1}},
		{"level east", math.Pi / 2, 0, 0, vmath.Vec3{Z: -1}, vmath.Vec3{Y: 1}, vmath.Vec3{X: 1}},
		{"rolled", 0, 0, math.Pi / 2, vmath.Vec3{Y: 1}, vmath.Vec3{X: 1}, vmath.Vec3{Z: -1}},
		// Vertical attitudes take a fixed +X right whatever the yaw. Just off
		// vertical, the cross product gives -X at yaw 0 instead.
		{"straight up", 0, math.Pi / 2, 0, vmath.Vec3{X: 1}, vmath.Vec3{Z: -1}, vmath.Vec3{Y: 1}},
		{"straight up facing east", math.Pi / 2, math.Pi / 2, 0, vmath.Vec3{X: 1}, vmath.Vec3{Z: -1}, vmath.Vec3{Y: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			right, up, fwd := Frame(tt.yaw, tt.pitch, tt.roll)
			if !vecNear(right, tt.right, 1e-5) || !vecNear(up, tt.up, 1e-5) || !vecNear(fwd, tt.fwd, 1e-5) {
				t.Errorf("Frame = %v %v %v, want %v %v %v", right, up, fwd, tt.right, tt.up, tt.fwd)
			}
			if d := right.Dot(fwd); !near(d, 0, 1e-5) {
				t.Errorf("right·forward = %v, want 0", d)
			}
		})
	}
}

func TestSpawnPairRolled(t *testing.T) {
	h := newHarness(DefaultConfig())
	h.sim.SpawnPair(vmath.Vec3{}, 0, 0, math.Pi/2, 0)

	bullets := h.sim.Bullets()
	// Rolled 90 degrees the guns stack vertically.
	if !near(bullets[0].Pos.Y, -6, 1e-4) || !near(bullets[1].Pos.Y, 6, 1e-4) {
		t.Errorf("positions = %v, %v", bullets[0].Pos, bullets[1].Pos)
	}
	if !near(bullets[0].Pos.X, 0, 1e-4) {
		t.Errorf("x = %v, want 0", bullets[0].Pos.X)
	}
}

func TestMaxBullets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBullets = 3
	h := newHarness(cfg)

	if !h.sim.SpawnPair(vmath.Vec3{}, 0, 0, 0, 0) {
		t.Fatal("first pair refused")
	}
	if h.sim.SpawnPair(vmath.Vec3{}, 0, 0, 0, 0) {
		t.Error("second pair should be dropped")
	}
	if h.sim.Len() != 2 || h.rec.Count(sfx.SoundMachineGun2) != 1 {
		t.Errorf("live = %d, fire sounds = %d; want 2/1", h.sim.Len(), h.rec.Count(sfx.SoundMachineGun2))
	}
	if !h.sim.Spawn(Bullet{TTL: 1}) || h.sim.Spawn(Bullet{TTL: 1}) {
		t.Error("Spawn should fill to the cap and then refuse")
	}
}

func TestRenderPoses(t *testing.T) {
	h := newHarness(DefaultConfig())
	h.sim.Spawn(Bullet{Pos: vmath.Vec3{X: 1, Y: 2, Z: 3}, Vel: vmath.Vec3{Z: -1950}, TTL: 1, Color: [3]float32{1, 0.8, 0.2}})

	poses := h.sim.RenderPoses()
	if len(poses) != 1 {
		t.Fatalf("poses = %d, want 1", len(poses))
	}
	p := poses[0]
	if p.Alpha != 1 || p.Color != [3]float32{1, 0.8, 0.2} {
		t.Errorf("alpha/color = %v/%v", p.Alpha, p.Color)
	}
	if got := p.Transform.Column(2); !vecNear(got, vmath.Vec3{Z: -34}, 1e-4) {
		t.Errorf("forward column = %v, want (0, 0, -34)", got)
	}
	if got := p.Transform.Column(0).Length(); !near(got, 0.8, 1e-5) {
		t.Errorf("right column length = %v, want 0.8", got)
	}
	if got := p.Transform.TransformPoint(vmath.Vec3{}); got != (vmath.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("origin maps to %v", got)
	}
}

func TestNilSinkAndSparks(t *testing.T) {
	sim := New(DefaultConfig(), nil, nil, rand.New(rand.NewPCG(1, 1)), nil)
	sim.SpawnPair(vmath.Vec3{Y: 0.1}, 0, 0, 0, 0)

	stats := sim.Tick(0.001, func(x, z float32) float32 { return 0 })
	if stats.Impacted != 2 {
		t.Errorf("impacted = %d, want 2", stats.Impacted)
	}
	sim.Reset()
	if sim.Len() != 0 {
		t.Errorf("live after reset = %d", sim.Len())
	}
}
