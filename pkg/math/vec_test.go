package math

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func vecNear(a, b Vec3, eps float32) bool {
	return abs(a.X-b.X) <= eps && abs(a.Y-b.Y) <= eps && abs(a.Z-b.Z) <= eps
}

func toR3(v Vec3) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func fromR3(v r3.Vec) Vec3 {
	return Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3CrossMatchesGonum(t *testing.T) {
	pairs := [][2]Vec3{
		{{1, 2, 3}, {-4, 0.5, 2}},
		{{0, 1, 0}, {0.3, -0.2, -0.9}},
		{{7, -1, 0}, {7, -1, 0}},
	}
	for _, p := range pairs {
		got := p[0].Cross(p[1])
		want := fromR3(r3.Cross(toR3(p[0]), toR3(p[1])))
		if !vecNear(got, want, 1e-5) {
			t.Errorf("Cross(%v, %v) = %v, want %v", p[0], p[1], got, want)
		}
	}
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{3, 4, 12}.Normalize()
	if l := n.Length(); l < 0.999 || l > 1.001 {
		t.Errorf("Normalize().Length() = %v, want ~1", l)
	}

	unit := Vec3{0, 0, -1}
	if got := unit.Normalize(); got != unit {
		t.Errorf("Normalize of unit vector = %v, want %v", got, unit)
	}

	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("Normalize of zero vector = %v, want zero", got)
	}
}

func TestRotateAroundAxisIdentity(t *testing.T) {
	v := Vec3{0.3, -2, 5}
	axis := Vec3{1, 1, 0}
	got := RotateAroundAxis(v, axis, 0)
	if got != v {
		t.Errorf("RotateAroundAxis(v, axis, 0) = %v, want %v", got, v)
	}
}

func TestRotateAroundAxisHalfTurn(t *testing.T) {
	tests := []struct {
		v, axis Vec3
	}{
		{Vec3{1, 0, 0}, Vec3{0, 0, 1}},
		{Vec3{0, 2, 0}, Vec3{1, 0, 0}},
		{Vec3{1, -1, 0}, Vec3{0, 0, -3}},
	}
	for _, tt := range tests {
		got := RotateAroundAxis(tt.v, tt.axis, math.Pi)
		want := tt.v.Neg()
		if !vecNear(got, want, 1e-5) {
			t.Errorf("RotateAroundAxis(%v, %v, pi) = %v, want %v", tt.v, tt.axis, got, want)
		}
	}
}

func TestRotateAroundAxisMatchesGonum(t *testing.T) {
	v := Vec3{1, 2, 3}
	axis := Vec3{0.2, -0.7, 0.4}
	for _, angle := range []float32{0.1, 0.75, 2.5, -1.2} {
		got := RotateAroundAxis(v, axis, angle)
		rot := r3.NewRotation(float64(angle), r3.Unit(toR3(axis)))
		want := fromR3(rot.Rotate(toR3(v)))
		if !vecNear(got, want, 1e-4) {
			t.Errorf("angle %v: got %v, want %v", angle, got, want)
		}
	}
}

func TestForwardFromYawPitch(t *testing.T) {
	tests := []struct {
		yaw, pitch float32
		want       Vec3
	}{
		{0, 0, Vec3{0, 0, -1}},
		{math.Pi / 2, 0, Vec3{1, 0, 0}},
		{0, math.Pi / 2, Vec3{0, 1, 0}},
	}
	for _, tt := range tests {
		got := ForwardFromYawPitch(tt.yaw, tt.pitch)
		if !vecNear(got, tt.want, 1e-6) {
			t.Errorf("ForwardFromYawPitch(%v, %v) = %v, want %v", tt.yaw, tt.pitch, got, tt.want)
		}
	}
}

func TestBasisFromDirection(t *testing.T) {
	tests := []struct {
		name      string
		dir       Vec3
		wantRight Vec3
		wantFwd   Vec3
	}{
		{"level", Vec3{0, 0, -5}, Vec3{-1, 0, 0}, Vec3{0, 0, -1}},
		{"straight up", Vec3{0, 9, 0}, Vec3{1, 0, 0}, Vec3{0, 1, 0}},
		{"straight down", Vec3{0, -3, 0}, Vec3{1, 0, 0}, Vec3{0, -1, 0}},
		{"zero", Vec3{}, Vec3{1, 0, 0}, Vec3{0, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			right, up, fwd := BasisFromDirection(tt.dir)
			if !vecNear(right, tt.wantRight, 1e-6) {
				t.Errorf("right = %v, want %v", right, tt.wantRight)
			}
			if !vecNear(fwd, tt.wantFwd, 1e-6) {
				t.Errorf("forward = %v, want %v", fwd, tt.wantFwd)
			}
			if abs(right.Dot(up)) > 1e-5 || abs(up.Dot(fwd)) > 1e-5 || abs(right.Dot(fwd)) > 1e-5 {
				t.Errorf("basis not orthogonal: %v %v %v", right, up, fwd)
			}
			if l := up.Length(); abs(l-1) > 1e-5 {
				t.Errorf("up length = %v, want 1", l)
			}
		})
	}
}
