package math

import (
	"math"
	"testing"
)

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec2NormalizeZero(t *testing.T) {
	if got := (Vec2{}).Normalize(); got != (Vec2{}) {
		t.Errorf("Vec2{}.Normalize() = %v, want zero", got)
	}
	n := Vec2{3, 4}.Normalize()
	if l := n.Length(); l < 0.999 || l > 1.001 {
		t.Errorf("Vec2.Normalize().Length() = %v, want ~1", l)
	}
}

func TestVec2Clamp(t *testing.T) {
	got := Vec2{-5, 12}.Clamp(Vec2{0, 0}, Vec2{10, 10})
	want := Vec2{0, 10}
	if got != want {
		t.Errorf("Vec2.Clamp() = %v, want %v", got, want)
	}
}

func TestVec3XZRoundTrip(t *testing.T) {
	v := Vec3{1, 2, 3}
	if got := v.XZ(); got != (Vec2{1, 3}) {
		t.Errorf("Vec3.XZ() = %v, want {1 3}", got)
	}
	if got := v.WithXZ(Vec2{7, 9}); got != (Vec3{7, 2, 9}) {
		t.Errorf("Vec3.WithXZ() = %v, want {7 2 9}", got)
	}
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

func TestIsFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	if !(Vec3{1, 2, 3}).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if (Vec3{nan, 0, 0}).IsFinite() {
		t.Error("NaN X reported finite")
	}
	if (Vec3{0, 0, inf}).IsFinite() {
		t.Error("Inf Z reported finite")
	}
}

func TestClampf(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float32
	}{
		{-1, 0, 1, 0},
		{0.5, 0, 1, 0.5},
		{2, 0, 1, 1},
	}
	for _, tt := range tests {
		if got := Clampf(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clampf(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}
