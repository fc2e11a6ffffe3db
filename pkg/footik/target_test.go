package footik

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-footik/pkg/geom"
	"github.com/teslashibe/go-footik/pkg/rig"
)

func TestRotationBlendFactor(t *testing.T) {
	tests := []struct {
		angle, max, want float64
	}{
		{0, 45, 0},
		{1, 45, 0.5},
		{30, 45, 30.0 / 31.0},
		{45, 45, 45.0 / 46.0},
		{90, 45, 45.0 / 91.0},
		{30, 0, 0},
	}

	for _, tt := range tests {
		got := RotationBlendFactor(tt.angle, tt.max)
		if !floatEquals(got, tt.want) {
			t.Errorf("RotationBlendFactor(%v, %v) = %v, want %v", tt.angle, tt.max, got, tt.want)
		}
	}
}

func TestRotationBlendFactor_Bounds(t *testing.T) {
	for _, max := range []float64{0, 10, 45, 90, 180} {
		prev := -1.0
		for angle := 0.0; angle <= 180; angle += 0.25 {
			f := RotationBlendFactor(angle, max)
			if f < 0 || f >= 1 {
				t.Fatalf("factor(%v, %v) = %v outside [0, 1)", angle, max, f)
			}
			if tilt := angle * f; tilt > max {
				t.Fatalf("tilt %v exceeds max %v at angle %v", tilt, max, angle)
			}
			if angle <= max && f < prev {
				t.Fatalf("factor decreased below max: %v after %v at angle %v", f, prev, angle)
			}
			prev = f
		}
	}
}

func TestTargetUp_Slope(t *testing.T) {
	r := geom.Radians(30)
	normal := mgl64.Vec3{-math.Sin(r), math.Cos(r), 0}

	up := TargetUp(rig.Hit{OK: true, Normal: normal}, 45)

	got := geom.Angle(geom.Up, up)
	want := 30 * 30.0 / 31.0
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("tilt = %v, want %v", got, want)
	}
	if got >= 30 {
		t.Error("foot should stop short of the slope normal")
	}
	if !floatEquals(up.Len(), 1) {
		t.Errorf("target up length = %v, want 1", up.Len())
	}
	// Rotates toward the normal, not away from it
	if up.X() >= 0 {
		t.Errorf("target up %v should lean toward %v", up, normal)
	}
}

func TestTargetUp_Airborne(t *testing.T) {
	up := TargetUp(rig.Hit{OK: false, Normal: mgl64.Vec3{1, 0, 0}}, 45)
	if up != geom.Up {
		t.Errorf("airborne target up = %v, want world up", up)
	}
}

func TestTargetHeight(t *testing.T) {
	if got := TargetHeight(0.3, 0.05, 0.1); !floatEquals(got, 0.45) {
		t.Errorf("TargetHeight = %v, want 0.45", got)
	}
}
