package rig

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestSide_Mapping(t *testing.T) {
	if Left.Bone() != BoneLeftFoot || Right.Bone() != BoneRightFoot {
		t.Error("Side.Bone mapping is wrong")
	}
	if Left.Goal() != GoalLeftFoot || Right.Goal() != GoalRightFoot {
		t.Error("Side.Goal mapping is wrong")
	}
	if Left.String() != "left" || Right.String() != "right" {
		t.Errorf("Side.String = %q/%q", Left.String(), Right.String())
	}
	if int(Left) != 0 || int(Right) != 1 {
		t.Error("Side values must index per-foot arrays")
	}
}

func TestLayerMask(t *testing.T) {
	m := LayerMaskOf(0, 3)
	if !m.Contains(0) || !m.Contains(3) {
		t.Errorf("mask %b should contain layers 0 and 3", m)
	}
	if m.Contains(1) {
		t.Errorf("mask %b should not contain layer 1", m)
	}
	if m.Contains(-1) || m.Contains(32) {
		t.Error("out-of-range layers must never match")
	}
	if !AllLayers.Contains(31) {
		t.Error("AllLayers should contain layer 31")
	}
	if DefaultLayerMask != LayerMaskOf(0) {
		t.Error("DefaultLayerMask should be layer 0")
	}
}

func TestSimHost_IKReadsAnimatedUntilWritten(t *testing.T) {
	h := NewSimHost(Identity())
	anim := Transform{Position: mgl64.Vec3{0.1, 0.2, 0.3}, Rotation: mgl64.QuatIdent()}
	h.SetAnimatedGoal(GoalLeftFoot, anim)
	h.BeginFrame()

	if got := h.IKPosition(GoalLeftFoot); got != anim.Position {
		t.Errorf("IKPosition = %v, want animated %v", got, anim.Position)
	}

	h.SetIKPosition(GoalLeftFoot, mgl64.Vec3{0.1, 0.5, 0.3})
	if got := h.IKPosition(GoalLeftFoot); !floatEquals(got.Y(), 0.5) {
		t.Errorf("IKPosition after write = %v, want y=0.5", got)
	}

	// Next frame restores the animated pose
	h.BeginFrame()
	if got := h.IKPosition(GoalLeftFoot); got != anim.Position {
		t.Errorf("IKPosition after BeginFrame = %v, want %v", got, anim.Position)
	}
	if pw, rw := h.Weights(GoalLeftFoot); pw != 0 || rw != 0 {
		t.Errorf("weights after BeginFrame = %v/%v, want 0/0", pw, rw)
	}
}

func TestSimHost_ResolvedGoalBlendsByWeight(t *testing.T) {
	h := NewSimHost(Identity())
	h.SetAnimatedGoal(GoalRightFoot, Transform{Position: mgl64.Vec3{0, 0, 0}, Rotation: mgl64.QuatIdent()})
	h.BeginFrame()

	h.SetIKPosition(GoalRightFoot, mgl64.Vec3{0, 1, 0})
	h.SetIKPositionWeight(GoalRightFoot, 0.25)

	got := h.ResolvedGoal(GoalRightFoot)
	if !floatEquals(got.Position.Y(), 0.25) {
		t.Errorf("resolved y = %v, want 0.25", got.Position.Y())
	}
}

func TestSimHost_Body(t *testing.T) {
	h := NewSimHost(Transform{Position: mgl64.Vec3{0, 1, 0}, Rotation: mgl64.QuatIdent()})
	h.SetAnimatedBody(mgl64.Vec3{0, 1.9, 0})
	h.BeginFrame()

	if got := h.BodyPosition(); !floatEquals(got.Y(), 1.9) {
		t.Errorf("BodyPosition = %v, want y=1.9", got)
	}

	h.SetBodyPosition(mgl64.Vec3{0, 1.7, 0})
	if got := h.BodyPosition(); !floatEquals(got.Y(), 1.7) {
		t.Errorf("BodyPosition after write = %v, want y=1.7", got)
	}
}

func TestSimHost_RootForward(t *testing.T) {
	yaw := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	h := NewSimHost(Transform{Rotation: yaw})

	got := h.RootForward()
	want := mgl64.Vec3{1, 0, 0}
	if !got.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("RootForward = %v, want %v", got, want)
	}
}

func TestSimHost_UnknownBoneRotationIsIdentity(t *testing.T) {
	h := NewSimHost(Identity())
	if q := h.BoneRotation("Hips"); !q.ApproxEqual(mgl64.QuatIdent()) {
		t.Errorf("BoneRotation(unknown) = %v, want identity", q)
	}
}

func TestClocks(t *testing.T) {
	if FixedClock(0.02).DeltaTime() != 0.02 {
		t.Error("FixedClock should report its value")
	}

	var c ManualClock
	if c.DeltaTime() != 0 {
		t.Error("zero ManualClock should report 0")
	}
	c.Set(1.0 / 60)
	if !floatEquals(c.DeltaTime(), 1.0/60) {
		t.Errorf("ManualClock = %v, want 1/60", c.DeltaTime())
	}
}
