package footik

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-footik/pkg/geom"
	"github.com/teslashibe/go-footik/pkg/rig"
)

// mockBones records how often each bone rotation is read.
type mockBones struct {
	rotations map[rig.Bone]mgl64.Quat
	reads     int
}

func newMockBones(q mgl64.Quat) *mockBones {
	return &mockBones{rotations: map[rig.Bone]mgl64.Quat{
		rig.BoneLeftFoot:  q,
		rig.BoneRightFoot: q,
	}}
}

func (m *mockBones) BonePosition(b rig.Bone) mgl64.Vec3 { return mgl64.Vec3{} }

func (m *mockBones) BoneRotation(b rig.Bone) mgl64.Quat {
	m.reads++
	return m.rotations[b]
}

func TestOrientationTracker_ForwardAtBind(t *testing.T) {
	// Rig-authored bone axes are arbitrary; they must not leak into forward
	authored := mgl64.QuatRotate(1.1, mgl64.Vec3{0.3, 0.8, 0.5}.Normalize())
	bones := newMockBones(authored)

	tr := NewOrientationTracker(bones, geom.Forward)
	tr.Bind()

	for _, side := range rig.Sides {
		if got := tr.Forward(side); !got.ApproxEqualThreshold(geom.Forward, 1e-9) {
			t.Errorf("%s forward at bind = %v, want %v", side, got, geom.Forward)
		}
	}
}

func TestOrientationTracker_FollowsPitch(t *testing.T) {
	authored := mgl64.QuatRotate(math.Pi/2, geom.Up)
	bones := newMockBones(authored)

	tr := NewOrientationTracker(bones, geom.Forward)
	tr.Bind()

	// Pitch the left foot 20 degrees toes-down in world space
	pitch := mgl64.QuatRotate(geom.Radians(20), geom.Right)
	bones.rotations[rig.BoneLeftFoot] = pitch.Mul(authored)

	fwd := tr.Forward(rig.Left)
	if got := PenetrationAngle(fwd); math.Abs(got-20) > 1e-6 {
		t.Errorf("penetration = %v, want 20", got)
	}
	if got := tr.Forward(rig.Right); !got.ApproxEqualThreshold(geom.Forward, 1e-9) {
		t.Errorf("right foot should be unaffected, got %v", got)
	}
}

func TestOrientationTracker_NormalizesBoneRotation(t *testing.T) {
	authored := mgl64.QuatRotate(geom.Radians(30), geom.Right)
	bones := newMockBones(authored)

	tr := NewOrientationTracker(bones, geom.Forward)
	tr.Bind()

	// Same pose, sent as a quaternion with length 2
	bones.rotations[rig.BoneLeftFoot] = authored.Scale(2)
	fwd := tr.Forward(rig.Left)
	if math.Abs(fwd.Len()-1) > 1e-9 {
		t.Errorf("forward length = %v, want 1", fwd.Len())
	}
	if !fwd.ApproxEqualThreshold(geom.Forward, 1e-9) {
		t.Errorf("forward = %v, want %v", fwd, geom.Forward)
	}
}

func TestOrientationTracker_RecreatesMissingReference(t *testing.T) {
	bones := newMockBones(mgl64.QuatIdent())
	tr := NewOrientationTracker(bones, geom.Forward)

	if tr.Bound(rig.Left) {
		t.Fatal("references should be lazy until bound or used")
	}

	// First use binds at the current pose
	bones.rotations[rig.BoneLeftFoot] = mgl64.QuatRotate(0.4, geom.Right)
	if got := tr.Forward(rig.Left); !got.ApproxEqualThreshold(geom.Forward, 1e-9) {
		t.Errorf("forward after lazy bind = %v, want %v", got, geom.Forward)
	}
	if !tr.Bound(rig.Left) {
		t.Error("Forward should have created the reference")
	}

	tr.Release(rig.Left)
	if tr.Bound(rig.Left) {
		t.Error("Release should drop the reference")
	}
	if got := tr.Forward(rig.Left); !got.ApproxEqualThreshold(geom.Forward, 1e-9) {
		t.Errorf("forward after re-create = %v, want %v", got, geom.Forward)
	}
}

func TestOrientationTracker_BindIsIdempotent(t *testing.T) {
	bones := newMockBones(mgl64.QuatRotate(0.7, geom.Up))
	tr := NewOrientationTracker(bones, geom.Forward)

	tr.Bind()
	first := tr.Rotation(rig.Right)
	tr.Bind()
	tr.Bind()
	if got := tr.Rotation(rig.Right); !got.ApproxEqualThreshold(first, 1e-9) {
		t.Errorf("rotation after rebinding = %v, want %v", got, first)
	}
}

func TestOrientationTracker_DegenerateForward(t *testing.T) {
	tr := NewOrientationTracker(newMockBones(mgl64.QuatIdent()), mgl64.Vec3{})
	if tr.InitialForward() != geom.Forward {
		t.Errorf("initial forward = %v, want %v", tr.InitialForward(), geom.Forward)
	}
}
