package footik

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-footik/pkg/geom"
	"github.com/teslashibe/go-footik/pkg/rig"
)

// reference is a frame parented to a foot bone. It was created with world
// identity rotation, so its world rotation is the bone's rotation since bind.
type reference struct {
	local mgl64.Quat
}

// OrientationTracker measures how far the animation has rotated each foot
// away from its bind pose, independent of how the rig authored the bone axes.
type OrientationTracker struct {
	bones          rig.BoneReader
	initialForward mgl64.Vec3
	refs           [2]*reference
}

// NewOrientationTracker creates a tracker. initialForward is the character's
// forward direction at bind time. References are created lazily on first use
// or eagerly by Bind.
func NewOrientationTracker(bones rig.BoneReader, initialForward mgl64.Vec3) *OrientationTracker {
	if initialForward.Len() < 1e-9 {
		initialForward = geom.Forward
	}
	return &OrientationTracker{
		bones:          bones,
		initialForward: initialForward.Normalize(),
	}
}

// Bind tears down any existing references and captures both feet at their
// current pose. Calling it repeatedly is safe.
func (t *OrientationTracker) Bind() {
	for _, side := range rig.Sides {
		t.Release(side)
		t.create(side)
	}
}

// Release destroys the reference for one foot. The next Forward call
// re-creates it from the bone's pose at that moment.
func (t *OrientationTracker) Release(side rig.Side) {
	t.refs[side] = nil
}

// Bound reports whether the foot currently has a reference.
func (t *OrientationTracker) Bound(side rig.Side) bool {
	return t.refs[side] != nil
}

func (t *OrientationTracker) create(side rig.Side) *reference {
	bind := t.bones.BoneRotation(side.Bone()).Normalize()
	ref := &reference{local: bind.Inverse()}
	t.refs[side] = ref
	return ref
}

// Rotation returns the foot's world rotation relative to its bind pose.
// Bone rotations are normalized first; hosts on the wire may send drifted
// quaternions.
func (t *OrientationTracker) Rotation(side rig.Side) mgl64.Quat {
	ref := t.refs[side]
	if ref == nil {
		ref = t.create(side)
	}
	return t.bones.BoneRotation(side.Bone()).Normalize().Mul(ref.local)
}

// Forward returns the initial forward vector carried along by the foot's
// rotation since bind.
func (t *OrientationTracker) Forward(side rig.Side) mgl64.Vec3 {
	return t.Rotation(side).Rotate(t.initialForward)
}

// InitialForward returns the bind-time forward direction.
func (t *OrientationTracker) InitialForward() mgl64.Vec3 {
	return t.initialForward
}
