package rig

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// goalState holds the animated and IK-overridden transform of one goal.
type goalState struct {
	animated       Transform
	ik             Transform
	positionWeight float64
	rotationWeight float64
}

// SimHost is an in-memory skeletal-pose host.
//
// Drivers set the animated pose each frame (SetRoot, SetBone, SetAnimatedGoal,
// SetAnimatedBody), call BeginFrame, then let the solver run. IK reads return
// the animated goal until something writes to it, like an animation system
// evaluating a fresh base pose every frame.
type SimHost struct {
	mu sync.RWMutex

	root     Transform
	body     mgl64.Vec3
	animBody mgl64.Vec3
	bones    map[Bone]Transform
	goals    [2]goalState
}

// NewSimHost creates a host with the root at the given transform and both feet
// directly below it.
func NewSimHost(root Transform) *SimHost {
	h := &SimHost{
		root:  root,
		bones: make(map[Bone]Transform),
	}
	for _, side := range Sides {
		h.bones[side.Bone()] = Transform{Position: root.Position, Rotation: root.Rotation}
		h.goals[side.Goal()].animated = Transform{Position: root.Position, Rotation: root.Rotation}
		h.goals[side.Goal()].ik = h.goals[side.Goal()].animated
	}
	h.body = root.Position
	h.animBody = root.Position
	return h
}

// SetRoot moves the character root.
func (h *SimHost) SetRoot(t Transform) {
	h.mu.Lock()
	h.root = t
	h.mu.Unlock()
}

// Root returns the character root transform.
func (h *SimHost) Root() Transform {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.root
}

// SetBone sets the animated world transform of a bone.
func (h *SimHost) SetBone(b Bone, t Transform) {
	h.mu.Lock()
	h.bones[b] = t
	h.mu.Unlock()
}

// SetAnimatedGoal sets the animated transform of an IK goal.
func (h *SimHost) SetAnimatedGoal(g Goal, t Transform) {
	h.mu.Lock()
	h.goals[g].animated = t
	h.mu.Unlock()
}

// SetAnimatedBody sets the animated body position.
func (h *SimHost) SetAnimatedBody(p mgl64.Vec3) {
	h.mu.Lock()
	h.animBody = p
	h.mu.Unlock()
}

// BeginFrame discards last frame's IK writes and restores the animated pose.
func (h *SimHost) BeginFrame() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.goals {
		h.goals[i].ik = h.goals[i].animated
		h.goals[i].positionWeight = 0
		h.goals[i].rotationWeight = 0
	}
	h.body = h.animBody
}

// BonePosition implements BoneReader.
func (h *SimHost) BonePosition(b Bone) mgl64.Vec3 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.bones[b].Position
}

// BoneRotation implements BoneReader. Unknown bones report identity.
func (h *SimHost) BoneRotation(b Bone) mgl64.Quat {
	h.mu.RLock()
	defer h.mu.RUnlock()
	t, ok := h.bones[b]
	if !ok {
		return mgl64.QuatIdent()
	}
	return t.Rotation
}

// IKPosition implements IKReader.
func (h *SimHost) IKPosition(g Goal) mgl64.Vec3 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.goals[g].ik.Position
}

// IKRotation implements IKReader.
func (h *SimHost) IKRotation(g Goal) mgl64.Quat {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.goals[g].ik.Rotation
}

// SetIKPosition implements IKWriter.
func (h *SimHost) SetIKPosition(g Goal, p mgl64.Vec3) {
	h.mu.Lock()
	h.goals[g].ik.Position = p
	h.mu.Unlock()
}

// SetIKPositionWeight implements IKWriter.
func (h *SimHost) SetIKPositionWeight(g Goal, w float64) {
	h.mu.Lock()
	h.goals[g].positionWeight = w
	h.mu.Unlock()
}

// SetIKRotation implements IKWriter.
func (h *SimHost) SetIKRotation(g Goal, q mgl64.Quat) {
	h.mu.Lock()
	h.goals[g].ik.Rotation = q
	h.mu.Unlock()
}

// SetIKRotationWeight implements IKWriter.
func (h *SimHost) SetIKRotationWeight(g Goal, w float64) {
	h.mu.Lock()
	h.goals[g].rotationWeight = w
	h.mu.Unlock()
}

// Weights returns the position and rotation weights last written for a goal.
func (h *SimHost) Weights(g Goal) (position, rotation float64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.goals[g].positionWeight, h.goals[g].rotationWeight
}

// ResolvedGoal returns the goal transform after blending the IK override into
// the animated pose by the written weights.
func (h *SimHost) ResolvedGoal(g Goal) Transform {
	h.mu.RLock()
	defer h.mu.RUnlock()
	gs := h.goals[g]
	pos := gs.animated.Position.Add(gs.ik.Position.Sub(gs.animated.Position).Mul(gs.positionWeight))
	rot := mgl64.QuatSlerp(gs.animated.Rotation, gs.ik.Rotation, gs.rotationWeight)
	return Transform{Position: pos, Rotation: rot}
}

// BodyPosition implements BodyController.
func (h *SimHost) BodyPosition() mgl64.Vec3 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.body
}

// SetBodyPosition implements BodyController.
func (h *SimHost) SetBodyPosition(p mgl64.Vec3) {
	h.mu.Lock()
	h.body = p
	h.mu.Unlock()
}

// RootPosition implements RootReader.
func (h *SimHost) RootPosition() mgl64.Vec3 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.root.Position
}

// RootForward implements RootReader.
func (h *SimHost) RootForward() mgl64.Vec3 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.root.Rotation.Rotate(mgl64.Vec3{0, 0, 1})
}
