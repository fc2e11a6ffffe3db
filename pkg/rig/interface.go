// Package rig defines the services a foot solver consumes from its host:
// the skeletal-pose host, the physics query service and the frame clock.
//
// Interfaces are kept small so consumers depend only on what they use.
// PoseHost composes them for the solver, which needs all of them.
package rig

import "github.com/go-gl/mathgl/mgl64"

// BoneReader exposes animated bone transforms in world space.
type BoneReader interface {
	BonePosition(b Bone) mgl64.Vec3
	BoneRotation(b Bone) mgl64.Quat
}

// IKReader exposes the current IK goal transforms.
// Before any write in a frame these are the animated goal transforms.
type IKReader interface {
	IKPosition(g Goal) mgl64.Vec3
	IKRotation(g Goal) mgl64.Quat
}

// IKWriter accepts IK goal transforms and their blend weights.
type IKWriter interface {
	SetIKPosition(g Goal, p mgl64.Vec3)
	SetIKPositionWeight(g Goal, w float64)
	SetIKRotation(g Goal, q mgl64.Quat)
	SetIKRotationWeight(g Goal, w float64)
}

// BodyController exposes the body (hips) position.
type BodyController interface {
	BodyPosition() mgl64.Vec3
	SetBodyPosition(p mgl64.Vec3)
}

// RootReader exposes the character root transform.
type RootReader interface {
	RootPosition() mgl64.Vec3
	RootForward() mgl64.Vec3
}

// PoseHost is the composite skeletal-pose host the solver reads and writes.
type PoseHost interface {
	BoneReader
	IKReader
	IKWriter
	BodyController
	RootReader
}

// GroundQuery is the physics query service.
type GroundQuery interface {
	// SphereCast sweeps a sphere from origin along direction for up to
	// maxDistance and reports the first surface touched.
	SphereCast(origin mgl64.Vec3, radius float64, direction mgl64.Vec3, maxDistance float64, mask LayerMask, triggers TriggerInteraction) Hit
}

// Clock reports the time elapsed since the previous frame.
type Clock interface {
	DeltaTime() float64
}

// Ensure SimHost implements PoseHost
var _ PoseHost = (*SimHost)(nil)
