package footik

import (
	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"
)

// criticalDamping makes the spring settle as fast as possible without overshoot.
const criticalDamping = 1.0

// spring builds a critically damped spring for one frame. The angular
// frequency 2/smoothTime settles in roughly smoothTime seconds.
func spring(dt, smoothTime float64) harmonica.Spring {
	if dt < 0 {
		dt = 0
	}
	return harmonica.NewSpring(dt, 2/smoothTime, criticalDamping)
}

// SmoothDamp advances current toward target by one frame of dt seconds.
// velocity is the accumulator carried between frames.
func SmoothDamp(current, target, velocity, smoothTime, dt float64) (float64, float64) {
	return spring(dt, smoothTime).Update(current, velocity, target)
}

// SmoothDampVec applies SmoothDamp to each component of a vector.
func SmoothDampVec(current, target, velocity mgl64.Vec3, smoothTime, dt float64) (mgl64.Vec3, mgl64.Vec3) {
	s := spring(dt, smoothTime)
	var pos, vel mgl64.Vec3
	for i := range pos {
		pos[i], vel[i] = s.Update(current[i], velocity[i], target[i])
	}
	return pos, vel
}

// SelectMode decides whether a foot tracks the ground or holds while the
// animation lifts it at least floorRange above its target.
func SelectMode(lifting bool, hostY, targetY, floorRange float64) Mode {
	if lifting && hostY >= targetY+floorRange {
		return Holding
	}
	return Tracking
}

// blendHeight runs one frame of height smoothing for a foot and returns the
// mode it used.
func blendHeight(f *FootState, cfg Config, hostY, dt float64) Mode {
	mode := SelectMode(cfg.EnableFootLifting, hostY, f.TargetY, cfg.FloorRange)

	goal := f.TargetY
	if mode == Holding {
		goal = hostY
	}
	f.BufferY, f.HeightVelocity = SmoothDamp(f.BufferY, goal, f.HeightVelocity, cfg.SmoothTime, dt)
	return mode
}

// blendRotation runs one frame of up-vector smoothing. Rotation never holds.
func blendRotation(f *FootState, cfg Config, dt float64) {
	f.BufferUp, f.UpVelocity = SmoothDampVec(f.BufferUp, f.TargetUp, f.UpVelocity, cfg.SmoothTime, dt)
}
