package ebitenview

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/arbor"
)

// orbitAnim holds the active tweens of an Orbit. A nil tween is idle.
type orbitAnim struct {
	yaw, pitch, distance *gween.Tween
}

// Orbit drives a camera node around a target point. Yaw turns about the
// world Y axis, Pitch raises the camera above the target's XZ plane, and
// Distance is the radius. Angles are in degrees.
//
// Orbit writes the camera's local translation and orientation, so the
// camera's parent should be the world or a group without rotation.
type Orbit struct {
	Camera   *arbor.Node
	Target   mgl32.Vec3
	Yaw      float32
	Pitch    float32
	Distance float32

	// MinDistance and MaxDistance clamp Distance; zero disables the bound.
	MinDistance float32
	MaxDistance float32

	anim orbitAnim
}

// maxPitch keeps the camera off the poles, where yaw is undefined.
const maxPitch = 89

// NewOrbit returns an Orbit for cam at the given distance from the origin
// and applies its pose.
func NewOrbit(cam *arbor.Node, distance float32) *Orbit {
	o := &Orbit{Camera: cam, Distance: distance}
	o.Apply()
	return o
}

// RotateTo animates yaw and pitch to the given angles over duration seconds.
func (o *Orbit) RotateTo(yaw, pitch float32, duration float32, fn ease.TweenFunc) {
	o.anim.yaw = gween.New(o.Yaw, yaw, duration, fn)
	o.anim.pitch = gween.New(o.Pitch, clampPitch(pitch), duration, fn)
}

// ZoomTo animates the distance over duration seconds.
func (o *Orbit) ZoomTo(distance float32, duration float32, fn ease.TweenFunc) {
	o.anim.distance = gween.New(o.Distance, o.clampDistance(distance), duration, fn)
}

// Animating reports whether a RotateTo or ZoomTo is still running.
func (o *Orbit) Animating() bool {
	return o.anim.yaw != nil || o.anim.pitch != nil || o.anim.distance != nil
}

// Update advances the running tweens by dt seconds and applies the pose.
func (o *Orbit) Update(dt float32) {
	step := func(tw **gween.Tween, field *float32) {
		if *tw == nil {
			return
		}
		val, done := (*tw).Update(dt)
		*field = val
		if done {
			*tw = nil
		}
	}
	step(&o.anim.yaw, &o.Yaw)
	step(&o.anim.pitch, &o.Pitch)
	step(&o.anim.distance, &o.Distance)
	o.Apply()
}

// Apply clamps the orbit parameters and writes the pose to the camera.
func (o *Orbit) Apply() {
	o.Pitch = clampPitch(o.Pitch)
	o.Distance = o.clampDistance(o.Distance)
	pos, q := orbitPose(o.Target, o.Yaw, o.Pitch, o.Distance)
	o.Camera.SetTranslation(pos[0], pos[1], pos[2])
	o.Camera.SetOrientationQuat(q)
}

func (o *Orbit) clampDistance(d float32) float32 {
	if o.MinDistance > 0 && d < o.MinDistance {
		d = o.MinDistance
	}
	if o.MaxDistance > 0 && d > o.MaxDistance {
		d = o.MaxDistance
	}
	return d
}

func clampPitch(p float32) float32 {
	return math32.Max(-maxPitch, math32.Min(maxPitch, p))
}

// orbitPose returns the camera position and orientation for an orbit. The
// camera looks down its local -Z axis, so the orientation turns -Z toward
// the target.
func orbitPose(target mgl32.Vec3, yawDeg, pitchDeg, distance float32) (mgl32.Vec3, mgl32.Quat) {
	yaw, pitch := mgl32.DegToRad(yawDeg), mgl32.DegToRad(pitchDeg)
	cp := math32.Cos(pitch)
	offset := mgl32.Vec3{
		distance * cp * math32.Sin(yaw),
		distance * math32.Sin(pitch),
		distance * cp * math32.Cos(yaw),
	}
	q := mgl32.QuatRotate(yaw, mgl32.Vec3{0, 1, 0}).Mul(mgl32.QuatRotate(-pitch, mgl32.Vec3{1, 0, 0}))
	return target.Add(offset), q
}
