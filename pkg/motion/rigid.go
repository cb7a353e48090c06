package motion

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// RigidMotion is a global transform as a function of time: a rotation
// about the pose root followed by a translation. Rigid motions never
// change segment lengths.
type RigidMotion interface {
	At(t float64) (rotation float64, translation r2.Vec)
}

// LinearMotion translates and spins at constant rates.
type LinearMotion struct {
	Velocity        r2.Vec  // units per second
	AngularVelocity float64 // radians per second, counter-clockwise
}

// At implements RigidMotion.
func (m LinearMotion) At(t float64) (float64, r2.Vec) {
	return m.AngularVelocity * t, r2.Scale(t, m.Velocity)
}

// Rolling spins the figure and translates it as a wheel of the given
// radius rolling without slipping. Negative angular velocity (clockwise)
// rolls toward +x.
type Rolling struct {
	Radius          float64
	AngularVelocity float64
}

// At implements RigidMotion.
func (r Rolling) At(t float64) (float64, r2.Vec) {
	angle := r.AngularVelocity * t
	return angle, r2.Vec{X: -r.Radius * angle}
}

// MotionFunc adapts a function to RigidMotion.
type MotionFunc func(t float64) (float64, r2.Vec)

// At implements RigidMotion.
func (f MotionFunc) At(t float64) (float64, r2.Vec) {
	return f(t)
}

// Window limits m to [start, end]: before start the motion is at its
// t = 0 state, after end it holds the state reached at end - start.
func Window(m RigidMotion, start, end float64) RigidMotion {
	return MotionFunc(func(t float64) (float64, r2.Vec) {
		return m.At(math.Max(0, math.Min(t, end)-start))
	})
}
