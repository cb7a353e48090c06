// Package motion generates 15-joint poses as pure functions of time.
//
// Two generator families are provided:
//   - Procedural: a Driver (oscillator set or phase table) produces
//     articulation angles from a global phase; forward kinematics places
//     the joints and an optional ground plane is enforced with two-bone IK.
//   - Keyframed: a track of full poses is interpolated with an easing
//     function, optionally moved by a rigid motion.
//
// Generators are immutable after construction and safe for concurrent use.
package motion

import (
	"errors"

	"github.com/teslashibe/go-pointlight/pkg/skeleton"
)

// Sentinel errors for generator construction.
var (
	// ErrInsufficientKeyframes is returned when a track has fewer than two keyframes.
	ErrInsufficientKeyframes = errors.New("motion: at least two keyframes required")

	// ErrKeyframeOrder is returned when keyframe times are not strictly increasing.
	ErrKeyframeOrder = errors.New("motion: keyframe times must be strictly increasing")

	// ErrInvalidPeriod is returned for a non-positive or non-finite cycle period.
	ErrInvalidPeriod = errors.New("motion: period must be positive")

	// ErrInvalidPhaseTable is returned for malformed phase boundaries.
	ErrInvalidPhaseTable = errors.New("motion: invalid phase table")

	// ErrInvalidOscillator is returned for oscillators that would not loop.
	ErrInvalidOscillator = errors.New("motion: invalid oscillator")

	// ErrNoSkeleton is returned when a generator is built without a skeleton.
	ErrNoSkeleton = errors.New("motion: skeleton required")

	// ErrNoDriver is returned when a procedural generator has no driver.
	ErrNoDriver = errors.New("motion: driver required")
)

// Generator produces the pose at time t in seconds.
type Generator interface {
	// PoseAt returns all 15 joints at time t. Every call returns a fresh value.
	PoseAt(t float64) skeleton.Pose

	// Period returns the cycle length of a looping generator, or the time
	// span of a keyframe track.
	Period() float64

	// Skeleton returns the generator's skeleton.
	Skeleton() *skeleton.Skeleton
}
