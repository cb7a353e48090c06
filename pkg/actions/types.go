// Package actions provides the library of point-light actions.
//
// An action is a declarative definition (JSON or YAML) that compiles into a
// motion.Generator: an oscillator set, a phase table or a keyframe track on
// a possibly customised skeleton. Built-in actions are embedded; custom
// ones can be loaded from a directory.
package actions

import (
	"time"

	"github.com/teslashibe/go-pointlight/pkg/motion"
	"github.com/teslashibe/go-pointlight/pkg/skeleton"
)

// Mode selects which generator a definition compiles to.
type Mode string

const (
	ModeOscillator Mode = "oscillator"
	ModePhases     Mode = "phases"
	ModeKeyframe   Mode = "keyframe"
)

// Definition is the on-disk form of an action.
type Definition struct {
	Description string `json:"description" yaml:"description"`

	// Category groups actions for browsing. Empty means the name up to the
	// first underscore.
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	Mode Mode `json:"mode" yaml:"mode"`

	Skeleton *SkeletonDef `json:"skeleton,omitempty" yaml:"skeleton,omitempty"`
	Cycle    CycleDef     `json:"cycle" yaml:"cycle"`

	// Oscillators drives ModeOscillator. With ModePhases it is layered on
	// top of the phase table.
	Oscillators *OscillatorDef `json:"oscillators,omitempty" yaml:"oscillators,omitempty"`

	Phases    []PhaseDef   `json:"phases,omitempty" yaml:"phases,omitempty"`
	Keyframes *KeyframeDef `json:"keyframes,omitempty" yaml:"keyframes,omitempty"`
}

// SkeletonDef customises the default skeleton.
type SkeletonDef struct {
	// Scale multiplies every bone length. Zero means 1.
	Scale float64 `json:"scale,omitempty" yaml:"scale,omitempty"`

	// Bones overrides individual bones by joint name.
	Bones map[string]BoneDef `json:"bones,omitempty" yaml:"bones,omitempty"`
}

// BoneDef overrides the length and/or rest angle of one bone.
type BoneDef struct {
	Length *float64 `json:"length,omitempty" yaml:"length,omitempty"`
	Rest   *float64 `json:"rest,omitempty" yaml:"rest,omitempty"`
}

// CycleDef sets the time base and root trajectory.
type CycleDef struct {
	// Period in seconds for looping modes. Zero means 1.
	Period float64 `json:"period,omitempty" yaml:"period,omitempty"`

	// Speed is the forward root velocity in units per second.
	Speed float64 `json:"speed,omitempty" yaml:"speed,omitempty"`

	// Height is the root height at rest. Nil puts the feet on y = 0.
	Height *float64 `json:"height,omitempty" yaml:"height,omitempty"`

	// Ground is the floor height enforced in looping modes. Nil means 0.
	Ground *float64 `json:"ground,omitempty" yaml:"ground,omitempty"`

	// Floating disables the floor.
	Floating bool `json:"floating,omitempty" yaml:"floating,omitempty"`

	// KneeBend is "forward" (default) or "backward".
	KneeBend string `json:"knee_bend,omitempty" yaml:"knee_bend,omitempty"`
}

// OscillatorDef mirrors motion.OscillatorSet with channel names as strings.
type OscillatorDef struct {
	TorsoLean motion.Oscillator `json:"torso_lean" yaml:"torso_lean"`
	HeadTilt  motion.Oscillator `json:"head_tilt" yaml:"head_tilt"`
	Shoulder  motion.Oscillator `json:"shoulder" yaml:"shoulder"`
	Elbow     motion.Oscillator `json:"elbow" yaml:"elbow"`
	Hip       motion.Oscillator `json:"hip" yaml:"hip"`
	Knee      motion.Oscillator `json:"knee" yaml:"knee"`

	// SideOffset is the right-side phase lag. Nil means π.
	SideOffset *float64 `json:"side_offset,omitempty" yaml:"side_offset,omitempty"`

	Overrides map[string]motion.Oscillator `json:"overrides,omitempty" yaml:"overrides,omitempty"`

	SwayX    motion.Oscillator `json:"sway_x" yaml:"sway_x"`
	BounceY  motion.Oscillator `json:"bounce_y" yaml:"bounce_y"`
	Rotation motion.Oscillator `json:"rotation" yaml:"rotation"`
}

// PostureDef is a posture with channels addressed by name. Root is an
// offset from the standing origin.
type PostureDef struct {
	Angles   map[string]float64 `json:"angles,omitempty" yaml:"angles,omitempty"`
	Root     [2]float64         `json:"root,omitempty" yaml:"root,omitempty"`
	Rotation float64            `json:"rotation,omitempty" yaml:"rotation,omitempty"`
}

// PhaseDef is one phase of a phase table.
type PhaseDef struct {
	Name       string  `json:"name" yaml:"name"`
	End        float64 `json:"end" yaml:"end"`
	Ease       string  `json:"ease,omitempty" yaml:"ease,omitempty"`
	PostureDef `yaml:",inline"`
}

// KeyframeDef is a keyframe track with its interpolation settings.
type KeyframeDef struct {
	Space  string     `json:"space,omitempty" yaml:"space,omitempty"`
	Ease   string     `json:"ease,omitempty" yaml:"ease,omitempty"`
	Loop   bool       `json:"loop,omitempty" yaml:"loop,omitempty"`
	Motion *MotionDef `json:"motion,omitempty" yaml:"motion,omitempty"`
	Frames []FrameDef `json:"frames" yaml:"frames"`
}

// FrameDef is one keyframe, either explicit points or a posture placed by
// forward kinematics.
type FrameDef struct {
	Time float64 `json:"time" yaml:"time"`

	// Points, when present, are the 15 joint positions in joint order.
	Points [][2]float64 `json:"points,omitempty" yaml:"points,omitempty"`

	PostureDef `yaml:",inline"`

	// Reflect mirrors the frame about its root so the figure faces -x.
	Reflect bool `json:"reflect,omitempty" yaml:"reflect,omitempty"`
}

// MotionDef is a rigid motion applied to a keyframe track.
type MotionDef struct {
	// Type is "linear" or "rolling".
	Type            string     `json:"type" yaml:"type"`
	Velocity        [2]float64 `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	AngularVelocity float64    `json:"angular_velocity,omitempty" yaml:"angular_velocity,omitempty"`
	Radius          float64    `json:"radius,omitempty" yaml:"radius,omitempty"`

	// Start and End limit the motion to a time window.
	Start *float64 `json:"start,omitempty" yaml:"start,omitempty"`
	End   *float64 `json:"end,omitempty" yaml:"end,omitempty"`
}

// Action is a compiled, playable action.
type Action struct {
	// Name is the identifier (e.g. "walk", "walk_sad").
	Name string

	Description string
	Category    string
	Mode        Mode

	// Source is "embedded" or the file the action was loaded from.
	Source string

	// Generator produces the poses.
	Generator motion.Generator

	// Definition is the parsed definition the action was compiled from.
	Definition *Definition
}

// PoseAt returns the pose at t seconds.
func (a *Action) PoseAt(t float64) skeleton.Pose {
	return a.Generator.PoseAt(t)
}

// Duration is one cycle for looping actions and the track span otherwise.
func (a *Action) Duration() time.Duration {
	return time.Duration(a.Generator.Period() * float64(time.Second))
}

// Start is the first meaningful time: the first keyframe time, or 0.
func (a *Action) Start() float64 {
	if k, ok := a.Generator.(*motion.Keyframed); ok {
		return k.Start()
	}
	return 0
}

// Looping reports whether the action repeats on its own.
func (a *Action) Looping() bool {
	if a.Mode == ModeKeyframe {
		return a.Definition != nil && a.Definition.Keyframes != nil && a.Definition.Keyframes.Loop
	}
	return true
}

// Summary is the listing view of an action.
type Summary struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Mode        Mode    `json:"mode"`
	Period      float64 `json:"period"`
	Looping     bool    `json:"looping"`
	Source      string  `json:"source"`
}

// Summary returns the listing view of a.
func (a *Action) Summary() Summary {
	return Summary{
		Name:        a.Name,
		Description: a.Description,
		Category:    a.Category,
		Mode:        a.Mode,
		Period:      a.Generator.Period(),
		Looping:     a.Looping(),
		Source:      a.Source,
	}
}
