package motion

import (
	"fmt"
	"math"

	"github.com/teslashibe/go-pointlight/pkg/kinematics"
	"github.com/teslashibe/go-pointlight/pkg/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

// Cycle configures the time base and root trajectory of a procedural
// generator.
type Cycle struct {
	// Period is the cycle length in seconds.
	Period float64

	// Speed is the forward (+x) root velocity in units per second.
	// Zero keeps the action in place, which makes the pose exactly periodic.
	Speed float64

	// Origin is the root position at t = 0 before driver offsets.
	Origin r2.Vec

	// Ground, when set, is the height below which no ankle may go. Legs
	// that cross it are re-solved with two-bone IK.
	Ground *float64

	// KneeBend picks the side knees fold toward when re-solved. The zero
	// value bends forward for a figure facing +x.
	KneeBend kinematics.Bend
}

// DefaultCycle returns a one-second, in-place cycle with the default
// skeleton's feet on y = 0.
func DefaultCycle() Cycle {
	ground := 0.0
	return Cycle{
		Period:   1.0,
		Origin:   r2.Vec{Y: StandingHeight(skeleton.Default())},
		Ground:   &ground,
		KneeBend: kinematics.BendCCW,
	}
}

// Procedural is the oscillator-mode generator: root trajectory plus driver
// angles, placed by forward kinematics.
type Procedural struct {
	skel   *skeleton.Skeleton
	driver Driver
	cycle  Cycle
}

// NewProcedural builds an oscillator-mode generator.
func NewProcedural(skel *skeleton.Skeleton, driver Driver, cycle Cycle) (*Procedural, error) {
	if skel == nil {
		return nil, ErrNoSkeleton
	}
	if driver == nil {
		return nil, ErrNoDriver
	}
	if !(cycle.Period > 0) || math.IsInf(cycle.Period, 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidPeriod, cycle.Period)
	}
	if v, ok := driver.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	if cycle.Ground != nil {
		g := *cycle.Ground
		cycle.Ground = &g
	}
	return &Procedural{skel: skel, driver: driver, cycle: cycle}, nil
}

// Skeleton implements Generator.
func (g *Procedural) Skeleton() *skeleton.Skeleton {
	return g.skel
}

// Period implements Generator.
func (g *Procedural) Period() float64 {
	return g.cycle.Period
}

// Phase returns the global phase 2π·(t mod P)/P in [0, 2π).
func (g *Procedural) Phase(t float64) float64 {
	p := g.cycle.Period
	m := math.Mod(t, p)
	if m < 0 {
		m += p
	}
	return 2 * math.Pi * m / p
}

// Posture returns the driver output at time t.
func (g *Procedural) Posture(t float64) Posture {
	return g.driver.Posture(g.Phase(t))
}

// Angles returns the articulation angles at time t.
func (g *Procedural) Angles(t float64) Angles {
	return g.Posture(t).Angles
}

// PhaseName returns the active phase name when the driver is a phase
// table, and "" otherwise.
func (g *Procedural) PhaseName(t float64) string {
	if n, ok := g.driver.(interface{ PhaseName(float64) string }); ok {
		return n.PhaseName(g.Phase(t))
	}
	return ""
}

// Root returns the root position at time t.
func (g *Procedural) Root(t float64) r2.Vec {
	p := g.Posture(t)
	return g.root(t, p)
}

func (g *Procedural) root(t float64, p Posture) r2.Vec {
	base := r2.Add(g.cycle.Origin, r2.Vec{X: g.cycle.Speed * t})
	return r2.Add(base, p.Root)
}

// Place puts a posture on the skeleton: the root lands at origin plus the
// posture's root offset and each channel angle drives its segment.
func Place(s *skeleton.Skeleton, origin r2.Vec, p Posture) skeleton.Pose {
	var drive [skeleton.NumJoints]float64
	for ch, a := range p.Angles {
		drive[Channel(ch).Segment()] = a
	}
	return Forward(s, r2.Add(origin, p.Root), p.Rotation, drive)
}

// PoseAt implements Generator.
func (g *Procedural) PoseAt(t float64) skeleton.Pose {
	p := g.Posture(t)
	pose := Place(g.skel, r2.Add(g.cycle.Origin, r2.Vec{X: g.cycle.Speed * t}), p)

	if g.cycle.Ground != nil {
		g.plant(&pose, *g.cycle.Ground)
	}
	return pose
}

// plant lifts any ankle below the ground onto it and re-derives the knee.
func (g *Procedural) plant(pose *skeleton.Pose, ground float64) {
	legs := [][3]skeleton.JointID{
		{skeleton.LeftHip, skeleton.LeftKnee, skeleton.LeftAnkle},
		{skeleton.RightHip, skeleton.RightKnee, skeleton.RightAnkle},
	}
	for _, leg := range legs {
		hip, knee, ankle := leg[0], leg[1], leg[2]
		if pose[ankle].Y >= ground {
			continue
		}
		thigh, _ := g.skel.SegmentLength(knee)
		shank, _ := g.skel.SegmentLength(ankle)
		target := r2.Vec{X: pose[ankle].X, Y: ground}
		sol := kinematics.SolveTwoBone(pose[hip], target, thigh, shank, g.cycle.KneeBend)
		pose[knee] = sol.Mid
		pose[ankle] = sol.End
	}
}

// Forward places every joint from the root position, a whole-body rotation
// and per-segment drive angles (indexed by the segment's child joint).
// Each segment's absolute angle is its parent's absolute angle plus the
// bone's rest angle plus its drive angle.
func Forward(s *skeleton.Skeleton, root r2.Vec, rotation float64, drive [skeleton.NumJoints]float64) skeleton.Pose {
	var pose skeleton.Pose
	var abs [skeleton.NumJoints]float64

	pose[skeleton.Root] = root
	abs[skeleton.Root] = math.Pi/2 + rotation
	for _, id := range s.Order() {
		parent, ok := s.ParentOf(id)
		if !ok {
			continue
		}
		length, _ := s.SegmentLength(id)
		abs[id] = abs[parent] + s.Rest(id) + drive[id]
		pose[id] = kinematics.Extend(pose[parent], length, abs[id])
	}
	return pose
}

// StandingHeight returns the root height that puts the lowest ankle of
// the rest pose on y = 0.
func StandingHeight(s *skeleton.Skeleton) float64 {
	var drive [skeleton.NumJoints]float64
	pose := Forward(s, r2.Vec{}, 0, drive)
	return -math.Min(pose[skeleton.LeftAnkle].Y, pose[skeleton.RightAnkle].Y)
}
