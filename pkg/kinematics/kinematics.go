// Package kinematics holds the planar forward-kinematics helpers and the
// two-segment inverse-kinematics solver shared by every limb.
package kinematics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Bend selects which side of the root→target line the middle joint lands on.
type Bend float64

const (
	// BendCCW places the middle joint counter-clockwise of the root→target
	// line. For a figure facing +x with the limb pointing down this is the
	// forward side (knees).
	BendCCW Bend = 1

	// BendCW places the middle joint clockwise of the line (elbows for a
	// figure facing +x).
	BendCW Bend = -1
)

// Flip returns the opposite bend.
func (b Bend) Flip() Bend {
	return -b
}

// sign returns ±1, treating zero as BendCCW.
func (b Bend) sign() float64 {
	if b < 0 {
		return -1
	}
	return 1
}

// Polar returns the vector of the given length at angle.
func Polar(length, angle float64) r2.Vec {
	return r2.Vec{X: length * math.Cos(angle), Y: length * math.Sin(angle)}
}

// Extend returns the point at length along angle from origin.
func Extend(origin r2.Vec, length, angle float64) r2.Vec {
	return r2.Add(origin, Polar(length, angle))
}

// Angle returns the absolute direction from a to b.
func Angle(a, b r2.Vec) float64 {
	d := r2.Sub(b, a)
	return math.Atan2(d.Y, d.X)
}

// WrapAngle maps a into [-π, π).
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// LerpAngle interpolates from a to b along the shorter arc.
func LerpAngle(a, b, u float64) float64 {
	return a + WrapAngle(b-a)*u
}

// Lerp interpolates between two points.
func Lerp(a, b r2.Vec, u float64) r2.Vec {
	return r2.Vec{X: a.X + (b.X-a.X)*u, Y: a.Y + (b.Y-a.Y)*u}
}

// TwoBone is the result of SolveTwoBone.
type TwoBone struct {
	Mid     r2.Vec // elbow or knee
	End     r2.Vec // wrist or ankle, on the segment from root toward target
	Clamped bool   // target was outside the reachable annulus
}

// SolveTwoBone places a two-segment chain rooted at root so that its end
// reaches target, using the law of cosines. Targets closer than |l1-l2| or
// farther than l1+l2 are pulled onto the nearest reachable distance along
// the same direction; the limb then comes out fully flexed or fully
// extended. The returned joints always satisfy |Mid-root| = l1 and
// |End-Mid| = l2.
func SolveTwoBone(root, target r2.Vec, l1, l2 float64, bend Bend) TwoBone {
	d := r2.Norm(r2.Sub(target, root))
	theta := math.Atan2(target.Y-root.Y, target.X-root.X)
	if d == 0 {
		// No direction to work with; hang the limb straight down.
		theta = -math.Pi / 2
	}

	lo, hi := math.Abs(l1-l2), l1+l2
	clamped := false
	switch {
	case d > hi:
		d, clamped = hi, true
	case d < lo:
		d, clamped = lo, true
	}

	s := bend.sign()
	if d == 0 {
		// l1 == l2 and fully folded: the end sits on the root.
		mid := Extend(root, l1, theta+s*math.Pi/2)
		return TwoBone{Mid: mid, End: root, Clamped: clamped}
	}

	var a, b float64
	switch {
	case clamped && d == hi:
		// Straight limb; acos near 1 is too imprecise here.
	case clamped && l1 > l2:
		b = math.Pi
	case clamped:
		a = math.Pi
	default:
		a = math.Acos(clampUnit((l1*l1 + d*d - l2*l2) / (2 * l1 * d)))
		b = math.Acos(clampUnit((l2*l2 + d*d - l1*l1) / (2 * l2 * d)))
	}
	mid := Extend(root, l1, theta+s*a)
	end := Extend(mid, l2, theta-s*b)
	return TwoBone{Mid: mid, End: end, Clamped: clamped}
}

// InteriorAngle returns the angle at the middle joint of a two-bone chain,
// π for a straight limb.
func InteriorAngle(root, mid, end r2.Vec) float64 {
	u := r2.Sub(root, mid)
	v := r2.Sub(end, mid)
	nu, nv := r2.Norm(u), r2.Norm(v)
	if nu == 0 || nv == 0 {
		return 0
	}
	return math.Acos(clampUnit(r2.Dot(u, v) / (nu * nv)))
}

func clampUnit(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
