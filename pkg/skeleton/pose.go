package skeleton

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Pose holds the absolute position of all 15 joints at one instant,
// indexed by JointID. It is a value type: copies never alias.
type Pose [NumJoints]r2.Vec

// At returns the position of id.
func (p Pose) At(id JointID) r2.Vec {
	return p[id]
}

// Points returns the positions in documented joint order.
func (p Pose) Points() []r2.Vec {
	out := make([]r2.Vec, NumJoints)
	copy(out, p[:])
	return out
}

// Distance returns the Euclidean distance between two joints.
func (p Pose) Distance(a, b JointID) float64 {
	return r2.Norm(r2.Sub(p[a], p[b]))
}

// Translate returns p shifted by d.
func (p Pose) Translate(d r2.Vec) Pose {
	for i := range p {
		p[i] = r2.Add(p[i], d)
	}
	return p
}

// Rotate returns p rotated by angle around pivot.
func (p Pose) Rotate(angle float64, pivot r2.Vec) Pose {
	if angle == 0 {
		return p
	}
	rot := r2.NewRotation(angle, pivot)
	for i := range p {
		p[i] = rot.Rotate(p[i])
	}
	return p
}

// Transform rotates p around its root by angle, then translates by d.
func (p Pose) Transform(angle float64, d r2.Vec) Pose {
	return p.Rotate(angle, p[Root]).Translate(d)
}

// Reflect mirrors p across the vertical line through x, which turns a
// profile figure to face the other way.
func (p Pose) Reflect(x float64) Pose {
	for i := range p {
		p[i].X = 2*x - p[i].X
	}
	return p
}

// Centroid returns the mean of all joint positions.
func (p Pose) Centroid() r2.Vec {
	var c r2.Vec
	for _, v := range p {
		c = r2.Add(c, v)
	}
	return r2.Scale(1.0/NumJoints, c)
}

// Bounds returns the axis-aligned bounding box of the pose.
func (p Pose) Bounds() (min, max r2.Vec) {
	min = r2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	max = r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, v := range p {
		min.X, min.Y = math.Min(min.X, v.X), math.Min(min.Y, v.Y)
		max.X, max.Y = math.Max(max.X, v.X), math.Max(max.Y, v.Y)
	}
	return min, max
}

// MaxDeviation returns the largest per-joint distance between p and q.
func (p Pose) MaxDeviation(q Pose) float64 {
	var d float64
	for i := range p {
		d = math.Max(d, r2.Norm(r2.Sub(p[i], q[i])))
	}
	return d
}

// MarshalJSON encodes the pose as 15 [x, y] pairs in joint order.
func (p Pose) MarshalJSON() ([]byte, error) {
	var pts [NumJoints][2]float64
	for i, v := range p {
		pts[i] = [2]float64{v.X, v.Y}
	}
	return json.Marshal(pts)
}

// UnmarshalJSON decodes exactly 15 [x, y] pairs.
func (p *Pose) UnmarshalJSON(b []byte) error {
	var pts [][2]float64
	if err := json.Unmarshal(b, &pts); err != nil {
		return err
	}
	if len(pts) != NumJoints {
		return fmt.Errorf("skeleton: pose has %d points, want %d", len(pts), NumJoints)
	}
	for i, xy := range pts {
		p[i] = r2.Vec{X: xy[0], Y: xy[1]}
	}
	return nil
}
