package motion

import (
	"fmt"
	"math"
	"sort"

	"github.com/teslashibe/go-pointlight/pkg/easing"
	"github.com/teslashibe/go-pointlight/pkg/kinematics"
	"github.com/teslashibe/go-pointlight/pkg/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

// Keyframe is a full pose at a point in time.
type Keyframe struct {
	Time float64       `json:"time" yaml:"time"`
	Pose skeleton.Pose `json:"pose" yaml:"-"`
}

// Track is an ordered list of keyframes.
type Track []Keyframe

// Space selects what is interpolated between keyframes.
type Space int

const (
	// Cartesian interpolates every joint's coordinates independently.
	// Segment lengths are exact only at the keyframes themselves.
	Cartesian Space = iota

	// Angular interpolates the root position and each segment's absolute
	// direction along the shorter arc, then rebuilds the pose with the
	// skeleton's lengths. Segment lengths hold at every t.
	Angular
)

// String returns the space name.
func (s Space) String() string {
	switch s {
	case Cartesian:
		return "cartesian"
	case Angular:
		return "angular"
	default:
		return "unknown"
	}
}

// ParseSpace converts "cartesian" or "angular" to a Space. Empty means Cartesian.
func ParseSpace(name string) (Space, error) {
	switch name {
	case "", "cartesian":
		return Cartesian, nil
	case "angular":
		return Angular, nil
	default:
		return 0, fmt.Errorf("motion: unknown interpolation space %q", name)
	}
}

// KeyframeOption configures a Keyframed generator.
type KeyframeOption func(*Keyframed)

// WithEasing sets the easing applied to progress between keyframes.
func WithEasing(f easing.Func) KeyframeOption {
	return func(k *Keyframed) {
		if f != nil {
			k.ease = f
		}
	}
}

// WithSpace sets the interpolation space.
func WithSpace(s Space) KeyframeOption {
	return func(k *Keyframed) { k.space = s }
}

// WithMotion applies a rigid motion to every interpolated pose.
func WithMotion(m RigidMotion) KeyframeOption {
	return func(k *Keyframed) { k.motion = m }
}

// WithLoop wraps time modulo the track span instead of clamping.
func WithLoop(loop bool) KeyframeOption {
	return func(k *Keyframed) { k.loop = loop }
}

// Keyframed is the keyframe-mode generator.
type Keyframed struct {
	skel   *skeleton.Skeleton
	frames []Keyframe
	times  []float64
	dirs   [][skeleton.NumJoints]float64 // per keyframe segment directions, Angular only
	ease   easing.Func
	space  Space
	motion RigidMotion
	loop   bool
}

// NewKeyframed validates the track and builds a generator.
func NewKeyframed(skel *skeleton.Skeleton, track Track, opts ...KeyframeOption) (*Keyframed, error) {
	if skel == nil {
		return nil, ErrNoSkeleton
	}
	if len(track) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientKeyframes, len(track))
	}

	k := &Keyframed{
		skel:   skel,
		frames: append([]Keyframe(nil), track...),
		times:  make([]float64, len(track)),
		ease:   easing.Linear,
	}
	for i, kf := range k.frames {
		if !isFinite(kf.Time) {
			return nil, fmt.Errorf("%w: keyframe %d time is not finite", ErrKeyframeOrder, i)
		}
		if i > 0 && !(kf.Time > k.frames[i-1].Time) {
			return nil, fmt.Errorf("%w: keyframe %d at %g follows %g",
				ErrKeyframeOrder, i, kf.Time, k.frames[i-1].Time)
		}
		k.times[i] = kf.Time
	}
	for _, opt := range opts {
		opt(k)
	}

	if k.space == Angular {
		k.dirs = make([][skeleton.NumJoints]float64, len(k.frames))
		for i, kf := range k.frames {
			k.dirs[i] = k.directions(kf.Pose)
		}
	}
	return k, nil
}

// directions measures each segment's absolute angle in a keyframe pose.
// A zero-length segment hangs straight down.
func (k *Keyframed) directions(p skeleton.Pose) [skeleton.NumJoints]float64 {
	var dirs [skeleton.NumJoints]float64
	for _, id := range k.skel.Order() {
		parent, ok := k.skel.ParentOf(id)
		if !ok {
			continue
		}
		if p[id] == p[parent] {
			dirs[id] = -math.Pi / 2
			continue
		}
		dirs[id] = kinematics.Angle(p[parent], p[id])
	}
	return dirs
}

// Skeleton implements Generator.
func (k *Keyframed) Skeleton() *skeleton.Skeleton {
	return k.skel
}

// Period implements Generator; it is the track span.
func (k *Keyframed) Period() float64 {
	return k.times[len(k.times)-1] - k.times[0]
}

// Start returns the first keyframe time.
func (k *Keyframed) Start() float64 {
	return k.times[0]
}

// Keyframes returns a copy of the track.
func (k *Keyframed) Keyframes() Track {
	return append(Track(nil), k.frames...)
}

// local maps t onto the track: clamped to [t0, tN], or wrapped when looping.
func (k *Keyframed) local(t float64) float64 {
	t0, tn := k.times[0], k.times[len(k.times)-1]
	if k.loop {
		m := math.Mod(t-t0, tn-t0)
		if m < 0 {
			m += tn - t0
		}
		return t0 + m
	}
	return math.Max(t0, math.Min(t, tn))
}

// PoseAt implements Generator.
func (k *Keyframed) PoseAt(t float64) skeleton.Pose {
	t = k.local(t)
	pose := k.interpolate(t)
	if k.motion != nil {
		rot, d := k.motion.At(t)
		pose = pose.Transform(rot, d)
	}
	return pose
}

// interpolate returns the unmoved pose at a time inside the track.
func (k *Keyframed) interpolate(t float64) skeleton.Pose {
	n := len(k.times)
	idx := sort.Search(n, func(i int) bool { return k.times[i] > t })
	if idx == 0 {
		return k.key(0)
	}
	if idx >= n {
		return k.key(n - 1)
	}

	i := idx - 1
	u := (t - k.times[i]) / (k.times[i+1] - k.times[i])
	u = k.ease(u)

	if k.space == Angular {
		return k.angular(i, u)
	}
	a, b := k.frames[i].Pose, k.frames[i+1].Pose
	var out skeleton.Pose
	for j := range out {
		out[j] = kinematics.Lerp(a[j], b[j], u)
	}
	return out
}

// key returns keyframe i as this generator would render it.
func (k *Keyframed) key(i int) skeleton.Pose {
	if k.space == Angular {
		return k.angular(i, 0)
	}
	return k.frames[i].Pose
}

// angular blends keyframe i toward i+1 by u in segment-angle space.
func (k *Keyframed) angular(i int, u float64) skeleton.Pose {
	a := k.frames[i].Pose
	root := a[skeleton.Root]
	da := k.dirs[i]
	db := da
	if u != 0 {
		root = kinematics.Lerp(root, k.frames[i+1].Pose[skeleton.Root], u)
		db = k.dirs[i+1]
	}

	var pose skeleton.Pose
	pose[skeleton.Root] = root
	for _, id := range k.skel.Order() {
		parent, ok := k.skel.ParentOf(id)
		if !ok {
			continue
		}
		length, _ := k.skel.SegmentLength(id)
		pose[id] = kinematics.Extend(pose[parent], length, kinematics.LerpAngle(da[id], db[id], u))
	}
	return pose
}

// Pin returns a track whose poses are rebuilt from the skeleton so that
// every keyframe satisfies the declared segment lengths. Segment directions
// and the root position are kept.
func Pin(skel *skeleton.Skeleton, track Track) Track {
	out := make(Track, len(track))
	for i, kf := range track {
		var pose skeleton.Pose
		pose[skeleton.Root] = kf.Pose[skeleton.Root]
		for _, id := range skel.Order() {
			parent, ok := skel.ParentOf(id)
			if !ok {
				continue
			}
			dir := -math.Pi / 2
			if kf.Pose[id] != kf.Pose[parent] {
				dir = kinematics.Angle(kf.Pose[parent], kf.Pose[id])
			}
			length, _ := skel.SegmentLength(id)
			pose[id] = kinematics.Extend(pose[parent], length, dir)
		}
		out[i] = Keyframe{Time: kf.Time, Pose: pose}
	}
	return out
}

// RestPose returns the skeleton's zero-angle pose with the root at root.
func RestPose(skel *skeleton.Skeleton, root r2.Vec) skeleton.Pose {
	var drive [skeleton.NumJoints]float64
	return Forward(skel, root, 0, drive)
}
