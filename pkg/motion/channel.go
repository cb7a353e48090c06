package motion

import (
	"fmt"
	"math"
	"strings"

	"github.com/teslashibe/go-pointlight/pkg/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

// Channel is an articulation angle. Each channel rotates exactly one
// segment relative to its parent segment.
type Channel int

const (
	TorsoLean Channel = iota
	HeadTilt
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftHip
	RightHip
	LeftKnee
	RightKnee
)

// NumChannels is the number of articulation channels.
const NumChannels = 10

var channelNames = [NumChannels]string{
	"torso_lean",
	"head_tilt",
	"left_shoulder",
	"right_shoulder",
	"left_elbow",
	"right_elbow",
	"left_hip",
	"right_hip",
	"left_knee",
	"right_knee",
}

// segments maps each channel to the joint at the far end of the segment it
// rotates: the shoulder swings the upper arm, the knee swings the shank.
var segments = [NumChannels]skeleton.JointID{
	TorsoLean:     skeleton.Neck,
	HeadTilt:      skeleton.Head,
	LeftShoulder:  skeleton.LeftElbow,
	RightShoulder: skeleton.RightElbow,
	LeftElbow:     skeleton.LeftWrist,
	RightElbow:    skeleton.RightWrist,
	LeftHip:       skeleton.LeftKnee,
	RightHip:      skeleton.RightKnee,
	LeftKnee:      skeleton.LeftAnkle,
	RightKnee:     skeleton.RightAnkle,
}

// String returns the snake_case channel name.
func (c Channel) String() string {
	if c < 0 || c >= NumChannels {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelNames[c]
}

// Segment returns the joint whose incoming segment this channel rotates.
func (c Channel) Segment() skeleton.JointID {
	return segments[c]
}

// Mirror returns the channel on the opposite side. Midline channels map to
// themselves.
func (c Channel) Mirror() Channel {
	switch c {
	case LeftShoulder, LeftElbow, LeftHip, LeftKnee:
		return c + 1
	case RightShoulder, RightElbow, RightHip, RightKnee:
		return c - 1
	default:
		return c
	}
}

// ParseChannel converts a channel name to a Channel.
func ParseChannel(name string) (Channel, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	norm = strings.ReplaceAll(norm, "-", "_")
	for i, n := range channelNames {
		if norm == n {
			return Channel(i), nil
		}
	}
	return 0, fmt.Errorf("motion: unknown channel %q", name)
}

// Angles holds one value per channel.
type Angles [NumChannels]float64

// Posture is everything a Driver decides for one instant: the articulation
// angles, an offset added to the root trajectory and a whole-body rotation
// about the root.
type Posture struct {
	Angles   Angles
	Root     r2.Vec
	Rotation float64
}

// Lerp blends p toward q by u.
func (p Posture) Lerp(q Posture, u float64) Posture {
	out := Posture{
		Root:     r2.Vec{X: p.Root.X + (q.Root.X-p.Root.X)*u, Y: p.Root.Y + (q.Root.Y-p.Root.Y)*u},
		Rotation: p.Rotation + (q.Rotation-p.Rotation)*u,
	}
	for i := range out.Angles {
		out.Angles[i] = p.Angles[i] + (q.Angles[i]-p.Angles[i])*u
	}
	return out
}

// Add returns the sum of two postures.
func (p Posture) Add(q Posture) Posture {
	out := Posture{Root: r2.Add(p.Root, q.Root), Rotation: p.Rotation + q.Rotation}
	for i := range out.Angles {
		out.Angles[i] = p.Angles[i] + q.Angles[i]
	}
	return out
}

func (p Posture) finite() bool {
	if !isFinite(p.Root.X) || !isFinite(p.Root.Y) || !isFinite(p.Rotation) {
		return false
	}
	for _, a := range p.Angles {
		if !isFinite(a) {
			return false
		}
	}
	return true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
