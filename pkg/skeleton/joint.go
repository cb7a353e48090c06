// Package skeleton describes the 15-joint point-light figure: the joint
// roles, their fixed parent/child topology, bone lengths and rest angles,
// and the Pose value produced by the generators in package motion.
//
// Coordinates are 2-D with x pointing forward and y pointing up. Angles are
// radians, counter-clockwise from +x.
package skeleton

import (
	"fmt"
	"strings"
)

// JointID identifies one of the 15 anatomical landmarks.
// The numeric order is the documented output order of every Pose.
type JointID int

const (
	Head JointID = iota
	Neck
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	Pelvis
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
)

// NumJoints is the number of joints in every skeleton and pose.
const NumJoints = 15

// Root is the joint with no parent. Whole-body translation and rotation
// are applied here.
const Root = Pelvis

var jointNames = [NumJoints]string{
	"head",
	"neck",
	"left_shoulder",
	"right_shoulder",
	"left_elbow",
	"right_elbow",
	"left_wrist",
	"right_wrist",
	"pelvis",
	"left_hip",
	"right_hip",
	"left_knee",
	"right_knee",
	"left_ankle",
	"right_ankle",
}

// parents is the fixed topology. The root maps to itself.
var parents = [NumJoints]JointID{
	Head:          Neck,
	Neck:          Pelvis,
	LeftShoulder:  Neck,
	RightShoulder: Neck,
	LeftElbow:     LeftShoulder,
	RightElbow:    RightShoulder,
	LeftWrist:     LeftElbow,
	RightWrist:    RightElbow,
	Pelvis:        Pelvis,
	LeftHip:       Pelvis,
	RightHip:      Pelvis,
	LeftKnee:      LeftHip,
	RightKnee:     RightHip,
	LeftAnkle:     LeftKnee,
	RightAnkle:    RightKnee,
}

// All returns every joint in documented order.
func All() []JointID {
	ids := make([]JointID, NumJoints)
	for i := range ids {
		ids[i] = JointID(i)
	}
	return ids
}

// Valid reports whether id is one of the 15 roles.
func (id JointID) Valid() bool {
	return id >= 0 && id < NumJoints
}

// String returns the snake_case joint name.
func (id JointID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("joint(%d)", int(id))
	}
	return jointNames[id]
}

// Mirror returns the joint on the opposite side. Midline joints map to themselves.
func (id JointID) Mirror() JointID {
	switch id {
	case LeftShoulder, LeftElbow, LeftWrist, LeftHip, LeftKnee, LeftAnkle:
		return id + 1
	case RightShoulder, RightElbow, RightWrist, RightHip, RightKnee, RightAnkle:
		return id - 1
	default:
		return id
	}
}

// ParseJoint converts a joint name ("left_knee", "LeftKnee", "left-knee")
// to its JointID.
func ParseJoint(name string) (JointID, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for i, n := range jointNames {
		if norm == n || norm == strings.ReplaceAll(n, "_", "") {
			return JointID(i), nil
		}
	}
	return 0, &JointError{Name: name, ID: -1}
}

// MarshalText implements encoding.TextMarshaler.
func (id JointID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, &JointError{ID: id}
	}
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *JointID) UnmarshalText(b []byte) error {
	j, err := ParseJoint(string(b))
	if err != nil {
		return err
	}
	*id = j
	return nil
}
