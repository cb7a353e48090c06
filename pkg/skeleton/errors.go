package skeleton

import (
	"errors"
	"fmt"
)

// Sentinel errors for skeleton construction and lookup.
var (
	// ErrUnknownJoint is returned for identifiers outside the 15 roles.
	ErrUnknownJoint = errors.New("skeleton: unknown joint")

	// ErrDegenerateSegment is returned when a bone length is not positive.
	ErrDegenerateSegment = errors.New("skeleton: degenerate segment")

	// ErrMissingSegment is returned when a non-root joint has no bone.
	ErrMissingSegment = errors.New("skeleton: missing segment")

	// ErrNoSegment is returned when asking for the root's segment.
	ErrNoSegment = errors.New("skeleton: root has no segment")

	// ErrNotTree is returned when the topology is not a single-rooted tree.
	ErrNotTree = errors.New("skeleton: topology is not a tree")

	// ErrSegmentLength is returned by Verify when a pose stretches a bone.
	ErrSegmentLength = errors.New("skeleton: segment length violated")
)

// JointError reports an invalid joint identifier or name.
type JointError struct {
	ID   JointID
	Name string
}

// Error implements the error interface.
func (e *JointError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("skeleton: unknown joint %q", e.Name)
	}
	return fmt.Sprintf("skeleton: unknown joint id %d", int(e.ID))
}

// Unwrap returns ErrUnknownJoint.
func (e *JointError) Unwrap() error {
	return ErrUnknownJoint
}

// SegmentError reports a bad segment, either at construction or when a
// pose is verified against the skeleton.
type SegmentError struct {
	ID     JointID
	Length float64 // declared length
	Actual float64 // measured length (Verify only)
	Err    error
}

// Error implements the error interface.
func (e *SegmentError) Error() string {
	if errors.Is(e.Err, ErrSegmentLength) {
		return fmt.Sprintf("skeleton: segment %s->%s has length %.6f, want %.6f",
			parents[e.ID], e.ID, e.Actual, e.Length)
	}
	return fmt.Sprintf("%v: %s (length %g)", e.Err, e.ID, e.Length)
}

// Unwrap returns the underlying sentinel.
func (e *SegmentError) Unwrap() error {
	return e.Err
}
