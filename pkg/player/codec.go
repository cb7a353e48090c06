package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/teslashibe/go-pointlight/pkg/skeleton"
)

// ErrBadFrame is returned when decoding a malformed binary frame.
var ErrBadFrame = errors.New("player: malformed binary frame")

// MaxActionName is the longest action name a binary frame can carry.
const MaxActionName = math.MaxUint8

// binaryFrameFixed is the size of a binary frame without its action name:
// uint32 index, float64 t, 15 float32 pairs and the name length byte.
const binaryFrameFixed = 4 + 8 + skeleton.NumJoints*8 + 1

// MarshalBinary encodes the frame compactly, little-endian: frame index
// (uint32), t (float64), the 15 points as float32 x/y pairs in joint
// order, then the action name prefixed by its length (uint8).
func (f Frame) MarshalBinary() ([]byte, error) {
	if len(f.Action) > MaxActionName {
		return nil, fmt.Errorf("%w: action name longer than %d bytes", ErrBadFrame, MaxActionName)
	}
	if f.Index < 0 || uint64(f.Index) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: frame index %d out of range", ErrBadFrame, f.Index)
	}

	b := make([]byte, 0, binaryFrameFixed+len(f.Action))
	b = binary.LittleEndian.AppendUint32(b, uint32(f.Index))
	b = binary.LittleEndian.AppendUint64(b, math.Float64bits(f.T))
	for _, p := range f.Points {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(float32(p.X)))
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(float32(p.Y)))
	}
	b = append(b, byte(len(f.Action)))
	b = append(b, f.Action...)
	return b, nil
}

// UnmarshalBinary decodes a frame written by MarshalBinary. Points come
// back at float32 precision.
func (f *Frame) UnmarshalBinary(b []byte) error {
	if len(b) < binaryFrameFixed {
		return fmt.Errorf("%w: %d bytes", ErrBadFrame, len(b))
	}
	n := int(b[binaryFrameFixed-1])
	if len(b) != binaryFrameFixed+n {
		return fmt.Errorf("%w: %d bytes for a %d byte name", ErrBadFrame, len(b), n)
	}

	f.Index = int(binary.LittleEndian.Uint32(b[0:]))
	f.T = math.Float64frombits(binary.LittleEndian.Uint64(b[4:]))
	off := 12
	for i := range f.Points {
		f.Points[i].X = float64(math.Float32frombits(binary.LittleEndian.Uint32(b[off:])))
		f.Points[i].Y = float64(math.Float32frombits(binary.LittleEndian.Uint32(b[off+4:])))
		off += 8
	}
	f.Action = string(b[binaryFrameFixed:])
	return nil
}
