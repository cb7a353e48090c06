package player

import (
	"fmt"
	"math"

	"github.com/teslashibe/go-pointlight/pkg/motion"
)

// MaxFrames bounds a single Sample call.
const MaxFrames = 10000

// Sample evaluates gen at fps from from to to inclusive. Sampling is
// independent of any clock: frame i is at from + i/fps.
func Sample(name string, gen motion.Generator, from, to, fps float64) ([]Frame, error) {
	if !(fps > 0) || math.IsInf(fps, 0) {
		return nil, fmt.Errorf("%w: fps %g", ErrInvalidRange, fps)
	}
	if math.IsNaN(from) || math.IsNaN(to) || to < from {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrInvalidRange, from, to)
	}
	span := (to-from)*fps + 1e-9
	if !(span < MaxFrames) {
		return nil, fmt.Errorf("%w: more than %d frames", ErrInvalidRange, MaxFrames)
	}
	n := int(math.Floor(span)) + 1

	frames := make([]Frame, n)
	for i := range frames {
		t := from + float64(i)/fps
		frames[i] = Frame{Action: name, T: t, Index: i, Points: gen.PoseAt(t)}
	}
	return frames, nil
}
