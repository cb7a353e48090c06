// Package player drives pose generators in real time and samples them
// offline.
package player

import (
	"errors"
	"time"

	"github.com/teslashibe/go-pointlight/pkg/skeleton"
)

var (
	// ErrAlreadyPlaying is returned when Play is called during playback.
	ErrAlreadyPlaying = errors.New("player: already playing")

	// ErrInvalidRange is returned for empty or oversized sampling ranges.
	ErrInvalidRange = errors.New("player: invalid sampling range")
)

// Frame is one sampled pose. Its JSON form is the stream wire format.
type Frame struct {
	Action string        `json:"action"`
	T      float64       `json:"t"`
	Index  int           `json:"frame"`
	Points skeleton.Pose `json:"points"`
}

// State is the playback state.
type State int

const (
	// StateStopped means nothing is playing.
	StateStopped State = iota

	// StatePlaying means frames are being delivered.
	StatePlaying

	// StatePaused means playback is suspended and the clock is held.
	StatePaused
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Callback is called for each frame during playback.
// Return false to stop playback early.
type Callback func(f Frame) bool

// Options configures playback.
type Options struct {
	// FrameRate is the delivery rate in Hz (default: 60).
	FrameRate float64

	// Loop restarts from the beginning after each period.
	Loop bool

	// Speed multiplier (1.0 = normal, 2.0 = 2x speed).
	Speed float64

	// Duration, when positive, plays for this long on a continuous clock
	// and then stops. Loop is ignored.
	Duration time.Duration
}

// DefaultOptions returns sensible defaults for playback.
func DefaultOptions() Options {
	return Options{
		FrameRate: 60.0,
		Speed:     1.0,
		Loop:      false,
	}
}

func (o Options) normalized() Options {
	if !(o.FrameRate > 0) {
		o.FrameRate = 60
	}
	if !(o.Speed > 0) {
		o.Speed = 1
	}
	return o
}
