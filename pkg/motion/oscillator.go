package motion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Driver turns a global phase in [0, 2π) into a posture.
type Driver interface {
	Posture(phase float64) Posture
}

// Term is one sinusoid: Amplitude·sin(Harmonic·φ + Phase).
type Term struct {
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`
	Harmonic  float64 `json:"harmonic,omitempty" yaml:"harmonic,omitempty"` // 0 means 1
	Phase     float64 `json:"phase,omitempty" yaml:"phase,omitempty"`
}

// Oscillator is a constant offset plus a sum of sinusoidal terms of the
// global phase.
type Oscillator struct {
	Offset float64 `json:"offset,omitempty" yaml:"offset,omitempty"`
	Terms  []Term  `json:"terms,omitempty" yaml:"terms,omitempty"`
}

// Sine returns a single-term oscillator.
func Sine(amplitude, phase float64) Oscillator {
	return Oscillator{Terms: []Term{{Amplitude: amplitude, Harmonic: 1, Phase: phase}}}
}

// Eval returns the oscillator value at phase phi.
func (o Oscillator) Eval(phi float64) float64 {
	v := o.Offset
	for _, t := range o.Terms {
		h := t.Harmonic
		if h == 0 {
			h = 1
		}
		v += t.Amplitude * math.Sin(h*phi+t.Phase)
	}
	return v
}

// Validate checks that every term is finite and uses a whole-number
// harmonic, so that the oscillator closes on itself after one cycle.
func (o Oscillator) Validate() error {
	if !isFinite(o.Offset) {
		return fmt.Errorf("%w: offset is not finite", ErrInvalidOscillator)
	}
	for i, t := range o.Terms {
		if !isFinite(t.Amplitude) || !isFinite(t.Phase) || !isFinite(t.Harmonic) {
			return fmt.Errorf("%w: term %d is not finite", ErrInvalidOscillator, i)
		}
		if t.Harmonic != math.Trunc(t.Harmonic) || t.Harmonic < 0 {
			return fmt.Errorf("%w: term %d harmonic %g is not a whole number", ErrInvalidOscillator, i, t.Harmonic)
		}
	}
	return nil
}

// OscillatorSet drives a gait from one oscillator per joint type. Limb
// oscillators describe the left side; the right side reuses them at
// φ + SideOffset, which gives left/right alternation for SideOffset = π.
type OscillatorSet struct {
	TorsoLean Oscillator
	HeadTilt  Oscillator
	Shoulder  Oscillator
	Elbow     Oscillator
	Hip       Oscillator
	Knee      Oscillator

	// SideOffset is the phase lag of the right limbs.
	SideOffset float64

	// Overrides replace individual channels, evaluated at φ without the
	// side offset. Used for one-sided actions such as waving.
	Overrides map[Channel]Oscillator

	// Root offset and whole-body rotation.
	SwayX    Oscillator
	BounceY  Oscillator
	Rotation Oscillator
}

// NewOscillatorSet returns an empty set with the usual π side offset.
func NewOscillatorSet() *OscillatorSet {
	return &OscillatorSet{SideOffset: math.Pi}
}

// Validate checks every oscillator in the set.
func (s *OscillatorSet) Validate() error {
	named := map[string]Oscillator{
		"torso_lean": s.TorsoLean,
		"head_tilt":  s.HeadTilt,
		"shoulder":   s.Shoulder,
		"elbow":      s.Elbow,
		"hip":        s.Hip,
		"knee":       s.Knee,
		"sway_x":     s.SwayX,
		"bounce_y":   s.BounceY,
		"rotation":   s.Rotation,
	}
	for name, o := range named {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	for ch, o := range s.Overrides {
		if ch < 0 || ch >= NumChannels {
			return fmt.Errorf("%w: override for unknown channel %d", ErrInvalidOscillator, int(ch))
		}
		if err := o.Validate(); err != nil {
			return fmt.Errorf("%s: %w", ch, err)
		}
	}
	if !isFinite(s.SideOffset) {
		return fmt.Errorf("%w: side offset is not finite", ErrInvalidOscillator)
	}
	return nil
}

// Posture implements Driver.
func (s *OscillatorSet) Posture(phi float64) Posture {
	right := phi + s.SideOffset

	var a Angles
	a[TorsoLean] = s.TorsoLean.Eval(phi)
	a[HeadTilt] = s.HeadTilt.Eval(phi)
	a[LeftShoulder] = s.Shoulder.Eval(phi)
	a[RightShoulder] = s.Shoulder.Eval(right)
	a[LeftElbow] = s.Elbow.Eval(phi)
	a[RightElbow] = s.Elbow.Eval(right)
	a[LeftHip] = s.Hip.Eval(phi)
	a[RightHip] = s.Hip.Eval(right)
	a[LeftKnee] = s.Knee.Eval(phi)
	a[RightKnee] = s.Knee.Eval(right)
	for ch, o := range s.Overrides {
		a[ch] = o.Eval(phi)
	}

	return Posture{
		Angles:   a,
		Root:     r2.Vec{X: s.SwayX.Eval(phi), Y: s.BounceY.Eval(phi)},
		Rotation: s.Rotation.Eval(phi),
	}
}

// Layers sums the postures of several drivers, e.g. a phase table for the
// legs with an oscillator adding arm swing.
type Layers []Driver

// Posture implements Driver.
func (l Layers) Posture(phi float64) Posture {
	var p Posture
	for _, d := range l {
		p = p.Add(d.Posture(phi))
	}
	return p
}
