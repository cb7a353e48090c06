// Package easing provides progress remapping functions for interpolated
// motion. Every function maps [0, 1] onto [0, 1] with f(0) = 0 and
// f(1) = 1; inputs outside the unit interval are clamped first.
package easing

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Func remaps normalized progress.
type Func func(u float64) float64

// Linear is the identity.
func Linear(u float64) float64 {
	return clamp01(u)
}

// CosineInOut is the half-cosine ease: zero slope at both ends.
func CosineInOut(u float64) float64 {
	return 0.5 - 0.5*math.Cos(math.Pi*clamp01(u))
}

// SineIn starts slow and ends at full speed.
func SineIn(u float64) float64 {
	return 1 - math.Cos(math.Pi/2*clamp01(u))
}

// SineOut starts at full speed and settles.
func SineOut(u float64) float64 {
	return math.Sin(math.Pi / 2 * clamp01(u))
}

// Smoothstep is the cubic Hermite ease 3u²-2u³.
func Smoothstep(u float64) float64 {
	u = clamp01(u)
	return u * u * (3 - 2*u)
}

// Smootherstep is Perlin's quintic ease; first and second derivatives
// vanish at both ends.
func Smootherstep(u float64) float64 {
	u = clamp01(u)
	return u * u * u * (u*(u*6-15) + 10)
}

var byName = map[string]Func{
	"linear":       Linear,
	"cosine":       CosineInOut,
	"cosine_inout": CosineInOut,
	"sine_in":      SineIn,
	"sine_out":     SineOut,
	"smoothstep":   Smoothstep,
	"smootherstep": Smootherstep,
}

// ByName looks up an easing function. The empty name means Linear.
func ByName(name string) (Func, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Linear, nil
	}
	f, ok := byName[key]
	if !ok {
		return nil, fmt.Errorf("easing: unknown function %q", name)
	}
	return f, nil
}

// Names returns the registered easing names, sorted.
func Names() []string {
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func clamp01(u float64) float64 {
	if u < 0 || math.IsNaN(u) {
		return 0
	}
	if u > 1 {
		return 1
	}
	return u
}
