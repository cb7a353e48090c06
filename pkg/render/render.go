// Package render holds what the point-light renderers share: the world
// window being shown and its mapping onto a raster.
package render

import (
	"math"

	"github.com/teslashibe/go-pointlight/pkg/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

// View is an axis-aligned world window. Y points up.
type View struct {
	Min, Max r2.Vec
}

// DefaultView frames a standing figure of the default skeleton with room
// to move about a body length either side.
func DefaultView() View {
	return View{Min: r2.Vec{X: -1.2, Y: -0.1}, Max: r2.Vec{X: 1.2, Y: 1.3}}
}

// FitView returns the union of the poses' bounds padded by pad on every
// side.
func FitView(pad float64, poses ...skeleton.Pose) View {
	if len(poses) == 0 {
		return View{}
	}
	lo, hi := poses[0].Bounds()
	for _, p := range poses[1:] {
		a, b := p.Bounds()
		lo = r2.Vec{X: math.Min(lo.X, a.X), Y: math.Min(lo.Y, a.Y)}
		hi = r2.Vec{X: math.Max(hi.X, b.X), Y: math.Max(hi.Y, b.Y)}
	}
	d := r2.Vec{X: pad, Y: pad}
	return View{Min: r2.Sub(lo, d), Max: r2.Add(hi, d)}
}

// Projection maps world points into a raster rectangle with one uniform
// scale, centring the view in the rectangle.
type Projection struct {
	View View
	// Scale is raster columns per world unit.
	Scale float64
	// Aspect is the height of a raster row in column widths.
	Aspect     float64
	OffX, OffY float64
}

// NewProjection fits view into the w×h rectangle at (x0, y0).
func NewProjection(view View, x0, y0, w, h, aspect float64) Projection {
	if aspect <= 0 {
		aspect = 1
	}
	dx := math.Max(view.Max.X-view.Min.X, 1e-6)
	dy := math.Max(view.Max.Y-view.Min.Y, 1e-6)
	k := math.Max(0, math.Min(w/dx, h*aspect/dy))
	return Projection{
		View:   view,
		Scale:  k,
		Aspect: aspect,
		OffX:   x0 + (w-dx*k)/2,
		OffY:   y0 + (h-dy*k/aspect)/2,
	}
}

// Apply returns the raster position of v. Rows grow downwards.
func (p Projection) Apply(v r2.Vec) (x, y float64) {
	x = p.OffX + (v.X-p.View.Min.X)*p.Scale
	y = p.OffY + (p.View.Max.Y-v.Y)*p.Scale/p.Aspect
	return x, y
}
