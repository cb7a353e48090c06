package render

import (
	"math"
	"testing"

	"github.com/teslashibe/go-pointlight/pkg/motion"
	"github.com/teslashibe/go-pointlight/pkg/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestFitView(t *testing.T) {
	p := motion.RestPose(skeleton.Default(), r2.Vec{Y: 0.55})
	v := FitView(0.1, p, p.Translate(r2.Vec{X: 2}))
	lo, hi := p.Bounds()
	if v.Min.X != lo.X-0.1 || v.Max.X != hi.X+2.1 || v.Min.Y != lo.Y-0.1 || v.Max.Y != hi.Y+0.1 {
		t.Errorf("Unexpected view %+v", v)
	}
	if (FitView(0.1) != View{}) {
		t.Error("Expected zero view for no poses")
	}
}

func TestProjection(t *testing.T) {
	view := View{Min: r2.Vec{X: -1, Y: 0}, Max: r2.Vec{X: 1, Y: 1}}

	// Square pixels: 200x200 raster, the 2x1 view is width-limited.
	p := NewProjection(view, 0, 0, 200, 200, 1)
	if p.Scale != 100 {
		t.Errorf("Expected scale 100, got %v", p.Scale)
	}
	x, y := p.Apply(r2.Vec{X: -1, Y: 1})
	if x != 0 || y != 50 {
		t.Errorf("Expected top-left at (0,50), got (%v,%v)", x, y)
	}
	x, y = p.Apply(r2.Vec{X: 1, Y: 0})
	if x != 200 || y != 150 {
		t.Errorf("Expected bottom-right at (200,150), got (%v,%v)", x, y)
	}

	// Terminal cells twice as tall as wide.
	p = NewProjection(view, 1, 1, 100, 25, 2)
	if p.Scale != 50 {
		t.Errorf("Expected scale 50, got %v", p.Scale)
	}
	_, top := p.Apply(r2.Vec{Y: 1})
	_, bottom := p.Apply(r2.Vec{Y: 0})
	if math.Abs(bottom-top-25) > 1e-9 {
		t.Errorf("Expected 25 rows for one unit, got %v", bottom-top)
	}
}
