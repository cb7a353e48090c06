package motion

import (
	"fmt"
	"math"
	"sort"

	"github.com/teslashibe/go-pointlight/pkg/easing"
)

// Phase is one state of a cyclic, time-driven state machine. During the
// phase the posture travels from the previous phase's Target to this
// phase's Target.
type Phase struct {
	Name string

	// End is the fraction of the cycle at which the phase ends. The last
	// phase must end at 1.
	End float64

	Target Posture

	// Ease shapes progress within the phase. Nil means CosineInOut, whose
	// zero end slopes keep angles and root height C¹ across boundaries.
	Ease easing.Func
}

// PhaseTable is a table-driven state machine over one cycle. The first
// phase starts from the last phase's target, so the cycle closes.
type PhaseTable struct {
	phases []Phase
	ends   []float64
}

// NewPhaseTable validates the boundaries and builds the table.
func NewPhaseTable(phases ...Phase) (*PhaseTable, error) {
	if len(phases) == 0 {
		return nil, fmt.Errorf("%w: no phases", ErrInvalidPhaseTable)
	}

	pt := &PhaseTable{
		phases: make([]Phase, len(phases)),
		ends:   make([]float64, len(phases)),
	}
	prev := 0.0
	names := make(map[string]bool, len(phases))
	for i, ph := range phases {
		if !(ph.End > prev) || ph.End > 1 {
			return nil, fmt.Errorf("%w: phase %d (%s) ends at %g after %g",
				ErrInvalidPhaseTable, i, ph.Name, ph.End, prev)
		}
		if names[ph.Name] {
			return nil, fmt.Errorf("%w: duplicate phase %q", ErrInvalidPhaseTable, ph.Name)
		}
		if !ph.Target.finite() {
			return nil, fmt.Errorf("%w: phase %q target is not finite", ErrInvalidPhaseTable, ph.Name)
		}
		names[ph.Name] = true
		if ph.Ease == nil {
			ph.Ease = easing.CosineInOut
		}
		pt.phases[i] = ph
		pt.ends[i] = ph.End
		prev = ph.End
	}
	if prev != 1 {
		return nil, fmt.Errorf("%w: last phase ends at %g, want 1", ErrInvalidPhaseTable, prev)
	}
	return pt, nil
}

// Phases returns a copy of the table.
func (pt *PhaseTable) Phases() []Phase {
	return append([]Phase(nil), pt.phases...)
}

// At returns the posture at global phase phi and the name of the active phase.
func (pt *PhaseTable) At(phi float64) (Posture, string) {
	i, u := pt.locate(phi)
	from := pt.phases[len(pt.phases)-1].Target
	if i > 0 {
		from = pt.phases[i-1].Target
	}
	ph := pt.phases[i]
	return from.Lerp(ph.Target, ph.Ease(u)), ph.Name
}

// Posture implements Driver.
func (pt *PhaseTable) Posture(phi float64) Posture {
	p, _ := pt.At(phi)
	return p
}

// PhaseName returns the active phase at phi.
func (pt *PhaseTable) PhaseName(phi float64) string {
	i, _ := pt.locate(phi)
	return pt.phases[i].Name
}

// locate finds the active phase index and the progress within it.
func (pt *PhaseTable) locate(phi float64) (int, float64) {
	f := math.Mod(phi/(2*math.Pi), 1)
	if f < 0 {
		f++
	}
	i := sort.Search(len(pt.ends), func(k int) bool { return pt.ends[k] > f })
	if i == len(pt.ends) {
		i = len(pt.ends) - 1
	}
	start := 0.0
	if i > 0 {
		start = pt.ends[i-1]
	}
	return i, (f - start) / (pt.ends[i] - start)
}
