package actions

import (
	"fmt"
	"math"
	"strings"

	"github.com/teslashibe/go-pointlight/pkg/easing"
	"github.com/teslashibe/go-pointlight/pkg/kinematics"
	"github.com/teslashibe/go-pointlight/pkg/motion"
	"github.com/teslashibe/go-pointlight/pkg/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

// Compile turns a definition into a playable action.
func Compile(name string, def *Definition) (*Action, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: %s: empty definition", ErrInvalidDefinition, name)
	}

	skel, err := def.buildSkeleton()
	if err != nil {
		return nil, fmt.Errorf("action %q: %w", name, err)
	}
	cycle, err := def.buildCycle(skel)
	if err != nil {
		return nil, fmt.Errorf("action %q: %w", name, err)
	}

	var gen motion.Generator
	switch def.Mode {
	case ModeOscillator:
		gen, err = def.compileOscillator(skel, cycle)
	case ModePhases:
		gen, err = def.compilePhases(skel, cycle)
	case ModeKeyframe:
		gen, err = def.compileKeyframes(skel, cycle.Origin)
	default:
		err = fmt.Errorf("%w %q", ErrUnknownMode, def.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("action %q: %w", name, err)
	}

	category := def.Category
	if category == "" {
		category = extractCategory(name)
	}
	return &Action{
		Name:        name,
		Description: def.Description,
		Category:    category,
		Mode:        def.Mode,
		Generator:   gen,
		Definition:  def,
	}, nil
}

func (d *Definition) buildSkeleton() (*skeleton.Skeleton, error) {
	if d.Skeleton == nil {
		return skeleton.Default(), nil
	}

	bones := skeleton.DefaultBones()
	for name, b := range d.Skeleton.Bones {
		id, err := skeleton.ParseJoint(name)
		if err != nil {
			return nil, err
		}
		if id == skeleton.Root {
			return nil, fmt.Errorf("%w: %s", skeleton.ErrNoSegment, id)
		}
		bone := bones[id]
		if b.Length != nil {
			bone.Length = *b.Length
		}
		if b.Rest != nil {
			bone.Rest = *b.Rest
		}
		bones[id] = bone
	}
	skel, err := skeleton.New(bones)
	if err != nil {
		return nil, err
	}
	if d.Skeleton.Scale != 0 && d.Skeleton.Scale != 1 {
		return skel.Scaled(d.Skeleton.Scale)
	}
	return skel, nil
}

func (d *Definition) buildCycle(skel *skeleton.Skeleton) (motion.Cycle, error) {
	c := motion.Cycle{
		Period: d.Cycle.Period,
		Speed:  d.Cycle.Speed,
		Origin: r2.Vec{Y: motion.StandingHeight(skel)},
	}
	if c.Period == 0 {
		c.Period = 1
	}
	if d.Cycle.Height != nil {
		c.Origin.Y = *d.Cycle.Height
	}
	if !d.Cycle.Floating {
		ground := 0.0
		if d.Cycle.Ground != nil {
			ground = *d.Cycle.Ground
		}
		c.Ground = &ground
	}
	switch strings.ToLower(d.Cycle.KneeBend) {
	case "", "forward":
		c.KneeBend = kinematics.BendCCW
	case "backward":
		c.KneeBend = kinematics.BendCW
	default:
		return c, fmt.Errorf("%w: knee_bend %q", ErrInvalidDefinition, d.Cycle.KneeBend)
	}
	return c, nil
}

func (d *Definition) compileOscillator(skel *skeleton.Skeleton, cycle motion.Cycle) (*motion.Procedural, error) {
	if d.Oscillators == nil {
		return nil, fmt.Errorf("%w: oscillator mode without oscillators", ErrInvalidDefinition)
	}
	set, err := d.Oscillators.build()
	if err != nil {
		return nil, err
	}
	return motion.NewProcedural(skel, set, cycle)
}

func (d *Definition) compilePhases(skel *skeleton.Skeleton, cycle motion.Cycle) (*motion.Procedural, error) {
	phases := make([]motion.Phase, 0, len(d.Phases))
	for _, p := range d.Phases {
		posture, err := p.posture()
		if err != nil {
			return nil, fmt.Errorf("phase %q: %w", p.Name, err)
		}
		ph := motion.Phase{Name: p.Name, End: p.End, Target: posture}
		if p.Ease != "" {
			if ph.Ease, err = easing.ByName(p.Ease); err != nil {
				return nil, fmt.Errorf("phase %q: %w", p.Name, err)
			}
		}
		phases = append(phases, ph)
	}
	table, err := motion.NewPhaseTable(phases...)
	if err != nil {
		return nil, err
	}

	var driver motion.Driver = table
	if d.Oscillators != nil {
		set, err := d.Oscillators.build()
		if err != nil {
			return nil, err
		}
		if err := set.Validate(); err != nil {
			return nil, err
		}
		driver = phaseLayers{Layers: motion.Layers{table, set}, table: table}
	}
	return motion.NewProcedural(skel, driver, cycle)
}

// phaseLayers keeps phase names visible through a layered driver.
type phaseLayers struct {
	motion.Layers
	table *motion.PhaseTable
}

func (l phaseLayers) PhaseName(phi float64) string {
	return l.table.PhaseName(phi)
}

func (d *Definition) compileKeyframes(skel *skeleton.Skeleton, origin r2.Vec) (*motion.Keyframed, error) {
	k := d.Keyframes
	if k == nil {
		return nil, fmt.Errorf("%w: keyframe mode without keyframes", ErrInvalidDefinition)
	}

	track := make(motion.Track, 0, len(k.Frames))
	for i, f := range k.Frames {
		pose, err := f.pose(skel, origin)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		track = append(track, motion.Keyframe{Time: f.Time, Pose: pose})
	}

	space, err := motion.ParseSpace(k.Space)
	if err != nil {
		return nil, err
	}
	ease, err := easing.ByName(k.Ease)
	if err != nil {
		return nil, err
	}
	opts := []motion.KeyframeOption{
		motion.WithSpace(space),
		motion.WithEasing(ease),
		motion.WithLoop(k.Loop),
	}
	if k.Motion != nil {
		m, err := k.Motion.build()
		if err != nil {
			return nil, err
		}
		opts = append(opts, motion.WithMotion(m))
	}
	return motion.NewKeyframed(skel, track, opts...)
}

func (o *OscillatorDef) build() (*motion.OscillatorSet, error) {
	set := motion.NewOscillatorSet()
	set.TorsoLean = o.TorsoLean
	set.HeadTilt = o.HeadTilt
	set.Shoulder = o.Shoulder
	set.Elbow = o.Elbow
	set.Hip = o.Hip
	set.Knee = o.Knee
	set.SwayX = o.SwayX
	set.BounceY = o.BounceY
	set.Rotation = o.Rotation
	if o.SideOffset != nil {
		set.SideOffset = *o.SideOffset
	}
	if len(o.Overrides) > 0 {
		set.Overrides = make(map[motion.Channel]motion.Oscillator, len(o.Overrides))
		for name, osc := range o.Overrides {
			ch, err := motion.ParseChannel(name)
			if err != nil {
				return nil, err
			}
			set.Overrides[ch] = osc
		}
	}
	return set, nil
}

func (p PostureDef) posture() (motion.Posture, error) {
	out := motion.Posture{
		Root:     r2.Vec{X: p.Root[0], Y: p.Root[1]},
		Rotation: p.Rotation,
	}
	for name, a := range p.Angles {
		ch, err := motion.ParseChannel(name)
		if err != nil {
			return out, err
		}
		out.Angles[ch] = a
	}
	return out, nil
}

func (f FrameDef) pose(skel *skeleton.Skeleton, origin r2.Vec) (skeleton.Pose, error) {
	var pose skeleton.Pose
	if len(f.Points) > 0 {
		if len(f.Points) != skeleton.NumJoints {
			return pose, fmt.Errorf("%w: %d points, want %d", ErrInvalidDefinition, len(f.Points), skeleton.NumJoints)
		}
		for i, pt := range f.Points {
			pose[i] = r2.Vec{X: pt[0], Y: pt[1]}
		}
	} else {
		posture, err := f.posture()
		if err != nil {
			return pose, err
		}
		pose = motion.Place(skel, origin, posture)
	}
	if f.Reflect {
		pose = pose.Reflect(pose[skeleton.Root].X)
	}
	return pose, nil
}

func (m *MotionDef) build() (motion.RigidMotion, error) {
	var rm motion.RigidMotion
	switch strings.ToLower(m.Type) {
	case "linear":
		rm = motion.LinearMotion{
			Velocity:        r2.Vec{X: m.Velocity[0], Y: m.Velocity[1]},
			AngularVelocity: m.AngularVelocity,
		}
	case "rolling":
		if !(m.Radius >= 0) {
			return nil, fmt.Errorf("%w: rolling radius %g", ErrInvalidDefinition, m.Radius)
		}
		rm = motion.Rolling{Radius: m.Radius, AngularVelocity: m.AngularVelocity}
	default:
		return nil, fmt.Errorf("%w: motion type %q", ErrInvalidDefinition, m.Type)
	}

	if m.Start == nil && m.End == nil {
		return rm, nil
	}
	start, end := 0.0, math.Inf(1)
	if m.Start != nil {
		start = *m.Start
	}
	if m.End != nil {
		end = *m.End
	}
	if !(end > start) {
		return nil, fmt.Errorf("%w: motion window [%g, %g]", ErrInvalidDefinition, start, end)
	}
	return motion.Window(rm, start, end), nil
}

// extractCategory gets the base name: up to the first underscore, without
// trailing digits ("walk_sad" -> "walk", "wave2" -> "wave").
func extractCategory(name string) string {
	if i := strings.IndexByte(name, '_'); i > 0 {
		name = name[:i]
	}
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == 0 {
		return name
	}
	return name[:i]
}
