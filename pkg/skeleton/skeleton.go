package skeleton

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Bone is the rigid segment between a joint and its parent.
type Bone struct {
	// Length is the fixed distance to the parent joint. Must be positive.
	Length float64 `json:"length" yaml:"length"`

	// Rest is the segment angle relative to the parent segment's absolute
	// direction when every articulation angle is zero. Children of the root
	// are relative to the body axis, which points up (+y) at zero rotation.
	Rest float64 `json:"rest" yaml:"rest"`
}

// Skeleton is an immutable description of the figure. It is safe for
// concurrent use.
type Skeleton struct {
	bones    [NumJoints]Bone
	order    [NumJoints]JointID
	children [NumJoints][]JointID
}

// New builds a skeleton from one bone per non-root joint.
func New(bones map[JointID]Bone) (*Skeleton, error) {
	s := &Skeleton{}
	for id, b := range bones {
		if !id.Valid() {
			return nil, &JointError{ID: id}
		}
		if id == Root {
			return nil, fmt.Errorf("%w: %s", ErrNoSegment, id)
		}
		if !(b.Length > 0) || math.IsInf(b.Length, 0) {
			return nil, &SegmentError{ID: id, Length: b.Length, Err: ErrDegenerateSegment}
		}
		s.bones[id] = b
	}
	for _, id := range All() {
		if id == Root {
			continue
		}
		if _, ok := bones[id]; !ok {
			return nil, &SegmentError{ID: id, Err: ErrMissingSegment}
		}
	}

	order, err := traversalOrder()
	if err != nil {
		return nil, err
	}
	s.order = order
	for _, id := range order {
		if id == Root {
			continue
		}
		p := parents[id]
		s.children[p] = append(s.children[p], id)
	}
	return s, nil
}

// traversalOrder checks that the topology is a single-rooted tree and
// returns a parent-before-child ordering of all joints.
func traversalOrder() ([NumJoints]JointID, error) {
	var order [NumJoints]JointID

	g := simple.NewDirectedGraph()
	for _, id := range All() {
		g.AddNode(simple.Node(id))
	}
	for _, id := range All() {
		if id == Root {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(parents[id]), simple.Node(id)))
	}

	roots := 0
	for _, id := range All() {
		switch g.To(int64(id)).Len() {
		case 0:
			roots++
		case 1:
		default:
			return order, fmt.Errorf("%w: %s has several parents", ErrNotTree, id)
		}
	}
	if roots != 1 {
		return order, fmt.Errorf("%w: %d roots", ErrNotTree, roots)
	}

	sorted, err := topo.SortStabilized(g, func(nodes []graph.Node) {
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	})
	if err != nil {
		return order, fmt.Errorf("%w: %v", ErrNotTree, err)
	}
	if len(sorted) != NumJoints || JointID(sorted[0].ID()) != Root {
		return order, fmt.Errorf("%w: traversal does not start at %s", ErrNotTree, Root)
	}
	for i, n := range sorted {
		order[i] = JointID(n.ID())
	}
	return order, nil
}

// Default returns a figure about one unit tall standing with straight limbs:
// arms hanging, legs vertical, pelvis about 0.55 above the feet.
func Default() *Skeleton {
	s, err := New(DefaultBones())
	if err != nil {
		panic(err)
	}
	return s
}

// DefaultBones returns the bone table used by Default. Callers may tweak a
// copy and pass it to New.
func DefaultBones() map[JointID]Bone {
	const shoulderSplay = 0.35
	const hipSplay = 0.5
	return map[JointID]Bone{
		Neck:          {Length: 0.30},
		Head:          {Length: 0.12},
		LeftShoulder:  {Length: 0.07, Rest: math.Pi - shoulderSplay},
		RightShoulder: {Length: 0.07, Rest: -(math.Pi - shoulderSplay)},
		LeftElbow:     {Length: 0.17, Rest: shoulderSplay},
		RightElbow:    {Length: 0.17, Rest: -shoulderSplay},
		LeftWrist:     {Length: 0.15},
		RightWrist:    {Length: 0.15},
		LeftHip:       {Length: 0.06, Rest: math.Pi - hipSplay},
		RightHip:      {Length: 0.06, Rest: -(math.Pi - hipSplay)},
		LeftKnee:      {Length: 0.25, Rest: hipSplay},
		RightKnee:     {Length: 0.25, Rest: -hipSplay},
		LeftAnkle:     {Length: 0.25},
		RightAnkle:    {Length: 0.25},
	}
}

// Bones returns a copy of the bone table.
func (s *Skeleton) Bones() map[JointID]Bone {
	out := make(map[JointID]Bone, NumJoints-1)
	for _, id := range All() {
		if id != Root {
			out[id] = s.bones[id]
		}
	}
	return out
}

// Scaled returns a copy with every length multiplied by f.
func (s *Skeleton) Scaled(f float64) (*Skeleton, error) {
	bones := s.Bones()
	for id, b := range bones {
		b.Length *= f
		bones[id] = b
	}
	return New(bones)
}

// SegmentLength returns the fixed length between id and its parent.
func (s *Skeleton) SegmentLength(id JointID) (float64, error) {
	if !id.Valid() {
		return 0, &JointError{ID: id}
	}
	if id == Root {
		return 0, ErrNoSegment
	}
	return s.bones[id].Length, nil
}

// Rest returns the rest angle of id's segment. The root returns 0.
func (s *Skeleton) Rest(id JointID) float64 {
	if !id.Valid() {
		return 0
	}
	return s.bones[id].Rest
}

// ParentOf returns id's parent. ok is false for the root and for
// identifiers outside the 15 roles.
func (s *Skeleton) ParentOf(id JointID) (parent JointID, ok bool) {
	if !id.Valid() || id == Root {
		return 0, false
	}
	return parents[id], true
}

// Children returns the direct children of id in traversal order.
func (s *Skeleton) Children(id JointID) []JointID {
	if !id.Valid() {
		return nil
	}
	return append([]JointID(nil), s.children[id]...)
}

// Order returns every joint with parents before children, starting at Root.
func (s *Skeleton) Order() []JointID {
	return append([]JointID(nil), s.order[:]...)
}

// Chain returns the joints from the root down to id, inclusive.
func (s *Skeleton) Chain(id JointID) []JointID {
	if !id.Valid() {
		return nil
	}
	var chain []JointID
	for j := id; ; j = parents[j] {
		chain = append(chain, j)
		if j == Root {
			break
		}
	}
	for i, k := 0, len(chain)-1; i < k; i, k = i+1, k-1 {
		chain[i], chain[k] = chain[k], chain[i]
	}
	return chain
}

// Verify checks every segment of p against the declared lengths.
func (s *Skeleton) Verify(p Pose, tol float64) error {
	for _, id := range s.order {
		if id == Root {
			continue
		}
		want := s.bones[id].Length
		got := p.Distance(id, parents[id])
		if math.Abs(got-want) > tol || math.IsNaN(got) {
			return &SegmentError{ID: id, Length: want, Actual: got, Err: ErrSegmentLength}
		}
	}
	return nil
}
