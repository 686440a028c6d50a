package graph

import "fmt"

// Orientation selects the traversal-direction semantics applied to the
// edge set. The codes match the convention of spatial SQL graph functions:
// 1 directed, 2 directed with every edge reversed, 3 undirected.
type Orientation int

const (
	Directed         Orientation = 1
	DirectedReversed Orientation = 2
	Undirected       Orientation = 3
)

// ParseOrientation validates a numeric orientation code.
func ParseOrientation(code int) (Orientation, error) {
	o := Orientation(code)
	if !o.Valid() {
		return 0, fmt.Errorf("graph: orientation %d: %w", code, ErrInvalidOrientation)
	}
	return o, nil
}

// Valid reports whether o is one of the three recognized orientations.
func (o Orientation) Valid() bool {
	return o == Directed || o == DirectedReversed || o == Undirected
}

// Transpose returns the orientation whose outgoing arcs are o's incoming
// arcs. Undirected is its own transpose.
func (o Orientation) Transpose() Orientation {
	switch o {
	case Directed:
		return DirectedReversed
	case DirectedReversed:
		return Directed
	default:
		return o
	}
}

func (o Orientation) String() string {
	switch o {
	case Directed:
		return "directed"
	case DirectedReversed:
		return "reversed"
	case Undirected:
		return "undirected"
	default:
		return fmt.Sprintf("orientation(%d)", int(o))
	}
}

// Arc is one traversable direction of an edge as seen from a node: the
// edge's index in the edge set and the node index (0-based) of the far
// endpoint.
type Arc struct {
	EdgeIndex int32
	To        int32
}

// Outgoing calls fn for every arc leaving node index v under orientation
// o, in edge-input order. It stops early when fn returns false.
//
// Under Undirected each edge yields one arc per traversal direction but a
// self-loop is emitted once, so path reconstruction always recovers one
// original edge.
func (g *Graph) Outgoing(o Orientation, v int32, fn func(Arc) bool) {
	switch o {
	case Directed:
		for _, ei := range g.out[v] {
			if !fn(Arc{EdgeIndex: ei, To: int32(g.edges[ei].Target - 1)}) {
				return
			}
		}
	case DirectedReversed:
		for _, ei := range g.in[v] {
			if !fn(Arc{EdgeIndex: ei, To: int32(g.edges[ei].Source - 1)}) {
				return
			}
		}
	case Undirected:
		for _, ei := range g.out[v] {
			if !fn(Arc{EdgeIndex: ei, To: int32(g.edges[ei].Target - 1)}) {
				return
			}
		}
		for _, ei := range g.in[v] {
			e := g.edges[ei]
			if e.Source == e.Target {
				continue // self-loop already seen in the out list
			}
			if !fn(Arc{EdgeIndex: ei, To: int32(e.Source - 1)}) {
				return
			}
		}
	}
}
