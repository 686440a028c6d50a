package graph

import (
	"github.com/tidwall/rtree"

	"geotopo/pkg/geom"
)

// nodeIndex resolves coordinates to node ids during construction using an
// R-tree of node envelopes. With a positive tolerance both the stored and
// the probed envelopes are expanded by it, so two points merge when their
// expanded boxes intersect.
//
// Matching is insertion-order-dependent: when several indexed nodes fall
// within tolerance of a probe, the one indexed first (smallest id) wins.
// The index never merges clusters transitively; downstream results depend
// on this exact behavior.
type nodeIndex struct {
	tr        rtree.RTreeG[int]
	tolerance float64
}

func newNodeIndex(tolerance float64) *nodeIndex {
	return &nodeIndex{tolerance: tolerance}
}

func (ix *nodeIndex) envelope(c geom.Coordinate) (min, max [2]float64) {
	min = [2]float64{c.X, c.Y}
	max = min
	if ix.tolerance > 0 {
		min[0] -= ix.tolerance
		min[1] -= ix.tolerance
		max[0] += ix.tolerance
		max[1] += ix.tolerance
	}
	return min, max
}

// query returns the first-indexed node whose envelope intersects the
// probe's envelope. ok is false when the probe matches nothing and the
// caller should allocate a new node.
func (ix *nodeIndex) query(c geom.Coordinate) (id int, ok bool) {
	min, max := ix.envelope(c)
	best := 0
	ix.tr.Search(min, max, func(_, _ [2]float64, data int) bool {
		if best == 0 || data < best {
			best = data
		}
		return true
	})
	return best, best != 0
}

// insert indexes a node envelope under its id.
func (ix *nodeIndex) insert(c geom.Coordinate, id int) {
	min, max := ix.envelope(c)
	ix.tr.Insert(min, max, id)
}
