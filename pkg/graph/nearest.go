package graph

import (
	"github.com/tidwall/rtree"

	"geotopo/pkg/geom"
)

// Locator answers nearest-node lookups over a finished graph. It is
// separate from the construction-time index: the graph keeps no spatial
// state of its own after Build returns.
type Locator struct {
	tr      rtree.RTreeG[int32]
	g       *Graph
	maxDist float64
}

// NewLocator indexes every node of g. maxDist bounds the search: queries
// farther than maxDist from all nodes report no match.
func NewLocator(g *Graph, maxDist float64) *Locator {
	l := &Locator{g: g, maxDist: maxDist}
	for i, n := range g.nodes {
		p := [2]float64{n.Coord.X, n.Coord.Y}
		l.tr.Insert(p, p, int32(i))
	}
	return l
}

// Nearest returns the id of the node closest to c and its planar
// distance. ok is false when no node lies within maxDist.
func (l *Locator) Nearest(c geom.Coordinate) (id int, dist float64, ok bool) {
	min := [2]float64{c.X - l.maxDist, c.Y - l.maxDist}
	max := [2]float64{c.X + l.maxDist, c.Y + l.maxDist}

	best := -1
	bestDist := 0.0
	l.tr.Search(min, max, func(_, _ [2]float64, data int32) bool {
		d := geom.Distance(c, l.g.nodes[data].Coord)
		if d > l.maxDist {
			return true
		}
		// Equidistant candidates resolve to the smallest node id.
		if best == -1 || d < bestDist || (d == bestDist && int(data) < best) {
			best = int(data)
			bestDist = d
		}
		return true
	})
	if best == -1 {
		return 0, 0, false
	}
	return best + 1, bestDist, true
}
