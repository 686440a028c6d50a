package route

import (
	"fmt"
	"math"

	"geotopo/pkg/graph"
)

// Tree is the immutable result of one single-source traversal: per-node
// finalized distance and predecessor edge. It is built after the
// traversal completes and queried by pure functions; a cancelled
// traversal never produces one.
type Tree struct {
	g      *graph.Graph
	source int
	dist   []float64 // by node index; +Inf when unreached
	pred   []int32   // predecessor edge index; -1 for source and unreached
	order  []int32   // node indices in finalization (increasing distance) order
}

// Source returns the traversal's source node id.
func (t *Tree) Source() int { return t.source }

// Reached reports whether node was finalized by the traversal.
func (t *Tree) Reached(node int) bool {
	return t.g.HasNode(node) && !math.IsInf(t.dist[node-1], 1) && (node == t.source || t.pred[node-1] >= 0)
}

// Distance returns the shortest distance from the source to node. ok is
// false when node is outside the graph or was not reached.
func (t *Tree) Distance(node int) (float64, bool) {
	if !t.Reached(node) {
		return math.Inf(1), false
	}
	return t.dist[node-1], true
}

// Visited returns the reached node ids in increasing-distance order,
// starting with the source.
func (t *Tree) Visited() []int {
	ids := make([]int, len(t.order))
	for i, v := range t.order {
		ids[i] = int(v) + 1
	}
	return ids
}

// Distances returns the distance map for every reached node other than
// the source.
func (t *Tree) Distances() map[int]float64 {
	m := make(map[int]float64, len(t.order))
	for _, v := range t.order {
		if int(v)+1 == t.source {
			continue
		}
		m[int(v)+1] = t.dist[v]
	}
	return m
}

// Path is a reconstructed shortest path. A zero Found means the target
// was not reached; that is a result, not an error.
type Path struct {
	// Edges of the path. PathTo fills them in target→source walk order;
	// Engine.ShortestPath reverses them into source→target order.
	Edges    []graph.Edge
	Distance float64
	Found    bool
}

// PathTo walks predecessor edges from target back toward the source,
// each step moving to the edge's opposite endpoint. The target equal to
// the source yields an empty found path with distance 0; an unreached
// target yields a not-found path.
func (t *Tree) PathTo(target int) (Path, error) {
	if !t.g.HasNode(target) {
		return Path{}, fmt.Errorf("route: target %d: %w", target, graph.ErrUnknownNode)
	}
	if target == t.source {
		return Path{Found: true}, nil
	}
	if !t.Reached(target) {
		return Path{}, nil
	}
	edges := t.g.Edges()
	var path []graph.Edge
	v := target
	for v != t.source {
		ei := t.pred[v-1]
		if ei < 0 {
			// Source reached; the loop condition already covers this,
			// kept as a guard against inconsistent trees.
			break
		}
		e := edges[ei]
		path = append(path, e)
		v = e.Opposite(v)
	}
	return Path{Edges: path, Distance: t.dist[target-1], Found: true}, nil
}
