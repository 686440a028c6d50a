// Package route runs radius-bounded, early-stoppable Dijkstra traversals
// over one orientation view of a graph and derives shortest paths,
// distance maps and batched multi-request results from the trees it
// produces.
package route

import (
	"context"
	"fmt"
	"math"

	"geotopo/pkg/graph"
)

// cancelCheckInterval is how many heap pops pass between context polls.
// Cancellation lands between pops, so a half-built tree is discarded
// wholesale, never returned.
const cancelCheckInterval = 100

// Engine binds a graph to one orientation and one resolved weight
// vector. It is immutable and safe for concurrent use; every traversal
// owns its own state.
type Engine struct {
	g       *graph.Graph
	o       graph.Orientation
	weights []float64 // nil = unweighted, constant 1
}

// NewEngine validates the orientation and resolves the weight spec once.
func NewEngine(g *graph.Graph, o graph.Orientation, spec graph.WeightSpec) (*Engine, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("route: orientation %d: %w", int(o), graph.ErrInvalidOrientation)
	}
	weights, err := g.Weights(spec)
	if err != nil {
		return nil, err
	}
	return &Engine{g: g, o: o, weights: weights}, nil
}

// Graph returns the underlying graph.
func (e *Engine) Graph() *graph.Graph { return e.g }

// Orientation returns the engine's orientation view.
func (e *Engine) Orientation() graph.Orientation { return e.o }

// Weight returns the traversal cost of the edge at the given index.
func (e *Engine) Weight(edgeIndex int32) float64 {
	if e.weights == nil {
		return 1
	}
	return e.weights[edgeIndex]
}

// TraversalOptions bound a single-source traversal.
type TraversalOptions struct {
	// Radius stops the traversal once the next candidate's distance
	// exceeds it. Zero or negative means unbounded.
	Radius float64

	// Target stops the traversal as soon as that node is finalized,
	// without expanding its neighbors. Zero means none.
	Target int
}

// Traverse computes the shortest-path tree from source. Ties between
// equal-distance candidates break on edge discovery order, so the tree
// is deterministic for identical input. Cancellation is polled every
// cancelCheckInterval pops and returns ctx.Err() with no tree.
func (e *Engine) Traverse(ctx context.Context, source int, opt TraversalOptions) (*Tree, error) {
	if !e.g.HasNode(source) {
		return nil, fmt.Errorf("route: source %d: %w", source, graph.ErrUnknownNode)
	}
	radius := opt.Radius
	if radius <= 0 {
		radius = math.Inf(1)
	}

	n := e.g.NumNodes()
	dist := make([]float64, n)
	pred := make([]int32, n)
	done := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		pred[i] = -1
	}

	src := int32(source - 1)
	dist[src] = 0
	var h minHeap
	h.Push(src, 0)
	order := make([]int32, 0, 16)

	pops := 0
	for h.Len() > 0 {
		pops++
		if pops%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		item := h.Pop()
		u := item.node
		if done[u] {
			continue // stale entry
		}
		if item.dist > radius {
			break // everything still queued is out of range
		}
		done[u] = true
		order = append(order, u)

		if opt.Target != 0 && int(u)+1 == opt.Target {
			break
		}

		d := item.dist
		e.g.Outgoing(e.o, u, func(a graph.Arc) bool {
			nd := d + e.Weight(a.EdgeIndex)
			if nd < dist[a.To] {
				dist[a.To] = nd
				pred[a.To] = a.EdgeIndex
				h.Push(a.To, nd)
			}
			return true
		})
	}

	// Nodes relaxed but never finalized keep tentative distances; drop
	// them so the tree only reports finalized state.
	for i := range dist {
		if !done[i] {
			dist[i] = math.Inf(1)
			pred[i] = -1
		}
	}

	return &Tree{g: e.g, source: source, dist: dist, pred: pred, order: order}, nil
}

// ShortestPath returns the shortest path from source to target in
// source→target edge order, bounded by radius (zero = unbounded). An
// unreachable target yields a not-found path, not an error.
func (e *Engine) ShortestPath(ctx context.Context, source, target int, radius float64) (Path, error) {
	if !e.g.HasNode(target) {
		return Path{}, fmt.Errorf("route: target %d: %w", target, graph.ErrUnknownNode)
	}
	t, err := e.Traverse(ctx, source, TraversalOptions{Radius: radius, Target: target})
	if err != nil {
		return Path{}, err
	}
	p, err := t.PathTo(target)
	if err != nil {
		return Path{}, err
	}
	reverse(p.Edges)
	return p, nil
}

// ShortestPathLength returns the distance map from source to every other
// reachable node, bounded by radius (zero = unbounded).
func (e *Engine) ShortestPathLength(ctx context.Context, source int, radius float64) (map[int]float64, error) {
	t, err := e.Traverse(ctx, source, TraversalOptions{Radius: radius})
	if err != nil {
		return nil, err
	}
	return t.Distances(), nil
}

// ReachableEdges returns the predecessor edges of every node reached
// from source, i.e. the shortest-path tree's edge set, in finalization
// order. With a radius it is limited to nodes within that distance.
func (e *Engine) ReachableEdges(ctx context.Context, source int, radius float64) ([]graph.Edge, error) {
	t, err := e.Traverse(ctx, source, TraversalOptions{Radius: radius})
	if err != nil {
		return nil, err
	}
	edges := e.g.Edges()
	out := make([]graph.Edge, 0, len(t.order))
	for _, v := range t.order {
		if ei := t.pred[v]; ei >= 0 {
			out = append(out, edges[ei])
		}
	}
	return out, nil
}

func reverse(edges []graph.Edge) {
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
}
