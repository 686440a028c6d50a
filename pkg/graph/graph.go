// Package graph builds a deduplicated topological graph from geometric
// edge records and exposes read-only orientation views over it.
//
// Node ids are dense and 1-based, assigned in discovery order during
// construction. Edge ids are 1-based in input order. The graph is a
// multigraph: parallel edges between the same endpoints stay distinct.
// A Graph is immutable once built and safe for concurrent reads.
package graph

import (
	"fmt"

	"geotopo/pkg/geom"
)

// Node is a topological junction with a representative coordinate.
type Node struct {
	ID    int
	Coord geom.Coordinate
}

// Edge connects two resolved node ids. Attrs holds the named numeric
// attributes carried over from the source record; Row points back to the
// record the edge came from so results can reference their input.
type Edge struct {
	ID     int
	Source int
	Target int
	Attrs  map[string]float64
	Row    int
}

// Opposite returns the endpoint of e that is not v. For a self-loop it
// returns v itself.
func (e Edge) Opposite(v int) int {
	if v == e.Source {
		return e.Target
	}
	return e.Source
}

// Graph is a node set plus an edge set with adjacency by declared source
// and by declared target. Orientation views reinterpret this adjacency at
// query time; they never copy or renumber it.
type Graph struct {
	nodes []Node
	edges []Edge
	out   [][]int32 // edge indices whose declared source is the node
	in    [][]int32 // edge indices whose declared target is the node
}

// New assembles a graph from already-resolved nodes and edges. Node ids
// must be dense, 1-based and listed in id order; edge endpoints must name
// existing nodes.
func New(nodes []Node, edges []Edge) (*Graph, error) {
	for i, n := range nodes {
		if n.ID != i+1 {
			return nil, fmt.Errorf("graph: node %d at position %d: %w", n.ID, i, ErrNodeOrder)
		}
	}
	g := &Graph{
		nodes: nodes,
		edges: edges,
		out:   make([][]int32, len(nodes)),
		in:    make([][]int32, len(nodes)),
	}
	for i, e := range edges {
		if e.Source < 1 || e.Source > len(nodes) {
			return nil, fmt.Errorf("graph: edge %d source %d: %w", e.ID, e.Source, ErrUnknownNode)
		}
		if e.Target < 1 || e.Target > len(nodes) {
			return nil, fmt.Errorf("graph: edge %d target %d: %w", e.ID, e.Target, ErrUnknownNode)
		}
		g.out[e.Source-1] = append(g.out[e.Source-1], int32(i))
		g.in[e.Target-1] = append(g.in[e.Target-1], int32(i))
	}
	return g, nil
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumEdges returns the number of edges.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Nodes returns the node set in id order. The slice is shared; do not mutate.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns the edge set in input order. The slice is shared; do not mutate.
func (g *Graph) Edges() []Edge { return g.edges }

// HasNode reports whether id names a node of the graph.
func (g *Graph) HasNode(id int) bool { return id >= 1 && id <= len(g.nodes) }

// Node returns the node with the given id.
func (g *Graph) Node(id int) (Node, error) {
	if !g.HasNode(id) {
		return Node{}, fmt.Errorf("graph: node %d: %w", id, ErrUnknownNode)
	}
	return g.nodes[id-1], nil
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id int) (Edge, error) {
	if id < 1 || id > len(g.edges) {
		return Edge{}, fmt.Errorf("graph: edge %d: %w", id, ErrUnknownNode)
	}
	return g.edges[id-1], nil
}
