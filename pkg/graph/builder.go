package graph

import (
	"fmt"

	"geotopo/pkg/geom"
)

// EdgeRecord is one geometric edge as delivered by a provider: an ordered
// polyline (start = first coordinate, end = last) plus named numeric
// attributes. Row identifies the record in its source for output.
type EdgeRecord struct {
	Geometry []geom.Coordinate
	Attrs    map[string]float64
	Row      int
}

// BuildOptions control endpoint resolution during construction.
type BuildOptions struct {
	// Tolerance is the maximum coordinate separation at which two edge
	// endpoints collapse into one node. Zero requires exact equality.
	Tolerance float64

	// ZOrient orients every edge from its higher endpoint to its lower
	// one: when the start elevation is below the end elevation the
	// endpoints swap before node resolution.
	ZOrient bool
}

// Build consumes edge records in input order and produces the
// deduplicated graph. Node ids are assigned in discovery order, edge ids
// in input order, both 1-based. Self-loops are preserved. A record
// without at least two coordinates aborts the whole build.
func Build(records []EdgeRecord, opt BuildOptions) (*Graph, error) {
	b := builder{
		index: newNodeIndex(opt.Tolerance),
		zdir:  opt.ZOrient,
	}
	edges := make([]Edge, 0, len(records))
	for i, rec := range records {
		if len(rec.Geometry) < 2 {
			return nil, fmt.Errorf("graph: record %d (row %d): %w", i, rec.Row, ErrMissingGeometry)
		}
		start := rec.Geometry[0]
		end := rec.Geometry[len(rec.Geometry)-1]
		if b.zdir && start.Z < end.Z {
			start, end = end, start
		}
		edges = append(edges, Edge{
			ID:     i + 1,
			Source: b.resolve(start),
			Target: b.resolve(end),
			Attrs:  rec.Attrs,
			Row:    rec.Row,
		})
	}
	return New(b.nodes, edges)
}

// builder threads the node-allocation state through construction; there
// is no global counter.
type builder struct {
	index *nodeIndex
	nodes []Node
	zdir  bool
}

// resolve maps a coordinate to an existing node within tolerance or
// allocates the next id for it.
func (b *builder) resolve(c geom.Coordinate) int {
	if id, ok := b.index.query(c); ok {
		return id
	}
	id := len(b.nodes) + 1
	b.nodes = append(b.nodes, Node{ID: id, Coord: c})
	b.index.insert(c, id)
	return id
}
