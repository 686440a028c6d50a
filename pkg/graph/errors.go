package graph

import "errors"

// Sentinel errors for graph construction and query validation. Callers
// match with errors.Is; wrapped messages carry the offending identifiers.
var (
	// ErrMissingGeometry is returned when an edge record has fewer than
	// two coordinates. Construction aborts; no partial graph is returned.
	ErrMissingGeometry = errors.New("edge record has no usable geometry")

	// ErrUnknownNode is returned when a query names a node id outside
	// the graph's node set.
	ErrUnknownNode = errors.New("unknown node")

	// ErrMissingAttribute is returned when a weight spec names an
	// attribute some edge does not carry.
	ErrMissingAttribute = errors.New("missing weight attribute")

	// ErrInvalidOrientation is returned for orientation codes outside
	// Directed, DirectedReversed and Undirected.
	ErrInvalidOrientation = errors.New("invalid orientation")

	// ErrNegativeWeight is returned when a resolved edge weight is
	// negative. Traversal over negative weights is undefined, so weight
	// resolution fails fast instead.
	ErrNegativeWeight = errors.New("negative edge weight")

	// ErrNodeOrder is returned by New when node ids are not dense and
	// 1-based in slice order.
	ErrNodeOrder = errors.New("node ids must be dense, 1-based and in order")
)
