package route

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"geotopo/pkg/graph"
)

// fiveNode is a directed weighted graph with two equal-cost routes from
// 1 to 3; the one discovered through edge 2 (1->4) wins the tie.
//
//	1 --7--> 2 --1--> 3
//	1 --5--> 4 --3--> 3
//	plus 1->5(7), 2->5(4), 4->2(2), 4->5(2), 5->3(6)
func fiveNode(t *testing.T) *graph.Graph {
	t.Helper()
	nodes := make([]graph.Node, 5)
	for i := range nodes {
		nodes[i] = graph.Node{ID: i + 1}
	}
	w := func(v float64) map[string]float64 { return map[string]float64{"length": v} }
	edges := []graph.Edge{
		{ID: 1, Source: 1, Target: 2, Attrs: w(7)},
		{ID: 2, Source: 1, Target: 4, Attrs: w(5)},
		{ID: 3, Source: 1, Target: 5, Attrs: w(7)},
		{ID: 4, Source: 2, Target: 3, Attrs: w(1)},
		{ID: 5, Source: 2, Target: 5, Attrs: w(4)},
		{ID: 6, Source: 4, Target: 2, Attrs: w(2)},
		{ID: 7, Source: 4, Target: 3, Attrs: w(3)},
		{ID: 8, Source: 4, Target: 5, Attrs: w(2)},
		{ID: 9, Source: 5, Target: 3, Attrs: w(6)},
	}
	g, err := graph.New(nodes, edges)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

// Cumulative distances from node 3 over sixNode, directed:
//
//	d(6) = w36
//	d(5) = w35
//	d(1) = d(6) + w61
//	d(4) = d(1) + w14
const (
	w23 = 129.63024338479042
	w35 = 133.4541119636259
	w36 = 51.35172830587107
	w61 = 211.6687715105811
	w14 = 56.32051136131489
)

// sixNode mirrors a small river-network extract: node 2 drains into 3,
// which splits toward 5 and toward 6 -> 1 -> 4.
func sixNode(t *testing.T) *graph.Graph {
	t.Helper()
	nodes := make([]graph.Node, 6)
	for i := range nodes {
		nodes[i] = graph.Node{ID: i + 1}
	}
	w := func(v float64) map[string]float64 { return map[string]float64{"length": v} }
	edges := []graph.Edge{
		{ID: 1, Source: 2, Target: 3, Attrs: w(w23)},
		{ID: 2, Source: 3, Target: 5, Attrs: w(w35)},
		{ID: 3, Source: 3, Target: 6, Attrs: w(w36)},
		{ID: 4, Source: 6, Target: 1, Attrs: w(w61)},
		{ID: 5, Source: 1, Target: 4, Attrs: w(w14)},
	}
	g, err := graph.New(nodes, edges)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func newTestEngine(t *testing.T, g *graph.Graph, o graph.Orientation) *Engine {
	t.Helper()
	e, err := NewEngine(g, o, graph.WeightAttribute("length"))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestShortestPathFiveNode(t *testing.T) {
	e := newTestEngine(t, fiveNode(t), graph.Directed)

	p, err := e.ShortestPath(context.Background(), 1, 3, 0)
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}
	if !p.Found {
		t.Fatal("path not found")
	}
	if p.Distance != 8 {
		t.Errorf("distance = %v, want 8", p.Distance)
	}

	// The tie against 1->2->3 (also 8) breaks on discovery order: edge
	// 1->4 relaxes node 4 before node 2's expansion can reach 3.
	ids := make([]int, len(p.Edges))
	for i, e := range p.Edges {
		ids[i] = e.ID
	}
	if !reflect.DeepEqual(ids, []int{2, 7}) {
		t.Errorf("path edges = %v, want [2 7]", ids)
	}
	if p.Edges[0].Source != 1 || p.Edges[len(p.Edges)-1].Target != 3 {
		t.Errorf("path not in source->target order: %v", ids)
	}

	sum := 0.0
	for _, pe := range p.Edges {
		sum += pe.Attrs["length"]
	}
	if sum != p.Distance {
		t.Errorf("edge weights sum to %v, distance says %v", sum, p.Distance)
	}
}

func TestTraverseDirectedReference(t *testing.T) {
	e := newTestEngine(t, sixNode(t), graph.Directed)

	tr, err := e.Traverse(context.Background(), 3, TraversalOptions{})
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}

	want := map[int]float64{
		5: w35,
		6: w36,
		1: w36 + w61,
		4: w36 + w61 + w14,
	}
	got := tr.Distances()
	if len(got) != len(want) {
		t.Fatalf("reached %d nodes, want %d: %v", len(got), len(want), got)
	}
	for node, d := range want {
		if got[node] != d {
			t.Errorf("d(%d) = %v, want exactly %v", node, got[node], d)
		}
	}
	if _, ok := got[3]; ok {
		t.Error("distance map contains the source")
	}
	if tr.Reached(2) {
		t.Error("node 2 reached under directed view")
	}
}

func TestTraverseReversedReference(t *testing.T) {
	e := newTestEngine(t, sixNode(t), graph.DirectedReversed)

	got, err := e.ShortestPathLength(context.Background(), 3, 0)
	if err != nil {
		t.Fatalf("ShortestPathLength: %v", err)
	}
	if !reflect.DeepEqual(got, map[int]float64{2: w23}) {
		t.Errorf("reversed distances = %v, want only node 2 at %v", got, w23)
	}
}

func TestTraverseUndirectedReference(t *testing.T) {
	e := newTestEngine(t, sixNode(t), graph.Undirected)

	got, err := e.ShortestPathLength(context.Background(), 3, 0)
	if err != nil {
		t.Fatalf("ShortestPathLength: %v", err)
	}
	want := map[int]float64{
		2: w23,
		5: w35,
		6: w36,
		1: w36 + w61,
		4: w36 + w61 + w14,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("undirected distances = %v, want %v", got, want)
	}
}

func TestReversedMatchesTransposedDirected(t *testing.T) {
	g := fiveNode(t)
	rev := newTestEngine(t, g, graph.DirectedReversed)
	fwd := newTestEngine(t, g, graph.Directed)

	// d_rev(3 -> v) must equal d_fwd(v -> 3) for every v.
	back, err := rev.ShortestPathLength(context.Background(), 3, 0)
	if err != nil {
		t.Fatalf("ShortestPathLength: %v", err)
	}
	for v, d := range back {
		p, err := fwd.ShortestPath(context.Background(), v, 3, 0)
		if err != nil {
			t.Fatalf("ShortestPath(%d, 3): %v", v, err)
		}
		if !p.Found || p.Distance != d {
			t.Errorf("forward %d->3 = %v (found=%t), reversed says %v", v, p.Distance, p.Found, d)
		}
	}
}

func TestTraverseRadius(t *testing.T) {
	e := newTestEngine(t, sixNode(t), graph.Directed)

	got, err := e.ShortestPathLength(context.Background(), 3, 100)
	if err != nil {
		t.Fatalf("ShortestPathLength: %v", err)
	}
	if !reflect.DeepEqual(got, map[int]float64{6: w36}) {
		t.Errorf("distances within 100 = %v, want only node 6", got)
	}

	// A node exactly at the radius is included.
	got, err = e.ShortestPathLength(context.Background(), 3, w36)
	if err != nil {
		t.Fatalf("ShortestPathLength: %v", err)
	}
	if _, ok := got[6]; !ok {
		t.Errorf("node at distance == radius excluded: %v", got)
	}
}

func TestTraverseTargetEarlyStop(t *testing.T) {
	e := newTestEngine(t, sixNode(t), graph.Directed)

	tr, err := e.Traverse(context.Background(), 3, TraversalOptions{Target: 1})
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}
	if d, ok := tr.Distance(1); !ok || d != w36+w61 {
		t.Errorf("d(1) = %v, %t, want %v", d, ok, w36+w61)
	}
	// Node 4 sits beyond the target and is never expanded into.
	if tr.Reached(4) {
		t.Error("node beyond the early-stop target was finalized")
	}
}

func TestPathToSource(t *testing.T) {
	e := newTestEngine(t, sixNode(t), graph.Directed)

	p, err := e.ShortestPath(context.Background(), 3, 3, 0)
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}
	if !p.Found || p.Distance != 0 || len(p.Edges) != 0 {
		t.Errorf("source-to-source path = %+v, want empty found path", p)
	}
}

func TestPathUnreachable(t *testing.T) {
	e := newTestEngine(t, sixNode(t), graph.Directed)

	p, err := e.ShortestPath(context.Background(), 3, 2, 0)
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}
	if p.Found {
		t.Errorf("path to unreachable node reported found: %+v", p)
	}
}

func TestPathEdgeChain(t *testing.T) {
	e := newTestEngine(t, sixNode(t), graph.Directed)

	p, err := e.ShortestPath(context.Background(), 3, 4, 0)
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}
	ids := make([]int, len(p.Edges))
	for i, pe := range p.Edges {
		ids[i] = pe.ID
	}
	if !reflect.DeepEqual(ids, []int{3, 4, 5}) {
		t.Fatalf("path edges = %v, want [3 4 5]", ids)
	}
	// Consecutive edges share an endpoint.
	at := 3
	for _, pe := range p.Edges {
		if pe.Source != at && pe.Target != at {
			t.Fatalf("edge %d does not touch node %d", pe.ID, at)
		}
		at = pe.Opposite(at)
	}
	if at != 4 {
		t.Errorf("path ends at %d, want 4", at)
	}
	if p.Distance != w36+w61+w14 {
		t.Errorf("distance = %v, want %v", p.Distance, w36+w61+w14)
	}
}

func TestUnknownEndpoints(t *testing.T) {
	e := newTestEngine(t, sixNode(t), graph.Directed)

	if _, err := e.Traverse(context.Background(), 99, TraversalOptions{}); !errors.Is(err, graph.ErrUnknownNode) {
		t.Errorf("unknown source err = %v, want ErrUnknownNode", err)
	}
	if _, err := e.ShortestPath(context.Background(), 3, 99, 0); !errors.Is(err, graph.ErrUnknownNode) {
		t.Errorf("unknown target err = %v, want ErrUnknownNode", err)
	}
}

func TestUnweightedTraversal(t *testing.T) {
	e, err := NewEngine(fiveNode(t), graph.Directed, graph.Unweighted())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	got, err := e.ShortestPathLength(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("ShortestPathLength: %v", err)
	}
	want := map[int]float64{2: 1, 3: 2, 4: 1, 5: 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("hop counts = %v, want %v", got, want)
	}
}

func TestNewEngineErrors(t *testing.T) {
	g := fiveNode(t)
	if _, err := NewEngine(g, graph.Orientation(9), graph.Unweighted()); !errors.Is(err, graph.ErrInvalidOrientation) {
		t.Errorf("invalid orientation err = %v", err)
	}
	if _, err := NewEngine(g, graph.Directed, graph.WeightAttribute("nope")); !errors.Is(err, graph.ErrMissingAttribute) {
		t.Errorf("missing attribute err = %v", err)
	}
}

func TestTraverseDeterministic(t *testing.T) {
	e := newTestEngine(t, fiveNode(t), graph.Directed)

	first, err := e.Traverse(context.Background(), 1, TraversalOptions{})
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}
	for i := 0; i < 5; i++ {
		tr, err := e.Traverse(context.Background(), 1, TraversalOptions{})
		if err != nil {
			t.Fatalf("Traverse: %v", err)
		}
		if !reflect.DeepEqual(tr.Visited(), first.Visited()) {
			t.Fatalf("visit order changed between runs: %v vs %v", tr.Visited(), first.Visited())
		}
		if !reflect.DeepEqual(tr.Distances(), first.Distances()) {
			t.Fatalf("distances changed between runs")
		}
	}
}

func TestVisitedOrder(t *testing.T) {
	e := newTestEngine(t, sixNode(t), graph.Directed)

	tr, err := e.Traverse(context.Background(), 3, TraversalOptions{})
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}
	visited := tr.Visited()
	if visited[0] != 3 {
		t.Fatalf("visit order starts with %d, want the source", visited[0])
	}
	prev := math.Inf(-1)
	for _, v := range visited {
		d, ok := tr.Distance(v)
		if !ok {
			t.Fatalf("visited node %d has no distance", v)
		}
		if d < prev {
			t.Fatalf("visit order not by increasing distance at node %d", v)
		}
		prev = d
	}
}

func TestReachableEdges(t *testing.T) {
	e := newTestEngine(t, sixNode(t), graph.Directed)

	edges, err := e.ReachableEdges(context.Background(), 3, 0)
	if err != nil {
		t.Fatalf("ReachableEdges: %v", err)
	}
	ids := make([]int, len(edges))
	for i, pe := range edges {
		ids[i] = pe.ID
	}
	// Tree edges in finalization order of their head nodes.
	if !reflect.DeepEqual(ids, []int{3, 2, 4, 5}) {
		t.Errorf("tree edges = %v, want [3 2 4 5]", ids)
	}
}

// chain builds a long unweighted path so a traversal crosses the
// cancellation poll interval.
func chain(t *testing.T, n int) *graph.Graph {
	t.Helper()
	nodes := make([]graph.Node, n)
	for i := range nodes {
		nodes[i] = graph.Node{ID: i + 1}
	}
	edges := make([]graph.Edge, n-1)
	for i := range edges {
		edges[i] = graph.Edge{ID: i + 1, Source: i + 1, Target: i + 2}
	}
	g, err := graph.New(nodes, edges)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestTraverseCancellation(t *testing.T) {
	e, err := NewEngine(chain(t, 4*cancelCheckInterval), graph.Directed, graph.Unweighted())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr, err := e.Traverse(ctx, 1, TraversalOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if tr != nil {
		t.Error("cancelled traversal returned a tree")
	}
}
