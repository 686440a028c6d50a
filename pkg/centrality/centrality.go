// Package centrality computes betweenness and closeness for every node
// of a graph under one orientation, weighted or unweighted.
//
// One single-source traversal runs per node; the per-source pass then
// recovers shortest-path counts and propagates Brandes dependencies from
// the finished tree, so the traversal routine itself stays untouched.
package centrality

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"geotopo/pkg/graph"
	"geotopo/pkg/route"
)

// Config selects the analysis variant.
type Config struct {
	Orientation graph.Orientation
	Weights     graph.WeightSpec

	// Normalized divides betweenness by (n-1)(n-2), halved for the
	// undirected view. Default is raw accumulation: reference outputs
	// of spatial graph analysis tables are unnormalized.
	Normalized bool

	// Workers bounds the parallel source passes. Zero means GOMAXPROCS.
	Workers int
}

// Result holds both indices for one node.
type Result struct {
	Betweenness float64
	Closeness   float64
}

// Analyze runs the full analysis and returns one Result per node id.
// Source passes are independent; they run on parallel workers, each
// owning its accumulators, merged by summation afterwards. Cancellation
// discards all partial accumulation.
func Analyze(ctx context.Context, g *graph.Graph, cfg Config) (map[int]Result, error) {
	engine, err := route.NewEngine(g, cfg.Orientation, cfg.Weights)
	if err != nil {
		return nil, err
	}

	n := g.NumNodes()
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	slog.Debug("centrality analysis",
		slog.Int("nodes", n),
		slog.Int("workers", workers),
		slog.String("orientation", cfg.Orientation.String()),
		slog.String("weights", cfg.Weights.String()))

	betweenness := make([]float64, n)
	closeness := make([]float64, n)
	partials := make([][]float64, workers)

	eg, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * n / workers
		hi := (w + 1) * n / workers
		eg.Go(func() error {
			acc := make([]float64, n)
			pass := newPass(engine)
			for s := lo; s < hi; s++ {
				if err := pass.run(ctx, s+1, acc, closeness); err != nil {
					return err
				}
			}
			partials[w] = acc
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Merge in worker order for reproducible floating-point sums.
	for _, acc := range partials {
		for i, v := range acc {
			betweenness[i] += v
		}
	}
	if cfg.Normalized && n > 2 {
		denom := float64(n-1) * float64(n-2)
		if cfg.Orientation == graph.Undirected {
			denom /= 2
		}
		for i := range betweenness {
			betweenness[i] /= denom
		}
	}

	results := make(map[int]Result, n)
	for i := 0; i < n; i++ {
		results[i+1] = Result{Betweenness: betweenness[i], Closeness: closeness[i]}
	}
	return results, nil
}

// pass holds per-worker scratch reused across source passes.
type pass struct {
	engine *route.Engine
	g      *graph.Graph
	sigma  []float64
	delta  []float64
}

func newPass(e *route.Engine) *pass {
	n := e.Graph().NumNodes()
	return &pass{
		engine: e,
		g:      e.Graph(),
		sigma:  make([]float64, n),
		delta:  make([]float64, n),
	}
}

// run traverses from source, accumulates Brandes dependencies into acc
// (indexed by node) and writes the source's closeness. closeness slots
// are disjoint across workers, so no locking is needed.
func (p *pass) run(ctx context.Context, source int, acc, closeness []float64) error {
	t, err := p.engine.Traverse(ctx, source, route.TraversalOptions{})
	if err != nil {
		return err
	}
	visited := t.Visited()
	transpose := p.engine.Orientation().Transpose()

	for _, v := range visited {
		p.sigma[v-1] = 0
		p.delta[v-1] = 0
	}
	p.sigma[source-1] = 1

	// Shortest-path counts in increasing distance order: an arc (v,w)
	// lies on a shortest path exactly when d(v) + w(v,w) == d(w).
	for _, w := range visited[1:] {
		dw, _ := t.Distance(w)
		p.g.Outgoing(transpose, int32(w-1), func(a graph.Arc) bool {
			v := int(a.To) + 1
			if v == w {
				return true // zero-weight self-loop would feed sigma into itself
			}
			if dv, ok := t.Distance(v); ok && dv+p.engine.Weight(a.EdgeIndex) == dw {
				p.sigma[w-1] += p.sigma[v-1]
			}
			return true
		})
	}

	// Dependency propagation in decreasing distance order:
	// delta(v) += sigma(v)/sigma(w) * (1 + delta(w)).
	for i := len(visited) - 1; i > 0; i-- {
		w := visited[i]
		dw, _ := t.Distance(w)
		coef := (1 + p.delta[w-1]) / p.sigma[w-1]
		p.g.Outgoing(transpose, int32(w-1), func(a graph.Arc) bool {
			v := int(a.To) + 1
			if v == w {
				return true
			}
			if dv, ok := t.Distance(v); ok && dv+p.engine.Weight(a.EdgeIndex) == dw {
				p.delta[v-1] += p.sigma[v-1] * coef
			}
			return true
		})
		acc[w-1] += p.delta[w-1]
	}

	// Closeness: mean farness inverse over reached peers, 0 for an
	// isolated source.
	if len(visited) > 1 {
		sum := 0.0
		for _, v := range visited[1:] {
			d, _ := t.Distance(v)
			sum += d
		}
		closeness[source-1] = float64(len(visited)-1) / sum
	}
	return nil
}
