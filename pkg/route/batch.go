package route

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"geotopo/pkg/graph"
)

// ErrMissingTarget is returned for a batch path request without a target.
var ErrMissingTarget = errors.New("request has no target")

// Request is one row of a batched query: a source with an optional
// target and an optional radius (zero = unbounded).
type Request struct {
	ID        int
	Source    int
	Target    int
	HasTarget bool
	Radius    float64
}

// PathResult is the outcome of one batched shortest-path request. A
// failing request carries its own Err and never affects siblings sharing
// the same traversal.
type PathResult struct {
	Request Request
	Path    Path
	Err     error
}

// LengthResult is the outcome of one batched distance request. With a
// target the map holds at most that one entry; without, the full
// distance map of the source.
type LengthResult struct {
	Request   Request
	Distances map[int]float64
	Err       error
}

// BatchShortestPath answers every request, running one traversal per
// distinct source and reusing its tree across all requests that share
// the source. Requests are not deduplicated: each input row produces its
// own result, in input order.
func (e *Engine) BatchShortestPath(ctx context.Context, reqs []Request) ([]PathResult, error) {
	results := make([]PathResult, len(reqs))
	for i, r := range reqs {
		results[i].Request = r
	}
	err := e.bySource(ctx, reqs, func(t *Tree, terr error, idx []int) {
		for _, i := range idx {
			r := reqs[i]
			switch {
			case terr != nil:
				results[i].Err = terr
			case !r.HasTarget:
				results[i].Err = fmt.Errorf("route: request %d: %w", r.ID, ErrMissingTarget)
			case !e.g.HasNode(r.Target):
				results[i].Err = fmt.Errorf("route: request %d target %d: %w", r.ID, r.Target, graph.ErrUnknownNode)
			default:
				p, err := t.PathTo(r.Target)
				if err != nil {
					results[i].Err = err
					break
				}
				if p.Found && r.Radius > 0 && p.Distance > r.Radius {
					p = Path{} // reachable, but not within this request's radius
				}
				reverse(p.Edges)
				results[i].Path = p
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// BatchShortestPathLength is BatchShortestPath's distance-only
// counterpart. Targetless requests get the source's full distance map.
func (e *Engine) BatchShortestPathLength(ctx context.Context, reqs []Request) ([]LengthResult, error) {
	results := make([]LengthResult, len(reqs))
	for i, r := range reqs {
		results[i].Request = r
	}
	err := e.bySource(ctx, reqs, func(t *Tree, terr error, idx []int) {
		for _, i := range idx {
			r := reqs[i]
			switch {
			case terr != nil:
				results[i].Err = terr
			case !r.HasTarget:
				m := t.Distances()
				if r.Radius > 0 {
					for node, d := range m {
						if d > r.Radius {
							delete(m, node)
						}
					}
				}
				results[i].Distances = m
			case !e.g.HasNode(r.Target):
				results[i].Err = fmt.Errorf("route: request %d target %d: %w", r.ID, r.Target, graph.ErrUnknownNode)
			default:
				m := map[int]float64{}
				if d, ok := t.Distance(r.Target); ok && (r.Radius <= 0 || d <= r.Radius) {
					m[r.Target] = d
				}
				results[i].Distances = m
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// bySource partitions requests by source, runs one traversal per
// distinct source on a bounded worker pool, and hands each finished tree
// to apply together with the indices of the requests it serves. apply is
// called once per source; request index sets are disjoint, so workers
// never write to the same result slot.
func (e *Engine) bySource(ctx context.Context, reqs []Request, apply func(t *Tree, terr error, idx []int)) error {
	bySource := make(map[int][]int)
	var sources []int
	for i, r := range reqs {
		if _, seen := bySource[r.Source]; !seen {
			sources = append(sources, r.Source)
		}
		bySource[r.Source] = append(bySource[r.Source], i)
	}
	slog.Debug("batch traversal plan",
		slog.Int("requests", len(reqs)),
		slog.Int("sources", len(sources)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, source := range sources {
		idx := bySource[source]
		g.Go(func() error {
			// The shared traversal is bounded by the widest radius any
			// of this source's requests needs.
			radius := 0.0
			for _, i := range idx {
				if reqs[i].Radius <= 0 {
					radius = math.Inf(1)
					break
				}
				if reqs[i].Radius > radius {
					radius = reqs[i].Radius
				}
			}
			if math.IsInf(radius, 1) {
				radius = 0
			}
			t, err := e.Traverse(ctx, source, TraversalOptions{Radius: radius})
			if err != nil && !errors.Is(err, graph.ErrUnknownNode) {
				return err // cancellation aborts the whole batch
			}
			apply(t, err, idx)
			return nil
		})
	}
	return g.Wait()
}
