package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"
	"strconv"

	"geotopo/pkg/centrality"
	"geotopo/pkg/geom"
	"geotopo/pkg/graph"
	"geotopo/pkg/route"
)

// Handlers holds the HTTP handlers and their dependencies. The graph is
// immutable, so handlers share it freely across requests.
type Handlers struct {
	g       *graph.Graph
	locator *graph.Locator
}

// NewHandlers creates handlers over a built graph. maxNearestDist bounds
// the nearest-node search.
func NewHandlers(g *graph.Graph, maxNearestDist float64) *Handlers {
	return &Handlers{
		g:       g,
		locator: graph.NewLocator(g, maxNearestDist),
	}
}

// engineFromQuery builds a traversal engine from the orientation and
// weight query parameters. Defaults: directed, unweighted.
func (h *Handlers) engineFromQuery(r *http.Request) (*route.Engine, error) {
	o := graph.Directed
	if s := r.URL.Query().Get("orientation"); s != "" {
		code, err := strconv.Atoi(s)
		if err != nil {
			return nil, graph.ErrInvalidOrientation
		}
		if o, err = graph.ParseOrientation(code); err != nil {
			return nil, err
		}
	}
	spec := graph.Unweighted()
	if name := r.URL.Query().Get("weight"); name != "" {
		spec = graph.WeightAttribute(name)
	}
	return route.NewEngine(h.g, o, spec)
}

func intParam(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	return v, err == nil
}

func floatParam(r *http.Request, name string) (float64, bool) {
	v, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	return v, err == nil && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// HandleShortestPath handles GET /api/v1/shortest-path.
func (h *Handlers) HandleShortestPath(w http.ResponseWriter, r *http.Request) {
	source, ok := intParam(r, "source")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "source")
		return
	}
	target, ok := intParam(r, "target")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "target")
		return
	}
	radius, _ := floatParam(r, "radius")

	engine, err := h.engineFromQuery(r)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	p, err := engine.ShortestPath(r.Context(), source, target, radius)
	if err != nil {
		writeQueryError(w, err)
		return
	}

	resp := PathResponse{Source: source, Target: target, Found: p.Found, Distance: p.Distance}
	if !p.Found {
		resp.Distance = 0
	}
	for _, e := range p.Edges {
		resp.Edges = append(resp.Edges, EdgeJSON{ID: e.ID, Source: e.Source, Target: e.Target, Row: e.Row})
	}
	writeJSON(w, resp)
}

// HandleDistances handles GET /api/v1/distances.
func (h *Handlers) HandleDistances(w http.ResponseWriter, r *http.Request) {
	source, ok := intParam(r, "source")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "source")
		return
	}
	radius, _ := floatParam(r, "radius")

	engine, err := h.engineFromQuery(r)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	distances, err := engine.ShortestPathLength(r.Context(), source, radius)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, DistancesResponse{Source: source, Distances: distances})
}

// HandleBatchPaths handles POST /api/v1/batch/paths.
func (h *Handlers) HandleBatchPaths(w http.ResponseWriter, r *http.Request) {
	engine, reqs, ok := h.decodeBatch(w, r)
	if !ok {
		return
	}
	results, err := engine.BatchShortestPath(r.Context(), reqs)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	resp := BatchPathResponse{Results: make([]BatchPathResult, len(results))}
	for i, res := range results {
		out := BatchPathResult{ID: res.Request.ID, Found: res.Path.Found, Distance: res.Path.Distance}
		if !res.Path.Found {
			out.Distance = 0
		}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		for _, e := range res.Path.Edges {
			out.Edges = append(out.Edges, EdgeJSON{ID: e.ID, Source: e.Source, Target: e.Target, Row: e.Row})
		}
		resp.Results[i] = out
	}
	writeJSON(w, resp)
}

// HandleBatchDistances handles POST /api/v1/batch/distances.
func (h *Handlers) HandleBatchDistances(w http.ResponseWriter, r *http.Request) {
	engine, reqs, ok := h.decodeBatch(w, r)
	if !ok {
		return
	}
	results, err := engine.BatchShortestPathLength(r.Context(), reqs)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	resp := BatchDistancesResponse{Results: make([]BatchDistancesResult, len(results))}
	for i, res := range results {
		out := BatchDistancesResult{ID: res.Request.ID, Distances: res.Distances}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		resp.Results[i] = out
	}
	writeJSON(w, resp)
}

func (h *Handlers) decodeBatch(w http.ResponseWriter, r *http.Request) (*route.Engine, []route.Request, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return nil, nil, false
	}
	var body BatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return nil, nil, false
	}

	o := graph.Directed
	if body.Orientation != 0 {
		var err error
		if o, err = graph.ParseOrientation(body.Orientation); err != nil {
			writeQueryError(w, err)
			return nil, nil, false
		}
	}
	spec := graph.Unweighted()
	if body.Weight != "" {
		spec = graph.WeightAttribute(body.Weight)
	}
	engine, err := route.NewEngine(h.g, o, spec)
	if err != nil {
		writeQueryError(w, err)
		return nil, nil, false
	}

	reqs := make([]route.Request, len(body.Requests))
	for i, row := range body.Requests {
		reqs[i] = route.Request{ID: row.ID, Source: row.Source, Radius: row.Radius}
		if row.Target != nil {
			reqs[i].Target = *row.Target
			reqs[i].HasTarget = true
		}
	}
	return engine, reqs, true
}

// HandleCentrality handles GET /api/v1/centrality.
func (h *Handlers) HandleCentrality(w http.ResponseWriter, r *http.Request) {
	o := graph.Directed
	if s := r.URL.Query().Get("orientation"); s != "" {
		code, err := strconv.Atoi(s)
		if err != nil {
			writeQueryError(w, graph.ErrInvalidOrientation)
			return
		}
		if o, err = graph.ParseOrientation(code); err != nil {
			writeQueryError(w, err)
			return
		}
	}
	cfg := centrality.Config{Orientation: o}
	if name := r.URL.Query().Get("weight"); name != "" {
		cfg.Weights = graph.WeightAttribute(name)
	}
	cfg.Normalized = r.URL.Query().Get("normalized") == "true"

	results, err := centrality.Analyze(r.Context(), h.g, cfg)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	resp := CentralityResponse{Nodes: make(map[int]CentralityJSON, len(results))}
	for id, res := range results {
		resp.Nodes[id] = CentralityJSON{Betweenness: res.Betweenness, Closeness: res.Closeness}
	}
	writeJSON(w, resp)
}

// HandleNearestNode handles GET /api/v1/nearest-node.
func (h *Handlers) HandleNearestNode(w http.ResponseWriter, r *http.Request) {
	x, okX := floatParam(r, "x")
	y, okY := floatParam(r, "y")
	if !okX || !okY {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "")
		return
	}
	id, dist, ok := h.locator.Nearest(geom.Coordinate{X: x, Y: y})
	if !ok {
		writeError(w, http.StatusNotFound, "no_node_in_range", "")
		return
	}
	writeJSON(w, NearestNodeResponse{Node: id, Distance: dist})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, StatsResponse{NumNodes: h.g.NumNodes(), NumEdges: h.g.NumEdges()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeQueryError maps library errors onto HTTP statuses.
func writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, graph.ErrUnknownNode):
		writeError(w, http.StatusNotFound, "unknown_node", "")
	case errors.Is(err, graph.ErrMissingAttribute):
		writeError(w, http.StatusBadRequest, "missing_weight_attribute", "")
	case errors.Is(err, graph.ErrInvalidOrientation):
		writeError(w, http.StatusBadRequest, "invalid_orientation", "")
	case errors.Is(err, graph.ErrNegativeWeight):
		writeError(w, http.StatusBadRequest, "negative_weight", "")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}
