package api

// PathResponse is the JSON response for GET /api/v1/shortest-path.
// Found is false when the target is unreachable; the other fields are
// then zero.
type PathResponse struct {
	Source   int        `json:"source"`
	Target   int        `json:"target"`
	Found    bool       `json:"found"`
	Distance float64    `json:"distance"`
	Edges    []EdgeJSON `json:"edges,omitempty"`
}

// EdgeJSON is one edge of a path in source→target walk order.
type EdgeJSON struct {
	ID     int `json:"id"`
	Source int `json:"source"`
	Target int `json:"target"`
	Row    int `json:"row"`
}

// DistancesResponse is the JSON response for GET /api/v1/distances.
type DistancesResponse struct {
	Source    int             `json:"source"`
	Distances map[int]float64 `json:"distances"`
}

// BatchRequest is the JSON body for the batch endpoints.
type BatchRequest struct {
	Orientation int               `json:"orientation"`
	Weight      string            `json:"weight,omitempty"`
	Requests    []BatchRowJSON `json:"requests"`
}

// BatchRowJSON is one request row. Target may be omitted for distance
// requests; Radius of zero means unbounded.
type BatchRowJSON struct {
	ID     int     `json:"id"`
	Source int     `json:"source"`
	Target *int    `json:"target,omitempty"`
	Radius float64 `json:"radius,omitempty"`
}

// BatchPathResponse groups per-request path results, one per input row.
type BatchPathResponse struct {
	Results []BatchPathResult `json:"results"`
}

// BatchPathResult is one request's outcome. Error is empty on success.
type BatchPathResult struct {
	ID       int        `json:"id"`
	Found    bool       `json:"found"`
	Distance float64    `json:"distance"`
	Edges    []EdgeJSON `json:"edges,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// BatchDistancesResponse groups per-request distance results.
type BatchDistancesResponse struct {
	Results []BatchDistancesResult `json:"results"`
}

// BatchDistancesResult is one request's distance map.
type BatchDistancesResult struct {
	ID        int             `json:"id"`
	Distances map[int]float64 `json:"distances,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// CentralityResponse is the JSON response for GET /api/v1/centrality.
type CentralityResponse struct {
	Nodes map[int]CentralityJSON `json:"nodes"`
}

// CentralityJSON holds both indices for one node.
type CentralityJSON struct {
	Betweenness float64 `json:"betweenness"`
	Closeness   float64 `json:"closeness"`
}

// NearestNodeResponse is the JSON response for GET /api/v1/nearest-node.
type NearestNodeResponse struct {
	Node     int     `json:"node"`
	Distance float64 `json:"distance"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes int `json:"num_nodes"`
	NumEdges int `json:"num_edges"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
