package load

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"geotopo/pkg/geom"
	"geotopo/pkg/graph"
)

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// isCarAccessible returns true if the way is drivable by car.
func isCarAccessible(tags osm.Tags) bool {
	hw := tags.Find("highway")
	if !carHighways[hw] {
		return false
	}

	// Skip area highways (pedestrian plazas).
	if tags.Find("area") == "yes" {
		return false
	}

	// Skip restricted access.
	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	if tags.Find("motor_vehicle") == "no" {
		return false
	}

	return true
}

// directionFlags returns (forward, backward) based on highway type and oneway tags.
func directionFlags(tags osm.Tags) (forward, backward bool) {
	// Default: bidirectional.
	forward = true
	backward = true

	hw := tags.Find("highway")

	// Implied oneway for motorways and roundabouts.
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}

	// Explicit oneway tag overrides.
	oneway := tags.Find("oneway")
	switch oneway {
	case "yes", "true", "1":
		forward = true
		backward = false
	case "-1", "reverse":
		forward = false
		backward = true
	case "no":
		forward = true
		backward = true
	case "reversible":
		// Time-dependent — skip entirely.
		forward = false
		backward = false
	}

	return forward, backward
}

// BBox defines a geographic bounding box for filtering.
// If non-zero, only ways fully inside the box are kept.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// OSMOptions configures the OSM provider.
type OSMOptions struct {
	BBox BBox // if non-zero, keep only ways fully inside this box
}

// wayInfo holds parsed way data collected during pass 1.
type wayInfo struct {
	NodeIDs  []osm.NodeID
	Forward  bool
	Backward bool
}

// OSM reads an OSM PBF file and returns one edge record per drivable
// way, with the full way polyline as geometry and the haversine length
// in meters as the "length" attribute. Two-way roads yield a second
// record with reversed geometry. The reader is consumed twice (seeks
// back to start for the second pass), so it must implement io.ReadSeeker.
func OSM(ctx context.Context, rs io.ReadSeeker, opt OSMOptions) ([]graph.EdgeRecord, error) {
	useBBox := !opt.BBox.IsZero()

	// Pass 1: scan ways to collect referenced node ids and way info.
	referencedNodes := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if !isCarAccessible(w.Tags) || len(w.Nodes) < 2 {
			continue
		}
		fwd, bwd := directionFlags(w.Tags)
		if !fwd && !bwd {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referencedNodes[wn.ID] = struct{}{}
		}
		ways = append(ways, wayInfo{NodeIDs: nodeIDs, Forward: fwd, Backward: bwd})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("load: osm pass 1 (ways): %w", err)
	}
	scanner.Close()
	slog.Debug("osm pass 1 complete",
		slog.Int("ways", len(ways)),
		slog.Int("referenced_nodes", len(referencedNodes)))

	// Pass 2: scan nodes to collect coordinates for referenced nodes only.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("load: osm seek for pass 2: %w", err)
	}

	nodeLat := make(map[osm.NodeID]float64, len(referencedNodes))
	nodeLon := make(map[osm.NodeID]float64, len(referencedNodes))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}
		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("load: osm pass 2 (nodes): %w", err)
	}
	scanner.Close()

	// Assemble records from ways.
	var records []graph.EdgeRecord
	skipped := 0
	filtered := 0

	for row, w := range ways {
		cc := make([]geom.Coordinate, 0, len(w.NodeIDs))
		length := 0.0
		inside := true
		complete := true
		for i, id := range w.NodeIDs {
			lat, ok := nodeLat[id]
			if !ok {
				complete = false
				break
			}
			lon := nodeLon[id]
			if useBBox && !opt.BBox.Contains(lat, lon) {
				inside = false
				break
			}
			// Coordinates are lon/lat so X/Y match planar usage.
			cc = append(cc, geom.Coordinate{X: lon, Y: lat})
			if i > 0 {
				length += geom.Haversine(nodeLat[w.NodeIDs[i-1]], nodeLon[w.NodeIDs[i-1]], lat, lon)
			}
		}
		if !complete {
			skipped++
			continue
		}
		if !inside {
			filtered++
			continue
		}

		attrs := map[string]float64{LengthAttribute: length}
		if w.Forward {
			records = append(records, graph.EdgeRecord{Geometry: cc, Attrs: attrs, Row: row})
		}
		if w.Backward {
			records = append(records, graph.EdgeRecord{Geometry: reverseCoords(cc), Attrs: attrs, Row: row})
		}
	}

	if skipped > 0 {
		slog.Warn("skipped ways with missing node coordinates", slog.Int("count", skipped))
	}
	if filtered > 0 {
		slog.Debug("filtered ways outside bounding box", slog.Int("count", filtered))
	}
	slog.Debug("loaded osm records", slog.Int("count", len(records)))
	return records, nil
}

func reverseCoords(cc []geom.Coordinate) []geom.Coordinate {
	out := make([]geom.Coordinate, len(cc))
	for i, c := range cc {
		out[len(cc)-1-i] = c
	}
	return out
}
