// Package load turns external geometry sources into the ordered edge
// records the graph builder consumes. Every record carries a computed
// "length" attribute so built graphs are immediately usable with the
// length weight spec.
package load

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"geotopo/pkg/geom"
	"geotopo/pkg/graph"
)

// LengthAttribute names the geometric length attached to every record.
const LengthAttribute = "length"

// GeoJSON reads a FeatureCollection and returns one edge record per
// LineString feature (MultiLineStrings yield one record per part), in
// feature order. Numeric feature properties carry over as edge
// attributes; the planar geometry length is added as "length".
func GeoJSON(r io.Reader) ([]graph.EdgeRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("load: read geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("load: decode geojson: %w", err)
	}

	var records []graph.EdgeRecord
	skipped := 0
	for row, f := range fc.Features {
		var lines []orb.LineString
		switch g := f.Geometry.(type) {
		case orb.LineString:
			lines = []orb.LineString{g}
		case orb.MultiLineString:
			lines = g
		default:
			skipped++
			continue
		}
		for _, ls := range lines {
			records = append(records, graph.EdgeRecord{
				Geometry: coordinates(ls),
				Attrs:    attributes(f.Properties, planar.Length(ls)),
				Row:      row,
			})
		}
	}
	if skipped > 0 {
		slog.Debug("skipped non-line features", slog.Int("count", skipped))
	}
	slog.Debug("loaded geojson records", slog.Int("count", len(records)))
	return records, nil
}

func coordinates(ls orb.LineString) []geom.Coordinate {
	cc := make([]geom.Coordinate, len(ls))
	for i, p := range ls {
		cc[i] = geom.Coordinate{X: p[0], Y: p[1]}
	}
	return cc
}

func attributes(props geojson.Properties, length float64) map[string]float64 {
	attrs := map[string]float64{LengthAttribute: length}
	for k, v := range props {
		switch n := v.(type) {
		case float64:
			attrs[k] = n
		case int:
			attrs[k] = float64(n)
		}
	}
	return attrs
}
