// Package geom holds the small geometric vocabulary shared by the graph
// builder and the edge-record providers.
package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// Coordinate is a 2D point with an optional elevation. Z is NaN-safe: a
// missing elevation is simply 0 and only matters when elevation
// orientation is requested during graph construction.
type Coordinate struct {
	X float64
	Y float64
	Z float64
}

// Point returns the planar projection of the coordinate.
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.X, c.Y}
}

// Distance returns the planar (2D) euclidean distance between two coordinates.
func Distance(a, b Coordinate) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

const earthRadiusMeters = 6_371_000.0

// Haversine returns the great-circle distance in meters between two
// lat/lon points. Used by the OSM provider, where coordinates are degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
