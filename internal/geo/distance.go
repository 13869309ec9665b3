// Package geo ranks venues by great-circle distance from a shopper.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// DistanceKm returns the haversine distance between a and b in kilometres.
func DistanceKm(a, b Coordinate) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lng - a.Lng)
	sLat := math.Sin(dLat / 2)
	sLon := math.Sin(dLon / 2)
	h := sLat*sLat + math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*sLon*sLon
	// float error can push h slightly past 1 for antipodal points
	if h > 1 {
		h = 1
	}
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
