package geofence

import (
	"github.com/umahmood/haversine"
)

// Coordinate is a WGS84 (lat, lng) pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

/*────────────────────────────────────────────────────────────────────────────
  DistanceMeters uses Haversine for a direct “as-the-crow-flies” distance on
  a spherical-earth approximation.
────────────────────────────────────────────────────────────────────────────*/
func DistanceMeters(a, b Coordinate) float64 {
	p1 := haversine.Coord{Lat: a.Lat, Lon: a.Lng}
	p2 := haversine.Coord{Lat: b.Lat, Lon: b.Lng}
	_, km := haversine.Distance(p1, p2)
	return km * 1000
}
