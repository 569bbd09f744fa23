package geospatial

import (
	"math"

	"github.com/samirrijal/lapwatch/internal/core/domain"
)

const earthRadiusKm = 6371.0

// GreatCircle is the haversine distance between a and b in meters. The
// distance probe reports it next to PlanarDistance so a surveyor can see
// how much the flat projection gives away at that range.
func GreatCircle(a, b domain.GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	sLat := math.Sin(dLat / 2)
	sLon := math.Sin(dLon / 2)
	h := sLat*sLat + math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*sLon*sLon

	return 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h)) * earthRadiusM
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
