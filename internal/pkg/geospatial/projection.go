package geospatial

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/samirrijal/lapwatch/internal/core/domain"
)

const earthRadiusM = earthRadiusKm * 1000

// ToLocal projects cur onto a local tangent plane anchored at ref and
// returns the east (X) and north (Y) offsets in meters.
//
// The projection is equirectangular around the mean latitude of the two
// points. It is accurate to well under a meter for separations of a few
// hundred meters, and ToLocal(a, b) == -ToLocal(b, a).
func ToLocal(ref, cur domain.GeoPoint) r2.Vec {
	meanLat := toRad((ref.Lat + cur.Lat) / 2)
	return r2.Vec{
		X: toRad(cur.Lon-ref.Lon) * math.Cos(meanLat) * earthRadiusM,
		Y: toRad(cur.Lat-ref.Lat) * earthRadiusM,
	}
}

// PlanarDistance is the length of ToLocal(ref, cur) in meters.
func PlanarDistance(ref, cur domain.GeoPoint) float64 {
	return r2.Norm(ToLocal(ref, cur))
}

// Offset returns the point lying east/north meters away from ref.
// It inverts ToLocal and is mostly useful for building test tracks.
func Offset(ref domain.GeoPoint, east, north float64) domain.GeoPoint {
	lat := ref.Lat + north/earthRadiusM*180/math.Pi
	meanLat := toRad((ref.Lat + lat) / 2)
	lon := ref.Lon + east/(earthRadiusM*math.Cos(meanLat))*180/math.Pi
	return domain.GeoPoint{Lat: lat, Lon: lon}
}
