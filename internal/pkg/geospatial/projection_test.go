package geospatial_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/lapwatch/internal/core/domain"
	"github.com/samirrijal/lapwatch/internal/pkg/geospatial"
)

var gothenburg = domain.GeoPoint{Lat: 57.7, Lon: 11.9}

func TestToLocal_SamePointIsOrigin(t *testing.T) {
	v := geospatial.ToLocal(gothenburg, gothenburg)
	assert.Zero(t, v.X)
	assert.Zero(t, v.Y)
	assert.Zero(t, geospatial.PlanarDistance(gothenburg, gothenburg))
}

func TestToLocal_Axes(t *testing.T) {
	north := domain.GeoPoint{Lat: gothenburg.Lat + 0.0005, Lon: gothenburg.Lon}
	v := geospatial.ToLocal(gothenburg, north)
	assert.InDelta(t, 0, v.X, 1e-9)
	assert.Greater(t, v.Y, 0.0)

	east := domain.GeoPoint{Lat: gothenburg.Lat, Lon: gothenburg.Lon + 0.0005}
	v = geospatial.ToLocal(gothenburg, east)
	assert.Greater(t, v.X, 0.0)
	assert.InDelta(t, 0, v.Y, 1e-9)
}

func TestPlanarDistance_MatchesGreatCircleAtShortRange(t *testing.T) {
	tests := []struct {
		name        string
		east, north float64
	}{
		{"north 50m", 0, 50},
		{"east 50m", 50, 0},
		{"diagonal", 120, -80},
		{"far corner", -300, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := geospatial.Offset(gothenburg, tt.east, tt.north)
			planar := geospatial.PlanarDistance(gothenburg, p)
			great := geospatial.GreatCircle(gothenburg, p)
			assert.InDelta(t, great, planar, 0.05, "planar %.3f vs haversine %.3f", planar, great)
		})
	}
}

func TestPlanarDistance_Symmetric(t *testing.T) {
	a := geospatial.Offset(gothenburg, 40, 12)
	b := geospatial.Offset(gothenburg, -25, 90)

	ab := geospatial.ToLocal(a, b)
	ba := geospatial.ToLocal(b, a)

	assert.InDelta(t, -ab.X, ba.X, 1e-9)
	assert.InDelta(t, -ab.Y, ba.Y, 1e-9)
	assert.InDelta(t, geospatial.PlanarDistance(a, b), geospatial.PlanarDistance(b, a), 1e-9)
}

func TestOffset_RoundTrip(t *testing.T) {
	p := geospatial.Offset(gothenburg, 33.3, -44.4)
	v := geospatial.ToLocal(gothenburg, p)
	require.InDelta(t, 33.3, v.X, 1e-6)
	require.InDelta(t, -44.4, v.Y, 1e-6)
	assert.InDelta(t, 55.5, geospatial.PlanarDistance(gothenburg, p), 1e-6)
}

func TestPlanarDistance_NaNPropagates(t *testing.T) {
	d := geospatial.PlanarDistance(gothenburg, domain.GeoPoint{Lat: math.NaN(), Lon: 11.9})
	assert.True(t, math.IsNaN(d))
}

func TestGreatCircle_KnownDistance(t *testing.T) {
	// One degree of latitude on the 6371 km sphere.
	a := domain.GeoPoint{Lat: 57, Lon: 11.9}
	b := domain.GeoPoint{Lat: 58, Lon: 11.9}
	assert.InDelta(t, 111194.93, geospatial.GreatCircle(a, b), 0.01)
	assert.Equal(t, geospatial.GreatCircle(a, b), geospatial.GreatCircle(b, a))
	assert.Zero(t, geospatial.GreatCircle(a, a))
}
