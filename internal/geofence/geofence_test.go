package geofence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poofware/attendance-service/internal/models"
)

var (
	madridOffice = Coordinate{Lat: 40.0, Lng: -3.0}
	upTheRoad    = Coordinate{Lat: 40.01, Lng: -3.0} // ~1.1 km north
)

func TestDistanceMetersZeroForSamePoint(t *testing.T) {
	points := []Coordinate{
		{Lat: 0, Lng: 0},
		madridOffice,
		{Lat: -33.45, Lng: -70.66},
		{Lat: 89.9, Lng: 179.9},
	}
	for _, p := range points {
		assert.InDelta(t, 0, DistanceMeters(p, p), 1e-9)
	}
}

func TestDistanceMetersSymmetric(t *testing.T) {
	pairs := [][2]Coordinate{
		{madridOffice, upTheRoad},
		{{Lat: 51.5, Lng: -0.12}, {Lat: 48.85, Lng: 2.35}},
		{{Lat: -10, Lng: 100}, {Lat: 20, Lng: -120}},
	}
	for _, pair := range pairs {
		assert.InDelta(t, DistanceMeters(pair[0], pair[1]), DistanceMeters(pair[1], pair[0]), 1e-9)
	}
}

func TestDistanceMetersKnownSeparation(t *testing.T) {
	// 0.01 deg of latitude is roughly 1.11 km on the spherical model.
	d := DistanceMeters(madridOffice, upTheRoad)
	assert.Greater(t, d, 1000.0)
	assert.Less(t, d, 1250.0)
}

func TestDistanceMetersMonotonicWithSeparation(t *testing.T) {
	prev := 0.0
	for _, dLat := range []float64{0.001, 0.01, 0.1, 1, 10} {
		d := DistanceMeters(madridOffice, Coordinate{Lat: madridOffice.Lat + dLat, Lng: madridOffice.Lng})
		assert.Greater(t, d, prev)
		prev = d
	}
}

func TestDistanceMetersAntipodalIsFinite(t *testing.T) {
	d := DistanceMeters(Coordinate{Lat: 0, Lng: 0}, Coordinate{Lat: 0, Lng: 180})
	require.False(t, d != d, "distance must not be NaN")
	// Half the spherical circumference, ~20,000 km.
	assert.InDelta(t, 20_015_000, d, 50_000)
}

func TestEvaluateNoZoneIsUnrestricted(t *testing.T) {
	v := Evaluate(&madridOffice, nil)
	assert.True(t, v.Allowed)
	assert.Equal(t, ReasonNoZone, v.Reason)
	assert.Nil(t, v.DistanceMeters)

	// Even with no position at all.
	v = Evaluate(nil, nil)
	assert.True(t, v.Allowed)
	assert.Equal(t, ReasonNoZone, v.Reason)
}

func TestEvaluateFailsClosedWithoutFix(t *testing.T) {
	zone := &models.GeofenceZone{Lat: 40.0, Lng: -3.0, RadiusMeters: 100}
	v := Evaluate(nil, zone)
	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonNoPosition, v.Reason)
	assert.Nil(t, v.DistanceMeters)
}

func TestEvaluateInsideAndOutside(t *testing.T) {
	zone := &models.GeofenceZone{Lat: 40.0, Lng: -3.0, RadiusMeters: 100}

	v := Evaluate(&madridOffice, zone)
	assert.True(t, v.Allowed)
	assert.Equal(t, ReasonInside, v.Reason)
	require.NotNil(t, v.DistanceMeters)
	assert.InDelta(t, 0, *v.DistanceMeters, 1e-9)

	v = Evaluate(&upTheRoad, zone)
	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonOutside, v.Reason)
	require.NotNil(t, v.DistanceMeters)
	assert.Greater(t, *v.DistanceMeters, zone.RadiusMeters)
}

func TestEvaluateBoundaryIsInside(t *testing.T) {
	d := DistanceMeters(madridOffice, upTheRoad)
	zone := &models.GeofenceZone{Lat: 40.0, Lng: -3.0, RadiusMeters: d}

	v := Evaluate(&upTheRoad, zone)
	assert.True(t, v.Allowed, "distance == radius counts as inside")
	assert.Equal(t, ReasonInside, v.Reason)
}

func TestEvaluateMatchesDistance(t *testing.T) {
	zone := &models.GeofenceZone{Lat: 40.416775, Lng: -3.703790, RadiusMeters: 250}
	positions := []Coordinate{
		{Lat: 40.416775, Lng: -3.703790},
		{Lat: 40.4170, Lng: -3.7040},
		{Lat: 40.43, Lng: -3.70},
		{Lat: 41.0, Lng: -3.70},
	}
	for _, p := range positions {
		want := DistanceMeters(p, Coordinate{Lat: zone.Lat, Lng: zone.Lng}) <= zone.RadiusMeters
		assert.Equal(t, want, Evaluate(&p, zone).Allowed)
	}
}
