package geofence

import (
	"github.com/poofware/attendance-service/internal/models"
)

// Reason explains a presence verdict.
type Reason string

const (
	ReasonNoZone     Reason = "NO_ZONE"
	ReasonNoPosition Reason = "NO_POSITION"
	ReasonInside     Reason = "INSIDE"
	ReasonOutside    Reason = "OUTSIDE"
)

// Verdict is the result of evaluating a worker position against a zone.
type Verdict struct {
	Allowed        bool     `json:"allowed"`
	Reason         Reason   `json:"reason"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

// Evaluate computes the presence verdict for a (possibly unknown) position
// and a (possibly unconfigured) zone. Pure function:
//
//   - no zone            => allowed, NO_ZONE
//   - zone but no fix    => denied, NO_POSITION (fail closed)
//   - zone and fix       => distance vs radius => INSIDE / OUTSIDE
func Evaluate(pos *Coordinate, zone *models.GeofenceZone) Verdict {
	if zone == nil {
		return Verdict{Allowed: true, Reason: ReasonNoZone}
	}
	if pos == nil {
		return Verdict{Allowed: false, Reason: ReasonNoPosition}
	}

	dist := DistanceMeters(*pos, Coordinate{Lat: zone.Lat, Lng: zone.Lng})
	if dist <= zone.RadiusMeters {
		return Verdict{Allowed: true, Reason: ReasonInside, DistanceMeters: &dist}
	}
	return Verdict{Allowed: false, Reason: ReasonOutside, DistanceMeters: &dist}
}
