package utils

import "errors"

/*
Sentinel errors for attendance domain logic.
The controller can do: if errors.Is(err, ErrXYZ) { ... }
*/
var (
	ErrAlreadyClockedIn = errors.New("already_clocked_in")
	ErrNotClockedIn     = errors.New("not_clocked_in")
	ErrOutsideGeofence  = errors.New("outside_geofence")
	ErrNoPositionFix    = errors.New("no_position_fix")

	// ErrGeolocationUnavailable is set while the worker's device has reported
	// a geolocation failure and no fresh sample has arrived since.
	ErrGeolocationUnavailable = errors.New("geolocation_unavailable")

	// ErrDataIntegrity flags a persisted record whose clock-out precedes its
	// clock-in. Such records are surfaced, never aggregated.
	ErrDataIntegrity = errors.New("data_integrity_error")

	ErrNoRowsUpdated = errors.New("no_rows_updated") // Can be used by repos
)
