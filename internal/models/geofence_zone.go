package models

// GeofenceZone is the employer-configured circular area within which clock
// actions are permitted. Absence of a zone means clocking is geographically
// unrestricted. Read-only from this service's perspective.
type GeofenceZone struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RadiusMeters float64 `json:"radius_meters"`
}
