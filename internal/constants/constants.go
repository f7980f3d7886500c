package constants

import (
	"time"
)

// Attendance settings
const (
	// DefaultDailyHours is the expected work-day length when a worker has no
	// explicit policy row.
	DefaultDailyHours = 8.0

	// RecentHistoryLimit caps the default history page (the dashboard shows
	// the last few sessions).
	RecentHistoryLimit = 5

	// MaxHistoryLimit bounds caller-supplied history page sizes.
	MaxHistoryLimit = 100
)

// Location gating
const (
	MaxGPSAccuracyMeters = 30.0

	// MaxLocationTimestampSkew is how far a device-reported fix timestamp may
	// drift from server time before the payload is rejected.
	MaxLocationTimestampSkew = 30 * time.Second

	// PositionMaxAge is the grace period for a live fix: samples older than
	// this count as "no position" rather than a stale allowed/denied verdict.
	PositionMaxAge = 2 * time.Minute
)

// Audits
const (
	// StaleOpenSessionAge flags sessions that were never clocked out.
	StaleOpenSessionAge = 24 * time.Hour
)
