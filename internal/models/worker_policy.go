package models

// WorkerPolicy holds per-worker configuration affecting hour computation.
type WorkerPolicy struct {
	// DailyHours is the expected work-day length; hours beyond it count as
	// overtime. Defaults to constants.DefaultDailyHours when unset.
	DailyHours float64 `json:"daily_hours"`
}
