package models

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceRecord is one worker's single clock-in/clock-out pair.
// A nil ClockOutAt means the session is still open; the store enforces at
// most one open record per worker.
type AttendanceRecord struct {
	ID       uuid.UUID `json:"id"`
	WorkerID uuid.UUID `json:"worker_id"`

	ClockInAt  time.Time  `json:"clock_in_at"`
	ClockOutAt *time.Time `json:"clock_out_at,omitempty"`

	ClockInLat  *float64 `json:"clock_in_lat,omitempty"`
	ClockInLng  *float64 `json:"clock_in_lng,omitempty"`
	ClockOutLat *float64 `json:"clock_out_lat,omitempty"`
	ClockOutLng *float64 `json:"clock_out_lng,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *AttendanceRecord) GetID() string {
	return r.ID.String()
}

// Open reports whether the session has no recorded clock-out yet.
func (r *AttendanceRecord) Open() bool {
	return r.ClockOutAt == nil
}
