package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/poofware/attendance-service/internal/geofence"
	"github.com/poofware/attendance-service/internal/models"
)

/*
ClockActionRequest is the body of POST /clock-in and /clock-out.

  - lat, lng: WGS-84 coordinates (range-checked in the controller)
  - accuracy: 1-σ horizontal radius in meters
  - timestamp: Unix ms from the device
  - is_mock: OS-level location mocking/simulator flag

The location block is optional; when omitted the service falls back to the
last live fix pushed via /position. When the employer has a zone configured,
one of the two must be present and fresh.
*/
type ClockActionRequest struct {
	Location *LocationFix `json:"location,omitempty" validate:"omitempty"`
}

type LocationFix struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
	IsMock    bool    `json:"is_mock"`
}

/*
PositionUpdateRequest is the body of POST /position — the push channel the
worker device uses to stream fixes (or report a geolocation failure) while
the clock screen is open.
*/
type PositionUpdateRequest struct {
	Fix *LocationFix `json:"fix,omitempty"`

	// ErrorCode is set instead of Fix when the device could not obtain a
	// position: "permission_denied", "timeout", "unavailable".
	ErrorCode string `json:"error_code,omitempty" validate:"omitempty,oneof=permission_denied timeout unavailable"`
}

type AttendanceRecordDTO struct {
	ID          uuid.UUID  `json:"id"`
	WorkerID    uuid.UUID  `json:"worker_id"`
	ClockInAt   time.Time  `json:"clock_in_at"`
	ClockOutAt  *time.Time `json:"clock_out_at,omitempty"`
	ClockInLat  *float64   `json:"clock_in_lat,omitempty"`
	ClockInLng  *float64   `json:"clock_in_lng,omitempty"`
	ClockOutLat *float64   `json:"clock_out_lat,omitempty"`
	ClockOutLng *float64   `json:"clock_out_lng,omitempty"`
}

func NewAttendanceRecordDTO(rec *models.AttendanceRecord) AttendanceRecordDTO {
	return AttendanceRecordDTO{
		ID:          rec.ID,
		WorkerID:    rec.WorkerID,
		ClockInAt:   rec.ClockInAt,
		ClockOutAt:  rec.ClockOutAt,
		ClockInLat:  rec.ClockInLat,
		ClockInLng:  rec.ClockInLng,
		ClockOutLat: rec.ClockOutLat,
		ClockOutLng: rec.ClockOutLng,
	}
}

/*
StatusResponse answers GET /status: the reconstructed session state plus the
live geofence verdict so the clock screen can enable/disable its button.
*/
type StatusResponse struct {
	State       string               `json:"state"` // NO_OPEN_SESSION | OPEN_SESSION
	SinceWhen   *time.Time           `json:"since_when,omitempty"`
	OpenSession *AttendanceRecordDTO `json:"open_session,omitempty"`
	Geofence    geofence.Verdict     `json:"geofence"`

	// GeolocationUnavailable is true while the device has reported a
	// location failure and no fresh fix has arrived since.
	GeolocationUnavailable bool `json:"geolocation_unavailable"`
}

const (
	StateNoOpenSession = "NO_OPEN_SESSION"
	StateOpenSession   = "OPEN_SESSION"
)

/*
HistoryEntryDTO is one row of GET /history: the raw record plus derived
hours. Integrity=false marks a corrupted record (clock-out before clock-in);
its hours are zeroed and it is excluded from the totals.
*/
type HistoryEntryDTO struct {
	Record        AttendanceRecordDTO `json:"record"`
	WorkedHours   float64             `json:"worked_hours"`
	OvertimeHours float64             `json:"overtime_hours"`
	InProgress    bool                `json:"in_progress"`
	Integrity     bool                `json:"integrity"`

	// LocalDate is the session's calendar date in the timezone of its
	// clock-in coordinates, when those were captured.
	LocalDate string `json:"local_date,omitempty"`
}

type HistoryResponse struct {
	Entries            []HistoryEntryDTO `json:"entries"`
	TotalWorkedHours   float64           `json:"total_worked_hours"`
	TotalOvertimeHours float64           `json:"total_overtime_hours"`
	DailyHours         float64           `json:"daily_hours"`
}
