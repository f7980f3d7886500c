package hours

import (
	"time"

	cal "github.com/rickar/cal/v2"

	"github.com/poofware/attendance-service/internal/utils"
)

// Breakdown is the derived view of one attendance session.
type Breakdown struct {
	WorkedHours   float64 `json:"worked_hours"`
	OvertimeHours float64 `json:"overtime_hours"`

	// InProgress marks an open session: it reports no completed hours yet,
	// which is distinct from a closed zero-hour session.
	InProgress bool `json:"in_progress"`
}

// Compute derives worked and overtime hours from a session's timestamps and
// the worker's daily-hours threshold.
//
// A record whose clock-out precedes its clock-in is corrupted input; it
// yields utils.ErrDataIntegrity rather than a negative duration.
func Compute(clockInAt time.Time, clockOutAt *time.Time, dailyHours float64) (Breakdown, error) {
	if clockOutAt == nil {
		return Breakdown{InProgress: true}, nil
	}
	if clockOutAt.Before(clockInAt) {
		return Breakdown{}, utils.ErrDataIntegrity
	}

	worked := clockOutAt.Sub(clockInAt).Hours()
	overtime := worked - dailyHours
	if overtime < 0 {
		overtime = 0
	}
	return Breakdown{WorkedHours: worked, OvertimeHours: overtime}, nil
}

// ComputeWithCalendar applies the payroll rule that a session falling on a
// non-working day counts entirely as overtime. The day is taken from the
// clock-in timestamp. On working days it behaves exactly like Compute.
func ComputeWithCalendar(
	clockInAt time.Time,
	clockOutAt *time.Time,
	dailyHours float64,
	calendar *cal.BusinessCalendar,
) (Breakdown, error) {
	if calendar != nil && !calendar.IsWorkday(clockInAt) {
		dailyHours = 0
	}
	return Compute(clockInAt, clockOutAt, dailyHours)
}
