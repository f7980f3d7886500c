package routes

const (
	// Health
	Health = "/health"

	// Worker endpoints
	AttendanceStatus   = "/api/v1/attendance/status"
	AttendanceClockIn  = "/api/v1/attendance/clock-in"
	AttendanceClockOut = "/api/v1/attendance/clock-out"
	AttendancePosition = "/api/v1/attendance/position"
	AttendanceResync   = "/api/v1/attendance/resync"
	AttendanceHistory  = "/api/v1/attendance/history"
)
