package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/poofware/attendance-service/internal/dtos"
	"github.com/poofware/attendance-service/internal/geofence"
	"github.com/poofware/attendance-service/internal/middleware"
	"github.com/poofware/attendance-service/internal/services"
	"github.com/poofware/attendance-service/internal/tracker"
	"github.com/poofware/attendance-service/internal/utils"
)

var attendanceValidate = validator.New()

type AttendanceController struct {
	svc *services.AttendanceService
}

func NewAttendanceController(svc *services.AttendanceService) *AttendanceController {
	return &AttendanceController{svc: svc}
}

// workerIDFromContext pulls the authenticated subject out of the request
// context and parses it as a worker UUID.
func workerIDFromContext(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	ctxUserID := r.Context().Value(middleware.ContextKeyUserID)
	if ctxUserID == nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized,
			"No userID in context", nil, nil,
		)
		return uuid.Nil, false
	}
	workerID, err := uuid.Parse(ctxUserID.(string))
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized,
			"Subject is not a valid worker ID", nil, err,
		)
		return uuid.Nil, false
	}
	return workerID, true
}

// ----------------------------------------------------------------
// GET /api/v1/attendance/status
// ----------------------------------------------------------------
func (c *AttendanceController) StatusHandler(w http.ResponseWriter, r *http.Request) {
	workerID, ok := workerIDFromContext(w, r)
	if !ok {
		return
	}

	resp, err := c.svc.CurrentStatus(r.Context(), workerID)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to load attendance status", nil, err,
		)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// POST /api/v1/attendance/resync
// ----------------------------------------------------------------
func (c *AttendanceController) ResyncHandler(w http.ResponseWriter, r *http.Request) {
	workerID, ok := workerIDFromContext(w, r)
	if !ok {
		return
	}

	resp, err := c.svc.Resync(r.Context(), workerID)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusServiceUnavailable, utils.ErrCodePersistenceUnavailable,
			"Could not re-read attendance state; try again", nil, err,
		)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// decodeClockBody parses the optional clock-action body. An empty body means
// "use the live tracker fix".
func decodeClockBody(w http.ResponseWriter, r *http.Request) (*geofence.Coordinate, bool) {
	var body dtos.ClockActionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for clock-action payload", nil, err,
		)
		return nil, false
	}
	if body.Location == nil {
		return nil, true
	}

	fix := body.Location
	if code, msg := utils.ValidateLocationData(fix.Lat, fix.Lng, fix.Accuracy, fix.Timestamp, fix.IsMock); code != "" {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, code, msg, nil, nil)
		return nil, false
	}
	return &geofence.Coordinate{Lat: fix.Lat, Lng: fix.Lng}, true
}

// respondClockError maps the state machine's expected rejections onto the
// wire. Geofence/position gates are 400s with the sentinel as the code,
// state conflicts are 409s, persistence trouble is a 503 telling the caller
// to resync before retrying.
func respondClockError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, utils.ErrAlreadyClockedIn),
		errors.Is(err, utils.ErrNotClockedIn):
		utils.RespondErrorWithCode(
			w, http.StatusConflict, err.Error(),
			"Cannot "+action+" from the current state", nil, err,
		)
	case errors.Is(err, utils.ErrOutsideGeofence),
		errors.Is(err, utils.ErrNoPositionFix),
		errors.Is(err, utils.ErrGeolocationUnavailable):
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, err.Error(),
			"Cannot "+action+" here", nil, err,
		)
	default:
		utils.RespondErrorWithCode(
			w, http.StatusServiceUnavailable, utils.ErrCodePersistenceUnavailable,
			"The "+action+" may not have been saved; resync and retry", nil, err,
		)
	}
}

// ----------------------------------------------------------------
// POST /api/v1/attendance/clock-in
// ----------------------------------------------------------------
func (c *AttendanceController) ClockInHandler(w http.ResponseWriter, r *http.Request) {
	workerID, ok := workerIDFromContext(w, r)
	if !ok {
		return
	}
	pos, ok := decodeClockBody(w, r)
	if !ok {
		return
	}

	rec, err := c.svc.ClockIn(r.Context(), workerID, pos)
	if err != nil {
		respondClockError(w, err, "clock in")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewAttendanceRecordDTO(rec))
}

// ----------------------------------------------------------------
// POST /api/v1/attendance/clock-out
// ----------------------------------------------------------------
func (c *AttendanceController) ClockOutHandler(w http.ResponseWriter, r *http.Request) {
	workerID, ok := workerIDFromContext(w, r)
	if !ok {
		return
	}
	pos, ok := decodeClockBody(w, r)
	if !ok {
		return
	}

	rec, err := c.svc.ClockOut(r.Context(), workerID, pos)
	if err != nil {
		respondClockError(w, err, "clock out")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewAttendanceRecordDTO(rec))
}

// ----------------------------------------------------------------
// POST /api/v1/attendance/position
// ----------------------------------------------------------------
func (c *AttendanceController) PositionHandler(w http.ResponseWriter, r *http.Request) {
	workerID, ok := workerIDFromContext(w, r)
	if !ok {
		return
	}

	var body dtos.PositionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for position payload", nil, err,
		)
		return
	}
	if err := attendanceValidate.Struct(&body); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Invalid position payload", err.Error(), err,
		)
		return
	}
	if body.Fix == nil && body.ErrorCode == "" {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Either fix or error_code is required", nil, nil,
		)
		return
	}

	var (
		verdict geofence.Verdict
		err     error
	)
	if body.Fix != nil {
		fix := body.Fix
		if code, msg := utils.ValidateLocationData(fix.Lat, fix.Lng, fix.Accuracy, fix.Timestamp, fix.IsMock); code != "" {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, code, msg, nil, nil)
			return
		}
		verdict, err = c.svc.ReportPosition(r.Context(), workerID, tracker.Sample{
			Coord:          geofence.Coordinate{Lat: fix.Lat, Lng: fix.Lng},
			AccuracyMeters: fix.Accuracy,
			ObservedAt:     time.UnixMilli(fix.Timestamp),
		})
	} else {
		verdict, err = c.svc.ReportPositionError(r.Context(), workerID, body.ErrorCode)
	}
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to process position update", nil, err,
		)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, verdict)
}

// ----------------------------------------------------------------
// GET /api/v1/attendance/history?limit= | ?from=&to=
// ----------------------------------------------------------------
func (c *AttendanceController) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	workerID, ok := workerIDFromContext(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	fromStr, toStr := q.Get("from"), q.Get("to")

	var (
		resp *dtos.HistoryResponse
		err  error
	)
	if fromStr != "" || toStr != "" {
		from, pErr := time.Parse("2006-01-02", fromStr)
		if pErr != nil {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
				"from must be YYYY-MM-DD", nil, pErr,
			)
			return
		}
		to, pErr := time.Parse("2006-01-02", toStr)
		if pErr != nil {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
				"to must be YYYY-MM-DD", nil, pErr,
			)
			return
		}
		// Include the whole end day.
		to = to.Add(24*time.Hour - time.Nanosecond)
		resp, err = c.svc.HistoryRange(r.Context(), workerID, from, to)
	} else {
		limit := 0
		if ls := q.Get("limit"); ls != "" {
			limit, err = strconv.Atoi(ls)
			if err != nil || limit < 0 {
				utils.RespondErrorWithCode(
					w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
					"limit must be a non-negative integer", nil, err,
				)
				return
			}
		}
		resp, err = c.svc.History(r.Context(), workerID, limit)
	}
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to load attendance history", nil, err,
		)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
