package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bradfitz/latlong"
	"github.com/google/uuid"

	"github.com/poofware/attendance-service/internal/config"
	"github.com/poofware/attendance-service/internal/constants"
	"github.com/poofware/attendance-service/internal/dtos"
	"github.com/poofware/attendance-service/internal/geofence"
	"github.com/poofware/attendance-service/internal/hours"
	"github.com/poofware/attendance-service/internal/models"
	"github.com/poofware/attendance-service/internal/repositories"
	"github.com/poofware/attendance-service/internal/tracker"
	"github.com/poofware/attendance-service/internal/utils"
)

/*
AttendanceService is the session state machine. The durable source of truth
is the record store ("does this worker have a record with clock_out_at IS
NULL"); nothing here survives a restart except what the store holds.

Per-worker mutexes serialize the geofence gate with the persistence write so
no other clock action for the same worker can interleave between the check
and the commit. Cross-instance races are caught by the store's partial
unique index and resolved as "already clocked in".
*/
type AttendanceService struct {
	attRepo    repositories.AttendanceRepository
	zoneRepo   repositories.ZoneRepository
	policyRepo repositories.PolicyRepository

	mu       sync.Mutex
	locks    map[uuid.UUID]*sync.Mutex
	trackers map[uuid.UUID]*tracker.Tracker

	positionMaxAge time.Duration
	now            func() time.Time
}

func NewAttendanceService(
	cfg *config.Config,
	attRepo repositories.AttendanceRepository,
	zoneRepo repositories.ZoneRepository,
	policyRepo repositories.PolicyRepository,
) *AttendanceService {
	maxAge := constants.PositionMaxAge
	if cfg != nil && cfg.PositionMaxAge > 0 {
		maxAge = cfg.PositionMaxAge
	}
	return &AttendanceService{
		attRepo:        attRepo,
		zoneRepo:       zoneRepo,
		policyRepo:     policyRepo,
		locks:          make(map[uuid.UUID]*sync.Mutex),
		trackers:       make(map[uuid.UUID]*tracker.Tracker),
		positionMaxAge: maxAge,
		now:            time.Now,
	}
}

func (s *AttendanceService) workerLock(workerID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lk, ok := s.locks[workerID]
	if !ok {
		lk = &sync.Mutex{}
		s.locks[workerID] = lk
	}
	return lk
}

// trackerFor lazily builds the worker's position tracker with the employer
// zone snapshotted at first use. Resync rebuilds it with a fresh zone.
func (s *AttendanceService) trackerFor(ctx context.Context, workerID uuid.UUID) (*tracker.Tracker, error) {
	s.mu.Lock()
	if tr, ok := s.trackers[workerID]; ok {
		s.mu.Unlock()
		return tr, nil
	}
	s.mu.Unlock()

	zone, err := s.zoneRepo.GetZoneForWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tr, ok := s.trackers[workerID]; ok {
		return tr, nil
	}
	tr := tracker.New(zone, s.positionMaxAge)
	s.trackers[workerID] = tr
	return tr, nil
}

// ReportPosition feeds one device fix into the worker's tracker.
func (s *AttendanceService) ReportPosition(ctx context.Context, workerID uuid.UUID, sample tracker.Sample) (geofence.Verdict, error) {
	tr, err := s.trackerFor(ctx, workerID)
	if err != nil {
		return geofence.Verdict{}, err
	}
	tr.Apply(sample)
	return tr.Verdict(), nil
}

// ReportPositionError marks the worker's location source as failed until a
// fresh fix arrives.
func (s *AttendanceService) ReportPositionError(ctx context.Context, workerID uuid.UUID, code string) (geofence.Verdict, error) {
	tr, err := s.trackerFor(ctx, workerID)
	if err != nil {
		return geofence.Verdict{}, err
	}
	utils.Logger.WithField("worker_id", workerID).WithField("code", code).
		Warn("Device reported geolocation failure")
	tr.Fail(utils.ErrGeolocationUnavailable)
	return tr.Verdict(), nil
}

// CurrentStatus reconstructs the state from the store and attaches the live
// geofence verdict.
func (s *AttendanceService) CurrentStatus(ctx context.Context, workerID uuid.UUID) (*dtos.StatusResponse, error) {
	open, err := s.attRepo.FindOpenSession(ctx, workerID)
	if err != nil {
		return nil, err
	}
	tr, err := s.trackerFor(ctx, workerID)
	if err != nil {
		return nil, err
	}

	resp := &dtos.StatusResponse{
		State:                  dtos.StateNoOpenSession,
		Geofence:               tr.Verdict(),
		GeolocationUnavailable: tr.Unavailable(),
	}
	if open != nil {
		dto := dtos.NewAttendanceRecordDTO(open)
		resp.State = dtos.StateOpenSession
		resp.SinceWhen = &open.ClockInAt
		resp.OpenSession = &dto
	}
	return resp, nil
}

// Resync drops the cached zone/tracker state and re-reads everything from
// the store. Callers invoke it after a failed write before retrying, so a
// half-trusted local state never drives the next decision.
func (s *AttendanceService) Resync(ctx context.Context, workerID uuid.UUID) (*dtos.StatusResponse, error) {
	s.mu.Lock()
	delete(s.trackers, workerID)
	s.mu.Unlock()
	return s.CurrentStatus(ctx, workerID)
}

// resolvePosition picks the request-supplied fix when present, otherwise the
// tracker's latest fresh sample.
func (s *AttendanceService) resolvePosition(ctx context.Context, workerID uuid.UUID, fix *geofence.Coordinate) (*geofence.Coordinate, bool, error) {
	if fix != nil {
		return fix, false, nil
	}
	tr, err := s.trackerFor(ctx, workerID)
	if err != nil {
		return nil, false, err
	}
	pos, _ := tr.Position()
	return pos, tr.Unavailable(), nil
}

func gateError(verdict geofence.Verdict, sourceFailed bool) error {
	if verdict.Allowed {
		return nil
	}
	if verdict.Reason == geofence.ReasonNoPosition {
		if sourceFailed {
			return utils.ErrGeolocationUnavailable
		}
		return utils.ErrNoPositionFix
	}
	return utils.ErrOutsideGeofence
}

// ClockIn opens a session. Valid only from NO_OPEN_SESSION; the geofence
// gate is resolved before any write is attempted.
func (s *AttendanceService) ClockIn(ctx context.Context, workerID uuid.UUID, fix *geofence.Coordinate) (*models.AttendanceRecord, error) {
	lk := s.workerLock(workerID)
	lk.Lock()
	defer lk.Unlock()

	open, err := s.attRepo.FindOpenSession(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, utils.ErrAlreadyClockedIn
	}

	zone, err := s.zoneRepo.GetZoneForWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	pos, sourceFailed, err := s.resolvePosition(ctx, workerID, fix)
	if err != nil {
		return nil, err
	}
	if gErr := gateError(geofence.Evaluate(pos, zone), sourceFailed); gErr != nil {
		return nil, gErr
	}

	rec, err := s.attRepo.CreateSession(ctx, workerID, s.now(), pos)
	if errors.Is(err, repositories.ErrDuplicateOpenSession) {
		// Lost a race against another device or a duplicate retry. The store
		// kept the invariant; treat it as already clocked in.
		utils.Logger.WithField("worker_id", workerID).
			Info("Duplicate clock-in rejected by store; refreshing open session")
		open, findErr := s.attRepo.FindOpenSession(ctx, workerID)
		if findErr != nil {
			return nil, findErr
		}
		if open == nil {
			// The racing session was closed (or the read lagged) between the
			// rejected insert and the re-read. Nothing trustworthy to return;
			// the caller resyncs and retries.
			return nil, repositories.ErrDuplicateOpenSession
		}
		return open, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ClockOut closes the open session. Valid only from OPEN_SESSION; the same
// geofence gate applies as for clock-in.
func (s *AttendanceService) ClockOut(ctx context.Context, workerID uuid.UUID, fix *geofence.Coordinate) (*models.AttendanceRecord, error) {
	lk := s.workerLock(workerID)
	lk.Lock()
	defer lk.Unlock()

	open, err := s.attRepo.FindOpenSession(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, utils.ErrNotClockedIn
	}

	zone, err := s.zoneRepo.GetZoneForWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	pos, sourceFailed, err := s.resolvePosition(ctx, workerID, fix)
	if err != nil {
		return nil, err
	}
	if gErr := gateError(geofence.Evaluate(pos, zone), sourceFailed); gErr != nil {
		return nil, gErr
	}

	out := s.now()
	if out.Before(open.ClockInAt) {
		// NTP step between the two transitions; keep clock_out_at >= clock_in_at.
		out = open.ClockInAt
	}

	closed, err := s.attRepo.CloseSession(ctx, open.ID, out, pos)
	if errors.Is(err, repositories.ErrSessionNotOpen) {
		// Closed from another device between our read and write.
		return nil, utils.ErrNotClockedIn
	}
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// History returns the most recent sessions with derived hours.
func (s *AttendanceService) History(ctx context.Context, workerID uuid.UUID, limit int) (*dtos.HistoryResponse, error) {
	if limit <= 0 {
		limit = constants.RecentHistoryLimit
	}
	if limit > constants.MaxHistoryLimit {
		limit = constants.MaxHistoryLimit
	}
	recs, err := s.attRepo.ListRecentSessions(ctx, workerID, limit)
	if err != nil {
		return nil, err
	}
	return s.buildHistory(ctx, workerID, recs)
}

// HistoryRange returns sessions whose clock-in falls within [from, to],
// most recent first.
func (s *AttendanceService) HistoryRange(ctx context.Context, workerID uuid.UUID, from, to time.Time) (*dtos.HistoryResponse, error) {
	recs, err := s.attRepo.ListSessionsInRange(ctx, workerID, from, to)
	if err != nil {
		return nil, err
	}
	return s.buildHistory(ctx, workerID, recs)
}

func (s *AttendanceService) buildHistory(ctx context.Context, workerID uuid.UUID, recs []*models.AttendanceRecord) (*dtos.HistoryResponse, error) {
	dailyHours, err := s.policyRepo.GetDailyHours(ctx, workerID)
	if err != nil {
		return nil, err
	}

	resp := &dtos.HistoryResponse{
		Entries:    make([]dtos.HistoryEntryDTO, 0, len(recs)),
		DailyHours: dailyHours,
	}
	for _, rec := range recs {
		entry := dtos.HistoryEntryDTO{
			Record:    dtos.NewAttendanceRecordDTO(rec),
			LocalDate: localDate(rec),
		}

		bd, cErr := hours.ComputeWithCalendar(rec.ClockInAt, rec.ClockOutAt, dailyHours, utils.WorkCalendar())
		if cErr != nil {
			// Corrupted record: surface it flagged, keep it out of the totals.
			utils.Logger.WithField("record_id", rec.ID).
				Error("Attendance record has clock_out_at before clock_in_at")
			entry.Integrity = false
			resp.Entries = append(resp.Entries, entry)
			continue
		}
		entry.Integrity = true
		entry.WorkedHours = bd.WorkedHours
		entry.OvertimeHours = bd.OvertimeHours
		entry.InProgress = bd.InProgress
		resp.TotalWorkedHours += bd.WorkedHours
		resp.TotalOvertimeHours += bd.OvertimeHours
		resp.Entries = append(resp.Entries, entry)
	}
	return resp, nil
}

// localDate renders the session's calendar date in the timezone of its
// clock-in coordinates, falling back to UTC when no location was captured.
func localDate(rec *models.AttendanceRecord) string {
	t := rec.ClockInAt
	if rec.ClockInLat != nil && rec.ClockInLng != nil {
		if zoneName := latlong.LookupZoneName(*rec.ClockInLat, *rec.ClockInLng); zoneName != "" {
			if loc, err := time.LoadLocation(zoneName); err == nil {
				t = t.In(loc)
			}
		}
	}
	return t.Format("2006-01-02")
}
