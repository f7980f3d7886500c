package services

import (
	"context"
	"time"

	"github.com/poofware/attendance-service/internal/constants"
	"github.com/poofware/attendance-service/internal/repositories"
	"github.com/poofware/attendance-service/internal/utils"
)

// AuditService runs the scheduled sweep for sessions that were never
// clocked out (device died, worker forgot). It only reports; closing or
// correcting records is an operator decision, never automatic.
type AuditService struct {
	attRepo  repositories.AttendanceRepository
	staleAge time.Duration
	now      func() time.Time
}

func NewAuditService(attRepo repositories.AttendanceRepository) *AuditService {
	return &AuditService{
		attRepo:  attRepo,
		staleAge: constants.StaleOpenSessionAge,
		now:      time.Now,
	}
}

func (s *AuditService) RunStaleOpenSessionAudit(ctx context.Context) error {
	cutoff := s.now().Add(-s.staleAge)
	recs, err := s.attRepo.ListStaleOpenSessions(ctx, cutoff)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		utils.Logger.
			WithField("record_id", rec.ID).
			WithField("worker_id", rec.WorkerID).
			WithField("clock_in_at", rec.ClockInAt).
			Warn("Attendance session open past audit threshold")
	}
	if len(recs) > 0 {
		utils.Logger.Infof("Stale open-session audit flagged %d record(s)", len(recs))
	} else {
		utils.Logger.Debug("Stale open-session audit found nothing")
	}
	return nil
}
