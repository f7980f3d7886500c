package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/attendance-service/internal/geofence"
	"github.com/poofware/attendance-service/internal/models"
)

// ErrDuplicateOpenSession signals that the worker already has an open record.
// It is raised from the partial unique index
// uq_attendance_open_session ON attendance_records (worker_id) WHERE clock_out_at IS NULL,
// which makes the single-open-session invariant hold even when two clock-in
// writes race.
var ErrDuplicateOpenSession = errors.New("duplicate_open_session")

type AttendanceRepository interface {
	// FindOpenSession returns the worker's open record, or nil when the
	// worker is not clocked in.
	FindOpenSession(ctx context.Context, workerID uuid.UUID) (*models.AttendanceRecord, error)

	// CreateSession inserts a new open record. Returns
	// ErrDuplicateOpenSession when one already exists for the worker.
	CreateSession(ctx context.Context, workerID uuid.UUID, clockInAt time.Time, loc *geofence.Coordinate) (*models.AttendanceRecord, error)

	// CloseSession stamps the clock-out on an open record. Returns
	// utils-style no-rows error when the record is missing or already closed.
	CloseSession(ctx context.Context, id uuid.UUID, clockOutAt time.Time, loc *geofence.Coordinate) (*models.AttendanceRecord, error)

	ListRecentSessions(ctx context.Context, workerID uuid.UUID, limit int) ([]*models.AttendanceRecord, error)
	ListSessionsInRange(ctx context.Context, workerID uuid.UUID, from, to time.Time) ([]*models.AttendanceRecord, error)

	// ListStaleOpenSessions returns open records whose clock-in predates the
	// cutoff, for the scheduled audit.
	ListStaleOpenSessions(ctx context.Context, openedBefore time.Time) ([]*models.AttendanceRecord, error)
}

var ErrSessionNotOpen = errors.New("session_not_open")

type attendanceRepo struct {
	db DB
}

func NewAttendanceRepository(db DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func baseSelectRecord() string {
	return `
        SELECT
            id, worker_id, clock_in_at, clock_out_at,
            clock_in_lat, clock_in_lng, clock_out_lat, clock_out_lng,
            created_at, updated_at
        FROM attendance_records
    `
}

func scanRecord(row pgx.Row) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := row.Scan(
		&rec.ID,
		&rec.WorkerID,
		&rec.ClockInAt,
		&rec.ClockOutAt,
		&rec.ClockInLat,
		&rec.ClockInLng,
		&rec.ClockOutLat,
		&rec.ClockOutLng,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *attendanceRepo) FindOpenSession(ctx context.Context, workerID uuid.UUID) (*models.AttendanceRecord, error) {
	row := r.db.QueryRow(ctx, baseSelectRecord()+`
        WHERE worker_id=$1 AND clock_out_at IS NULL
        ORDER BY clock_in_at DESC
        LIMIT 1
    `, workerID)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (r *attendanceRepo) CreateSession(
	ctx context.Context,
	workerID uuid.UUID,
	clockInAt time.Time,
	loc *geofence.Coordinate,
) (*models.AttendanceRecord, error) {
	rec := &models.AttendanceRecord{
		ID:        uuid.New(),
		WorkerID:  workerID,
		ClockInAt: clockInAt,
	}
	if loc != nil {
		rec.ClockInLat = &loc.Lat
		rec.ClockInLng = &loc.Lng
	}

	row := r.db.QueryRow(ctx, `
        INSERT INTO attendance_records (
            id, worker_id, clock_in_at,
            clock_in_lat, clock_in_lng,
            created_at, updated_at
        ) VALUES (
            $1,$2,$3,$4,$5,NOW(),NOW()
        )
        RETURNING created_at, updated_at
    `,
		rec.ID, rec.WorkerID, rec.ClockInAt,
		rec.ClockInLat, rec.ClockInLng,
	)
	if err := row.Scan(&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateOpenSession
		}
		return nil, err
	}
	return rec, nil
}

func (r *attendanceRepo) CloseSession(
	ctx context.Context,
	id uuid.UUID,
	clockOutAt time.Time,
	loc *geofence.Coordinate,
) (*models.AttendanceRecord, error) {
	var lat, lng *float64
	if loc != nil {
		lat = &loc.Lat
		lng = &loc.Lng
	}

	tag, err := r.db.Exec(ctx, `
        UPDATE attendance_records
        SET clock_out_at=$2, clock_out_lat=$3, clock_out_lng=$4, updated_at=NOW()
        WHERE id=$1 AND clock_out_at IS NULL
    `, id, clockOutAt, lat, lng)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrSessionNotOpen
	}

	return scanRecord(r.db.QueryRow(ctx, baseSelectRecord()+" WHERE id=$1", id))
}

func (r *attendanceRepo) ListRecentSessions(ctx context.Context, workerID uuid.UUID, limit int) ([]*models.AttendanceRecord, error) {
	rows, err := r.db.Query(ctx, baseSelectRecord()+`
        WHERE worker_id=$1
        ORDER BY clock_in_at DESC
        LIMIT $2
    `, workerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (r *attendanceRepo) ListSessionsInRange(ctx context.Context, workerID uuid.UUID, from, to time.Time) ([]*models.AttendanceRecord, error) {
	rows, err := r.db.Query(ctx, baseSelectRecord()+`
        WHERE worker_id=$1 AND clock_in_at >= $2 AND clock_in_at <= $3
        ORDER BY clock_in_at DESC
    `, workerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (r *attendanceRepo) ListStaleOpenSessions(ctx context.Context, openedBefore time.Time) ([]*models.AttendanceRecord, error) {
	rows, err := r.db.Query(ctx, baseSelectRecord()+`
        WHERE clock_out_at IS NULL AND clock_in_at < $1
        ORDER BY clock_in_at ASC
    `, openedBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func collectRecords(rows pgx.Rows) ([]*models.AttendanceRecord, error) {
	var out []*models.AttendanceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
