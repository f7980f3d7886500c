package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/attendance-service/internal/constants"
)

// PolicyRepository resolves per-worker hour-computation configuration.
type PolicyRepository interface {
	// GetDailyHours returns the worker's expected work-day length, falling
	// back to constants.DefaultDailyHours when no explicit value is set.
	GetDailyHours(ctx context.Context, workerID uuid.UUID) (float64, error)
}

type policyRepo struct {
	db DB
}

func NewPolicyRepository(db DB) PolicyRepository {
	return &policyRepo{db: db}
}

func (r *policyRepo) GetDailyHours(ctx context.Context, workerID uuid.UUID) (float64, error) {
	var dailyHours *float64
	err := r.db.QueryRow(ctx, `
        SELECT daily_hours FROM workers WHERE id=$1
    `, workerID).Scan(&dailyHours)
	if errors.Is(err, pgx.ErrNoRows) {
		return constants.DefaultDailyHours, nil
	}
	if err != nil {
		return 0, err
	}
	if dailyHours == nil || *dailyHours <= 0 {
		return constants.DefaultDailyHours, nil
	}
	return *dailyHours, nil
}
