package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/attendance-service/internal/models"
)

// ZoneRepository resolves the employer-configured clock-in zone for a worker.
type ZoneRepository interface {
	// GetZoneForWorker returns nil when the employer has not configured a
	// zone (clocking is then geographically unrestricted).
	GetZoneForWorker(ctx context.Context, workerID uuid.UUID) (*models.GeofenceZone, error)
}

type zoneRepo struct {
	db DB
}

func NewZoneRepository(db DB) ZoneRepository {
	return &zoneRepo{db: db}
}

func (r *zoneRepo) GetZoneForWorker(ctx context.Context, workerID uuid.UUID) (*models.GeofenceZone, error) {
	var lat, lng, radius *float64
	err := r.db.QueryRow(ctx, `
        SELECT c.geofence_lat, c.geofence_lng, c.geofence_radius_m
        FROM companies c
        JOIN workers w ON w.company_id = c.id
        WHERE w.id=$1
    `, workerID).Scan(&lat, &lng, &radius)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lat == nil || lng == nil || radius == nil {
		return nil, nil
	}
	return &models.GeofenceZone{Lat: *lat, Lng: *lng, RadiusMeters: *radius}, nil
}
