package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/poofware/attendance-service/internal/geofence"
	"github.com/poofware/attendance-service/internal/models"
	"github.com/poofware/attendance-service/internal/utils"
)

// Sample is one position fix pushed by a worker device.
type Sample struct {
	Coord          geofence.Coordinate
	AccuracyMeters float64
	ObservedAt     time.Time
}

// Update is one event from a push-based location source: either a fresh
// sample or an error signal (permission denied, timeout, hardware failure).
type Update struct {
	Sample *Sample
	Err    error
}

// Tracker holds the most recent position fix for one worker and evaluates it
// against the employer zone. Last write wins; there is no smoothing or
// de-bouncing. A source error clears the fix so a stale "allowed" verdict can
// never survive a failure.
type Tracker struct {
	mu     sync.Mutex
	zone   *models.GeofenceZone
	latest *Sample
	srcErr error

	maxAge time.Duration
	now    func() time.Time
}

func New(zone *models.GeofenceZone, maxAge time.Duration) *Tracker {
	return &Tracker{
		zone:   zone,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Apply records a fresh sample and clears any previous source error.
func (t *Tracker) Apply(s Sample) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest = &s
	t.srcErr = nil
}

// Fail records a location-source error. The current fix is dropped: the
// tracker reports no position until a fresh successful sample arrives.
func (t *Tracker) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err == nil {
		err = utils.ErrGeolocationUnavailable
	}
	t.latest = nil
	t.srcErr = err
}

// Position returns the current coordinate if a fix exists and is within the
// grace period. Samples older than maxAge count as no fix at all.
func (t *Tracker) Position() (*geofence.Coordinate, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.positionLocked()
}

func (t *Tracker) positionLocked() (*geofence.Coordinate, bool) {
	if t.latest == nil {
		return nil, false
	}
	if t.maxAge > 0 && t.now().Sub(t.latest.ObservedAt) > t.maxAge {
		return nil, false
	}
	c := t.latest.Coord
	return &c, true
}

// Unavailable reports whether the location source is in its failed state.
func (t *Tracker) Unavailable() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.srcErr != nil
}

// Verdict evaluates the current fix against the zone.
func (t *Tracker) Verdict() geofence.Verdict {
	t.mu.Lock()
	defer t.mu.Unlock()
	pos, _ := t.positionLocked()
	return geofence.Evaluate(pos, t.zone)
}

// Run consumes a location-update stream until the context is cancelled or
// the channel closes. Cancellation stops all evaluator updates; the caller
// owns the subscription lifecycle.
func (t *Tracker) Run(ctx context.Context, updates <-chan Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if u.Err != nil {
				t.Fail(u.Err)
				continue
			}
			if u.Sample != nil {
				t.Apply(*u.Sample)
			}
		}
	}
}
