// Package locking provides room-scoped exclusive locks.
//
// Every write sequence that reads a room's reservations, decides, and writes
// runs while holding that room's lock. Locks on different rooms are independent.
package locking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	apperrors "roombook/pkg/errors"
	"roombook/pkg/logger"
)

// ErrLockTimeout is returned when a room lock is not acquired within the wait budget.
var ErrLockTimeout = errors.New("timed out waiting for room lock")

const releaseTimeout = 2 * time.Second

// Locker acquires the lock for a single room, blocking until ctx is done.
type Locker interface {
	Acquire(ctx context.Context, roomID string) (Lease, error)
}

type Lease interface {
	Release(ctx context.Context) error
}

// Guard acquires one or more room locks under a single bounded wait.
type Guard struct {
	locker Locker
	wait   time.Duration
	log    *logger.Logger
}

func NewGuard(locker Locker, wait time.Duration, log *logger.Logger) *Guard {
	return &Guard{
		locker: locker,
		wait:   wait,
		log:    log,
	}
}

// Lock acquires the locks for roomIDs in sorted order, so two callers locking
// overlapping sets never deadlock. The returned release func frees them all.
func (g *Guard) Lock(ctx context.Context, roomIDs ...string) (func(), error) {
	ids := uniqueSorted(roomIDs)

	waitCtx, cancel := context.WithTimeout(ctx, g.wait)
	defer cancel()

	leases := make([]Lease, 0, len(ids))
	release := func() {
		for i := len(leases) - 1; i >= 0; i-- {
			relCtx, relCancel := context.WithTimeout(context.Background(), releaseTimeout)
			if err := leases[i].Release(relCtx); err != nil {
				g.log.Warn("Failed to release room lock",
					"room_id", ids[i],
					"error", err,
				)
			}
			relCancel()
		}
	}

	for _, id := range ids {
		lease, err := g.locker.Acquire(waitCtx, id)
		if err != nil {
			release()
			if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				g.log.Warn("Room lock wait exceeded",
					"room_id", id,
					"wait", g.wait,
				)
				return nil, fmt.Errorf("%w: room %s", ErrLockTimeout, id)
			}
			return nil, fmt.Errorf("failed to acquire lock for room %s: %w", id, err)
		}
		leases = append(leases, lease)
	}

	return release, nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// waitOrDone sleeps for d, returning ctx.Err() if ctx finishes first.
func waitOrDone(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ToAppError maps a Guard.Lock failure onto the API error taxonomy.
func ToAppError(err error) error {
	switch {
	case errors.Is(err, ErrLockTimeout):
		return apperrors.Busy("Room is busy, please retry", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("Request ended while waiting for room lock")
	default:
		return apperrors.Internal("Failed to acquire room lock", err)
	}
}
