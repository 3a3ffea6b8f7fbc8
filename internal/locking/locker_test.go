package locking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"roombook/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_MutualExclusion(t *testing.T) {
	locker := NewMemoryLocker()
	guard := NewGuard(locker, 2*time.Second, logger.Discard())

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := guard.Lock(context.Background(), "room-a")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, locker.size(), "entries should be dropped once unused")
}

func TestMemoryLocker_DifferentRoomsAreIndependent(t *testing.T) {
	guard := NewGuard(NewMemoryLocker(), 100*time.Millisecond, logger.Discard())

	releaseA, err := guard.Lock(context.Background(), "room-a")
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := guard.Lock(context.Background(), "room-b")
	require.NoError(t, err)
	releaseB()
}

func TestGuard_TimesOutWhenHeld(t *testing.T) {
	guard := NewGuard(NewMemoryLocker(), 30*time.Millisecond, logger.Discard())

	release, err := guard.Lock(context.Background(), "room-a")
	require.NoError(t, err)
	defer release()

	start := time.Now()
	_, err = guard.Lock(context.Background(), "room-a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGuard_CallerCancellationIsNotATimeout(t *testing.T) {
	guard := NewGuard(NewMemoryLocker(), time.Second, logger.Discard())

	release, err := guard.Lock(context.Background(), "room-a")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = guard.Lock(ctx, "room-a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLockTimeout)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGuard_MultiRoomLocksAreReentrantSafe(t *testing.T) {
	guard := NewGuard(NewMemoryLocker(), 100*time.Millisecond, logger.Discard())

	// duplicate ids collapse to one acquisition
	release, err := guard.Lock(context.Background(), "room-b", "room-a", "room-b")
	require.NoError(t, err)
	release()

	release, err = guard.Lock(context.Background(), "room-a")
	require.NoError(t, err)
	release()
}

type recordingLocker struct {
	mu       sync.Mutex
	acquired []string
	released []string
	failOn   string
}

func (r *recordingLocker) Acquire(_ context.Context, roomID string) (Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if roomID == r.failOn {
		return nil, errors.New("backend unavailable")
	}
	r.acquired = append(r.acquired, roomID)
	return &recordingLease{locker: r, roomID: roomID}, nil
}

type recordingLease struct {
	locker *recordingLocker
	roomID string
}

func (l *recordingLease) Release(context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()
	l.locker.released = append(l.locker.released, l.roomID)
	return nil
}

func TestGuard_AcquiresInSortedOrder(t *testing.T) {
	rec := &recordingLocker{}
	guard := NewGuard(rec, time.Second, logger.Discard())

	release, err := guard.Lock(context.Background(), "c", "a", "b")
	require.NoError(t, err)
	release()

	assert.Equal(t, []string{"a", "b", "c"}, rec.acquired)
	assert.Equal(t, []string{"c", "b", "a"}, rec.released)
}

func TestGuard_ReleasesHeldLocksOnFailure(t *testing.T) {
	rec := &recordingLocker{failOn: "b"}
	guard := NewGuard(rec, time.Second, logger.Discard())

	_, err := guard.Lock(context.Background(), "a", "b")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLockTimeout)
	assert.Equal(t, []string{"a"}, rec.released)
}

func TestLockKeys(t *testing.T) {
	assert.Equal(t, "room_lock_abc", LockID("abc"))
	assert.Equal(t, "roombook:lock:room:abc", RedisKey("abc"))
}
