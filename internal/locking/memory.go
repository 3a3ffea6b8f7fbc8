package locking

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

type memoryEntry struct {
	sem  *semaphore.Weighted
	refs int
}

// MemoryLocker serializes writers inside one process with a weighted
// semaphore per room. Entries are reference counted and dropped when unused.
type MemoryLocker struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		entries: make(map[string]*memoryEntry),
	}
}

func (l *MemoryLocker) Acquire(ctx context.Context, roomID string) (Lease, error) {
	entry := l.retain(roomID)

	if err := entry.sem.Acquire(ctx, 1); err != nil {
		l.drop(roomID)
		return nil, err
	}

	return &memoryLease{locker: l, roomID: roomID, entry: entry}, nil
}

func (l *MemoryLocker) retain(roomID string) *memoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[roomID]
	if !ok {
		entry = &memoryEntry{sem: semaphore.NewWeighted(1)}
		l.entries[roomID] = entry
	}
	entry.refs++
	return entry
}

func (l *MemoryLocker) drop(roomID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[roomID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, roomID)
	}
}

// size reports the number of tracked rooms.
func (l *MemoryLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

type memoryLease struct {
	once   sync.Once
	locker *MemoryLocker
	roomID string
	entry  *memoryEntry
}

func (m *memoryLease) Release(context.Context) error {
	m.once.Do(func() {
		m.entry.sem.Release(1)
		m.locker.drop(m.roomID)
	})
	return nil
}
