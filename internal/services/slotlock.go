package services

import (
	"sync"
	"time"
)

// slotLocker serialises bookings per time slot within one process.
// Entries are reference counted and dropped once nobody holds or waits on them.
type slotLocker struct {
	mu    sync.Mutex
	slots map[int64]*slotLock
}

type slotLock struct {
	mu   sync.Mutex
	refs int
}

func newSlotLocker() *slotLocker {
	return &slotLocker{slots: make(map[int64]*slotLock)}
}

// Lock blocks until the caller owns slot and returns the matching unlock func.
func (l *slotLocker) Lock(slot time.Time) func() {
	key := slot.UnixMicro()

	l.mu.Lock()
	sl, ok := l.slots[key]
	if !ok {
		sl = &slotLock{}
		l.slots[key] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.slots, key)
		}
		l.mu.Unlock()
	}
}

func (l *slotLocker) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
