// Package cache provides the short-lived coordination state shared by
// replicas: the run lock taken by scheduled jobs.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrLockNotHeld is returned when releasing a lock owned by someone else
var ErrLockNotHeld = errors.New("lock not held")

// Locker grants exclusive, expiring locks keyed by name
type Locker interface {
	// TryLock takes key for ttl. ok is false when another holder has it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	// Unlock releases key if token still owns it
	Unlock(ctx context.Context, key, token string) error
}

type lockEntry struct {
	token     string
	expiresAt time.Time
}

// InMemoryLocker implements Locker for single-instance deployments and tests
type InMemoryLocker struct {
	mu    sync.Mutex
	locks map[string]lockEntry
	now   func() time.Time
}

// NewInMemoryLocker creates an empty in-memory locker
func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{locks: make(map[string]lockEntry), now: time.Now}
}

// TryLock implements Locker
func (l *InMemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.locks[key]; ok && now.Before(e.expiresAt) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.locks[key] = lockEntry{token: token, expiresAt: now.Add(ttl)}
	l.sweep(now)
	return token, true, nil
}

// Unlock implements Locker
func (l *InMemoryLocker) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.locks[key]
	if !ok || e.token != token || !l.now().Before(e.expiresAt) {
		return ErrLockNotHeld
	}
	delete(l.locks, key)
	return nil
}

// sweep drops expired entries; caller holds mu
func (l *InMemoryLocker) sweep(now time.Time) {
	for k, e := range l.locks {
		if !now.Before(e.expiresAt) {
			delete(l.locks, k)
		}
	}
}
