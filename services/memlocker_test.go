package services

import (
	"context"
	"sync"
)

// memLocker is an in-process locker for concurrency tests: real mutual
// exclusion per key, no Redis round trips.
type memLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMemLocker() *memLocker {
	return &memLocker{locks: map[string]*sync.Mutex{}}
}

func (l *memLocker) forKey(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}

func (l *memLocker) acquire(ctx context.Context, key string) error {
	l.forKey(key).Lock()
	return nil
}

func (l *memLocker) release(ctx context.Context, key string) {
	l.forKey(key).Unlock()
}
