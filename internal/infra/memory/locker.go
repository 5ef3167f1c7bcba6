package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"quiz-assignment-service/internal/domain"
)

// Locker is an in-process implementation of app.Locker: one mutex per key,
// dropped again once nobody holds or waits for it.
type Locker struct {
	wait time.Duration

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewLocker returns a Locker whose callers give up after wait.
func NewLocker(wait time.Duration) *Locker {
	if wait <= 0 {
		wait = 10 * time.Second
	}
	return &Locker{wait: wait, locks: make(map[string]*keyLock)}
}

// Lock blocks until key is free, ctx is done, or the wait bound passes.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	lock := l.acquire(key)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case lock.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, lock)
		return nil, ctx.Err()
	case <-timer.C:
		l.release(key, lock)
		return nil, fmt.Errorf("%w: %s", domain.ErrLockTimeout, key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lock.ch
			l.release(key, lock)
		})
	}, nil
}

func (l *Locker) acquire(key string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = lock
	}
	lock.refs++
	return lock
}

func (l *Locker) release(key string, lock *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, key)
	}
}

// size reports how many keys are tracked.
func (l *Locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
