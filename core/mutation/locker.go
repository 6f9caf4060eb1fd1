package mutation

import (
	"context"
	"sync"
)

// Locker marks keys as pending. TryLock never blocks: it reports false when the key is taken.
type Locker interface {
	TryLock(ctx context.Context, key string) (bool, error)
	Unlock(ctx context.Context, key string) error
	Locked(ctx context.Context, key string) (bool, error)
}

type localLocker struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

var _ Locker = (*localLocker)(nil)

// NewLocalLocker returns an in-process Locker.
func NewLocalLocker() Locker {
	return &localLocker{keys: make(map[string]struct{})}
}

func (l *localLocker) TryLock(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.keys[key]; ok {
		return false, nil
	}
	l.keys[key] = struct{}{}
	return true, nil
}

func (l *localLocker) Unlock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.keys, key)
	return nil
}

func (l *localLocker) Locked(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.keys[key]
	return ok, nil
}
