package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/profeweb/core/mutation"
)

const lockKeyPrefix = "mutation:lock:"

// unlockScript deletes the key only if it still holds our token: an expired lock taken over by
// another instance is left alone.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	rdb *redis.Client
	ttl time.Duration

	mu     sync.Mutex
	tokens map[string]string // {key: token}
}

var _ mutation.Locker = (*redisLocker)(nil)

// NewRedisLocker returns a Locker shared by every instance using rdb. Locks expire after ttl in case
// their holder dies.
func NewRedisLocker(rdb *redis.Client, ttl time.Duration) mutation.Locker {
	return &redisLocker{rdb: rdb, ttl: ttl, tokens: make(map[string]string)}
}

func (l *redisLocker) TryLock(ctx context.Context, key string) (bool, error) {
	token := uuid.New().String()
	ok, err := l.rdb.SetNX(ctx, lockKeyPrefix+key, token, l.ttl).Result()
	if err != nil {
		return false, errors.Wrapf(err, "locking %s", key)
	}
	if ok {
		l.mu.Lock()
		l.tokens[key] = token
		l.mu.Unlock()
	}
	return ok, nil
}

func (l *redisLocker) Unlock(ctx context.Context, key string) error {
	l.mu.Lock()
	token, ok := l.tokens[key]
	delete(l.tokens, key)
	l.mu.Unlock()
	if !ok {
		return nil
	}
	err := unlockScript.Run(ctx, l.rdb, []string{lockKeyPrefix + key}, token).Err()
	if err != nil && err != redis.Nil {
		return errors.Wrapf(err, "unlocking %s", key)
	}
	return nil
}

func (l *redisLocker) Locked(ctx context.Context, key string) (bool, error) {
	n, err := l.rdb.Exists(ctx, lockKeyPrefix+key).Result()
	if err != nil {
		return false, errors.Wrapf(err, "checking lock %s", key)
	}
	return n > 0, nil
}
