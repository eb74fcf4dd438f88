package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockPrefix = "proman:lock:"

// unlockScript deletes the key only while it still holds our token
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX, shared across replicas
type RedisLocker struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisLocker wraps an existing client
func NewRedisLocker(client redis.UniversalClient, keyPrefix string) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	return &RedisLocker{client: client, keyPrefix: keyPrefix}
}

// TryLock implements Locker
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Unlock implements Locker
func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	n, err := unlockScript.Run(ctx, l.client, []string{l.keyPrefix + key}, token).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}
