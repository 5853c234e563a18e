package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockLost = errors.New("lock is no longer held")

// Locker guards a section that only one process may run at a time.
type Locker interface {
	TryAcquire(ctx context.Context) (bool, error)
	Refresh(ctx context.Context) error
	Release(ctx context.Context) error
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLock is a lease: the key holds the owner token and expires after ttl,
// so a crashed holder never blocks later runs for longer than ttl.
type RedisLock struct {
	client redisLockClient
	key    string
	ttl    time.Duration
	token  string
}

type redisLockClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

func NewRedisLock(client redisLockClient, key string, ttl time.Duration) *RedisLock {
	host, _ := os.Hostname()
	return &RedisLock{
		client: client,
		key:    key,
		ttl:    ttl,
		token:  fmt.Sprintf("%s:%d:%s", host, os.Getpid(), uuid.NewString()),
	}
}

func (l *RedisLock) Token() string {
	return l.token
}

func (l *RedisLock) TryAcquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock failed: %w", err)
	}
	return ok, nil
}

// Refresh extends the lease while it is still held by this lock.
func (l *RedisLock) Refresh(ctx context.Context) error {
	n, err := refreshScript.Run(ctx, l.client, []string{l.key}, l.token, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("refresh lock failed: %w", err)
	}
	if n == 0 {
		return ErrLockLost
	}
	return nil
}

// Release deletes the key only when it still carries this lock's token.
func (l *RedisLock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("release lock failed: %w", err)
	}
	return nil
}
