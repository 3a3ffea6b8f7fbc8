package locking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "roombook:lock:room:"

var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

// RedisLocker uses SET NX PX with a random owner token per lease.
type RedisLocker struct {
	client        *redis.Client
	ttl           time.Duration
	retryInterval time.Duration
}

func NewRedisLocker(client *redis.Client, ttl, retryInterval time.Duration) *RedisLocker {
	return &RedisLocker{
		client:        client,
		ttl:           ttl,
		retryInterval: retryInterval,
	}
}

func RedisKey(roomID string) string {
	return redisKeyPrefix + roomID
}

func (l *RedisLocker) Acquire(ctx context.Context, roomID string) (Lease, error) {
	key := RedisKey(roomID)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("failed to set room lock: %w", err)
		}
		if ok {
			return &redisLease{client: l.client, key: key, token: token}, nil
		}

		if err := waitOrDone(ctx, l.retryInterval); err != nil {
			return nil, err
		}
	}
}

type redisLease struct {
	client *redis.Client
	key    string
	token  string
}

func (r *redisLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, r.client, []string{r.key}, r.token).Err(); err != nil {
		return fmt.Errorf("failed to release room lock: %w", err)
	}
	return nil
}
