package lease

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/apperr"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	defaultLeaseTTL   = 30 * time.Second
	defaultRetryDelay = 200 * time.Millisecond
	keyPrefix         = "ticker-news:lease:"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

// Redis is a Locker shared by several processes. A lease is a key holding a
// random token with a TTL that is refreshed while held, so a crashed holder
// frees the ticker after one TTL.
type Redis struct {
	client     redis.UniversalClient
	ttl        time.Duration
	retryDelay time.Duration
}

var _ Locker = (*Redis)(nil)

type RedisOption func(*Redis)

func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithRetryDelay(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d > 0 {
			r.retryDelay = d
		}
	}
}

func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{
		client:     client,
		ttl:        defaultLeaseTTL,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) Acquire(ctx context.Context, key string) (context.Context, func(), error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			return nil, nil, fmt.Errorf("%w: acquire lease %s: %w", apperr.ErrStorageUnavailable, key, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(r.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, nil, ctx.Err()
		case <-timer.C:
		}
	}

	held, cancel := context.WithCancelCause(ctx)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.keepAlive(redisKey, token, stop, cancel)
	}()

	var once sync.Once
	return held, func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
			cancel(nil)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, r.client, []string{redisKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				slog.Warn("failed to release lease", "key", key, "error", err)
			}
		})
	}, nil
}

// keepAlive refreshes the lease until stop is closed. The held context is
// cancelled with ErrLost once the token is gone or no refresh succeeded for a
// full TTL.
func (r *Redis) keepAlive(redisKey, token string, stop <-chan struct{}, lost context.CancelCauseFunc) {
	ticker := time.NewTicker(r.ttl / 3)
	defer ticker.Stop()

	refreshed := time.Now()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.ttl/3)
			n, err := refreshScript.Run(ctx, r.client, []string{redisKey}, token, r.ttl.Milliseconds()).Int()
			cancel()
			if err != nil {
				if time.Since(refreshed) >= r.ttl {
					slog.Error("lease expired, refresh kept failing", "key", redisKey, "error", err)
					lost(fmt.Errorf("%w: %s: %w", ErrLost, redisKey, err))
					return
				}
				slog.Warn("failed to refresh lease", "key", redisKey, "error", err)
				continue
			}
			if n == 0 {
				slog.Error("lease lost before release", "key", redisKey)
				lost(fmt.Errorf("%w: %s", ErrLost, redisKey))
				return
			}
			refreshed = time.Now()
		}
	}
}

// Healthy pings the redis server holding the leases.
func (r *Redis) Healthy(ctx context.Context) bool {
	if err := r.client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis health check failed", "error", err)
		return false
	}
	return true
}
