package stubserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrThrottled means the username has used up its failed-login budget.
	ErrThrottled = errors.New("too many failed login attempts")
	// ErrThrottleUnavailable wraps Redis failures.
	ErrThrottleUnavailable = errors.New("throttle store unavailable")
)

// ThrottleConfig bounds failed logins per username within a fixed window.
type ThrottleConfig struct {
	MaxAttempts int
	Window      time.Duration
	KeyPrefix   string
}

// Throttle counts failed logins in Redis. A nil *Throttle allows everything.
type Throttle struct {
	redis  redis.UniversalClient
	config ThrottleConfig
}

// NewThrottle returns a throttle backed by client.
func NewThrottle(client redis.UniversalClient, cfg ThrottleConfig) (*Throttle, error) {
	if client == nil {
		return nil, errors.New("throttle requires a redis client")
	}
	if cfg.MaxAttempts <= 0 || cfg.Window <= 0 {
		return nil, errors.New("throttle requires positive MaxAttempts and Window")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "stub:login"
	}
	return &Throttle{redis: client, config: cfg}, nil
}

// Check returns ErrThrottled once username has used up its budget.
func (t *Throttle) Check(ctx context.Context, username string) error {
	if t == nil {
		return nil
	}
	count, err := t.redis.Get(ctx, t.key(username)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrThrottleUnavailable, err)
	}
	if count >= int64(t.config.MaxAttempts) {
		return ErrThrottled
	}
	return nil
}

// Fail records one failed attempt. The window starts at the first failure.
func (t *Throttle) Fail(ctx context.Context, username string) error {
	if t == nil {
		return nil
	}
	key := t.key(username)
	count, err := t.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrThrottleUnavailable, err)
	}
	if count == 1 {
		if err := t.redis.Expire(ctx, key, t.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrThrottleUnavailable, err)
		}
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *Throttle) Reset(ctx context.Context, username string) error {
	if t == nil {
		return nil
	}
	if err := t.redis.Del(ctx, t.key(username)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrThrottleUnavailable, err)
	}
	return nil
}

func (t *Throttle) key(username string) string {
	return t.config.KeyPrefix + ":" + username
}
