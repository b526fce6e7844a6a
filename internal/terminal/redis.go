package terminal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

const (
	stateKeyPrefix   = "pos:terminal:"
	lockKeyPrefix    = "pos:lock:terminal:"
	revokedKeyPrefix = "pos:revoked:"
	defaultLockTTL   = 10 * time.Second
)

// Connect initializes a redis client from a redis:// URL or host:port.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisStore shares terminal state across service instances. Updates to one
// session are serialized with a redis lock.
type RedisStore struct {
	client  *redis.Client
	locker  *redislock.Client
	ttl     time.Duration
	lockTTL time.Duration
}

// NewRedisStore keeps idle terminal state for ttl.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, locker: redislock.New(client), ttl: ttl, lockTTL: defaultLockTTL}
}

// refresher is the part of *redislock.Lock that keepLocked needs.
type refresher interface {
	Refresh(ctx context.Context, ttl time.Duration, opt *redislock.Options) error
}

// keepLocked extends lock every half ttl until stop is called. stop reports
// the first failed refresh, after which the lock may belong to someone else.
func keepLocked(lock refresher, ttl time.Duration) (stop func() error) {
	done := make(chan struct{})
	finished := make(chan struct{})
	var refreshErr error
	go func() {
		defer close(finished)
		ticker := time.NewTicker(ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), ttl/2)
				err := lock.Refresh(ctx, ttl, nil)
				cancel()
				if err != nil {
					refreshErr = err
					return
				}
			}
		}
	}()
	return func() error {
		close(done)
		<-finished
		return refreshErr
	}
}

func (r *RedisStore) Load(ctx context.Context, sessionID string) (State, error) {
	raw, err := r.client.Get(ctx, stateKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewState(), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("load terminal state: %w", err)
	}
	state := NewState()
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, fmt.Errorf("decode terminal state: %w", err)
	}
	return state, nil
}

func (r *RedisStore) Update(ctx context.Context, sessionID string, fn func(*State) error) (State, error) {
	lock, err := r.locker.Obtain(ctx, lockKeyPrefix+sessionID, r.lockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(25*time.Millisecond), 200),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return State{}, fmt.Errorf("terminal %s is busy: %w", sessionID, err)
	}
	if err != nil {
		return State{}, fmt.Errorf("lock terminal state: %w", err)
	}
	defer func() {
		_ = lock.Release(context.Background())
	}()

	stop := keepLocked(lock, r.lockTTL)
	state, err := r.Load(ctx, sessionID)
	if err == nil {
		err = fn(&state)
	}
	if lockErr := stop(); lockErr != nil && err == nil {
		err = fmt.Errorf("terminal %s lock lost: %w", sessionID, lockErr)
	}
	if err != nil {
		return State{}, err
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return State{}, fmt.Errorf("encode terminal state: %w", err)
	}
	if err := r.client.Set(ctx, stateKeyPrefix+sessionID, raw, r.ttl).Err(); err != nil {
		return State{}, fmt.Errorf("save terminal state: %w", err)
	}
	return state, nil
}

func (r *RedisStore) Drop(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, stateKeyPrefix+sessionID).Err()
}

func (r *RedisStore) Revoke(ctx context.Context, sessionID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		ttl = time.Hour
	}
	return r.client.Set(ctx, revokedKeyPrefix+sessionID, "1", ttl).Err()
}

func (r *RedisStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
