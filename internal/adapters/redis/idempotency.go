package redisad

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"flight_gateway/internal/adapters/observability"
)

const (
	keyPrefix  = "idempotency:"
	processing = "PROCESSING"
)

// Store keeps idempotency keys in redis. Only the outcome status is stored.
type Store struct {
	c       *redis.Client
	lockTTL time.Duration
	doneTTL time.Duration
}

func New(addr, pass string, db int, doneTTL time.Duration) *Store {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), doneTTL)
}

func NewWithClient(c *redis.Client, doneTTL time.Duration) *Store {
	return &Store{c: c, lockTTL: 30 * time.Second, doneTTL: doneTTL}
}

func (s *Store) Ping(ctx context.Context) error { return s.c.Ping(ctx).Err() }

func (s *Store) Close() error { return s.c.Close() }

func (s *Store) Begin(ctx context.Context, key string) (bool, error) {
	ok, err := s.c.SetNX(ctx, keyPrefix+key, processing, s.lockTTL).Result()
	if err != nil {
		observability.ObserveIdempotency("error")
		return false, err
	}
	if !ok {
		observability.ObserveIdempotency("conflict")
		return false, nil
	}
	observability.ObserveIdempotency("begin")
	return true, nil
}

func (s *Store) Complete(ctx context.Context, key string, status int) error {
	observability.ObserveIdempotency("complete")
	return s.c.Set(ctx, keyPrefix+key, strconv.Itoa(status), s.doneTTL).Err()
}

func (s *Store) Release(ctx context.Context, key string) error {
	observability.ObserveIdempotency("release")
	return s.c.Del(ctx, keyPrefix+key).Err()
}
