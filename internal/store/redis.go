package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/netguard/fabric/internal/ferrors"
)

// RedisStore is a Store backed by Redis. It is the authoritative
// implementation: every method wraps its error, when one occurs, in
// ferrors.StoreUnavailableError so callers can distinguish "the store
// itself is unreachable" from "the key was merely absent".
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a RedisStore from a connection URL (host:port
// form, as accepted by redis.Options.Addr) and an optional password.
func NewRedisStore(addr, password string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// NewRedisStoreFromClient wraps an already-configured *redis.Client. Tests
// use this to point a RedisStore at a miniredis instance.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error { return s.client.Close() }

// Client exposes the underlying *redis.Client for callers that need to join
// a Pulse replicated map (rmap.Join) or pool against the same Redis
// instance this store already holds a connection pool to.
func (s *RedisStore) Client() *redis.Client { return s.client }

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return &ferrors.StoreUnavailableError{Op: "PING", Err: err}
	}
	return nil
}

func (s *RedisStore) GetJSON(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &ferrors.StoreUnavailableError{Op: "GET", Key: key, Err: err}
	}
	return v, true, nil
}

func (s *RedisStore) SetJSON(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return &ferrors.StoreUnavailableError{Op: "SET", Key: key, Err: err}
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return &ferrors.StoreUnavailableError{Op: "DEL", Key: key, Err: err}
	}
	return nil
}

// Incr increments key and resets its TTL. A non-positive ttl leaves the key
// persistent (no expiry): the BSID counter, for one, must never expire,
// since a lapsed counter would re-mint binding-SIDs still live on a tunnel.
func (s *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, &ferrors.StoreUnavailableError{Op: "INCR", Key: key, Err: err}
	}
	return incr.Val(), nil
}

func (s *RedisStore) PushFront(ctx context.Context, key string, member string, maxLen int64, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, member)
	pipe.LTrim(ctx, key, 0, maxLen-1)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return &ferrors.StoreUnavailableError{Op: "LPUSH", Key: key, Err: err}
	}
	return nil
}

func (s *RedisStore) ListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	v, err := s.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, &ferrors.StoreUnavailableError{Op: "LRANGE", Key: key, Err: err}
	}
	return v, nil
}

func (s *RedisStore) ZAdd(ctx context.Context, key string, score float64, member string, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: score, Member: member})
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return &ferrors.StoreUnavailableError{Op: "ZADD", Key: key, Err: err}
	}
	return nil
}

func (s *RedisStore) ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error) {
	v, err := s.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: formatScore(min),
		Max: formatScore(max),
	}).Result()
	if err != nil {
		return nil, &ferrors.StoreUnavailableError{Op: "ZRANGEBYSCORE", Key: key, Err: err}
	}
	return v, nil
}

func (s *RedisStore) SAdd(ctx context.Context, key string, member string) error {
	if err := s.client.SAdd(ctx, key, member).Err(); err != nil {
		return &ferrors.StoreUnavailableError{Op: "SADD", Key: key, Err: err}
	}
	return nil
}

func (s *RedisStore) SPop(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.SPop(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &ferrors.StoreUnavailableError{Op: "SPOP", Key: key, Err: err}
	}
	return v, true, nil
}

var _ Store = (*RedisStore)(nil)
