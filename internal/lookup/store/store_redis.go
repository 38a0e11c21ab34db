package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"rcgateway/internal/lookup/models"
	platformredis "rcgateway/internal/platform/redis"
)

const (
	cacheKeyPrefix  = "rc:cache:"
	defaultCacheTTL = 10 * time.Minute
)

// RedisStore is a read-through hot layer over a durable result cache.
// PostgreSQL stays the source of truth; Redis only shortcuts repeated reads
// of the newest entry, so every Redis failure degrades to the inner store.
type RedisStore struct {
	inner  Store
	client *platformredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisStore layers Redis caching over inner. A zero ttl defaults to ten
// minutes.
func NewRedisStore(inner Store, client *platformredis.Client, ttl time.Duration, logger *slog.Logger) *RedisStore {
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	return &RedisStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (s *RedisStore) Save(ctx context.Context, entry *models.CacheEntry) error {
	if err := s.inner.Save(ctx, entry); err != nil {
		return err
	}
	s.setHot(ctx, entry)
	return nil
}

func (s *RedisStore) Find(ctx context.Context, registrationNumber string) (*models.CacheEntry, error) {
	if entry, ok := s.getHot(ctx, registrationNumber); ok {
		return entry, nil
	}

	entry, err := s.inner.Find(ctx, registrationNumber)
	if err != nil {
		return nil, err
	}
	s.setHot(ctx, entry)
	return entry, nil
}

// LatestExternalRef always goes to the durable store; it needs row history,
// not just the newest entry.
func (s *RedisStore) LatestExternalRef(ctx context.Context, registrationNumber string) (string, error) {
	return s.inner.LatestExternalRef(ctx, registrationNumber)
}

func (s *RedisStore) getHot(ctx context.Context, registrationNumber string) (*models.CacheEntry, bool) {
	raw, err := s.client.Get(ctx, cacheKeyPrefix+registrationNumber).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("redis cache read failed", "error", err)
		}
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.logger.Warn("redis cache entry corrupt, ignoring", "error", err)
		return nil, false
	}
	return &entry, true
}

func (s *RedisStore) setHot(ctx context.Context, entry *models.CacheEntry) {
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, cacheKeyPrefix+entry.RegistrationNumber, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("redis cache write failed", "error", err)
	}
}
