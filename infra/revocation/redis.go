// Package revocation provides token revocation stores keyed by JWT ID.
// A revoked token ID is kept until the token itself would have expired,
// so the store never grows beyond the set of live sessions.
package revocation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists revoked token IDs in Redis with a TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisStore connects to Redis at url and verifies the connection.
func NewRedisStore(url, prefix string, logger *slog.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("revocation store: invalid URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("revocation store: connection failed: %w", err)
	}
	return &RedisStore{client: client, prefix: prefix, logger: logger}, nil
}

func (s *RedisStore) key(jti string) string {
	return s.prefix + "revoked:" + jti
}

// Revoke marks the token ID as revoked for ttl.
func (s *RedisStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired, nothing to remember.
		return nil
	}
	if err := s.client.Set(ctx, s.key(jti), "1", ttl).Err(); err != nil {
		s.logger.Error("failed to revoke token", "jti", jti, "error", err)
		return err
	}
	return nil
}

// IsRevoked reports whether the token ID has been revoked.
func (s *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
