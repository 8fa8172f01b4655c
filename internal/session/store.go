// Package session keeps opaque bearer tokens in Redis with a fixed TTL.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrUnavailable is returned by Issue and Revoke when the backend cannot be reached.
var ErrUnavailable = errors.New("session store unavailable")

const keyPrefix = "auth_"

// Store maps tokens to user ids.
type Store interface {
	// Issue creates a new token bound to userID.
	Issue(ctx context.Context, userID int64) (string, error)
	// Resolve returns the user bound to token. It never blocks longer than the
	// configured timeout and reports any failure as an unknown token.
	Resolve(ctx context.Context, token string) (int64, bool)
	// Revoke deletes token. Revoking an unknown token is a no-op.
	Revoke(ctx context.Context, token string) error
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}

// RedisStore is a Store backed by Redis string keys with an expiry.
type RedisStore struct {
	client         redis.Cmdable
	ttl            time.Duration
	resolveTimeout time.Duration
	newToken       func() string
	log            *zap.Logger
}

// NewRedisStore returns a Store on client.
func NewRedisStore(client redis.Cmdable, ttl, resolveTimeout time.Duration, log *zap.Logger) *RedisStore {
	return &RedisStore{
		client:         client,
		ttl:            ttl,
		resolveTimeout: resolveTimeout,
		newToken:       uuid.NewString,
		log:            log.Named("session"),
	}
}

var _ Store = (*RedisStore)(nil)

func key(token string) string {
	return keyPrefix + token
}

func (s *RedisStore) Issue(ctx context.Context, userID int64) (string, error) {
	token := s.newToken()
	if err := s.client.Set(ctx, key(token), strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return token, nil
}

func (s *RedisStore) Resolve(ctx context.Context, token string) (int64, bool) {
	if token == "" {
		return 0, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.resolveTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, key(token)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("session lookup failed", zap.Error(err))
		}
		return 0, false
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil || userID <= 0 {
		s.log.Warn("session holds a malformed user id", zap.String("value", val))
		return 0, false
	}
	return userID, true
}

func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, key(token)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
