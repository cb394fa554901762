package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRevocationUnavailable wraps Redis failures in the revocation registry.
var ErrRevocationUnavailable = errors.New("revocation backend unavailable")

// revokedSentinel is the stored value; only key presence matters.
const revokedSentinel = "revoked"

// RevocationStore records access tokens that must be rejected before their
// natural expiry. Keys are the raw token strings; entries expire on their
// own and are never deleted early.
type RevocationStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRevocationStore(redisClient redis.UniversalClient, prefix string) *RevocationStore {
	if prefix == "" {
		prefix = "blacklist"
	}
	return &RevocationStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *RevocationStore) key(token string) string {
	return s.prefix + ":" + token
}

// Revoke marks the token as rejected for ttl.
func (s *RevocationStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(token), revokedSentinel, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether the token is currently in the registry.
func (s *RevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	return n > 0, nil
}
