package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrPreAuthNotFound means no snapshot exists for the slot (never stored,
	// already consumed, or expired).
	ErrPreAuthNotFound = errors.New("pre-auth snapshot not found")
	// ErrPreAuthUnavailable wraps Redis failures in the pre-auth store.
	ErrPreAuthUnavailable = errors.New("pre-auth backend unavailable")
)

// PreAuthSnapshot is the identity summary produced by phase one of login
// and consumed by phase two.
type PreAuthSnapshot struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// PreAuthStore bridges the two login phases. Keys use the same slot scheme
// as the passcode store and the TTLs are configured to match, but the two
// entries are not atomically coupled; callers must tolerate one outliving
// the other by a small margin.
type PreAuthStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewPreAuthStore(redisClient redis.UniversalClient, prefix string, ttl time.Duration) *PreAuthStore {
	if prefix == "" {
		prefix = "preauth"
	}
	return &PreAuthStore{
		redis:  redisClient,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *PreAuthStore) key(slot string) string {
	return s.prefix + ":" + slot
}

// Put stores the snapshot, resetting the TTL and replacing any prior entry
// for the slot.
func (s *PreAuthStore) Put(ctx context.Context, slot string, snapshot *PreAuthSnapshot) error {
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(slot), encoded, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPreAuthUnavailable, err)
	}
	return nil
}

func (s *PreAuthStore) Get(ctx context.Context, slot string) (*PreAuthSnapshot, error) {
	data, err := s.redis.Get(ctx, s.key(slot)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPreAuthNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPreAuthUnavailable, err)
	}

	var snapshot PreAuthSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		_ = s.redis.Del(ctx, s.key(slot)).Err()
		return nil, ErrPreAuthNotFound
	}
	return &snapshot, nil
}

func (s *PreAuthStore) Delete(ctx context.Context, slot string) error {
	if err := s.redis.Del(ctx, s.key(slot)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPreAuthUnavailable, err)
	}
	return nil
}
