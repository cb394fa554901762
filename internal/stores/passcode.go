package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shms-platform/adminauth/internal"
)

// ErrPasscodeUnavailable wraps Redis failures in the passcode store.
var ErrPasscodeUnavailable = errors.New("passcode backend unavailable")

// PasscodeChallenge is the stored value for one pending login code.
type PasscodeChallenge struct {
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
}

// PasscodeStore keeps one-time 6-digit codes keyed by a login slot (the
// lowercased email joined with the role). Entries are single-use and expire
// after the configured TTL.
type PasscodeStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewPasscodeStore(redisClient redis.UniversalClient, prefix string, ttl time.Duration) *PasscodeStore {
	if prefix == "" {
		prefix = "otp"
	}
	return &PasscodeStore{
		redis:  redisClient,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *PasscodeStore) key(slot string) string {
	return s.prefix + ":" + slot
}

// Issue generates a fresh code for the slot and stores it with the TTL,
// overwriting (and thereby invalidating) any prior pending code.
func (s *PasscodeStore) Issue(ctx context.Context, slot string) (string, error) {
	code, err := internal.NewPasscode()
	if err != nil {
		return "", err
	}

	encoded, err := json.Marshal(PasscodeChallenge{
		Code:     code,
		IssuedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}

	if err := s.redis.Set(ctx, s.key(slot), encoded, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPasscodeUnavailable, err)
	}
	return code, nil
}

// Validate checks the supplied code against the pending entry. A match
// consumes the entry. A mismatch leaves it in place so the legitimate code
// stays usable until TTL expiry; an absent or expired entry simply reports
// false. The only non-nil errors are backend failures.
func (s *PasscodeStore) Validate(ctx context.Context, slot, supplied string) (bool, error) {
	data, err := s.redis.Get(ctx, s.key(slot)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrPasscodeUnavailable, err)
	}

	var challenge PasscodeChallenge
	if err := json.Unmarshal(data, &challenge); err != nil {
		// Unreadable entry: discard it rather than leaving a wedged slot.
		_ = s.redis.Del(ctx, s.key(slot)).Err()
		return false, nil
	}

	if challenge.Code != supplied {
		return false, nil
	}

	if err := s.redis.Del(ctx, s.key(slot)).Err(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrPasscodeUnavailable, err)
	}
	return true, nil
}

// Discard removes any pending code for the slot.
func (s *PasscodeStore) Discard(ctx context.Context, slot string) error {
	if err := s.redis.Del(ctx, s.key(slot)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPasscodeUnavailable, err)
	}
	return nil
}
