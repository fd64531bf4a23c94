package otpgate

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const lockValue = "locked"

// otpStore owns every per-identity verification key: the live passcode,
// the failed-attempt counter, and the escalation lock. Secret and counter
// are always cleared together so no terminal outcome leaves an orphaned
// counter behind.
type otpStore struct {
	redis redis.UniversalClient
}

func newOTPStore(redisClient redis.UniversalClient) *otpStore {
	return &otpStore{redis: redisClient}
}

// SaveSecret persists a freshly issued passcode, overwriting any previous
// one. At most one passcode is live per identity.
func (s *otpStore) SaveSecret(ctx context.Context, identity, code string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, otpKey(identity), code, ttl).Err(); err != nil {
		return wrapKV(err)
	}
	return nil
}

// Secret returns the live passcode or [ErrNoActiveOTP].
func (s *otpStore) Secret(ctx context.Context, identity string) (string, error) {
	code, err := s.redis.Get(ctx, otpKey(identity)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoActiveOTP
		}
		return "", wrapKV(err)
	}
	return code, nil
}

// SetCooldown arms the post-send re-issuance block.
func (s *otpStore) SetCooldown(ctx context.Context, identity string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, cooldownKey(identity), lockValue, ttl).Err(); err != nil {
		return wrapKV(err)
	}
	return nil
}

// RecordFailedAttempt atomically bumps the wrong-submission counter and
// refreshes its TTL, returning the new count. INCR-first keeps two
// concurrent misses from reading the same stale count.
func (s *otpStore) RecordFailedAttempt(ctx context.Context, identity string, ttl time.Duration) (int64, error) {
	key := failedAttemptsKey(identity)

	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, wrapKV(err)
	}
	if err := s.redis.Expire(ctx, key, ttl).Err(); err != nil {
		return 0, wrapKV(err)
	}
	return count, nil
}

// ClearVerificationState removes the passcode and the attempt counter in
// one round trip. Called on verification success.
func (s *otpStore) ClearVerificationState(ctx context.Context, identity string) error {
	if err := s.redis.Del(ctx, otpKey(identity), failedAttemptsKey(identity)).Err(); err != nil {
		return wrapKV(err)
	}
	return nil
}

// LockAccount escalates to the account lock and clears the passcode and
// counter in the same transaction, so the lock is the only state left.
func (s *otpStore) LockAccount(ctx context.Context, identity string, ttl time.Duration) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, accountLockKey(identity), lockValue, ttl)
		pipe.Del(ctx, otpKey(identity), failedAttemptsKey(identity))
		return nil
	})
	if err != nil {
		return wrapKV(err)
	}
	return nil
}

// GrantReset records a verified reset challenge.
func (s *otpStore) GrantReset(ctx context.Context, identity string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, resetGrantKey(identity), lockValue, ttl).Err(); err != nil {
		return wrapKV(err)
	}
	return nil
}

// HasResetGrant reports whether a verified reset challenge is live.
func (s *otpStore) HasResetGrant(ctx context.Context, identity string) (bool, error) {
	if err := s.redis.Get(ctx, resetGrantKey(identity)).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, wrapKV(err)
	}
	return true, nil
}

// ConsumeResetGrant takes the grant if present. GETDEL makes the grant
// single-use even under concurrent resets.
func (s *otpStore) ConsumeResetGrant(ctx context.Context, identity string) (bool, error) {
	_, err := s.redis.GetDel(ctx, resetGrantKey(identity)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, wrapKV(err)
	}
	return true, nil
}
