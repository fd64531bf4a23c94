package otpgate

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// requestTracker counts issuance requests per identity inside a fixed
// window and escalates to the spam lock once the budget is exhausted.
type requestTracker struct {
	redis       redis.UniversalClient
	maxRequests int
	window      time.Duration
	spamLockTTL time.Duration
}

func newRequestTracker(redisClient redis.UniversalClient, cfg LockConfig) *requestTracker {
	return &requestTracker{
		redis:       redisClient,
		maxRequests: cfg.MaxRequestsPerWindow,
		window:      cfg.RequestWindow,
		spamLockTTL: cfg.SpamLockTTL,
	}
}

// record consumes one unit of the issuance budget. The counter is bumped
// with a single INCR so two concurrent requests can never both observe the
// pre-threshold count; the request that crosses the budget arms the spam
// lock and is denied.
func (t *requestTracker) record(ctx context.Context, identity string) error {
	key := requestCountKey(identity)

	count, err := t.redis.Incr(ctx, key).Result()
	if err != nil {
		return wrapKV(err)
	}

	// Fixed-window semantics: the TTL is armed by the first hit only.
	if count == 1 {
		if err := t.redis.Expire(ctx, key, t.window).Err(); err != nil {
			return wrapKV(err)
		}
	}

	if count > int64(t.maxRequests) {
		if err := t.redis.Set(ctx, spamLockKey(identity), lockValue, t.spamLockTTL).Err(); err != nil {
			return wrapKV(err)
		}
		return ErrTooManyRequests
	}

	return nil
}
