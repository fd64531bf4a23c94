package otpgate

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// lockGuard checks the three independent issuance gates. It only reads;
// escalation is owned by the tracker and the verifier.
type lockGuard struct {
	redis redis.UniversalClient
}

func newLockGuard(redisClient redis.UniversalClient) *lockGuard {
	return &lockGuard{redis: redisClient}
}

// check returns the first live lock's sentinel, probing in priority order:
// account lock, spam lock, cooldown. Callers invoke it immediately before
// every issuance attempt.
func (g *lockGuard) check(ctx context.Context, identity string) error {
	gates := []struct {
		key    string
		denial error
	}{
		{accountLockKey(identity), ErrAccountLocked},
		{spamLockKey(identity), ErrSpamLocked},
		{cooldownKey(identity), ErrCooldownActive},
	}

	for _, gate := range gates {
		live, err := g.flagExists(ctx, gate.key)
		if err != nil {
			return err
		}
		if live {
			return gate.denial
		}
	}
	return nil
}

func (g *lockGuard) flagExists(ctx context.Context, key string) (bool, error) {
	if err := g.redis.Get(ctx, key).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, wrapKV(err)
	}
	return true, nil
}
