package otpgate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLockGuardPriorityOrder(t *testing.T) {
	mr, rdb := newTestRedis(t)
	guard := newLockGuard(rdb)
	ctx := context.Background()

	const identity = "u@example.com"

	if err := mr.Set(accountLockKey(identity), lockValue); err != nil {
		t.Fatalf("seed account lock: %v", err)
	}
	if err := mr.Set(spamLockKey(identity), lockValue); err != nil {
		t.Fatalf("seed spam lock: %v", err)
	}
	if err := mr.Set(cooldownKey(identity), lockValue); err != nil {
		t.Fatalf("seed cooldown: %v", err)
	}

	if err := guard.check(ctx, identity); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("all locks live: expected account lock first, got %v", err)
	}

	mr.Del(accountLockKey(identity))
	if err := guard.check(ctx, identity); !errors.Is(err, ErrSpamLocked) {
		t.Fatalf("expected spam lock next, got %v", err)
	}

	mr.Del(spamLockKey(identity))
	if err := guard.check(ctx, identity); !errors.Is(err, ErrCooldownActive) {
		t.Fatalf("expected cooldown last, got %v", err)
	}

	mr.Del(cooldownKey(identity))
	if err := guard.check(ctx, identity); err != nil {
		t.Fatalf("no locks live: expected pass, got %v", err)
	}
}

func TestLockGuardIgnoresExpiredLock(t *testing.T) {
	mr, rdb := newTestRedis(t)
	guard := newLockGuard(rdb)
	ctx := context.Background()

	const identity = "u@example.com"

	if err := rdb.Set(ctx, cooldownKey(identity), lockValue, time.Minute).Err(); err != nil {
		t.Fatalf("seed cooldown: %v", err)
	}
	if err := guard.check(ctx, identity); !errors.Is(err, ErrCooldownActive) {
		t.Fatalf("expected cooldown denial, got %v", err)
	}

	mr.FastForward(61 * time.Second)

	if err := guard.check(ctx, identity); err != nil {
		t.Fatalf("expected pass after expiry, got %v", err)
	}
}
