package otpgate

import (
	"context"
	"crypto/subtle"
	"time"
)

// otpVerifier runs the per-identity verification state machine:
// no passcode -> pending -> success or locked. Success and lockout are
// terminal and both clear the passcode and the attempt counter together.
type otpVerifier struct {
	store          *otpStore
	maxAttempts    int
	attemptTTL     time.Duration
	accountLockTTL time.Duration
}

func newOTPVerifier(store *otpStore, otpCfg OTPConfig, lockCfg LockConfig) *otpVerifier {
	return &otpVerifier{
		store:          store,
		maxAttempts:    otpCfg.MaxAttempts,
		attemptTTL:     otpCfg.AttemptTTL,
		accountLockTTL: lockCfg.AccountLockTTL,
	}
}

// verify resolves a submission to one of four outcomes:
//
//   - nil: the code matched; passcode and counter are cleared.
//   - [ErrNoActiveOTP]: no passcode is live for the identity. Stale
//     attempt-counter state may linger past the secret's expiry; that is
//     harmless because nothing can be verified without a live secret.
//   - [*AttemptsError]: wrong code, retries remain; the counter was bumped.
//   - [ErrTooManyAttempts]: wrong code and the budget is exhausted; the
//     account lock is armed and the passcode state cleared.
func (v *otpVerifier) verify(ctx context.Context, identity, submitted string) error {
	secret, err := v.store.Secret(ctx, identity)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare([]byte(secret), []byte(submitted)) == 1 {
		return v.store.ClearVerificationState(ctx, identity)
	}

	count, err := v.store.RecordFailedAttempt(ctx, identity, v.attemptTTL)
	if err != nil {
		return err
	}

	if count >= int64(v.maxAttempts) {
		if err := v.store.LockAccount(ctx, identity, v.accountLockTTL); err != nil {
			return err
		}
		return ErrTooManyAttempts
	}

	return &AttemptsError{Left: v.maxAttempts - 1 - int(count)}
}
