package otpgate

import (
	"context"
	"time"

	"github.com/velmor/otpgate/internal"
)

// otpIssuer generates, persists, and hands off delivery of a passcode.
// Callers must run the lock guard and the request tracker first; issue
// itself does not re-check them.
type otpIssuer struct {
	store       *otpStore
	mail        *mailDispatcher
	digits      int
	secretTTL   time.Duration
	cooldownTTL time.Duration
}

func newOTPIssuer(store *otpStore, mail *mailDispatcher, cfg OTPConfig) *otpIssuer {
	return &otpIssuer{
		store:       store,
		mail:        mail,
		digits:      cfg.Digits,
		secretTTL:   cfg.SecretTTL,
		cooldownTTL: cfg.CooldownTTL,
	}
}

// issue persists a fresh passcode and the re-issuance cooldown, then hands
// the message to the detached dispatcher. Issuance succeeds once the
// passcode is persisted; delivery failure never propagates here, it is
// surfaced through the audit sink by the dispatcher.
func (i *otpIssuer) issue(ctx context.Context, identity, name, subject, template string) error {
	code, err := internal.NewOTP(i.digits)
	if err != nil {
		return err
	}

	if err := i.store.SaveSecret(ctx, identity, code, i.secretTTL); err != nil {
		return err
	}
	if err := i.store.SetCooldown(ctx, identity, i.cooldownTTL); err != nil {
		return err
	}

	i.mail.Enqueue(mailJob{
		To:       identity,
		Subject:  subject,
		Template: template,
		Data: map[string]string{
			"name": name,
			"otp":  code,
		},
	})

	return nil
}
