package otpgate

import (
	"context"
	"errors"
)

// RequestPasswordReset starts the reset flow by sending a reset passcode.
// Unlike registration the account must already exist; an unknown email
// fails with a NotFound error before any gate is consulted.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}

	identity := normalizeIdentity(email)
	if identity == "" {
		return validationError("email is required", nil)
	}

	user, err := e.users.FindByEmail(ctx, identity)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return notFoundError("User not found", ErrUserNotFound)
		}
		return databaseError("could not look up user", err)
	}

	if err := e.requestOTP(ctx, identity, user.Name, e.config.Mail.ResetSubject, e.config.Mail.ResetTemplate); err != nil {
		return err
	}

	e.metricInc(MetricResetRequest)
	e.emitAudit(ctx, auditEventResetRequested, identity, true, nil, nil)
	return nil
}

// VerifyPasswordReset resolves the reset passcode. On success it records a
// short-lived, single-use grant that [Engine.CompletePasswordReset]
// consumes; without that grant the password update is refused.
func (e *Engine) VerifyPasswordReset(ctx context.Context, email, otp string) error {
	if e == nil || e.otpStore == nil {
		return ErrEngineNotReady
	}

	identity := normalizeIdentity(email)
	if identity == "" || otp == "" {
		return validationError("email and otp are required", nil)
	}

	if err := e.verifyOTP(ctx, identity, otp); err != nil {
		return err
	}

	if err := e.otpStore.GrantReset(ctx, identity, e.config.Locks.ResetGrantTTL); err != nil {
		return err
	}

	e.emitAudit(ctx, auditEventResetVerified, identity, true, nil, nil)
	return nil
}

// CompletePasswordReset applies the new password. It requires the grant
// written by a successful verification, rejects the currently stored
// password, and leaves token issuance to a subsequent explicit login.
func (e *Engine) CompletePasswordReset(ctx context.Context, email, newPassword string) error {
	if e == nil || e.users == nil || e.hasher == nil {
		return ErrEngineNotReady
	}

	identity := normalizeIdentity(email)
	if identity == "" || newPassword == "" {
		return validationError("email and new password are required", nil)
	}

	user, err := e.users.FindByEmail(ctx, identity)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return notFoundError("User not found", ErrUserNotFound)
		}
		return databaseError("could not look up user", err)
	}

	granted, err := e.otpStore.HasResetGrant(ctx, identity)
	if err != nil {
		return err
	}
	if !granted {
		e.emitAudit(ctx, auditEventResetApplied, identity, false, ErrResetNotVerified, nil)
		return authError("OTP verification required before resetting the password", ErrResetNotVerified)
	}

	same, err := e.hasher.Verify(newPassword, user.PasswordHash)
	if err == nil && same {
		e.metricInc(MetricResetReuseRejected)
		e.emitAudit(ctx, auditEventResetApplied, identity, false, ErrPasswordReuse, nil)
		return validationError("New password cannot be the same as the old password", ErrPasswordReuse)
	}

	newHash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return validationError(err.Error(), err)
	}

	if err := e.users.UpdatePasswordHash(ctx, identity, newHash); err != nil {
		e.emitAudit(ctx, auditEventResetApplied, identity, false, err, nil)
		return databaseError("could not update password", err)
	}

	// The grant is single-use: only a persisted update consumes it, so a
	// reuse rejection does not force the user to re-verify.
	if _, err := e.otpStore.ConsumeResetGrant(ctx, identity); err != nil {
		return err
	}

	e.metricInc(MetricResetSuccess)
	e.emitAudit(ctx, auditEventResetApplied, identity, true, nil, nil)
	return nil
}
