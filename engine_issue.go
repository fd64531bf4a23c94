package otpgate

import (
	"context"
	"errors"
	"strconv"
)

// requestOTP runs the full gated issuance sequence: lock guard, request
// tracker, then the issuer. Every flow that sends a passcode goes through
// here so the gates can never be skipped or reordered.
func (e *Engine) requestOTP(ctx context.Context, identity, name, subject, template string) error {
	if err := e.guard.check(ctx, identity); err != nil {
		return e.denyIssuance(ctx, identity, err)
	}
	if err := e.tracker.record(ctx, identity); err != nil {
		return e.denyIssuance(ctx, identity, err)
	}

	if err := e.issuer.issue(ctx, identity, name, subject, template); err != nil {
		e.emitAudit(ctx, auditEventOTPIssued, identity, false, err, nil)
		return err
	}

	e.metricInc(MetricOTPIssued)
	e.emitAudit(ctx, auditEventOTPIssued, identity, true, nil, func() map[string]string {
		return map[string]string{"template": template}
	})
	return nil
}

func (e *Engine) denyIssuance(ctx context.Context, identity string, cause error) error {
	mapped := mapIssuanceDenial(cause)
	if mapped == nil {
		// KV failure, not a gate denial; surfaces as internal.
		return cause
	}

	e.metricInc(MetricOTPDenied)
	e.emitAudit(ctx, auditEventOTPDenied, identity, false, mapped, nil)
	return mapped
}

func mapIssuanceDenial(err error) *Error {
	switch {
	case errors.Is(err, ErrAccountLocked):
		return rateLimitError("Account locked due to multiple failed attempts. Try again after 30 minutes", ErrAccountLocked)
	case errors.Is(err, ErrSpamLocked):
		return rateLimitError("Too many OTP requests. Please wait 1 hour before requesting again", ErrSpamLocked)
	case errors.Is(err, ErrCooldownActive):
		return rateLimitError("Please wait 1 minute before requesting a new OTP", ErrCooldownActive)
	case errors.Is(err, ErrTooManyRequests):
		return rateLimitError("Too many OTP requests. Please wait 1 hour before requesting again", ErrTooManyRequests)
	default:
		return nil
	}
}

// verifyOTP resolves a submission and maps every terminal outcome onto the
// error taxonomy. A nil return means the code matched and the passcode
// state was cleared.
func (e *Engine) verifyOTP(ctx context.Context, identity, submitted string) error {
	err := e.verifier.verify(ctx, identity, submitted)
	if err == nil {
		e.metricInc(MetricOTPVerifySuccess)
		e.emitAudit(ctx, auditEventOTPVerified, identity, true, nil, nil)
		return nil
	}

	var attempts *AttemptsError
	switch {
	case errors.Is(err, ErrNoActiveOTP):
		e.metricInc(MetricOTPVerifyFailure)
		e.emitAudit(ctx, auditEventOTPRejected, identity, false, err, nil)
		return validationError("Invalid or expired OTP", ErrNoActiveOTP)

	case errors.Is(err, ErrTooManyAttempts):
		e.metricInc(MetricOTPVerifyFailure)
		e.metricInc(MetricOTPLockout)
		e.emitAudit(ctx, auditEventOTPLockout, identity, false, err, nil)
		return validationError("Too many failed attempts. Your account is locked for 30 minutes", ErrTooManyAttempts)

	case errors.As(err, &attempts):
		e.metricInc(MetricOTPVerifyFailure)
		e.emitAudit(ctx, auditEventOTPRejected, identity, false, err, func() map[string]string {
			return map[string]string{"attempts_left": strconv.Itoa(attempts.Left)}
		})
		mapped := validationError(
			"Incorrect OTP. "+strconv.Itoa(attempts.Left)+" attempts left",
			attempts,
		)
		mapped.Details = map[string]string{"attempts_left": strconv.Itoa(attempts.Left)}
		return mapped

	default:
		return err
	}
}
