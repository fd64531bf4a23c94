package otpgate

import (
	"context"
	"errors"
)

// RequestRegistration starts a registration by sending an activation
// passcode to the email. It fails with a Validation error when the email
// is already registered and with a RateLimit error when any issuance gate
// is live.
func (e *Engine) RequestRegistration(ctx context.Context, name, email string) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}

	identity := normalizeIdentity(email)
	if identity == "" || name == "" {
		return validationError("name and email are required", nil)
	}

	if err := e.rejectExistingUser(ctx, identity); err != nil {
		return err
	}

	return e.requestOTP(ctx, identity, name, e.config.Mail.ActivationSubject, e.config.Mail.ActivationTemplate)
}

// CompleteRegistration verifies the activation passcode and creates the
// durable user record. The returned profile never carries the password
// hash.
func (e *Engine) CompleteRegistration(ctx context.Context, name, email, otp, pwd string) (UserProfile, error) {
	if e == nil || e.users == nil {
		return UserProfile{}, ErrEngineNotReady
	}

	identity := normalizeIdentity(email)
	if identity == "" || name == "" || otp == "" || pwd == "" {
		return UserProfile{}, validationError("name, email, otp and password are required", nil)
	}

	if err := e.rejectExistingUser(ctx, identity); err != nil {
		return UserProfile{}, err
	}

	if err := e.verifyOTP(ctx, identity, otp); err != nil {
		return UserProfile{}, err
	}

	hash, err := e.hasher.Hash(pwd)
	if err != nil {
		return UserProfile{}, validationError(err.Error(), err)
	}

	user, err := e.users.Create(ctx, CreateUserInput{
		Email:        identity,
		Name:         name,
		PasswordHash: hash,
	})
	if err != nil {
		e.emitAudit(ctx, auditEventRegister, identity, false, err, nil)
		return UserProfile{}, databaseError("could not create user", err)
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegister, identity, true, nil, func() map[string]string {
		return map[string]string{"user_id": user.UserID}
	})

	return profileOf(user), nil
}

func (e *Engine) rejectExistingUser(ctx context.Context, identity string) error {
	_, err := e.users.FindByEmail(ctx, identity)
	if err == nil {
		e.metricInc(MetricRegisterDuplicate)
		return validationError("User already exists with this email", ErrUserExists)
	}
	if !errors.Is(err, ErrUserNotFound) {
		return databaseError("could not look up user", err)
	}
	return nil
}
