package otpgate

import (
	"context"
	"errors"
)

const defaultRole = "user"

// Login checks the password against the stored hash and mints a token
// pair. Both lookup failure and hash mismatch surface as Auth errors; no
// token pair is persisted server-side.
func (e *Engine) Login(ctx context.Context, email, pwd string) (TokenPair, UserProfile, error) {
	if e == nil || e.users == nil || e.hasher == nil || e.tokens == nil {
		return TokenPair{}, UserProfile{}, ErrEngineNotReady
	}

	identity := normalizeIdentity(email)
	if identity == "" || pwd == "" {
		return TokenPair{}, UserProfile{}, authError("Invalid email or password", ErrInvalidCredentials)
	}

	user, err := e.users.FindByEmail(ctx, identity)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLogin, identity, false, ErrInvalidCredentials, func() map[string]string {
				return map[string]string{"reason": "user_not_found"}
			})
			return TokenPair{}, UserProfile{}, authError("User does not exist", ErrUserNotFound)
		}
		return TokenPair{}, UserProfile{}, databaseError("could not look up user", err)
	}

	ok, err := e.hasher.Verify(pwd, user.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, identity, false, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "password_mismatch"}
		})
		return TokenPair{}, UserProfile{}, authError("Invalid email or password", ErrInvalidCredentials)
	}
	pwd = ""

	access, refresh, err := e.tokens.IssuePair(user.UserID, defaultRole)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, identity, false, err, func() map[string]string {
			return map[string]string{"reason": "token_issuance"}
		})
		return TokenPair{}, UserProfile{}, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLogin, identity, true, nil, func() map[string]string {
		return map[string]string{"user_id": user.UserID}
	})

	return TokenPair{AccessToken: access, RefreshToken: refresh}, profileOf(user), nil
}
