package otpgate

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineNotReady is returned when an Engine method is called before Build wired its dependencies.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrUserNotFound is the sentinel a UserStore must return when no record exists for an email.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when registration targets an email that already has a record.
	ErrUserExists = errors.New("user already exists with this email")
	// ErrInvalidCredentials is returned on any login failure, without revealing which check failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountLocked is returned while the failed-verification lock is live.
	ErrAccountLocked = errors.New("account locked due to multiple failed attempts")
	// ErrSpamLocked is returned while the issuance spam lock is live.
	ErrSpamLocked = errors.New("too many otp requests")
	// ErrCooldownActive is returned while the post-send cooldown is live.
	ErrCooldownActive = errors.New("otp cooldown active")
	// ErrTooManyRequests is returned when the issuance counter trips the window threshold.
	ErrTooManyRequests = errors.New("otp request limit exceeded")
	// ErrNoActiveOTP is returned when no passcode is live for the identity.
	ErrNoActiveOTP = errors.New("invalid or expired otp")
	// ErrOTPMismatch is the target for errors.Is on a wrong-code submission.
	ErrOTPMismatch = errors.New("incorrect otp")
	// ErrTooManyAttempts is returned when a wrong-code submission escalates to an account lock.
	ErrTooManyAttempts = errors.New("too many failed attempts")
	// ErrPasswordReuse is returned when a reset proposes the currently stored password.
	ErrPasswordReuse = errors.New("new password cannot be the same as the old password")
	// ErrResetNotVerified is returned when a password update arrives without a verified challenge.
	ErrResetNotVerified = errors.New("otp verification required before password reset")
	// ErrKVUnavailable wraps any failure talking to the coordination store.
	ErrKVUnavailable = errors.New("kv store unavailable")
)

// AttemptsError reports a wrong-code submission that has not yet escalated
// to an account lock. Left is the number of further wrong submissions the
// identity may make before lockout.
type AttemptsError struct {
	Left int
}

func (e *AttemptsError) Error() string {
	return fmt.Sprintf("incorrect otp, %d attempts left", e.Left)
}

// Is makes errors.Is(err, ErrOTPMismatch) match any AttemptsError.
func (e *AttemptsError) Is(target error) bool {
	return target == ErrOTPMismatch
}

func wrapKV(err error) error {
	return fmt.Errorf("%w: %v", ErrKVUnavailable, err)
}
