package otpgate

import "strings"

// Every piece of per-identity state lives under exactly one key builder.
// Centralizing derivation here keeps the writer and the reader of a state
// kind on the same key; callers never concatenate prefixes themselves.

func normalizeIdentity(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// otpKey holds the live one-time passcode for an identity.
func otpKey(identity string) string {
	return "otp:" + identity
}

// accountLockKey is set after too many failed verification attempts.
func accountLockKey(identity string) string {
	return "otp_lock:" + identity
}

// spamLockKey is set after too many issuance requests inside one window.
func spamLockKey(identity string) string {
	return "otp_spam_lock:" + identity
}

// cooldownKey blocks re-issuance immediately after a send.
func cooldownKey(identity string) string {
	return "otp_cooldown:" + identity
}

// requestCountKey counts issuance requests in the current window.
func requestCountKey(identity string) string {
	return "otp_request_count:" + identity
}

// failedAttemptsKey counts wrong submissions against the live passcode.
func failedAttemptsKey(identity string) string {
	return "otp_attempts:" + identity
}

// resetGrantKey records a verified reset challenge; consumed exactly once
// by the password update step.
func resetGrantKey(identity string) string {
	return "pwd_reset_ok:" + identity
}
