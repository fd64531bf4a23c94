package otpgate

import "context"

// UserStore is the durable account storage contract the host application
// implements. The engine never sees the backing schema; it only needs
// lookup by email, creation after a verified registration, and a password
// hash update after a verified reset.
//
// FindByEmail must return [ErrUserNotFound] (possibly wrapped) when no
// record exists for the email. Emails handed to the store are already
// normalized to lowercase.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (UserRecord, error)
	Create(ctx context.Context, input CreateUserInput) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, email string, newHash string) error
}

// UserRecord is the account record exchanged with [UserStore]. The engine
// never returns the password hash to callers; public results use
// [UserProfile] instead.
type UserRecord struct {
	UserID       string
	Email        string
	Name         string
	PasswordHash string
}

// CreateUserInput carries the fields for a record created after a verified
// registration. PasswordHash is already an encoded argon2id hash.
type CreateUserInput struct {
	Email        string
	Name         string
	PasswordHash string
}

// UserProfile is the hash-free view of an account returned by Engine
// operations.
type UserProfile struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func profileOf(user UserRecord) UserProfile {
	return UserProfile{
		UserID: user.UserID,
		Email:  user.Email,
		Name:   user.Name,
	}
}

// TokenPair is the signed credential pair minted on successful login.
// Neither token is persisted server-side.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Mailer delivers a rendered message. Implementations are expected to be
// best-effort: the engine hands delivery to a detached dispatcher and never
// blocks issuance on the outcome.
type Mailer interface {
	Send(to, subject, templateName string, data map[string]string) error
}
