package otpgate

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all engine tuning parameters. Zero values are filled by
// [DefaultConfig]; [Builder.Build] validates the final result.
type Config struct {
	OTP      OTPConfig
	Locks    LockConfig
	JWT      JWTConfig
	Password PasswordConfig
	Mail     MailQueueConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// OTPConfig controls passcode generation and verification.
type OTPConfig struct {
	// Digits is the passcode length. 4 matches the issued mail templates.
	Digits int
	// SecretTTL bounds how long an issued passcode stays verifiable.
	SecretTTL time.Duration
	// CooldownTTL blocks re-issuance after every send.
	CooldownTTL time.Duration
	// MaxAttempts is the total number of submissions allowed against one
	// live passcode before the account lock trips.
	MaxAttempts int
	// AttemptTTL bounds the failed-attempt counter. It is refreshed on
	// every miss and is independent of SecretTTL.
	AttemptTTL time.Duration
}

// LockConfig controls the issuance throttle and the escalation locks.
type LockConfig struct {
	// MaxRequestsPerWindow is the issuance budget inside RequestWindow.
	// The request after the budget is exhausted trips the spam lock.
	MaxRequestsPerWindow int
	RequestWindow        time.Duration
	SpamLockTTL          time.Duration
	AccountLockTTL       time.Duration
	// ResetGrantTTL bounds the window between a verified reset challenge
	// and the password update that consumes it.
	ResetGrantTTL time.Duration
}

// JWTConfig controls the token pair minted on login.
type JWTConfig struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

// PasswordConfig carries argon2id parameters, in the same units as
// golang.org/x/crypto/argon2 (Memory in KiB).
type PasswordConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// MailQueueConfig controls the detached delivery dispatcher.
type MailQueueConfig struct {
	QueueSize  int
	DropIfFull bool
	// ActivationSubject/ResetSubject are the subject lines for the two
	// built-in flows; templates are resolved by the configured Mailer.
	ActivationSubject  string
	ResetSubject       string
	ActivationTemplate string
	ResetTemplate      string
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the production defaults: a 4-digit passcode live
// for 5 minutes, a 60-second re-issuance cooldown, two requests per hour
// before the spam lock, three submissions before a 30-minute account lock,
// and a 30m/7d access/refresh pair.
func DefaultConfig() Config {
	return Config{
		OTP: OTPConfig{
			Digits:      4,
			SecretTTL:   5 * time.Minute,
			CooldownTTL: 60 * time.Second,
			MaxAttempts: 3,
			AttemptTTL:  5 * time.Minute,
		},
		Locks: LockConfig{
			MaxRequestsPerWindow: 2,
			RequestWindow:        time.Hour,
			SpamLockTTL:          time.Hour,
			AccountLockTTL:       30 * time.Minute,
			ResetGrantTTL:        5 * time.Minute,
		},
		JWT: JWTConfig{
			AccessTTL:  30 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			Issuer:     "otpgate",
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Mail: MailQueueConfig{
			QueueSize:          64,
			DropIfFull:         true,
			ActivationSubject:  "Verify your email",
			ResetSubject:       "Reset your password",
			ActivationTemplate: "user-activation-mail",
			ResetTemplate:      "forgot-password-user-mail",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func validateConfig(cfg Config) error {
	if cfg.OTP.Digits < 4 || cfg.OTP.Digits > 10 {
		return errors.New("otp digits must be between 4 and 10")
	}
	if cfg.OTP.SecretTTL <= 0 || cfg.OTP.CooldownTTL <= 0 || cfg.OTP.AttemptTTL <= 0 {
		return errors.New("otp ttls must be positive")
	}
	if cfg.OTP.MaxAttempts < 1 {
		return errors.New("otp max attempts must be at least 1")
	}
	if cfg.Locks.MaxRequestsPerWindow < 1 {
		return errors.New("request budget must be at least 1")
	}
	if cfg.Locks.RequestWindow <= 0 || cfg.Locks.SpamLockTTL <= 0 ||
		cfg.Locks.AccountLockTTL <= 0 || cfg.Locks.ResetGrantTTL <= 0 {
		return errors.New("lock ttls must be positive")
	}
	if len(cfg.JWT.Secret) < 32 {
		return errors.New("jwt secret must be at least 32 bytes")
	}
	if cfg.JWT.AccessTTL <= 0 || cfg.JWT.RefreshTTL <= 0 {
		return errors.New("jwt ttls must be positive")
	}
	if cfg.JWT.RefreshTTL < cfg.JWT.AccessTTL {
		return errors.New("refresh ttl must not be shorter than access ttl")
	}
	return nil
}

type envSettings struct {
	JWTSecret      string        `env:"OTPGATE_JWT_SECRET,required"`
	JWTIssuer      string        `env:"OTPGATE_JWT_ISSUER"`
	AccessTTL      time.Duration `env:"OTPGATE_ACCESS_TTL,default=30m"`
	RefreshTTL     time.Duration `env:"OTPGATE_REFRESH_TTL,default=168h"`
	OTPDigits      int           `env:"OTPGATE_OTP_DIGITS,default=4"`
	OTPSecretTTL   time.Duration `env:"OTPGATE_OTP_TTL,default=5m"`
	CooldownTTL    time.Duration `env:"OTPGATE_OTP_COOLDOWN,default=60s"`
	MaxAttempts    int           `env:"OTPGATE_OTP_MAX_ATTEMPTS,default=3"`
	RequestBudget  int           `env:"OTPGATE_OTP_REQUEST_BUDGET,default=2"`
	RequestWindow  time.Duration `env:"OTPGATE_OTP_REQUEST_WINDOW,default=1h"`
	SpamLockTTL    time.Duration `env:"OTPGATE_SPAM_LOCK_TTL,default=1h"`
	AccountLockTTL time.Duration `env:"OTPGATE_ACCOUNT_LOCK_TTL,default=30m"`
}

// ConfigFromEnv loads a Config from OTPGATE_* environment variables on top
// of [DefaultConfig]. Only the knobs an operator typically tunes are
// exposed; everything else keeps its default.
func ConfigFromEnv(ctx context.Context) (Config, error) {
	var settings envSettings
	if err := envconfig.Process(ctx, &settings); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	cfg.JWT.Secret = []byte(settings.JWTSecret)
	if settings.JWTIssuer != "" {
		cfg.JWT.Issuer = settings.JWTIssuer
	}
	cfg.JWT.AccessTTL = settings.AccessTTL
	cfg.JWT.RefreshTTL = settings.RefreshTTL
	cfg.OTP.Digits = settings.OTPDigits
	cfg.OTP.SecretTTL = settings.OTPSecretTTL
	cfg.OTP.AttemptTTL = settings.OTPSecretTTL
	cfg.OTP.CooldownTTL = settings.CooldownTTL
	cfg.OTP.MaxAttempts = settings.MaxAttempts
	cfg.Locks.MaxRequestsPerWindow = settings.RequestBudget
	cfg.Locks.RequestWindow = settings.RequestWindow
	cfg.Locks.SpamLockTTL = settings.SpamLockTTL
	cfg.Locks.AccountLockTTL = settings.AccountLockTTL

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
