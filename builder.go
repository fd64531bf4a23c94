package otpgate

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/velmor/otpgate/jwt"
	"github.com/velmor/otpgate/password"
)

// Builder assembles an [Engine] from explicit dependencies. There are no
// ambient singletons: the KV client, user store, mailer, and audit sink
// are all injected here.
type Builder struct {
	config Config

	redis     redis.UniversalClient
	users     UserStore
	mailer    Mailer
	auditSink AuditSink

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the entire config.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the KV client the engine coordinates through.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the durable account storage.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.users = store
	return b
}

// WithMailer sets the delivery transport. Leaving it unset disables
// delivery; passcodes are still persisted and verifiable.
func (b *Builder) WithMailer(mailer Mailer) *Builder {
	b.mailer = mailer
	return b
}

// WithAuditSink sets the destination for structured engine events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the config, wires every component, and starts the
// detached audit and mail workers. A Builder can build at most one Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client is required")
	}
	if b.users == nil {
		return nil, errors.New("user store is required")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	hasher, err := password.NewArgon2(password.Config{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := jwt.NewManager(jwt.Config{
		Secret:     b.config.JWT.Secret,
		AccessTTL:  b.config.JWT.AccessTTL,
		RefreshTTL: b.config.JWT.RefreshTTL,
		Issuer:     b.config.JWT.Issuer,
	})
	if err != nil {
		return nil, err
	}

	metrics := newMetrics(b.config.Metrics)
	audit := newAuditDispatcher(b.config.Audit, b.auditSink)
	mail := newMailDispatcher(b.config.Mail, b.mailer, audit, metrics)

	store := newOTPStore(b.redis)

	engine := &Engine{
		config:   b.config,
		guard:    newLockGuard(b.redis),
		tracker:  newRequestTracker(b.redis, b.config.Locks),
		otpStore: store,
		issuer:   newOTPIssuer(store, mail, b.config.OTP),
		verifier: newOTPVerifier(store, b.config.OTP, b.config.Locks),
		users:    b.users,
		hasher:   hasher,
		tokens:   tokens,
		mail:     mail,
		audit:    audit,
		metrics:  metrics,
	}

	b.built = true
	return engine, nil
}
