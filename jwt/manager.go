// Package jwt issues and parses the signed token pair minted on login.
//
// Tokens are stateless: nothing is persisted server-side, so revocation is
// bounded only by expiry. The access token is the short-lived credential;
// the refresh token is the long-lived one.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token-use markers embedded in the claims so an access token can never be
// presented where a refresh token is expected, and vice versa.
const (
	UseAccess  = "access"
	UseRefresh = "refresh"
)

var (
	// ErrTokenInvalid is returned for any token that fails signature,
	// issuer, expiry, or token-use validation.
	ErrTokenInvalid = errors.New("invalid token")
)

// Config holds the signing parameters for a [Manager].
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

// Claims is the payload carried by both tokens of a pair.
type Claims struct {
	UserID   string `json:"uid"`
	Role     string `json:"role"`
	TokenUse string `json:"use"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 token pairs.
type Manager struct {
	config Config
}

// NewManager validates the config and returns a Manager. The secret must
// be at least 32 bytes and the refresh TTL must not undercut the access
// TTL.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("hs256 secret must be at least 32 bytes")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.RefreshTTL < cfg.AccessTTL {
		return nil, errors.New("refresh TTL must not be shorter than access TTL")
	}

	return &Manager{config: cfg}, nil
}

// IssuePair mints the access and refresh tokens for a user. Both carry
// {uid, role}; they differ in TTL and in the token-use claim.
func (m *Manager) IssuePair(userID, role string) (access string, refresh string, err error) {
	access, err = m.sign(userID, role, UseAccess, m.config.AccessTTL)
	if err != nil {
		return "", "", err
	}

	refresh, err = m.sign(userID, role, UseRefresh, m.config.RefreshTTL)
	if err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

func (m *Manager) sign(userID, role, use string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:   userID,
		Role:     role,
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.Secret)
}

// Parse verifies the signature, issuer, and expiry of a token and checks
// that its token-use claim matches expectedUse.
func (m *Manager) Parse(tokenString, expectedUse string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, ErrTokenInvalid
			}
			return m.config.Secret, nil
		},
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.TokenUse != expectedUse {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
