package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/user/cinelens-go/config"
)

// ErrInvalidToken is the only error Verify returns. Bad signatures, malformed
// tokens and expired tokens are indistinguishable to callers.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and verifies HMAC-signed JWTs whose subject is a username.
type TokenManager struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a TokenManager from the auth configuration.
// Only HMAC algorithms are accepted.
func NewTokenManager(cfg config.AuthConfig) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("token secret must not be empty")
	}
	if cfg.AccessTokenDuration <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", cfg.AccessTokenDuration)
	}
	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
	return &TokenManager{
		secret: []byte(cfg.SecretKey),
		method: method,
		ttl:    cfg.AccessTokenDuration,
		now:    time.Now,
	}, nil
}

// TTL is the lifetime given to issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for subject that expires TTL from now.
func (m *TokenManager) Issue(subject string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(m.method, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature, algorithm and expiry of tokenString and returns
// its subject. Expiry has no leeway.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		// The reason stays in the debug log; callers only learn that the token is unusable.
		log.Debug().Err(err).Msg("token rejected")
		return "", ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
