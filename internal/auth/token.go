package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every token that cannot be trusted:
// bad signature, wrong algorithm, expired, malformed, or missing subject.
// Expired tokens additionally match jwt.ErrTokenExpired.
var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer mints and verifies bearer tokens carrying a user id subject.
type TokenIssuer struct {
	keys     KeyProvider
	lifetime time.Duration
	now      func() time.Time
}

func NewTokenIssuer(keys KeyProvider, lifetime time.Duration) *TokenIssuer {
	return &TokenIssuer{
		keys:     keys,
		lifetime: lifetime,
		now:      time.Now,
	}
}

// Issue signs a token for userID expiring after the session lifetime.
func (i *TokenIssuer) Issue(userID string) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.lifetime)),
	}

	token := jwt.NewWithClaims(i.keys.SigningMethod(), claims)
	signed, err := token.SignedString(i.keys.SigningKey())
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate returns the subject of a trusted token. Any failure, including
// parse errors on garbage input, is reported as ErrInvalidToken.
func (i *TokenIssuer) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return i.keys.VerificationKey(), nil
		},
		jwt.WithValidMethods([]string{i.keys.SigningMethod().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Lifetime is how long issued tokens stay valid.
func (i *TokenIssuer) Lifetime() time.Duration {
	return i.lifetime
}
