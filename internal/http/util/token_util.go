package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrMissingSecret = errors.New("jwt secret is not configured")
)

// TokenSigner validates HS256 owner tokens. The subject claim carries the
// owner id.
type TokenSigner struct {
	secret []byte
	issuer string
}

// NewTokenSigner returns a verifier for owner bearer tokens. An empty issuer
// disables the issuer check.
func NewTokenSigner(secret []byte, issuer string) *TokenSigner {
	return &TokenSigner{
		secret: secret,
		issuer: issuer,
	}
}

// Issue mints a token for the provided owner id. The server never calls it;
// tokens come from the identity provider sharing the secret, and Issue exists
// for tests and local tooling.
func (s *TokenSigner) Issue(ownerID string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   ownerID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, expiry and issuer and returns the owner id.
func (s *TokenSigner) Validate(token string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
