// Package jwt provides a minimal HS256 token service for issuing and
// verifying bearer tokens with standard claims.
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// StandardClaims carries the registered claims this service issues and
// validates. Subject holds the user identifier; ExpiresAt is a Unix
// timestamp in seconds.
type StandardClaims struct {
	Subject   string `json:"sub,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
	Issuer    string `json:"iss,omitempty"`
}

// GetExpirationTime implements jwtlib.Claims.
func (c StandardClaims) GetExpirationTime() (*jwtlib.NumericDate, error) {
	if c.ExpiresAt == 0 {
		return nil, nil
	}
	return jwtlib.NewNumericDate(time.Unix(c.ExpiresAt, 0)), nil
}

// GetIssuedAt implements jwtlib.Claims.
func (c StandardClaims) GetIssuedAt() (*jwtlib.NumericDate, error) {
	if c.IssuedAt == 0 {
		return nil, nil
	}
	return jwtlib.NewNumericDate(time.Unix(c.IssuedAt, 0)), nil
}

// GetNotBefore implements jwtlib.Claims.
func (c StandardClaims) GetNotBefore() (*jwtlib.NumericDate, error) { return nil, nil }

// GetIssuer implements jwtlib.Claims.
func (c StandardClaims) GetIssuer() (string, error) { return c.Issuer, nil }

// GetSubject implements jwtlib.Claims.
func (c StandardClaims) GetSubject() (string, error) { return c.Subject, nil }

// GetAudience implements jwtlib.Claims.
func (c StandardClaims) GetAudience() (jwtlib.ClaimStrings, error) { return nil, nil }

// Service signs and parses HS256 tokens with a shared secret.
type Service struct {
	signingKey []byte
}

// New creates a token service from a signing key.
func New(signingKey []byte) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrEmptySigningKey
	}
	return &Service{signingKey: signingKey}, nil
}

// NewFromString creates a token service from a string signing key.
func NewFromString(signingKey string) (*Service, error) {
	return New([]byte(signingKey))
}

// Generate signs claims into a compact token string.
func (s *Service) Generate(claims StandardClaims) (string, error) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, nil
}

// Parse verifies signature and expiry and returns the token's claims.
// Expired tokens return ErrExpiredToken; any other verification failure
// returns ErrInvalidToken.
func (s *Service) Parse(token string) (*StandardClaims, error) {
	claims := &StandardClaims{}
	_, err := jwtlib.ParseWithClaims(token, claims,
		func(t *jwtlib.Token) (any, error) { return s.signingKey, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}
