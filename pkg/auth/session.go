package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/torquehub/torquehub-backend/pkg/config"
)

var (
	ErrNoPublicKey    = errors.New("session verification key is not configured")
	ErrWrongParty     = errors.New("token issued for a different frontend")
	ErrMissingSubject = errors.New("token is missing a subject")
	errUnexpectedAlgo = errors.New("unexpected token signing algorithm")
)

// SessionClaims are the identity provider session token claims the
// platform reads.
type SessionClaims struct {
	jwt.RegisteredClaims
	AuthorizedParty string `json:"azp,omitempty"`
	SessionID       string `json:"sid,omitempty"`
}

// ParseSessionToken verifies an RS256 session token against the
// provider's instance public key and returns its claims.
func ParseSessionToken(cfg config.ClerkConfig, raw string) (*SessionClaims, error) {
	if cfg.JWTPublicKeyPEM == "" {
		return nil, ErrNoPublicKey
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.JWTPublicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse verification key: %w", err)
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errUnexpectedAlgo
		}
		return publicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	if cfg.AuthorizedParty != "" && claims.AuthorizedParty != cfg.AuthorizedParty {
		return nil, ErrWrongParty
	}
	return claims, nil
}
