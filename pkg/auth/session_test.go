package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/torquehub/torquehub-backend/pkg/config"
)

func newSigningKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return key, string(publicPEM)
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims SessionClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func sessionClaims(subject string) SessionClaims {
	return SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		AuthorizedParty: "https://app.torquehub.test",
		SessionID:       "sess_1",
	}
}

func TestParseSessionToken(t *testing.T) {
	key, publicPEM := newSigningKey(t)
	cfg := config.ClerkConfig{JWTPublicKeyPEM: publicPEM, AuthorizedParty: "https://app.torquehub.test"}

	raw := signToken(t, key, sessionClaims("user_2abc"))
	claims, err := ParseSessionToken(cfg, raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user_2abc" {
		t.Fatalf("expected subject user_2abc, got %q", claims.Subject)
	}
	if claims.SessionID != "sess_1" {
		t.Fatalf("expected session sess_1, got %q", claims.SessionID)
	}
}

func TestParseSessionTokenRequiresKey(t *testing.T) {
	_, err := ParseSessionToken(config.ClerkConfig{}, "whatever")
	if !errors.Is(err, ErrNoPublicKey) {
		t.Fatalf("expected ErrNoPublicKey, got %v", err)
	}
}

func TestParseSessionTokenRejectsExpired(t *testing.T) {
	key, publicPEM := newSigningKey(t)
	cfg := config.ClerkConfig{JWTPublicKeyPEM: publicPEM}

	claims := sessionClaims("user_2abc")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	raw := signToken(t, key, claims)

	if _, err := ParseSessionToken(cfg, raw); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseSessionTokenRejectsWrongSigner(t *testing.T) {
	otherKey, _ := newSigningKey(t)
	_, publicPEM := newSigningKey(t)
	cfg := config.ClerkConfig{JWTPublicKeyPEM: publicPEM}

	raw := signToken(t, otherKey, sessionClaims("user_2abc"))
	if _, err := ParseSessionToken(cfg, raw); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}

func TestParseSessionTokenRejectsWrongParty(t *testing.T) {
	key, publicPEM := newSigningKey(t)
	cfg := config.ClerkConfig{JWTPublicKeyPEM: publicPEM, AuthorizedParty: "https://app.torquehub.test"}

	claims := sessionClaims("user_2abc")
	claims.AuthorizedParty = "https://evil.example.com"
	raw := signToken(t, key, claims)

	if _, err := ParseSessionToken(cfg, raw); !errors.Is(err, ErrWrongParty) {
		t.Fatalf("expected ErrWrongParty, got %v", err)
	}
}

func TestParseSessionTokenRejectsMissingSubject(t *testing.T) {
	key, publicPEM := newSigningKey(t)
	cfg := config.ClerkConfig{JWTPublicKeyPEM: publicPEM}

	claims := sessionClaims("")
	raw := signToken(t, key, claims)

	if _, err := ParseSessionToken(cfg, raw); !errors.Is(err, ErrMissingSubject) {
		t.Fatalf("expected ErrMissingSubject, got %v", err)
	}
}

func TestParseSessionTokenRejectsHMAC(t *testing.T) {
	_, publicPEM := newSigningKey(t)
	cfg := config.ClerkConfig{JWTPublicKeyPEM: publicPEM}

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims("user_2abc")).SignedString([]byte("shared"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := ParseSessionToken(cfg, raw); err == nil {
		t.Fatal("expected algorithm rejection")
	}
}
