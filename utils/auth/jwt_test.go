package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// signWithoutJTI builds a well-signed token whose claims carry no token
// id, which GenerateAccessToken never produces.
func signWithoutJTI(t *testing.T, secret string) string {
	t.Helper()
	claims := Claims{
		UserID: 42,
		Email:  "user@example.com",
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestValidateToken_MissingJTI(t *testing.T) {
	t.Parallel()

	m := newTestManager(time.Hour)
	token := signWithoutJTI(t, "test-secret")

	_, err := m.ValidateToken(token)
	if !errors.Is(err, ErrMissingJTI) {
		t.Fatalf("expected ErrMissingJTI, got %v", err)
	}
}

func newTestManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret: "test-secret",
		Expiry: expiry,
		Issuer: "cityforge-test",
	})
}

func TestGenerateAndValidate(t *testing.T) {
	t.Parallel()

	m := newTestManager(time.Hour)

	token, jti, err := m.GenerateAccessToken(42, "user@example.com", "user")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	if jti == "" {
		t.Fatal("expected a non-empty jti")
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken error: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("UserID mismatch: got %d want 42", claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("Email mismatch: got %q", claims.Email)
	}
	if claims.ID != jti {
		t.Fatalf("jti mismatch: got %q want %q", claims.ID, jti)
	}
	if claims.TokenType != "access" {
		t.Fatalf("TokenType mismatch: got %q", claims.TokenType)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	t.Parallel()

	m := newTestManager(-time.Minute)

	token, _, err := m.GenerateAccessToken(1, "a@b.c", "user")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	_, err = m.ValidateToken(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	t.Parallel()

	m := newTestManager(time.Hour)
	token, _, err := m.GenerateAccessToken(1, "a@b.c", "user")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	other := NewJWTManager(JWTConfig{Secret: "different-secret", Expiry: time.Hour})
	_, err = other.ValidateToken(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	t.Parallel()

	m := newTestManager(time.Hour)
	_, err := m.ValidateToken("not-a-token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateToken_MissingSecret(t *testing.T) {
	t.Parallel()

	m := NewJWTManager(JWTConfig{Expiry: time.Hour})
	if _, _, err := m.GenerateAccessToken(1, "a@b.c", "user"); !errors.Is(err, ErrSecretNotConfigured) {
		t.Fatalf("expected ErrSecretNotConfigured on generate, got %v", err)
	}
	if _, err := m.ValidateToken("anything"); !errors.Is(err, ErrSecretNotConfigured) {
		t.Fatalf("expected ErrSecretNotConfigured on validate, got %v", err)
	}
}

func TestGetJTIAndExpiry(t *testing.T) {
	t.Parallel()

	m := newTestManager(time.Hour)
	token, jti, err := m.GenerateAccessToken(7, "x@y.z", "admin")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	gotJTI, err := m.GetJTI(token)
	if err != nil {
		t.Fatalf("GetJTI error: %v", err)
	}
	if gotJTI != jti {
		t.Fatalf("jti mismatch: got %q want %q", gotJTI, jti)
	}

	expiry, err := m.GetTokenExpiry(token)
	if err != nil {
		t.Fatalf("GetTokenExpiry error: %v", err)
	}
	until := time.Until(expiry)
	if until < 59*time.Minute || until > 61*time.Minute {
		t.Fatalf("expiry out of range: %v from now", until)
	}
}
