package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tokens := NewTokens("test-secret-key", 0)

	token, expires, err := tokens.Generate(7, "alice")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if time.Until(expires) < TokenExpiry-time.Minute {
		t.Errorf("expected default expiry, got %v", expires)
	}

	claims, err := tokens.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("expected user_id 7, got %d", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("expected username 'alice', got %q", claims.Username)
	}
	if claims.Subject != "7" || claims.Issuer != Issuer {
		t.Errorf("unexpected registered claims: sub=%q iss=%q", claims.Subject, claims.Issuer)
	}
}

func TestTokenIDsUnique(t *testing.T) {
	tokens := NewTokens("secret", 0)
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		token, _, _ := tokens.Generate(1, "alice")
		claims, err := tokens.Validate(token)
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if seen[claims.ID] {
			t.Fatalf("duplicate token id %s", claims.ID)
		}
		seen[claims.ID] = true
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _, _ := NewTokens("secret1", 0).Generate(1, "alice")

	_, err := NewTokens("secret2", 0).Validate(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := NewTokens("secret", 0).Validate("not-a-token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	issued := time.Now().Add(-2 * time.Hour)
	tokens.now = func() time.Time { return issued }

	token, _, err := tokens.Generate(1, "alice")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	tokens.now = time.Now
	if _, err := tokens.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected expired token to be rejected, got %v", err)
	}
}

func TestValidateTokenWrongAlgorithm(t *testing.T) {
	claims := Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	if _, err := NewTokens("secret", 0).Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected HS512 token to be rejected, got %v", err)
	}
}
