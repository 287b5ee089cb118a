package auth

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/rl1809/sweet-shop/internal/core/domain"
)

func TestJWTTokens_RoundTrip(t *testing.T) {
	tokens := NewJWTTokens("test-secret", time.Hour)

	token, err := tokens.Issue(domain.User{ID: 7, Email: "admin@example.com", IsAdmin: true})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	p, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if p.UserID != 7 || p.Email != "admin@example.com" || !p.IsAdmin {
		t.Errorf("unexpected principal: %+v", p)
	}
}

func TestJWTTokens_Expired(t *testing.T) {
	tokens := NewJWTTokens("test-secret", -time.Minute)

	token, err := tokens.Issue(domain.User{ID: 1, Email: "a@example.com"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := tokens.Verify(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got: %v", err)
	}
}

func TestJWTTokens_WrongSecret(t *testing.T) {
	token, err := NewJWTTokens("one", time.Hour).Issue(domain.User{ID: 1, Email: "a@example.com"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := NewJWTTokens("two", time.Hour).Verify(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got: %v", err)
	}
}

func TestJWTTokens_Garbage(t *testing.T) {
	if _, err := NewJWTTokens("s", time.Hour).Verify("not-a-token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got: %v", err)
	}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("pass1234")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "pass1234" {
		t.Fatal("expected hashed password")
	}

	if err := h.Compare(hash, "pass1234"); err != nil {
		t.Errorf("expected match, got: %v", err)
	}
	if err := h.Compare(hash, "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
}
