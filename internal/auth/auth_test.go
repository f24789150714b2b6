package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Leganyst/service-marketplace/internal/model"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "correct horse" {
		t.Fatalf("hash equals plaintext")
	}
	if err := h.Verify(hash, "correct horse"); err != nil {
		t.Fatalf("Verify good password: %v", err)
	}
	if err := h.Verify(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("Verify bad password err = %v, want ErrPasswordMismatch", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	id := uuid.New()

	token, exp, err := issuer.Issue(id, model.RoleProvider)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry %v is not in the future", exp)
	}

	sub, err := issuer.Resolve(token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sub.UserID != id || sub.Role != model.RoleProvider {
		t.Fatalf("subject = %+v, want %s/provider", sub, id)
	}
}

func TestResolveRejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	id := uuid.New()

	expired := NewTokenIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _, err := expired.Issue(id, model.RoleCustomer)
	if err != nil {
		t.Fatalf("Issue expired: %v", err)
	}

	otherKey, _, err := NewTokenIssuer("other", time.Hour).Issue(id, model.RoleCustomer)
	if err != nil {
		t.Fatalf("Issue other key: %v", err)
	}

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: model.Role("system"),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign bad role: %v", err)
	}

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             model.RoleCustomer,
		RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign no exp: %v", err)
	}

	for name, token := range map[string]string{
		"garbage":   "not-a-token",
		"expired":   expiredToken,
		"other key": otherKey,
		"bad role":  badRole,
		"no exp":    noExp,
	} {
		if _, err := issuer.Resolve(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: err = %v, want ErrInvalidToken", name, err)
		}
	}
}
