package main

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T) (*Auth, *DB) {
	t.Helper()
	db := openTestDB(t)
	a := NewAuth(db)
	a.cost = bcrypt.MinCost
	return a, db
}

func TestRegisterAndLogin(t *testing.T) {
	a, _ := newTestAuth(t)

	id, token, err := a.Register("  nova  ", "pass1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	pid, user, err := a.ValidateToken(token)
	if err != nil || pid != id || user != "nova" {
		t.Errorf("expected token for %d nova, got %d %q %v", id, pid, user, err)
	}

	lid, _, err := a.Login("nova", "pass1", "1.2.3.4")
	if err != nil || lid != id {
		t.Errorf("expected login as %d, got %d %v", id, lid, err)
	}
}

func TestRegisterValidation(t *testing.T) {
	a, _ := newTestAuth(t)
	cases := []struct {
		user, pass string
		want       error
	}{
		{"n", "pass1", ErrBadUsername},
		{"averyveryverylongname", "pass1", ErrBadUsername},
		{"nova", "abc", ErrBadPassword},
	}
	for _, c := range cases {
		if _, _, err := a.Register(c.user, c.pass); !errors.Is(err, c.want) {
			t.Errorf("register(%q, %q): expected %v, got %v", c.user, c.pass, c.want, err)
		}
	}
	a.Register("nova", "pass1")
	if _, _, err := a.Register("nova", "pass2"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	a, _ := newTestAuth(t)
	a.Register("nova", "pass1")

	if _, _, err := a.Login("nova", "nope", "ip"); !errors.Is(err, ErrBadLogin) {
		t.Errorf("expected ErrBadLogin for wrong password, got %v", err)
	}
	if _, _, err := a.Login("ghost", "pass1", "ip"); !errors.Is(err, ErrBadLogin) {
		t.Errorf("expected ErrBadLogin for unknown user, got %v", err)
	}
}

func TestLoginRateLimit(t *testing.T) {
	a, _ := newTestAuth(t)
	a.Register("nova", "pass1")
	for i := 0; i < maxLoginAttempts; i++ {
		a.Login("nova", "nope", "9.9.9.9")
	}
	if _, _, err := a.Login("nova", "pass1", "9.9.9.9"); !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
	if _, _, err := a.Login("nova", "pass1", "8.8.8.8"); err != nil {
		t.Errorf("other addresses must not be limited, got %v", err)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	a, _ := newTestAuth(t)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"pid": 1, "usr": "nova", "exp": time.Now().Add(-time.Hour).Unix(),
	})
	tok, _ := expired.SignedString(a.jwtSecret)
	if _, _, err := a.ValidateToken(tok); !errors.Is(err, ErrBadToken) {
		t.Errorf("expected ErrBadToken for expired token, got %v", err)
	}

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"pid": 1, "usr": "nova", "exp": time.Now().Add(time.Hour).Unix(),
	})
	tok, _ = foreign.SignedString([]byte("some other secret of 32 bytes!!"))
	if _, _, err := a.ValidateToken(tok); !errors.Is(err, ErrBadToken) {
		t.Errorf("expected ErrBadToken for foreign signature, got %v", err)
	}

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"pid": 1, "exp": time.Now().Add(time.Hour).Unix(),
	})
	tok, _ = noUser.SignedString(a.jwtSecret)
	if _, _, err := a.ValidateToken(tok); !errors.Is(err, ErrBadToken) {
		t.Errorf("expected ErrBadToken without usr claim, got %v", err)
	}
}

func TestSecretPersistsAcrossRestart(t *testing.T) {
	a, db := newTestAuth(t)
	_, token, err := a.Register("nova", "pass1")
	if err != nil {
		t.Fatal(err)
	}
	b := NewAuth(db)
	if _, _, err := b.ValidateToken(token); err != nil {
		t.Errorf("expected token valid after restart, got %v", err)
	}
}
