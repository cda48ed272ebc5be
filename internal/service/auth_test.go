package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRegister(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	user := env.register(t, " Bob@Dylan.com")
	if user.Email != "bob@dylan.com" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "toto1234!" || user.PasswordHash == "" {
		t.Error("expected password to be stored hashed")
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"missing email", "", "pw", ErrMissingEmail},
		{"missing password", "a@b.com", "", ErrMissingPassword},
		{"invalid email", "nope", "pw", ErrInvalidEmail},
		{"password too long", "a@b.com", strings.Repeat("p", 73), ErrPasswordTooLong},
		{"duplicate", "bob@dylan.com", "other", ErrAlreadyExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	user := env.register(t, "bob@dylan.com")

	token := env.login(t, "bob@dylan.com")
	if len(token) != 64 {
		t.Errorf("expected 64 hex chars, got %q", token)
	}
	if other := env.login(t, "bob@dylan.com"); other == token {
		t.Error("expected a fresh token per login")
	}

	if got := env.redis.TTL("auth_" + token); got != 24*time.Hour {
		t.Errorf("expected 24h session TTL, got %v", got)
	}

	userID, err := env.auth.ResolveSession(ctx, token)
	if err != nil || userID != user.ID {
		t.Errorf("ResolveSession = %q, %v; want %q", userID, err, user.ID)
	}

	bad := []string{
		"",
		"Bearer abc",
		"Basic !!!notbase64",
		basicAuth("bob@dylan.com", "wrong"),
		basicAuth("nobody@dylan.com", "toto1234!"),
		"Basic " + b64("bob@dylan.com"),
	}
	for _, header := range bad {
		if _, err := env.auth.Authenticate(ctx, header); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Authenticate(%q): expected ErrUnauthorized, got %v", header, err)
		}
	}
}

func TestAuthenticatePasswordWithColon(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	if _, err := env.auth.Register(ctx, "c@x.com", "a:b:c"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := env.auth.Authenticate(ctx, basicAuth("c@x.com", "a:b:c")); err != nil {
		t.Errorf("expected colon in password to be accepted, got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.register(t, "bob@dylan.com")
	token := env.login(t, "bob@dylan.com")

	env.redis.FastForward(24*time.Hour + time.Second)

	if _, err := env.auth.Authorize(ctx, token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected expired session to be unauthorized, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.register(t, "bob@dylan.com")
	token := env.login(t, "bob@dylan.com")

	if err := env.auth.Revoke(ctx, token); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := env.auth.ResolveSession(ctx, token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected revoked token to be unauthorized, got %v", err)
	}
	if err := env.auth.Revoke(ctx, token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected second revoke to be unauthorized, got %v", err)
	}
	if err := env.auth.Revoke(ctx, ""); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected empty token to be unauthorized, got %v", err)
	}
}

func TestAuthorize(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	user := env.register(t, "bob@dylan.com")
	token := env.login(t, "bob@dylan.com")

	got, err := env.auth.Authorize(ctx, token)
	if err != nil || got.ID != user.ID {
		t.Fatalf("Authorize = %+v, %v", got, err)
	}

	// Session pointing at a user that does not exist
	env.redis.Set("auth_dangling", "no-such-user")
	if _, err := env.auth.Authorize(ctx, "dangling"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for unknown user, got %v", err)
	}

	anon, err := env.auth.OptionalUser(ctx, "garbage")
	if anon != nil || err != nil {
		t.Errorf("OptionalUser(garbage) = %v, %v; want nil, nil", anon, err)
	}
}
