package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		want  error
	}{
		{"bob@dylan.com", nil},
		{"a.b+c@example.org", nil},
		{"", ErrEmailRequired},
		{"not-an-email", ErrEmailInvalid},
		{"Bob <bob@dylan.com>", ErrEmailInvalid},
		{strings.Repeat("a", 250) + "@x.io", ErrEmailTooLong},
	}

	for _, tt := range tests {
		if err := ValidateEmail(tt.email); !errors.Is(err, tt.want) {
			t.Errorf("ValidateEmail(%q) = %v, want %v", tt.email, err, tt.want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Bob@Dylan.COM "); got != "bob@dylan.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		want     error
	}{
		{"toto1234!", nil},
		{strings.Repeat("x", 72), nil},
		{"", ErrPasswordRequired},
		{strings.Repeat("x", 73), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		if err := ValidatePassword(tt.password); !errors.Is(err, tt.want) {
			t.Errorf("ValidatePassword(len %d) = %v, want %v", len(tt.password), err, tt.want)
		}
	}
}
