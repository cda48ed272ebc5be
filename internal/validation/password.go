package validation

import (
	"errors"
)

// MaxPasswordBytes is the bcrypt input limit.
// bcrypt silently truncates longer passwords, so they are rejected instead.
const MaxPasswordBytes = 72

var (
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooLong  = errors.New("password must not exceed 72 bytes")
)

// ValidatePassword checks what bcrypt can hash faithfully. Strength rules
// are left to clients.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
