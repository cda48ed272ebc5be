package service

import "errors"

var (
	// ErrUnauthorized covers every authentication failure: missing, bad or
	// expired credentials and tokens.
	ErrUnauthorized = errors.New("Unauthorized")

	// ErrNotFound is also returned when a file exists but the caller may not
	// read it, so private files cannot be discovered.
	ErrNotFound = errors.New("Not found")

	ErrFolderHasNoContent = errors.New("A folder doesn't have content")
)

// ValidationError is a rejected input. Message is safe to show to clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrMissingName     = &ValidationError{"Missing name"}
	ErrMissingType     = &ValidationError{"Missing type"}
	ErrMissingData     = &ValidationError{"Missing data"}
	ErrInvalidData     = &ValidationError{"Invalid data"}
	ErrParentNotFound  = &ValidationError{"Parent not found"}
	ErrParentNotFolder = &ValidationError{"Parent is not a folder"}
	ErrMissingEmail    = &ValidationError{"Missing email"}
	ErrMissingPassword = &ValidationError{"Missing password"}
	ErrInvalidEmail    = &ValidationError{"Invalid email"}
	ErrPasswordTooLong = &ValidationError{"Password too long"}
	ErrAlreadyExist    = &ValidationError{"Already exist"}
)
