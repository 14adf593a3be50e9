package domain

import "errors"

// Core errors.
var (
	// ErrValidation is returned for malformed or missing input.
	ErrValidation = errors.New("validation error")
	// ErrDuplicateAccountType is returned when an owner already holds an account of the type.
	ErrDuplicateAccountType = errors.New("duplicate account type")
	// ErrNotFound is returned when a record does not exist or belongs to another owner.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable wraps transient failures of the record store.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Auth and user errors.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWrongPassword      = errors.New("wrong password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("forbidden")
	ErrUserDeactivated    = errors.New("user is deactivated")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrValidation, "VALIDATION_ERROR"},
	{ErrDuplicateAccountType, "DUPLICATE_ACCOUNT_TYPE"},
	{ErrNotFound, "NOT_FOUND"},
	{ErrStoreUnavailable, "STORE_UNAVAILABLE"},
	{ErrInvalidCredentials, "INVALID_CREDENTIALS"},
	{ErrWrongPassword, "WRONG_PASSWORD"},
	{ErrUsernameTaken, "USERNAME_TAKEN"},
	{ErrEmailTaken, "EMAIL_TAKEN"},
	{ErrInvalidToken, "INVALID_TOKEN"},
	{ErrForbidden, "FORBIDDEN"},
	{ErrUserDeactivated, "USER_DEACTIVATED"},
}

// Code returns the stable error code for err, or "INTERNAL" if it matches none.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "INTERNAL"
}
