package auth

import "errors"

var (
	// ErrInvalidCredentials covers unknown emails, wrong passwords and
	// deactivated users alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailInUse is returned by SignUp when the email is registered.
	ErrEmailInUse = errors.New("email already in use")
	// ErrWeakPassword is returned when a password fails the length policy.
	ErrWeakPassword = errors.New("password must be at least 6 characters")
	// ErrInvalidToken is returned for bad access, refresh or reset tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)
