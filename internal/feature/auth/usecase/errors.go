// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by name or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserNameTaken is returned when registering a name that already exists.
	ErrUserNameTaken = errors.New("username already taken")

	// ErrPasswordTooLong is returned when a password exceeds MaxPasswordBytes.
	ErrPasswordTooLong = errors.New("password longer than 72 bytes")

	// ErrInvalidCredentials is returned on any failed login.
	// It never tells an unknown user apart from a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")
)
