// Package usecase implements the business logic for the recipes feature.
package usecase

import "errors"

var (
	// ErrRecipeNotFound is returned when no recipe has the requested ID.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrForbidden is returned when the session is neither the owner nor an administrator.
	ErrForbidden = errors.New("access to recipe forbidden")

	// ErrTitleTaken is returned when the owner already has a recipe with the same title.
	ErrTitleTaken = errors.New("recipe title already used")

	// ErrUnsupportedMedia is returned for uploads outside the image extension allow-list.
	ErrUnsupportedMedia = errors.New("unsupported file type (not jpg, jpeg, png, gif)")

	// ErrUnauthenticated is returned when an operation needs a logged-in user.
	ErrUnauthenticated = errors.New("authentication required")
)
