package repository

import "errors"

// Sentinel errors returned by repositories so handlers can map domain outcomes
// to HTTP statuses without inspecting SQL errors.
var (
	// ErrNotFound means the referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock means the row exists but holds less stock than requested.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrDuplicateUser means the username or email is already taken.
	ErrDuplicateUser = errors.New("username or email already exists")
)
