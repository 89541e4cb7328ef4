package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// Profile repository sentinels.
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")

	// Address repository sentinels.
	ErrAddressNotFound = errors.New("address not found")
	ErrUserIDRequired  = errors.New("user_id is required")
)
