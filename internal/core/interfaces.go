package core

import (
	"context"

	"github.com/fixwave/fixwave-api/internal/domain/profile"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// ProfileRepository defines the interface for profile row operations.
// GetByUserID returns data.ErrProfileNotFound when no row exists; callers
// treat that as a normal outcome (the row is provisioned asynchronously).
type ProfileRepository interface {
	Upsert(ctx context.Context, req *profile.UpsertProfileRequest) (*profile.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*profile.Profile, error)
	SetOnboardingComplete(ctx context.Context, userID string) (*profile.Profile, error)
	Delete(ctx context.Context, userID string) error
}

// UpdateAddressParams groups parameters for AddressRepository.Update.
type UpdateAddressParams struct {
	UserID    string
	AddressID string
	Req       *profile.UpdateAddressRequest
}

// AddressRepository defines the interface for address operations.
type AddressRepository interface {
	Create(ctx context.Context, req *profile.CreateAddressRequest) (*profile.Address, error)
	ListByUser(ctx context.Context, userID string) ([]*profile.Address, error)
	Update(ctx context.Context, params UpdateAddressParams) (*profile.Address, error)
	Delete(ctx context.Context, userID, addressID string) error
}

// VerificationChecker answers "is this identity verified right now". The
// poller depends on this narrow interface rather than the full directory.
type VerificationChecker interface {
	Verified(ctx context.Context, userID string) (bool, error)
}
