package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fixwave/fixwave-api/internal/core"
	"github.com/fixwave/fixwave-api/internal/domain/profile"
)

// ProfileServiceOptions groups dependencies for ProfileService.
type ProfileServiceOptions struct {
	Profiles  core.ProfileRepository
	Addresses core.AddressRepository
}

// ProfileService orchestrates marketplace profile and address operations.
type ProfileService struct {
	profiles  core.ProfileRepository
	addresses core.AddressRepository
}

// NewProfileService constructs a new ProfileService.
func NewProfileService(opts ProfileServiceOptions) *ProfileService {
	if opts.Profiles == nil {
		panic("ProfileRepository is required")
	}
	if opts.Addresses == nil {
		panic("AddressRepository is required")
	}
	return &ProfileService{profiles: opts.Profiles, addresses: opts.Addresses}
}

// Upsert creates or updates the caller's profile.
func (s *ProfileService) Upsert(ctx context.Context, req *profile.UpsertProfileRequest) (*profile.Profile, error) {
	if req == nil {
		return nil, errors.New("upsert profile request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	out, err := s.profiles.Upsert(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return out, nil
}

// Get returns the profile row for userID. Absence propagates the repository
// sentinel so callers can distinguish "pending provisioning" from failure.
func (s *ProfileService) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

// CompleteOnboarding flips the onboarding flag for userID.
func (s *ProfileService) CompleteOnboarding(ctx context.Context, userID string) (*profile.Profile, error) {
	out, err := s.profiles.SetOnboardingComplete(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("complete onboarding: %w", err)
	}
	return out, nil
}

// Delete removes the profile and, via schema cascade, its addresses.
func (s *ProfileService) Delete(ctx context.Context, userID string) error {
	if err := s.profiles.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// CreateAddress adds a saved address for the user.
func (s *ProfileService) CreateAddress(ctx context.Context, req *profile.CreateAddressRequest) (*profile.Address, error) {
	if req == nil {
		return nil, errors.New("create address request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	out, err := s.addresses.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	return out, nil
}

// ListAddresses returns the user's saved addresses, default first.
func (s *ProfileService) ListAddresses(ctx context.Context, userID string) ([]*profile.Address, error) {
	out, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return out, nil
}

// UpdateAddress applies a partial update to one of the user's addresses.
func (s *ProfileService) UpdateAddress(ctx context.Context, params core.UpdateAddressParams) (*profile.Address, error) {
	if params.Req == nil {
		return nil, errors.New("update address request is required")
	}
	if err := params.Req.Validate(); err != nil {
		return nil, err
	}
	return s.addresses.Update(ctx, params)
}

// DeleteAddress removes one of the user's addresses.
func (s *ProfileService) DeleteAddress(ctx context.Context, userID, addressID string) error {
	return s.addresses.Delete(ctx, userID, addressID)
}
