package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fixwave/fixwave-api/internal/core"
	"github.com/fixwave/fixwave-api/internal/data"
	"github.com/fixwave/fixwave-api/internal/domain/profile"
	"github.com/fixwave/fixwave-api/internal/mocks"
)

func newProfileService(t *testing.T) (*mocks.MockProfileRepository, *mocks.MockAddressRepository, *ProfileService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	profiles := mocks.NewMockProfileRepository(ctrl)
	addresses := mocks.NewMockAddressRepository(ctrl)
	svc := NewProfileService(ProfileServiceOptions{Profiles: profiles, Addresses: addresses})
	return profiles, addresses, svc
}

func TestProfileService_Upsert(t *testing.T) {
	t.Parallel()
	profiles, _, svc := newProfileService(t)

	req := &profile.UpsertProfileRequest{UserID: "u-1", DisplayName: "Dana O."}
	want := &profile.Profile{ID: "p-1", UserID: "u-1", DisplayName: "Dana O."}
	profiles.EXPECT().Upsert(gomock.Any(), req).Return(want, nil)

	got, err := svc.Upsert(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestProfileService_Upsert_ValidationStopsBeforeRepo(t *testing.T) {
	t.Parallel()
	_, _, svc := newProfileService(t)

	_, err := svc.Upsert(context.Background(), &profile.UpsertProfileRequest{UserID: "u-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "display name is required")

	_, err = svc.Upsert(context.Background(), nil)
	require.Error(t, err)
}

func TestProfileService_Get_PropagatesNotFound(t *testing.T) {
	t.Parallel()
	profiles, _, svc := newProfileService(t)

	profiles.EXPECT().GetByUserID(gomock.Any(), "u-1").Return(nil, data.ErrProfileNotFound)

	_, err := svc.Get(context.Background(), "u-1")
	assert.ErrorIs(t, err, data.ErrProfileNotFound)
}

func TestProfileService_CompleteOnboarding(t *testing.T) {
	t.Parallel()
	profiles, _, svc := newProfileService(t)

	want := &profile.Profile{ID: "p-1", UserID: "u-1", OnboardingComplete: true}
	profiles.EXPECT().SetOnboardingComplete(gomock.Any(), "u-1").Return(want, nil)

	got, err := svc.CompleteOnboarding(context.Background(), "u-1")
	require.NoError(t, err)
	assert.True(t, got.OnboardingComplete)
}

func TestProfileService_CreateAddress(t *testing.T) {
	t.Parallel()
	_, addresses, svc := newProfileService(t)

	req := &profile.CreateAddressRequest{
		UserID: "u-1", Street: "12 Elm St", City: "Porto", Country: "PT",
	}
	want := &profile.Address{ID: "a-1", UserID: "u-1", IsDefault: true}
	addresses.EXPECT().Create(gomock.Any(), req).Return(want, nil)

	got, err := svc.CreateAddress(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)
}

func TestProfileService_CreateAddress_Invalid(t *testing.T) {
	t.Parallel()
	_, _, svc := newProfileService(t)

	_, err := svc.CreateAddress(context.Background(), &profile.CreateAddressRequest{UserID: "u-1"})
	require.Error(t, err)
}

func TestProfileService_UpdateAddress_RequiresAField(t *testing.T) {
	t.Parallel()
	_, _, svc := newProfileService(t)

	_, err := svc.UpdateAddress(context.Background(), core.UpdateAddressParams{
		UserID: "u-1", AddressID: "a-1", Req: &profile.UpdateAddressRequest{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one field")
}

func TestProfileService_DeleteAddress_PropagatesNotFound(t *testing.T) {
	t.Parallel()
	_, addresses, svc := newProfileService(t)

	addresses.EXPECT().Delete(gomock.Any(), "u-1", "a-404").Return(data.ErrAddressNotFound)

	err := svc.DeleteAddress(context.Background(), "u-1", "a-404")
	assert.ErrorIs(t, err, data.ErrAddressNotFound)
}

func TestProfileService_ListAddresses_WrapsError(t *testing.T) {
	t.Parallel()
	_, addresses, svc := newProfileService(t)

	addresses.EXPECT().ListByUser(gomock.Any(), "u-1").Return(nil, errors.New("db down"))

	_, err := svc.ListAddresses(context.Background(), "u-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list addresses")
}
