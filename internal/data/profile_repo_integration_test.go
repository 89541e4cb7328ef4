package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixwave/fixwave-api/internal/testutil"
)

// TestProfileRepo_Integration_UpsertRoundTrip verifies insert-then-update semantics.
func TestProfileRepo_Integration_UpsertRoundTrip(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewProfileRepo(db)
		ctx := context.Background()

		req := testutil.NewProfileRequest().
			WithDisplayName("Ana Plumber").
			WithBio("Licensed plumber, 10 years").
			WithCategories("plumbing", "heating").
			Build()

		created, err := repo.Upsert(ctx, req)
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.Equal(t, req.UserID, created.UserID)
		assert.Equal(t, "Ana Plumber", created.DisplayName)
		assert.False(t, created.OnboardingComplete)
		require.NotNil(t, created.Bio)
		assert.Equal(t, "Licensed plumber, 10 years", *created.Bio)
		assert.Equal(t, []string{"plumbing", "heating"}, created.Categories)

		// Second upsert updates in place under the same row ID.
		req.DisplayName = "Ana P."
		req.Bio = nil
		updated, err := repo.Upsert(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "Ana P.", updated.DisplayName)
		assert.Nil(t, updated.Bio)
	})
}

// TestProfileRepo_Integration_UpsertKeepsOnboardingFlag checks the flag is
// never reset by a later profile edit.
func TestProfileRepo_Integration_UpsertKeepsOnboardingFlag(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewProfileRepo(db)
		ctx := context.Background()

		req := testutil.NewProfileRequest().Build()
		_, err := repo.Upsert(ctx, req)
		require.NoError(t, err)

		completed, err := repo.SetOnboardingComplete(ctx, req.UserID)
		require.NoError(t, err)
		require.True(t, completed.OnboardingComplete)

		after, err := repo.Upsert(ctx, req)
		require.NoError(t, err)
		assert.True(t, after.OnboardingComplete, "profile edit must not reset onboarding")
	})
}

func TestProfileRepo_Integration_GetByUserID(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewProfileRepo(db)
		ctx := context.Background()

		_, err := repo.GetByUserID(ctx, "no-such-user")
		assert.ErrorIs(t, err, ErrProfileNotFound)

		_, err = repo.GetByUserID(ctx, "  ")
		assert.ErrorIs(t, err, ErrUserIDRequired)

		req := testutil.NewProfileRequest().Build()
		created, err := repo.Upsert(ctx, req)
		require.NoError(t, err)

		got, err := repo.GetByUserID(ctx, req.UserID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})
}

func TestProfileRepo_Integration_SetOnboardingCompleteMissing(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewProfileRepo(db)

		_, err := repo.SetOnboardingComplete(context.Background(), "no-such-user")
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})
}

// TestProfileRepo_Integration_DeleteCascadesAddresses verifies the schema-level
// cascade removes the user's addresses with the profile.
func TestProfileRepo_Integration_DeleteCascadesAddresses(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		profiles := NewProfileRepo(db)
		addresses := NewAddressRepo(db)
		ctx := context.Background()

		req := testutil.NewProfileRequest().Build()
		_, err := profiles.Upsert(ctx, req)
		require.NoError(t, err)

		_, err = addresses.Create(ctx, testutil.NewAddressRequest(req.UserID).Build())
		require.NoError(t, err)

		require.NoError(t, profiles.Delete(ctx, req.UserID))

		// Deleting again is a no-op.
		require.NoError(t, profiles.Delete(ctx, req.UserID))

		list, err := addresses.ListByUser(ctx, req.UserID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
