package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fixwave/fixwave-api/internal/data/pgxutil"
	"github.com/fixwave/fixwave-api/internal/domain/profile"
)

// ProfileRepo provides database operations for marketplace profiles.
type ProfileRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewProfileRepo creates a new ProfileRepo with real time provider.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewProfileRepoWithTimeProvider creates a new ProfileRepo with a custom time provider (useful for tests).
func NewProfileRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: tp}
}

// Upsert inserts the profile row for req.UserID or updates it in place.
// Onboarding completion is never reset by an upsert.
func (r *ProfileRepo) Upsert(ctx context.Context, req *profile.UpsertProfileRequest) (*profile.Profile, error) {
	if req == nil {
		return nil, errors.New("upsert profile request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	categories := req.Categories
	if categories == nil {
		categories = []string{}
	}

	var out profile.Profile
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO profiles (
				user_id, display_name, bio, avatar_url, categories, onboarding_complete, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, FALSE, $6, $6
			)
			ON CONFLICT (user_id) DO UPDATE SET
				display_name = EXCLUDED.display_name,
				bio          = EXCLUDED.bio,
				avatar_url   = EXCLUDED.avatar_url,
				categories   = EXCLUDED.categories,
				updated_at   = EXCLUDED.updated_at
			RETURNING id, user_id, display_name, bio, avatar_url, categories, onboarding_complete, created_at, updated_at
		`,
			req.UserID,
			strings.TrimSpace(req.DisplayName),
			req.Bio,
			req.AvatarURL,
			categories,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[profile.Profile])
		return err
	}); err != nil {
		return nil, mapProfileWriteErr(err)
	}
	return &out, nil
}

// GetByUserID retrieves the profile row for a user. Absence surfaces as
// ErrProfileNotFound, which callers treat as pending provisioning.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (*profile.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}

	var out profile.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, profileGetByUserIDQuery, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[profile.Profile])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile by user ID: %w", err)
	}
	return &out, nil
}

// SetOnboardingComplete marks the user's profile as onboarded and returns the
// updated row.
func (r *ProfileRepo) SetOnboardingComplete(ctx context.Context, userID string) (*profile.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}

	now := r.timeProvider.Now().UTC()
	var out profile.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE profiles
			SET onboarding_complete = TRUE, updated_at = $2
			WHERE user_id = $1
			RETURNING id, user_id, display_name, bio, avatar_url, categories, onboarding_complete, created_at, updated_at
		`, userID, now)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[profile.Profile])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to complete onboarding: %w", err)
	}
	return &out, nil
}

// Delete removes the profile row for a user. Deleting a missing row is a
// no-op; addresses cascade at the schema level.
func (r *ProfileRepo) Delete(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUserIDRequired
	}

	return pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		if _, err := conn.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}
		return nil
	})
}

const profileGetByUserIDQuery = `
	SELECT id, user_id, display_name, bio, avatar_url, categories, onboarding_complete, created_at, updated_at
	FROM profiles
	WHERE user_id = $1`

func mapProfileWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrProfileExists
	}
	return err
}
