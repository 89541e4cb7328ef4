package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fixwave/fixwave-api/internal/core"
	"github.com/fixwave/fixwave-api/internal/data/pgxutil"
	"github.com/fixwave/fixwave-api/internal/domain/profile"
)

// AddressRepo provides database operations for saved service addresses.
// The single-default invariant (at most one is_default row per user) is
// maintained transactionally here, not left to callers.
type AddressRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewAddressRepo creates a new AddressRepo with real time provider.
func NewAddressRepo(db *sql.DB) *AddressRepo {
	return &AddressRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewAddressRepoWithTimeProvider creates a new AddressRepo with a custom time provider (useful for tests).
func NewAddressRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *AddressRepo {
	return &AddressRepo{DB: db, timeProvider: tp}
}

// Create inserts an address. The user's first address always becomes the
// default; an explicit IsDefault=true demotes the previous default.
func (r *AddressRepo) Create(ctx context.Context, req *profile.CreateAddressRequest) (*profile.Address, error) {
	if req == nil {
		return nil, errors.New("create address request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	var out profile.Address
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		var existing int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM addresses WHERE user_id = $1`, req.UserID,
		).Scan(&existing); err != nil {
			return err
		}

		isDefault := existing == 0
		if req.IsDefault != nil {
			isDefault = isDefault || *req.IsDefault
		}
		if isDefault && existing > 0 {
			if _, err := tx.Exec(ctx,
				`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default`, req.UserID,
			); err != nil {
				return err
			}
		}

		rows, err := tx.Query(ctx, `
			INSERT INTO addresses (
				user_id, label, street, city, region, postal_code, country, is_default, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $9
			) RETURNING id, user_id, label, street, city, region, postal_code, country, is_default, created_at, updated_at
		`,
			req.UserID,
			strings.TrimSpace(req.Label),
			strings.TrimSpace(req.Street),
			strings.TrimSpace(req.City),
			strings.TrimSpace(req.Region),
			strings.TrimSpace(req.PostalCode),
			strings.TrimSpace(req.Country),
			isDefault,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[profile.Address])
		return err
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return &out, nil
}

// ListByUser returns the user's addresses, default first, newest next.
func (r *AddressRepo) ListByUser(ctx context.Context, userID string) ([]*profile.Address, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}

	var rowsOut []profile.Address
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, addressListQuery, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[profile.Address])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}

	res := make([]*profile.Address, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update applies the non-nil fields of the request. Setting IsDefault=true
// demotes the previous default; setting it false on the current default
// leaves the user with no default.
func (r *AddressRepo) Update(ctx context.Context, params core.UpdateAddressParams) (*profile.Address, error) {
	if params.Req == nil {
		return nil, errors.New("update address request is required")
	}
	if err := params.Req.Validate(); err != nil {
		return nil, err
	}

	var out profile.Address
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		if params.Req.IsDefault != nil && *params.Req.IsDefault {
			if _, err := tx.Exec(ctx,
				`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default AND id <> $2`,
				params.UserID, params.AddressID,
			); err != nil {
				return err
			}
		}

		setClause, args := r.buildUpdateClause(params.Req)
		args = append(args, params.UserID, params.AddressID)
		query := "UPDATE addresses SET " + setClause +
			" WHERE user_id = $" + strconv.Itoa(len(args)-1) +
			" AND id = $" + strconv.Itoa(len(args)) +
			" RETURNING id, user_id, label, street, city, region, postal_code, country, is_default, created_at, updated_at"

		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[profile.Address])
		return err
	}})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	return &out, nil
}

// buildUpdateClause builds the SQL SET clause and args for the non-nil fields.
func (r *AddressRepo) buildUpdateClause(req *profile.UpdateAddressRequest) (string, []any) {
	setParts := make([]string, 0, 8)
	args := make([]any, 0, 10)
	nextIdx := func() int { return len(args) + 1 }

	addString := func(col string, v *string) {
		if v != nil {
			setParts = append(setParts, fmt.Sprintf("%s = $%d", col, nextIdx()))
			args = append(args, strings.TrimSpace(*v))
		}
	}
	addString("label", req.Label)
	addString("street", req.Street)
	addString("city", req.City)
	addString("region", req.Region)
	addString("postal_code", req.PostalCode)
	addString("country", req.Country)
	if req.IsDefault != nil {
		setParts = append(setParts, fmt.Sprintf("is_default = $%d", nextIdx()))
		args = append(args, *req.IsDefault)
	}

	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())

	return strings.Join(setParts, ", "), args
}

// Delete removes an address. When the default row is deleted the newest
// remaining address, if any, is promoted so the invariant of "a default
// exists whenever any address exists" holds.
func (r *AddressRepo) Delete(ctx context.Context, userID, addressID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUserIDRequired
	}

	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		var wasDefault bool
		if err := tx.QueryRow(ctx,
			`DELETE FROM addresses WHERE user_id = $1 AND id = $2 RETURNING is_default`,
			userID, addressID,
		).Scan(&wasDefault); err != nil {
			return err
		}

		if !wasDefault {
			return nil
		}
		_, err := tx.Exec(ctx, `
			UPDATE addresses SET is_default = TRUE
			WHERE id = (
				SELECT id FROM addresses WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1
			)`, userID)
		return err
	}})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAddressNotFound
		}
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}

const addressListQuery = `
	SELECT id, user_id, label, street, city, region, postal_code, country, is_default, created_at, updated_at
	FROM addresses
	WHERE user_id = $1
	ORDER BY is_default DESC, created_at DESC`
