package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pensionadvisor/internal/identity"
)

// IdentityRepo implements identity.Lookup against the users and
// advisor_clients tables.
type IdentityRepo struct {
	Pool *pgxpool.Pool
}

// User implements identity.Lookup.
func (s *IdentityRepo) User(ctx context.Context, id int) (identity.User, bool, error) {
	row := s.Pool.QueryRow(ctx, `SELECT id, full_name, email, role FROM users WHERE id = $1`, id)

	var u identity.User
	var role string
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &role); err != nil {
		if err == pgx.ErrNoRows {
			return identity.User{}, false, nil
		}
		return identity.User{}, false, fmt.Errorf("lookup user %d: %w", id, err)
	}
	u.Role = identity.Role(role)
	return u, true, nil
}

// IsClient implements identity.Lookup.
func (s *IdentityRepo) IsClient(ctx context.Context, advisorID, residentID int) (bool, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT 1 FROM advisor_clients WHERE advisor_id = $1 AND resident_id = $2`,
		advisorID, residentID)

	var one int
	if err := row.Scan(&one); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("lookup advisor client (%d,%d): %w", advisorID, residentID, err)
	}
	return true, nil
}
