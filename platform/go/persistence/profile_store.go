package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ProfilesTable        = "profiles"
	UserRolesTable       = "user_roles"
	LineAssignmentsTable = "line_assignments"
)

// Profile is a row of the profiles table linking an auth identity to a factory.
type Profile struct {
	UserID    string     `db:"user_id" json:"userId"`
	Email     string     `db:"email" json:"email"`
	FullName  string     `db:"full_name" json:"fullName"`
	FactoryID *uuid.UUID `db:"factory_id" json:"factoryId,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}

// ErrProfileNotFound indicates a missing profile record.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore exposes persistence helpers for profiles, roles and line assignments.
type ProfileStore struct {
	pool *pgxpool.Pool
}

// NewProfileStore returns a store bound to the pool.
func NewProfileStore(pool *pgxpool.Pool) (*ProfileStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &ProfileStore{pool: pool}, nil
}

const profileColumns = `user_id, email, full_name, factory_id, created_at, updated_at`

// EnsureProfile creates the profile on first sight of an identity and returns the stored row.
// An existing row keeps its factory; only the email is refreshed.
func (s *ProfileStore) EnsureProfile(ctx context.Context, userID, email, fullName string) (Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, errors.New("user id is required")
	}
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
        INSERT INTO %s (user_id, email, full_name)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE SET email = EXCLUDED.email
        RETURNING %s
    `, ProfilesTable, profileColumns), userID, strings.TrimSpace(email), strings.TrimSpace(fullName))

	profile, err := scanProfile(row)
	if err != nil {
		return Profile{}, fmt.Errorf("ensure profile: %w", err)
	}
	return profile, nil
}

// GetProfile loads a profile by user id.
func (s *ProfileStore) GetProfile(ctx context.Context, userID string) (Profile, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1`, profileColumns, ProfilesTable), userID)
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// AssignFactory links a profile to a factory.
func (s *ProfileStore) AssignFactory(ctx context.Context, userID string, factoryID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`UPDATE %s SET factory_id = $2, updated_at = NOW() WHERE user_id = $1`, ProfilesTable),
		userID, factoryID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrFactoryNotFound
		}
		return fmt.Errorf("assign factory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// ListRoles returns the role names held by a user.
func (s *ProfileStore) ListRoles(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT role FROM %s WHERE user_id = $1 ORDER BY role`, UserRolesTable), userID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	roles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan roles: %w", err)
	}
	return roles, nil
}

// GrantRole records a role for a user within a factory. Granting an existing role is a no-op.
func (s *ProfileStore) GrantRole(ctx context.Context, userID, role string, factoryID *uuid.UUID) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
        INSERT INTO %s (user_id, role, factory_id) VALUES ($1, $2, $3)
        ON CONFLICT (user_id, role) DO NOTHING
    `, UserRolesTable), userID, role, factoryID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("grant role: %w", err)
	}
	return nil
}

// AssignLine records a production line assignment.
func (s *ProfileStore) AssignLine(ctx context.Context, userID, lineID string, factoryID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
        INSERT INTO %s (user_id, line_id, factory_id) VALUES ($1, $2, $3)
        ON CONFLICT (user_id, line_id) DO NOTHING
    `, LineAssignmentsTable), userID, lineID, factoryID)
	if err != nil {
		return fmt.Errorf("assign line: %w", err)
	}
	return nil
}

// RemoveUserAccess deletes the user's roles and line assignments and detaches the profile
// from its factory in one transaction.
func (s *ProfileStore) RemoveUserAccess(ctx context.Context, userID string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, UserRolesTable), userID); err != nil {
		return fmt.Errorf("delete roles: %w", err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, LineAssignmentsTable), userID); err != nil {
		return fmt.Errorf("delete line assignments: %w", err)
	}
	tag, err := tx.Exec(ctx, fmt.Sprintf(`UPDATE %s SET factory_id = NULL, updated_at = NOW() WHERE user_id = $1`, ProfilesTable), userID)
	if err != nil {
		return fmt.Errorf("detach profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return tx.Commit(ctx)
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.UserID, &p.Email, &p.FullName, &p.FactoryID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
