package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/authcore/authcore/internal/apperr"
	"github.com/authcore/authcore/internal/model"
)

// HasRole reports whether the user's role-assignment set contains the
// named role. A nonexistent user or role name is a not-found error,
// distinct from an existing user simply lacking the role.
func (r *Repository) HasRole(ctx context.Context, userID, roleName string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID,
	).Scan(&exists)
	if err != nil {
		return false, apperr.Storage("failed to check user existence", err)
	}
	if !exists {
		return false, apperr.NotFound("user not found")
	}

	role, err := r.getRoleByName(ctx, roleName)
	if err != nil {
		return false, err
	}

	names, err := r.getUserRoleNames(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, name := range names {
		if name == role.Name {
			return true, nil
		}
	}
	return false, nil
}

// getRoleByName looks a role up by its exact name.
func (r *Repository) getRoleByName(ctx context.Context, name string) (*model.Role, error) {
	query := `SELECT id, name, created_at FROM roles WHERE name = $1`

	var role model.Role
	err := r.pool.QueryRow(ctx, query, name).Scan(&role.ID, &role.Name, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("role not found")
		}
		return nil, apperr.Storage("failed to look up role", err)
	}

	return &role, nil
}

// getUserRoleNames returns all role names assigned to the user.
func (r *Repository) getUserRoleNames(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT COALESCE(array_agg(roles.name), '{}')
		FROM user_roles
		JOIN roles ON roles.id = user_roles.role_id
		WHERE user_roles.user_id = $1
	`

	var names []string
	if err := r.pool.QueryRow(ctx, query, userID).Scan(pq.Array(&names)); err != nil {
		return nil, apperr.Storage("failed to get user roles", err)
	}

	return names, nil
}

// AssignRole grants the named role to a user. Assigning an already
// held role is a no-op.
func (r *Repository) AssignRole(ctx context.Context, userID, roleName string) error {
	role, err := r.getRoleByName(ctx, roleName)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, query, userID, role.ID); err != nil {
		return apperr.Storage("failed to assign role", err)
	}

	return nil
}
