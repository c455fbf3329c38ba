package repository

import (
	"context"
	"errors"
	"regexp"

	"github.com/jackc/pgx/v5"

	"github.com/authcore/authcore/internal/apperr"
	"github.com/authcore/authcore/internal/model"
)

// emailRegex is a deliberately loose shape check; real validation is
// deliverability, which is out of scope.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// CreateUser inserts a new user into the database.
// Missing or malformed fields and duplicate emails surface as
// validation errors; anything else is a storage failure.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	if user.Email == "" || user.PasswordHash == "" {
		return apperr.Validation("email and password are required")
	}
	if !emailRegex.MatchString(user.Email) {
		return apperr.Validation("email is malformed")
	}

	query := `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Validation("email already exists")
		}
		return apperr.Storage("failed to create user", err)
	}

	return nil
}

// DeleteUser removes a user by id. The contract is deliberately
// lenient: deleting a user that does not exist is not an error, and
// the call reports true either way.
func (r *Repository) DeleteUser(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM users WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return false, apperr.Storage("failed to delete user", err)
	}

	return true, nil
}

// GetUserByID retrieves the non-sensitive projection of a user.
// The password hash is never selected on this path.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.Profile, error) {
	query := `
		SELECT id, email, created_at
		FROM users
		WHERE id = $1
	`

	var profile model.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.Email,
		&profile.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Storage("failed to get user by id", err)
	}

	return &profile, nil
}

// GetUserByEmail retrieves the full user record including the password
// hash, for credential verification only. Nothing outside the auth
// service may receive this shape.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Storage("failed to get user by email", err)
	}

	return &user, nil
}
