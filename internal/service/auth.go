// Package service provides business logic for account and
// authentication use cases.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/authcore/authcore/internal/apperr"
	"github.com/authcore/authcore/internal/cache"
	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/token"
)

// CredentialStore is the persistence capability the auth service
// depends on. Satisfied by *repository.Repository; substituted with a
// fake in tests.
type CredentialStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) (bool, error)
	GetUserByID(ctx context.Context, id string) (*model.Profile, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	HasRole(ctx context.Context, userID, roleName string) (bool, error)
}

// PasswordHasher is the one-way hashing capability.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenService is the bearer-token capability.
type TokenService interface {
	Issue(userID, email string) (string, error)
	Verify(tokenString string) (*token.Claims, error)
}

// ProfileCache is the cache-aside capability for the authenticate path.
type ProfileCache interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	SetProfile(ctx context.Context, profile *model.Profile) error
	DeleteProfile(ctx context.Context, userID string) error
}

// AuthService orchestrates the credential store, password hasher, and
// token service. All collaborators are injected at construction.
type AuthService struct {
	store  CredentialStore
	hasher PasswordHasher
	tokens TokenService
	cache  ProfileCache
	logger *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(store CredentialStore, hasher PasswordHasher, tokens TokenService, profileCache ProfileCache, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		cache:  profileCache,
		logger: logger,
	}
}

// SignUp hashes the password and creates the account. Validation
// failures pass through unchanged; unexpected failures are logged with
// detail here and surfaced as a generic storage error.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*model.Profile, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("password hashing failed", slog.String("error", err.Error()))
		return nil, apperr.Storage("could not create user", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			return nil, err
		}
		s.logger.Error("user creation failed",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, apperr.Storage("could not create user", err)
	}

	return user.Profile(), nil
}

// SignIn verifies credentials and issues a bearer token. Unknown email
// and wrong password are indistinguishable to the caller; the log line
// keeps the distinction.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			s.logger.Info("sign-in rejected",
				slog.String("reason", "unknown_email"),
			)
			return "", apperr.Authentication("invalid email or password")
		}
		s.logger.Error("sign-in lookup failed", slog.String("error", err.Error()))
		return "", apperr.Storage("could not sign in", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Info("sign-in rejected",
			slog.String("reason", "wrong_password"),
			slog.String("user_id", user.ID),
		)
		return "", apperr.Authentication("invalid email or password")
	}

	tok, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		s.logger.Error("token issuance failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return "", apperr.Storage("could not sign in", err)
	}

	return tok, nil
}

// Authenticate verifies a bearer token and confirms the bound user
// still exists, returning the user id. A deleted user's still-valid
// token is rejected.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (string, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return "", err
	}

	profile, err := s.cache.GetProfile(ctx, claims.UserID)
	if err == nil {
		return profile.ID, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("profile cache read failed", slog.String("error", err.Error()))
	}

	profile, err = s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			s.logger.Info("token rejected",
				slog.String("reason", "user_deleted"),
				slog.String("user_id", claims.UserID),
			)
			return "", apperr.Authentication("invalid token")
		}
		s.logger.Error("token user lookup failed",
			slog.String("user_id", claims.UserID),
			slog.String("error", err.Error()),
		)
		return "", apperr.Storage("could not authenticate", err)
	}

	if err := s.cache.SetProfile(ctx, profile); err != nil {
		s.logger.Warn("profile cache write failed", slog.String("error", err.Error()))
	}

	return profile.ID, nil
}

// CheckIsAdmin reports whether the user holds the ADMIN role. An
// unknown user id propagates as not-found rather than reading as a
// non-admin.
func (s *AuthService) CheckIsAdmin(ctx context.Context, userID string) (bool, error) {
	isAdmin, err := s.store.HasRole(ctx, userID, model.RoleAdmin)
	if err != nil {
		kind := apperr.KindOf(err)
		if kind == apperr.KindNotFound {
			return false, err
		}
		s.logger.Error("admin check failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return false, apperr.Storage("could not check admin privilege", err)
	}
	return isAdmin, nil
}

// Destroy deletes the account and invalidates its cached profile.
// Deleting an absent user still reports true. A failed cache
// invalidation is an error: a stale cached profile would keep the
// deleted user's tokens valid, so the caller must see the failure and
// retry (the row delete is idempotent).
func (s *AuthService) Destroy(ctx context.Context, userID string) (bool, error) {
	ok, err := s.store.DeleteUser(ctx, userID)
	if err != nil {
		s.logger.Error("user deletion failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return false, apperr.Storage("could not delete user", err)
	}

	if err := s.cache.DeleteProfile(ctx, userID); err != nil {
		s.logger.Error("profile cache invalidation failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return false, apperr.Storage("could not invalidate cached profile", err)
	}

	return ok, nil
}
