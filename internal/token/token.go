// Package token issues and verifies signed bearer tokens.
package token

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/authcore/authcore/internal/apperr"
)

// Claims is the payload embedded in issued tokens: the user identity
// plus the registered issued-at/expiry claims.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Service signs and verifies HS256 tokens with a process-wide key.
// The key is immutable for the lifetime of the service; rotating it
// invalidates all outstanding tokens.
type Service struct {
	key    []byte
	expiry time.Duration
	logger *slog.Logger

	// now is the clock used at issuance. Overridden in tests.
	now func() time.Time
}

// NewService creates a token Service with the given signing key and
// token lifetime.
func NewService(key string, expiry time.Duration, logger *slog.Logger) *Service {
	return &Service{
		key:    []byte(key),
		expiry: expiry,
		logger: logger,
		now:    time.Now,
	}
}

// Issue signs a token binding the user id and email, expiring
// expiry from now.
func (s *Service) Issue(userID, email string) (string, error) {
	return s.IssueAt(userID, email, s.now())
}

// IssueAt signs a token as of the given instant. Expiry is always
// issuance plus the configured lifetime.
func (s *Service) IssueAt(userID, email string, now time.Time) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims.
// All failures surface as the same invalid-token error so callers
// cannot distinguish expiry from tampering; the specific cause is
// logged at debug level only.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	})
	if err != nil {
		s.logger.Debug("token rejected",
			slog.String("reason", rejectionReason(err)),
		)
		return nil, apperr.InvalidToken("invalid token")
	}

	if !tok.Valid {
		s.logger.Debug("token rejected", slog.String("reason", "invalid"))
		return nil, apperr.InvalidToken("invalid token")
	}

	return claims, nil
}

// rejectionReason maps a parse error to a coarse internal label.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature_mismatch"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}
