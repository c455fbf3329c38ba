// Package auth provides password hashing for stored credentials.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost bounds for the bcrypt cost factor.
const (
	MinCost     = 10
	MaxCost     = 14
	DefaultCost = 12
)

// Hasher hashes and verifies passwords with bcrypt.
// The zero value is not usable; construct with NewHasher.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the given cost factor.
// Out-of-range costs are clamped to the supported bounds.
func NewHasher(cost int) *Hasher {
	if cost < MinCost {
		cost = MinCost
	}
	if cost > MaxCost {
		cost = MaxCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted bcrypt hash of the plaintext password.
// The salt is random per call, so hashing the same password twice
// yields different outputs.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the plaintext password matches the stored hash.
// A malformed hash verifies as false rather than erroring; bcrypt's
// comparison is constant-time over the digest.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
