package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/authcore/authcore/internal/model"
)

const (
	// profileKeyPrefix is the Redis key prefix for cached user profiles.
	profileKeyPrefix = "user:profile:"

	// ProfileTTL bounds how long a profile is served from cache. Kept
	// short because token validation must notice a deleted user; the
	// delete path also invalidates explicitly.
	ProfileTTL = 5 * time.Minute
)

// ErrCacheMiss indicates the requested entry is not in cache.
var ErrCacheMiss = errors.New("cache miss")

// GetProfile retrieves a cached user profile by user id.
// Returns ErrCacheMiss if not found; a corrupted entry is treated as
// a miss.
func (c *Cache) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	key := profileKeyPrefix + userID

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, ErrCacheMiss
	}

	var profile model.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, ErrCacheMiss
	}

	return &profile, nil
}

// SetProfile caches a user profile.
func (c *Cache) SetProfile(ctx context.Context, profile *model.Profile) error {
	key := profileKeyPrefix + profile.ID

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	return c.client.Set(ctx, key, data, ProfileTTL).Err()
}

// DeleteProfile removes a cached profile. Called when the user is
// destroyed so a still-unexpired token cannot resolve to a stale entry.
func (c *Cache) DeleteProfile(ctx context.Context, userID string) error {
	return c.client.Del(ctx, profileKeyPrefix+userID).Err()
}
