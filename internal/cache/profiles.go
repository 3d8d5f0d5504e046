package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/chrisdamba/foodautomat/internal/repositories"
)

// CachedProfiles is a read-through decorator over a ProfileRepository.
// Profiles change only when behaviour analysis runs, so a short TTL keeps
// hot readers (offer evaluation, audience selection) off the database.
type CachedProfiles struct {
	inner repositories.ProfileRepository
	cache Cache
	ttl   time.Duration
}

func NewCachedProfiles(inner repositories.ProfileRepository, cache Cache, ttl time.Duration) *CachedProfiles {
	return &CachedProfiles{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachedProfiles) Save(ctx context.Context, profile *models.UserPreferenceProfile) error {
	if err := c.inner.Save(ctx, profile); err != nil {
		return err
	}
	if err := SetJSON(ctx, c.cache, profileKey(profile.UserID), profile, c.ttl); err != nil {
		// the store is authoritative; a cache write failure is not fatal
		log.Printf("profile cache write for user %s failed: %v", profile.UserID, err)
	}
	return nil
}

func (c *CachedProfiles) GetByUserID(ctx context.Context, userID string) (*models.UserPreferenceProfile, error) {
	var cached models.UserPreferenceProfile
	err := GetJSON(ctx, c.cache, profileKey(userID), &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, ErrNotFound) {
		log.Printf("profile cache read for user %s failed: %v", userID, err)
	}

	profile, err := c.inner.GetByUserID(ctx, userID)
	if err != nil || profile == nil {
		return profile, err
	}
	if err := SetJSON(ctx, c.cache, profileKey(userID), profile, c.ttl); err != nil {
		log.Printf("profile cache write for user %s failed: %v", userID, err)
	}
	return profile, nil
}

func profileKey(userID string) string {
	return "profile:" + userID
}
