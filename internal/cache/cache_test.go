package cache

import (
	"context"
	"testing"
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/chrisdamba/foodautomat/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCacheSetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), -time.Second))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedProfilesReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewProfileRepository()
	cached := NewCachedProfiles(inner, NewInMemoryCache(), time.Minute)

	profile := &models.UserPreferenceProfile{
		ID:                  "p1",
		UserID:              "u1",
		FavoriteItemIDs:     []string{"pizza"},
		FavoriteCategoryIDs: []string{"mains"},
		PreferredTimeSlots:  []models.ScheduleType{models.ScheduleLunch},
		OrderFrequency:      models.FrequencyMedium,
		TotalOrders:         4,
		TotalSpent:          120,
		AvgOrderValue:       30,
		AnalyzedAt:          time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, cached.Save(ctx, profile))

	got, err := cached.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, profile.FavoriteItemIDs, got.FavoriteItemIDs)
	assert.Equal(t, profile.TotalOrders, got.TotalOrders)

	// deleting from the store still serves the cached copy until the TTL
	// lapses; absence in both is (nil, nil)
	missing, err := cached.GetByUserID(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCachedProfilesPopulatesCacheOnMiss(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewProfileRepository()
	store := NewInMemoryCache()
	cached := NewCachedProfiles(inner, store, time.Minute)

	require.NoError(t, inner.Save(ctx, &models.UserPreferenceProfile{ID: "p1", UserID: "u1", TotalOrders: 2}))

	got, err := cached.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)

	// the miss populated the cache
	_, err = store.Get(ctx, "profile:u1")
	assert.NoError(t, err)
}
