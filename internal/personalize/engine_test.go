package personalize

import (
	"context"
	"testing"
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/chrisdamba/foodautomat/internal/repositories/memory"
	"github.com/chrisdamba/foodautomat/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	orders   *memory.OrderRepository
	items    *memory.MenuItemRepository
	profiles *memory.ProfileRepository
	rules    *memory.OfferRuleRepository
	engine   *Engine
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		orders:   memory.NewOrderRepository(),
		items:    memory.NewMenuItemRepository(),
		profiles: memory.NewProfileRepository(),
		rules:    memory.NewOfferRuleRepository(),
	}
	resolver := schedule.NewResolver(memory.NewMenuScheduleRepository())
	f.engine = NewEngine(f.orders, f.items, f.profiles, f.rules, resolver).
		WithClock(func() time.Time { return now })
	return f
}

func deliveredOrder(userID, storeID string, placedAt time.Time, items ...models.OrderItem) *models.Order {
	total := 0.0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return &models.Order{
		ID:            userID + placedAt.Format("20060102150405"),
		CustomerID:    userID,
		StoreID:       storeID,
		Items:         items,
		TotalAmount:   total,
		Status:        models.OrderStatusDelivered,
		OrderPlacedAt: placedAt,
		DeliveredAt:   placedAt.Add(40 * time.Minute),
	}
}

func TestAnalyzeBehaviorEmptyHistory(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)

	profile, err := f.engine.AnalyzeBehavior(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, profile.Empty())
	assert.Equal(t, models.FrequencyLow, profile.OrderFrequency)
	assert.Empty(t, profile.FavoriteItemIDs)
	assert.Nil(t, profile.LastOrderAt)

	// the empty profile is persisted, not recomputed silently
	stored, err := f.profiles.GetByUserID(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestAnalyzeBehaviorDerivesFavoritesAndSpend(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	ctx := context.Background()

	// pizza ordered twice at lunch, salad once at dinner
	require.NoError(t, f.orders.Create(ctx, deliveredOrder("u1", "s1", now.AddDate(0, 0, -20).Add(1*time.Hour),
		models.OrderItem{ItemID: "pizza", CategoryID: "mains", Quantity: 2, Price: 10})))
	require.NoError(t, f.orders.Create(ctx, deliveredOrder("u1", "s1", now.AddDate(0, 0, -10),
		models.OrderItem{ItemID: "pizza", CategoryID: "mains", Quantity: 1, Price: 10})))
	require.NoError(t, f.orders.Create(ctx, deliveredOrder("u1", "s1", now.AddDate(0, 0, -5).Add(8*time.Hour),
		models.OrderItem{ItemID: "salad", CategoryID: "salads", Quantity: 1, Price: 8})))

	profile, err := f.engine.AnalyzeBehavior(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, profile.TotalOrders)
	assert.InDelta(t, 38.0, profile.TotalSpent, 0.001)
	assert.Equal(t, []string{"pizza", "salad"}, profile.FavoriteItemIDs)
	assert.Equal(t, []string{"mains", "salads"}, profile.FavoriteCategoryIDs)
	require.NotNil(t, profile.LastOrderAt)
	// 3 orders over ~20 days is medium frequency
	assert.Equal(t, models.FrequencyMedium, profile.OrderFrequency)
}

func TestAnalyzeBehaviorDietaryFlags(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	ctx := context.Background()

	require.NoError(t, f.items.Create(ctx, &models.MenuItem{ID: "falafel", StoreID: "s1", CategoryID: "mains", IsVegetarian: true, IsVegan: true, IsAvailable: true}))
	require.NoError(t, f.items.Create(ctx, &models.MenuItem{ID: "halloumi", StoreID: "s1", CategoryID: "mains", IsVegetarian: true, IsAvailable: true}))
	require.NoError(t, f.items.Create(ctx, &models.MenuItem{ID: "burger", StoreID: "s1", CategoryID: "mains", IsAvailable: true}))

	// 3 of 4 lines vegetarian, 2 of 4 vegan
	require.NoError(t, f.orders.Create(ctx, deliveredOrder("u1", "s1", now.AddDate(0, 0, -3),
		models.OrderItem{ItemID: "falafel", CategoryID: "mains", Quantity: 1, Price: 7},
		models.OrderItem{ItemID: "halloumi", CategoryID: "mains", Quantity: 1, Price: 8})))
	require.NoError(t, f.orders.Create(ctx, deliveredOrder("u1", "s1", now.AddDate(0, 0, -2),
		models.OrderItem{ItemID: "falafel", CategoryID: "mains", Quantity: 1, Price: 7},
		models.OrderItem{ItemID: "burger", CategoryID: "mains", Quantity: 1, Price: 11})))

	profile, err := f.engine.AnalyzeBehavior(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, profile.IsVegetarian)  // 0.75 > 0.7
	assert.False(t, profile.IsVegan)      // 0.5 is not strictly above 0.5
}

func TestLoyaltyTierFor(t *testing.T) {
	assert.Equal(t, models.TierBronze, LoyaltyTierFor(0, 0))
	assert.Equal(t, models.TierBronze, LoyaltyTierFor(9, 1999))
	assert.Equal(t, models.TierSilver, LoyaltyTierFor(10, 0))
	assert.Equal(t, models.TierSilver, LoyaltyTierFor(0, 2000))
	assert.Equal(t, models.TierGold, LoyaltyTierFor(20, 0))
	assert.Equal(t, models.TierGold, LoyaltyTierFor(0, 5000))
	assert.Equal(t, models.TierPlatinum, LoyaltyTierFor(55, 1000))
	assert.Equal(t, models.TierPlatinum, LoyaltyTierFor(1, 10000))
}

func TestFactsComputesOnFirstUse(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	ctx := context.Background()

	facts, err := f.engine.Facts(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, facts.IsNewUser)
	assert.Equal(t, models.TierBronze, facts.LoyaltyTier)
	assert.Zero(t, facts.DeliveredOrders)
}

func TestRecommendEmptyProfileReturnsNothing(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)

	recs, err := f.engine.Recommend(context.Background(), "u1", "s1")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommendScoresCategoryAndExcludesFavorites(t *testing.T) {
	now := time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC) // 03:00, no schedule active
	f := newFixture(now)
	ctx := context.Background()

	require.NoError(t, f.items.Create(ctx, &models.MenuItem{ID: "pizza", StoreID: "s1", Name: "Margherita", CategoryID: "mains", Price: 10, IsAvailable: true}))
	require.NoError(t, f.items.Create(ctx, &models.MenuItem{ID: "calzone", StoreID: "s1", Name: "Calzone", CategoryID: "mains", Price: 11, IsAvailable: true}))
	require.NoError(t, f.items.Create(ctx, &models.MenuItem{ID: "soldout", StoreID: "s1", Name: "Gone", CategoryID: "mains", Price: 10, IsAvailable: false}))

	require.NoError(t, f.orders.Create(ctx, deliveredOrder("u1", "s1", now.AddDate(0, 0, -4),
		models.OrderItem{ItemID: "pizza", CategoryID: "mains", Quantity: 1, Price: 10})))

	recs, err := f.engine.Recommend(ctx, "u1", "s1")
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
		assert.NotEqual(t, "soldout", r.ID)
	}
	// calzone appears via similarity (same category, same price band) and
	// again via the favorite-category source; the favorite itself is only
	// eligible through the category source
	assert.Contains(t, ids, "calzone")
	// similarity source scores category + price band = 1.0, so it sorts first
	assert.Equal(t, "calzone", recs[0].ID)
	assert.InDelta(t, 1.0, recs[0].Score, 0.001)
}

func TestPersonalizedOffersMatchProfileSignals(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	ctx := context.Background()

	// high-frequency history: 10 orders in the last month
	for day := 1; day <= 10; day++ {
		require.NoError(t, f.orders.Create(ctx, deliveredOrder("u1", "s1", now.AddDate(0, 0, -day),
			models.OrderItem{ItemID: "pizza", CategoryID: "mains", Quantity: 1, Price: 30})))
	}

	frequencyOffer := &models.OfferRule{
		ID: "freq", StoreID: "s1", Name: "Regulars special", Type: models.OfferTypeLoyalty,
		Conditions: []models.Condition{models.UserFrequencyIs{Frequency: models.FrequencyHigh}},
		Actions:    []models.Action{models.PercentageDiscount{Percent: 10}},
		Window:     models.TimeWindow{DaysOfWeek: models.AllWeek(), StartMinute: 0, EndMinute: 1439},
		IsActive:   true, Priority: 5,
	}
	newUserOffer := &models.OfferRule{
		ID: "welcome", StoreID: "s1", Name: "Welcome", Type: models.OfferTypeLoyalty,
		Conditions: []models.Condition{models.NewUser{Required: true}},
		Actions:    []models.Action{models.PercentageDiscount{Percent: 15}},
		Window:     models.TimeWindow{DaysOfWeek: models.AllWeek(), StartMinute: 0, EndMinute: 1439},
		IsActive:   true, Priority: 5,
	}
	require.NoError(t, f.rules.Create(ctx, frequencyOffer))
	require.NoError(t, f.rules.Create(ctx, newUserOffer))

	recs, err := f.engine.PersonalizedOffers(ctx, "u1", "s1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "freq", recs[0].ID)
	assert.Equal(t, "Matches how often you order", recs[0].Reason)
}

func TestRefreshRecentlyActive(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	ctx := context.Background()

	require.NoError(t, f.orders.Create(ctx, deliveredOrder("recent", "s1", now.AddDate(0, 0, -2),
		models.OrderItem{ItemID: "pizza", CategoryID: "mains", Quantity: 1, Price: 10})))
	require.NoError(t, f.orders.Create(ctx, deliveredOrder("stale", "s1", now.AddDate(0, 0, -60),
		models.OrderItem{ItemID: "pizza", CategoryID: "mains", Quantity: 1, Price: 10})))

	refreshed, err := f.engine.RefreshRecentlyActive(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)

	profile, err := f.profiles.GetByUserID(ctx, "recent")
	require.NoError(t, err)
	require.NotNil(t, profile)

	profile, err = f.profiles.GetByUserID(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestTopKeysDeterministicTieBreak(t *testing.T) {
	counts := map[string]int{"b": 2, "a": 2, "c": 5}
	assert.Equal(t, []string{"c", "a", "b"}, topKeys(counts, 3))
	assert.Equal(t, []string{"c"}, topKeys(counts, 1))
}
