package personalize

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/chrisdamba/foodautomat/internal/repositories"
	"github.com/chrisdamba/foodautomat/internal/schedule"
	"github.com/lucsky/cuid"
	"github.com/samber/lo"
)

const (
	maxFavoriteItems      = 10
	maxFavoriteCategories = 5
	maxPreferredSlots     = 3
	maxRecommendations    = 10
	maxPersonalizedOffers = 5

	vegetarianRatioThreshold = 0.7
	veganRatioThreshold      = 0.5

	// score weights for the recommendation signal sources
	scoreCategoryMatch  = 0.7
	scorePriceBandMatch = 0.3
	scoreFavoriteCat    = 0.7
	scoreDietaryMatch   = 0.8
	scoreTimeSlotMatch  = 0.9
	similarityThreshold = 0.3
)

// Engine derives user preference profiles from order history and scores
// items and offers against them.
type Engine struct {
	orders   repositories.OrderRepository
	items    repositories.MenuItemRepository
	profiles repositories.ProfileRepository
	rules    repositories.OfferRuleRepository
	resolver *schedule.Resolver
	now      func() time.Time
}

func NewEngine(
	orders repositories.OrderRepository,
	items repositories.MenuItemRepository,
	profiles repositories.ProfileRepository,
	rules repositories.OfferRuleRepository,
	resolver *schedule.Resolver,
) *Engine {
	return &Engine{
		orders:   orders,
		items:    items,
		profiles: profiles,
		rules:    rules,
		resolver: resolver,
		now:      time.Now,
	}
}

// WithClock fixes the engine's notion of "now". Tests use this to pin
// frequency and time-slot computations.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// AnalyzeBehavior recomputes the user's preference profile from scratch
// over all delivered orders and stores it, replacing any previous profile.
// A user with no delivered orders gets an empty default profile.
func (e *Engine) AnalyzeBehavior(ctx context.Context, userID string) (*models.UserPreferenceProfile, error) {
	orders, err := e.orders.GetDeliveredByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders for user %s: %w", userID, err)
	}

	profile := &models.UserPreferenceProfile{
		ID:                  cuid.New(),
		UserID:              userID,
		FavoriteItemIDs:     []string{},
		FavoriteCategoryIDs: []string{},
		PreferredTimeSlots:  []models.ScheduleType{},
		OrderFrequency:      models.FrequencyLow,
		AnalyzedAt:          e.now(),
	}

	if len(orders) > 0 {
		e.fillFromOrders(ctx, profile, orders)
	}

	if err := e.profiles.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile for user %s: %w", userID, err)
	}
	return profile, nil
}

// fillFromOrders computes every derived profile field in one pass over the
// delivered orders (most recent first).
func (e *Engine) fillFromOrders(ctx context.Context, profile *models.UserPreferenceProfile, orders []*models.Order) {
	catalog, err := e.items.GetAll(ctx)
	if err != nil {
		// dietary flags degrade to false without the catalog; everything
		// else still computes
		log.Printf("catalog unavailable during analysis for user %s: %v", profile.UserID, err)
		catalog = map[string]*models.MenuItem{}
	}

	itemQty := make(map[string]int)
	categoryQty := make(map[string]int)
	slotCount := make(map[models.ScheduleType]int)
	totalSpent := 0.0
	lineItems, vegetarianLines, veganLines := 0, 0, 0
	oldest := orders[0].OrderPlacedAt
	newest := orders[0].OrderPlacedAt

	for _, order := range orders {
		totalSpent += order.TotalAmount
		if order.OrderPlacedAt.Before(oldest) {
			oldest = order.OrderPlacedAt
		}
		if order.OrderPlacedAt.After(newest) {
			newest = order.OrderPlacedAt
		}
		slotCount[models.TimeSlotForHour(order.OrderPlacedAt.Hour())]++

		for _, line := range order.Items {
			itemQty[line.ItemID] += line.Quantity
			categoryQty[line.CategoryID] += line.Quantity
			lineItems++
			if item, ok := catalog[line.ItemID]; ok {
				if item.IsVegetarian {
					vegetarianLines++
				}
				if item.IsVegan {
					veganLines++
				}
			}
		}
	}

	profile.TotalOrders = len(orders)
	profile.TotalSpent = totalSpent
	profile.AvgOrderValue = totalSpent / float64(len(orders))
	profile.LastOrderAt = &newest
	profile.FavoriteItemIDs = topKeys(itemQty, maxFavoriteItems)
	profile.FavoriteCategoryIDs = topKeys(categoryQty, maxFavoriteCategories)
	profile.PreferredTimeSlots = topSlots(slotCount, maxPreferredSlots)
	profile.OrderFrequency = frequencyBucket(len(orders), e.now().Sub(oldest))

	if lineItems > 0 {
		profile.IsVegetarian = float64(vegetarianLines)/float64(lineItems) > vegetarianRatioThreshold
		profile.IsVegan = float64(veganLines)/float64(lineItems) > veganRatioThreshold
	}
}

// frequencyBucket classifies orders-per-month: low under 2, medium under 6,
// high otherwise.
func frequencyBucket(orderCount int, sinceOldest time.Duration) models.OrderFrequency {
	days := sinceOldest.Hours() / 24
	if days < 1 {
		days = 1
	}
	perMonth := float64(orderCount) / days * 30
	switch {
	case perMonth < 2:
		return models.FrequencyLow
	case perMonth < 6:
		return models.FrequencyMedium
	default:
		return models.FrequencyHigh
	}
}

// Profile returns the stored profile, computing it on first use.
func (e *Engine) Profile(ctx context.Context, userID string) (*models.UserPreferenceProfile, error) {
	profile, err := e.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return e.AnalyzeBehavior(ctx, userID)
	}
	return profile, nil
}

// Facts derives the attributes audience filters and offer conditions
// compare against. Implements notify.FactsProvider.
func (e *Engine) Facts(ctx context.Context, userID string) (*models.UserFacts, error) {
	profile, err := e.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.UserFacts{
		UserID:              userID,
		DeliveredOrders:     profile.TotalOrders,
		TotalSpent:          profile.TotalSpent,
		AvgOrderValue:       profile.AvgOrderValue,
		OrderFrequency:      profile.OrderFrequency,
		LoyaltyTier:         LoyaltyTierFor(profile.TotalOrders, profile.TotalSpent),
		FavoriteCategoryIDs: profile.FavoriteCategoryIDs,
		LastOrderAt:         profile.LastOrderAt,
		IsNewUser:           profile.TotalOrders == 0,
	}, nil
}

// LoyaltyTierFor classifies lifetime order count and spend, checking the
// highest tier first; either threshold alone is sufficient.
func LoyaltyTierFor(totalOrders int, totalSpent float64) models.LoyaltyTier {
	switch {
	case totalOrders >= 50 || totalSpent >= 10000:
		return models.TierPlatinum
	case totalOrders >= 20 || totalSpent >= 5000:
		return models.TierGold
	case totalOrders >= 10 || totalSpent >= 2000:
		return models.TierSilver
	default:
		return models.TierBronze
	}
}

// Recommend scores the store's items against the user's profile from four
// independent signal sources, concatenates all candidates (a popular item
// can appear under several sources) and returns the top ten by score.
func (e *Engine) Recommend(ctx context.Context, userID, storeID string) ([]models.Recommendation, error) {
	profile, err := e.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.Empty() {
		return []models.Recommendation{}, nil
	}

	storeItems, err := e.items.GetByStoreID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items for store %s: %w", storeID, err)
	}
	catalog, err := e.items.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var recs []models.Recommendation
	recs = append(recs, e.similarToFavorites(profile, storeItems, catalog)...)
	recs = append(recs, e.fromFavoriteCategories(profile, storeItems)...)
	recs = append(recs, e.matchingDietaryFlags(profile, storeItems)...)
	recs = append(recs, e.fromCurrentTimeSlot(ctx, profile, storeID, catalog)...)

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs, nil
}

func (e *Engine) similarToFavorites(profile *models.UserPreferenceProfile, storeItems []*models.MenuItem, catalog map[string]*models.MenuItem) []models.Recommendation {
	favorites := lo.FilterMap(profile.FavoriteItemIDs, func(id string, _ int) (*models.MenuItem, bool) {
		item, ok := catalog[id]
		return item, ok
	})

	var recs []models.Recommendation
	for _, candidate := range storeItems {
		if !candidate.IsAvailable || lo.Contains(profile.FavoriteItemIDs, candidate.ID) {
			continue
		}
		best := 0.0
		for _, fav := range favorites {
			score := 0.0
			if candidate.CategoryID == fav.CategoryID {
				score += scoreCategoryMatch
			}
			if samePriceBand(candidate.Price, fav.Price) {
				score += scorePriceBandMatch
			}
			if score > best {
				best = score
			}
		}
		if best > similarityThreshold {
			recs = append(recs, models.Recommendation{
				Type:   "item",
				ID:     candidate.ID,
				Name:   candidate.Name,
				Score:  best,
				Reason: "Similar to items you order often",
			})
		}
	}
	return recs
}

// samePriceBand treats prices within 20% of each other as comparable.
func samePriceBand(a, b float64) bool {
	if b == 0 {
		return a == 0
	}
	return math.Abs(a-b)/b <= 0.2
}

func (e *Engine) fromFavoriteCategories(profile *models.UserPreferenceProfile, storeItems []*models.MenuItem) []models.Recommendation {
	var recs []models.Recommendation
	for _, item := range storeItems {
		if item.IsAvailable && lo.Contains(profile.FavoriteCategoryIDs, item.CategoryID) {
			recs = append(recs, models.Recommendation{
				Type:   "item",
				ID:     item.ID,
				Name:   item.Name,
				Score:  scoreFavoriteCat,
				Reason: "From a category you love",
			})
		}
	}
	return recs
}

func (e *Engine) matchingDietaryFlags(profile *models.UserPreferenceProfile, storeItems []*models.MenuItem) []models.Recommendation {
	if !profile.IsVegetarian && !profile.IsVegan {
		return nil
	}
	var recs []models.Recommendation
	for _, item := range storeItems {
		if !item.IsAvailable {
			continue
		}
		matches := (profile.IsVegan && item.IsVegan) ||
			(profile.IsVegetarian && !profile.IsVegan && item.IsVegetarian)
		if matches {
			recs = append(recs, models.Recommendation{
				Type:   "item",
				ID:     item.ID,
				Name:   item.Name,
				Score:  scoreDietaryMatch,
				Reason: "Fits your dietary preference",
			})
		}
	}
	return recs
}

func (e *Engine) fromCurrentTimeSlot(ctx context.Context, profile *models.UserPreferenceProfile, storeID string, catalog map[string]*models.MenuItem) []models.Recommendation {
	current, err := e.resolver.Current(ctx, storeID, e.now())
	if err != nil {
		log.Printf("current schedule unavailable for store %s: %v", storeID, err)
		return nil
	}
	if current == nil || !lo.Contains(profile.PreferredTimeSlots, current.Type) {
		return nil
	}
	var recs []models.Recommendation
	for _, entry := range current.Items {
		item, ok := catalog[entry.ItemID]
		if !ok || !item.IsAvailable {
			continue
		}
		recs = append(recs, models.Recommendation{
			Type:   "item",
			ID:     item.ID,
			Name:   item.Name,
			Score:  scoreTimeSlotMatch,
			Reason: fmt.Sprintf("On the %s menu right now", current.Type),
		})
	}
	return recs
}

// PersonalizedOffers filters the store's active offers to those whose
// conditions reference signals present in the user's profile, scoring each
// matched condition, and returns the top five with a reason string.
func (e *Engine) PersonalizedOffers(ctx context.Context, userID, storeID string) ([]models.Recommendation, error) {
	profile, err := e.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	rules, err := e.rules.GetActiveByStoreID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load offer rules for store %s: %w", storeID, err)
	}

	var recs []models.Recommendation
	for _, rule := range rules {
		if rule.Exhausted() {
			continue
		}
		score, reason := e.offerRelevance(rule, profile)
		if score <= 0 {
			continue
		}
		recs = append(recs, models.Recommendation{
			Type:   "offer",
			ID:     rule.ID,
			Name:   rule.Name,
			Score:  score,
			Reason: reason,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > maxPersonalizedOffers {
		recs = recs[:maxPersonalizedOffers]
	}
	return recs, nil
}

func (e *Engine) offerRelevance(rule *models.OfferRule, profile *models.UserPreferenceProfile) (float64, string) {
	score := 0.0
	reason := ""
	for _, condition := range rule.Conditions {
		switch c := condition.(type) {
		case models.UserFrequencyIs:
			if profile.OrderFrequency == c.Frequency {
				score += 0.5
				reason = "Matches how often you order"
			}
		case models.OrderAmountAbove:
			// within reach when the user's average order is at least 80%
			// of the threshold
			if profile.AvgOrderValue >= 0.8*c.Amount {
				score += 0.4
				reason = "Close to your usual order value"
			}
		case models.NewUser:
			if c.Required && profile.TotalOrders == 0 {
				score += 0.6
				reason = "A welcome offer for you"
			}
		case models.LoyaltyTierIs:
			if LoyaltyTierFor(profile.TotalOrders, profile.TotalSpent) == c.Tier {
				score += 0.5
				reason = fmt.Sprintf("Exclusive to %s members", c.Tier)
			}
		}
	}
	return score, reason
}

// RefreshRecentlyActive recomputes profiles for every user with a delivered
// order inside the window. Returns how many profiles were rebuilt.
func (e *Engine) RefreshRecentlyActive(ctx context.Context, window time.Duration) (int, error) {
	since := e.now().Add(-window)
	userIDs, err := e.orders.UsersWithDeliveredSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("failed to list recently active users: %w", err)
	}
	refreshed := 0
	for _, userID := range userIDs {
		if _, err := e.AnalyzeBehavior(ctx, userID); err != nil {
			// one user's failure must not stop the sweep
			log.Printf("profile refresh for user %s failed: %v", userID, err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

// topKeys returns the n highest-count keys, ties broken by key for
// deterministic output.
func topKeys(counts map[string]int, n int) []string {
	keys := lo.Keys(counts)
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func topSlots(counts map[models.ScheduleType]int, n int) []models.ScheduleType {
	slots := lo.Keys(counts)
	sort.Slice(slots, func(i, j int) bool {
		if counts[slots[i]] != counts[slots[j]] {
			return counts[slots[i]] > counts[slots[j]]
		}
		return slots[i] < slots[j]
	})
	if len(slots) > n {
		slots = slots[:n]
	}
	return slots
}
