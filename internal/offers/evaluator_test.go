package offers

import (
	"context"
	"testing"
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/chrisdamba/foodautomat/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allWeekWindow() models.TimeWindow {
	return models.TimeWindow{DaysOfWeek: models.AllWeek(), StartMinute: 0, EndMinute: 1439}
}

func activeRule(id, storeID string, priority int) *models.OfferRule {
	return &models.OfferRule{
		ID:       id,
		StoreID:  storeID,
		Name:     id,
		Type:     models.OfferTypeDiscount,
		Window:   allWeekWindow(),
		IsActive: true,
		Priority: priority,
	}
}

// Tuesday afternoon, a deliberately unremarkable instant.
var tuesday = time.Date(2025, 6, 3, 14, 0, 0, 0, time.UTC)

func TestEvaluateAmountThresholdWithFixedDiscount(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOfferRuleRepository()
	eval := NewEvaluator(repo)

	rule := activeRule("r1", "s1", 5)
	rule.Conditions = []models.Condition{models.OrderAmountAbove{Amount: 299}}
	rule.Actions = []models.Action{models.FixedAmountDiscount{Amount: 50}}
	require.NoError(t, repo.Create(ctx, rule))

	cart := models.Cart{StoreID: "s1", Subtotal: 300}
	result, err := eval.Evaluate(ctx, cart, nil, tuesday)
	require.NoError(t, err)
	require.True(t, result.IsEligible)
	require.Len(t, result.ApplicableOffers, 1)
	assert.Equal(t, 50.0, result.TotalDiscount)
	assert.Equal(t, []string{"r1 applied: you save 50.00"}, result.Messages)

	// subtotal exactly at the threshold does not qualify
	cart.Subtotal = 299
	result, err = eval.Evaluate(ctx, cart, nil, tuesday)
	require.NoError(t, err)
	assert.False(t, result.IsEligible)
	assert.Zero(t, result.TotalDiscount)
}

func TestEvaluateOrdersByPriorityAndSumsDiscounts(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOfferRuleRepository()
	eval := NewEvaluator(repo)

	low := activeRule("low", "s1", 5)
	low.Actions = []models.Action{models.PercentageDiscount{Percent: 10}}
	high := activeRule("high", "s1", 10)
	high.Actions = []models.Action{models.FixedAmountDiscount{Amount: 20}}
	require.NoError(t, repo.Create(ctx, low))
	require.NoError(t, repo.Create(ctx, high))

	cart := models.Cart{StoreID: "s1", Subtotal: 100}
	result, err := eval.Evaluate(ctx, cart, nil, tuesday)
	require.NoError(t, err)
	require.Len(t, result.ApplicableOffers, 2)
	assert.Equal(t, "high", result.ApplicableOffers[0].RuleID)
	assert.Equal(t, "low", result.ApplicableOffers[1].RuleID)
	assert.Equal(t, 30.0, result.TotalDiscount)
}

func TestEvaluateSkipsExhaustedRules(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOfferRuleRepository()
	eval := NewEvaluator(repo)

	maxUsage := 3
	rule := activeRule("capped", "s1", 5)
	rule.Actions = []models.Action{models.FixedAmountDiscount{Amount: 10}}
	rule.MaxUsage = &maxUsage
	rule.UsageCount = 3
	require.NoError(t, repo.Create(ctx, rule))

	cart := models.Cart{StoreID: "s1", Subtotal: 100}
	result, err := eval.Evaluate(ctx, cart, nil, tuesday)
	require.NoError(t, err)
	assert.False(t, result.IsEligible)
}

func TestEvaluateBuyOneGetOne(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOfferRuleRepository()
	eval := NewEvaluator(repo)

	rule := activeRule("bogo", "s1", 5)
	rule.Type = models.OfferTypeBogo
	rule.Actions = []models.Action{models.BuyOneGetOne{}}
	require.NoError(t, repo.Create(ctx, rule))

	cart := models.Cart{
		StoreID: "s1",
		Items: []models.CartItem{
			{ItemID: "i1", Quantity: 5, Price: 100},
			{ItemID: "i2", Quantity: 1, Price: 40},
		},
		Subtotal: 540,
	}
	result, err := eval.Evaluate(ctx, cart, nil, tuesday)
	require.NoError(t, err)
	require.True(t, result.IsEligible)
	// floor(5/2) = 2 free units; the qty-1 line contributes nothing
	assert.Equal(t, 200.0, result.TotalDiscount)
}

func TestEvaluateWeekendWindowGate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOfferRuleRepository()
	eval := NewEvaluator(repo)

	rule := activeRule("weekend20", "s1", 5)
	rule.Window = models.TimeWindow{
		DaysOfWeek:  []time.Weekday{time.Saturday, time.Sunday},
		StartMinute: 0,
		EndMinute:   1439,
	}
	rule.Actions = []models.Action{models.PercentageDiscount{Percent: 20}}
	require.NoError(t, repo.Create(ctx, rule))

	cart := models.Cart{StoreID: "s1", Subtotal: 100}

	saturday := time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC)
	result, err := eval.Evaluate(ctx, cart, nil, saturday)
	require.NoError(t, err)
	require.True(t, result.IsEligible)
	assert.Equal(t, 20.0, result.TotalDiscount)

	result, err = eval.Evaluate(ctx, cart, nil, tuesday)
	require.NoError(t, err)
	assert.False(t, result.IsEligible)
}

func TestEvaluateConditionsNeedingFactsFailClosed(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOfferRuleRepository()
	eval := NewEvaluator(repo)

	rule := activeRule("newbie", "s1", 5)
	rule.Conditions = []models.Condition{models.NewUser{Required: true}}
	rule.Actions = []models.Action{models.PercentageDiscount{Percent: 15}}
	require.NoError(t, repo.Create(ctx, rule))

	cart := models.Cart{StoreID: "s1", Subtotal: 100}

	// no user context at all
	result, err := eval.Evaluate(ctx, cart, nil, tuesday)
	require.NoError(t, err)
	assert.False(t, result.IsEligible)

	// returning user
	result, err = eval.Evaluate(ctx, cart, &models.UserFacts{DeliveredOrders: 7}, tuesday)
	require.NoError(t, err)
	assert.False(t, result.IsEligible)

	// genuinely new user
	result, err = eval.Evaluate(ctx, cart, &models.UserFacts{DeliveredOrders: 0}, tuesday)
	require.NoError(t, err)
	assert.True(t, result.IsEligible)
}

func TestEvaluateUnknownConditionNeverMatches(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOfferRuleRepository()
	eval := NewEvaluator(repo)

	rule := activeRule("mystery", "s1", 5)
	rule.Conditions = []models.Condition{models.UnknownCondition{Kind: "from_a_newer_build"}}
	rule.Actions = []models.Action{models.PercentageDiscount{Percent: 50}}
	require.NoError(t, repo.Create(ctx, rule))

	cart := models.Cart{StoreID: "s1", Subtotal: 100}
	result, err := eval.Evaluate(ctx, cart, &models.UserFacts{}, tuesday)
	require.NoError(t, err)
	assert.False(t, result.IsEligible)
}

func TestEvaluateComboAndFreeItem(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOfferRuleRepository()
	eval := NewEvaluator(repo)

	combo := activeRule("combo", "s1", 8)
	combo.Type = models.OfferTypeCombo
	combo.Actions = []models.Action{models.ComboPrice{TargetTotal: 80}}
	free := activeRule("free", "s1", 4)
	free.Actions = []models.Action{models.FreeItem{}}
	require.NoError(t, repo.Create(ctx, combo))
	require.NoError(t, repo.Create(ctx, free))

	cart := models.Cart{
		StoreID: "s1",
		Items: []models.CartItem{
			{ItemID: "i1", Quantity: 1, Price: 60},
			{ItemID: "i2", Quantity: 1, Price: 40},
		},
		Subtotal: 100,
	}
	result, err := eval.Evaluate(ctx, cart, nil, tuesday)
	require.NoError(t, err)
	require.Len(t, result.ApplicableOffers, 2)
	assert.Equal(t, 20.0, result.ApplicableOffers[0].DiscountAmount)
	assert.Equal(t, 40.0, result.ApplicableOffers[1].DiscountAmount)
	assert.Equal(t, 60.0, result.TotalDiscount)
}

func TestRecordRedemptionIncrementsUsage(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOfferRuleRepository()
	eval := NewEvaluator(repo)

	rule := activeRule("r1", "s1", 5)
	require.NoError(t, repo.Create(ctx, rule))

	require.NoError(t, eval.RecordRedemption(ctx, "r1"))
	require.NoError(t, eval.RecordRedemption(ctx, "r1"))

	got, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.UsageCount)
}
