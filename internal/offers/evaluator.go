package offers

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/chrisdamba/foodautomat/internal/repositories"
)

// Evaluator applies a store's active offer rules to a cart. Every
// qualifying rule contributes its discount to the total; callers that want
// only the best offer take ApplicableOffers[0] after the priority sort.
type Evaluator struct {
	rules repositories.OfferRuleRepository
}

func NewEvaluator(rules repositories.OfferRuleRepository) *Evaluator {
	return &Evaluator{rules: rules}
}

// Evaluate checks every active, un-exhausted rule for the cart's store.
// facts may be nil when no user context is known; conditions that need it
// then fail closed.
func (e *Evaluator) Evaluate(ctx context.Context, cart models.Cart, facts *models.UserFacts, now time.Time) (models.OfferEvaluation, error) {
	result := models.OfferEvaluation{}

	rules, err := e.rules.GetActiveByStoreID(ctx, cart.StoreID)
	if err != nil {
		return result, fmt.Errorf("failed to load offer rules for store %s: %w", cart.StoreID, err)
	}

	candidates := make([]*models.OfferRule, 0, len(rules))
	for _, rule := range rules {
		if !rule.Exhausted() {
			candidates = append(candidates, rule)
		}
	}
	// higher priority first; stable keeps input order on ties
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority > candidates[j].Priority
	})

	for _, rule := range candidates {
		if !rule.Window.Matches(now) {
			continue
		}
		if !conditionsMet(rule.Conditions, cart, facts, now) {
			continue
		}
		discount := 0.0
		for _, action := range rule.Actions {
			discount += actionDiscount(action, cart)
		}
		if discount <= 0 {
			continue
		}
		result.ApplicableOffers = append(result.ApplicableOffers, models.ApplicableOffer{
			RuleID:         rule.ID,
			RuleName:       rule.Name,
			DiscountAmount: discount,
			DiscountType:   rule.Type,
			Priority:       rule.Priority,
		})
		result.TotalDiscount += discount
		result.Messages = append(result.Messages,
			fmt.Sprintf("%s applied: you save %.2f", rule.Name, discount))
	}

	result.IsEligible = len(result.ApplicableOffers) > 0
	return result, nil
}

// RecordRedemption bumps the rule's usage counter after an offer has been
// committed to an order.
func (e *Evaluator) RecordRedemption(ctx context.Context, ruleID string) error {
	return e.rules.IncrementUsage(ctx, ruleID)
}

func conditionsMet(conditions []models.Condition, cart models.Cart, facts *models.UserFacts, now time.Time) bool {
	for _, c := range conditions {
		if !conditionMet(c, cart, facts, now) {
			return false
		}
	}
	return true
}

func conditionMet(condition models.Condition, cart models.Cart, facts *models.UserFacts, now time.Time) bool {
	switch c := condition.(type) {
	case models.OrderAmountAbove:
		return cart.Subtotal > c.Amount
	case models.TimeBased:
		return c.Window.Matches(now)
	case models.UserFrequencyIs:
		return facts != nil && facts.OrderFrequency == c.Frequency
	case models.ItemSpecific:
		return cartHasAnyItem(cart, c.ItemIDs)
	case models.CategorySpecific:
		return cartHasAnyCategory(cart, c.CategoryIDs)
	case models.NewUser:
		if facts == nil {
			return false
		}
		return (facts.DeliveredOrders == 0) == c.Required
	case models.LoyaltyTierIs:
		return facts != nil && facts.LoyaltyTier == c.Tier
	case models.UnknownCondition:
		// stored kind this build does not recognise: fail closed
		return false
	default:
		return false
	}
}

func actionDiscount(action models.Action, cart models.Cart) float64 {
	switch a := action.(type) {
	case models.PercentageDiscount:
		return cart.Subtotal * a.Percent / 100
	case models.FixedAmountDiscount:
		return math.Min(a.Amount, cart.Subtotal)
	case models.FreeItem:
		return cheapestLinePrice(cart)
	case models.BuyOneGetOne:
		discount := 0.0
		for _, item := range cart.Items {
			if item.Quantity >= 2 {
				discount += item.Price * float64(item.Quantity/2)
			}
		}
		return discount
	case models.ComboPrice:
		return math.Max(0, cart.Subtotal-a.TargetTotal)
	default:
		return 0
	}
}

func cheapestLinePrice(cart models.Cart) float64 {
	cheapest := 0.0
	for i, item := range cart.Items {
		if i == 0 || item.Price < cheapest {
			cheapest = item.Price
		}
	}
	return cheapest
}

func cartHasAnyItem(cart models.Cart, itemIDs []string) bool {
	for _, want := range itemIDs {
		for _, item := range cart.Items {
			if item.ItemID == want {
				return true
			}
		}
	}
	return false
}

func cartHasAnyCategory(cart models.Cart, categoryIDs []string) bool {
	for _, want := range categoryIDs {
		for _, item := range cart.Items {
			if item.CategoryID == want {
				return true
			}
		}
	}
	return false
}
