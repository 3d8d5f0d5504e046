package factories

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/lucsky/cuid"
)

type OfferRuleFactory struct{}

// CreateOfferRule builds a random active rule for the store, covering the
// common shapes: amount-gated discounts, weekend windows, BOGO and combos.
func (of *OfferRuleFactory) CreateOfferRule(store *models.Store, menu []*models.MenuItem) *models.OfferRule {
	now := time.Now()
	rule := &models.OfferRule{
		ID:        cuid.New(),
		StoreID:   store.ID,
		IsActive:  true,
		Priority:  fake.IntBetween(1, 10),
		Window:    models.TimeWindow{DaysOfWeek: models.AllWeek(), StartMinute: 0, EndMinute: 1439},
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch rand.Intn(4) {
	case 0:
		threshold := fake.Float64(0, 20, 60)
		pct := float64(fake.IntBetween(5, 25))
		rule.Name = fmt.Sprintf("%.0f%% off orders over %.0f", pct, threshold)
		rule.Type = models.OfferTypeDiscount
		rule.Conditions = []models.Condition{models.OrderAmountAbove{Amount: threshold}}
		rule.Actions = []models.Action{models.PercentageDiscount{Percent: pct}}
	case 1:
		amount := float64(fake.IntBetween(3, 10))
		rule.Name = fmt.Sprintf("Weekend %.0f off", amount)
		rule.Type = models.OfferTypeSeasonal
		rule.Window = models.TimeWindow{
			DaysOfWeek:  []time.Weekday{time.Saturday, time.Sunday},
			StartMinute: 0,
			EndMinute:   1439,
		}
		rule.Actions = []models.Action{models.FixedAmountDiscount{Amount: amount}}
	case 2:
		rule.Name = "Buy one get one free"
		rule.Type = models.OfferTypeBogo
		if len(menu) > 0 {
			item := menu[rand.Intn(len(menu))]
			rule.Conditions = []models.Condition{models.ItemSpecific{ItemIDs: []string{item.ID}}}
		}
		rule.Actions = []models.Action{models.BuyOneGetOne{}}
		maxUsage := fake.IntBetween(50, 500)
		rule.MaxUsage = &maxUsage
	default:
		rule.Name = "New customer welcome discount"
		rule.Type = models.OfferTypeLoyalty
		rule.Conditions = []models.Condition{models.NewUser{Required: true}}
		rule.Actions = []models.Action{models.PercentageDiscount{Percent: 15}}
	}
	return rule
}
