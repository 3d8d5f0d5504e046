package models

import "time"

// OfferRule is a named, prioritised, usage-capped bundle of conditions and
// discount actions. Conditions are AND-ed; action discounts are summed.
type OfferRule struct {
	ID         string      `json:"id"`
	StoreID    string      `json:"store_id"`
	Name       string      `json:"name"`
	Type       OfferType   `json:"type"`
	Conditions []Condition `json:"conditions"`
	Actions    []Action    `json:"actions"`
	Window     TimeWindow  `json:"window"`
	IsActive   bool        `json:"is_active"`
	Priority   int         `json:"priority"`
	MaxUsage   *int        `json:"max_usage,omitempty"`
	UsageCount int         `json:"usage_count"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Exhausted reports whether the rule's usage cap has been reached.
func (r *OfferRule) Exhausted() bool {
	return r.MaxUsage != nil && r.UsageCount >= *r.MaxUsage
}

// Condition is a closed set of offer preconditions. Adding a variant is a
// compile error until every switch over Condition handles it.
type Condition interface {
	isCondition()
}

type OrderAmountAbove struct {
	Amount float64 `json:"amount"`
}

type TimeBased struct {
	Window TimeWindow `json:"window"`
}

type UserFrequencyIs struct {
	Frequency OrderFrequency `json:"frequency"`
}

type ItemSpecific struct {
	ItemIDs []string `json:"item_ids"`
}

type CategorySpecific struct {
	CategoryIDs []string `json:"category_ids"`
}

type NewUser struct {
	Required bool `json:"required"`
}

type LoyaltyTierIs struct {
	Tier LoyaltyTier `json:"tier"`
}

// UnknownCondition stands in for a stored condition kind this build does
// not recognise. Evaluation treats it as never met.
type UnknownCondition struct {
	Kind string `json:"kind"`
}

func (OrderAmountAbove) isCondition() {}
func (TimeBased) isCondition()        {}
func (UserFrequencyIs) isCondition()  {}
func (ItemSpecific) isCondition()     {}
func (CategorySpecific) isCondition() {}
func (NewUser) isCondition()          {}
func (LoyaltyTierIs) isCondition()    {}
func (UnknownCondition) isCondition() {}

// Action is a closed set of discount computations.
type Action interface {
	isAction()
}

type PercentageDiscount struct {
	Percent float64 `json:"percent"`
}

type FixedAmountDiscount struct {
	Amount float64 `json:"amount"`
}

// FreeItem discounts the single cheapest line item in the cart.
type FreeItem struct{}

// BuyOneGetOne discounts price * floor(qty/2) for every line with
// quantity >= 2.
type BuyOneGetOne struct{}

// ComboPrice discounts the cart down to a target total, never below zero.
type ComboPrice struct {
	TargetTotal float64 `json:"target_total"`
}

func (PercentageDiscount) isAction()  {}
func (FixedAmountDiscount) isAction() {}
func (FreeItem) isAction()            {}
func (BuyOneGetOne) isAction()        {}
func (ComboPrice) isAction()          {}

// Cart is the order-in-progress an offer evaluation runs against.
type Cart struct {
	StoreID  string     `json:"store_id"`
	Items    []CartItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
}

type CartItem struct {
	ItemID     string  `json:"item_id"`
	CategoryID string  `json:"category_id"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

// ApplicableOffer is one qualifying rule's contribution to an evaluation.
type ApplicableOffer struct {
	RuleID         string    `json:"rule_id"`
	RuleName       string    `json:"rule_name"`
	DiscountAmount float64   `json:"discount_amount"`
	DiscountType   OfferType `json:"discount_type"`
	Priority       int       `json:"priority"`
}

// OfferEvaluation is the outcome of evaluating every active rule against a
// cart. TotalDiscount sums all applicable offers; callers wanting only the
// best offer take ApplicableOffers[0].
type OfferEvaluation struct {
	IsEligible       bool              `json:"is_eligible"`
	ApplicableOffers []ApplicableOffer `json:"applicable_offers"`
	TotalDiscount    float64           `json:"total_discount"`
	Messages         []string          `json:"messages"`
}
