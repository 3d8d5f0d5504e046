package models

import "time"

// UserPreferenceProfile is a periodically recomputed summary of a user's
// ordering behaviour. Each analysis run replaces the previous profile in
// full; there is no incremental merge.
type UserPreferenceProfile struct {
	ID                  string         `json:"id"`
	UserID              string         `json:"user_id"`
	FavoriteItemIDs     []string       `json:"favorite_item_ids"`     // top 10 by quantity
	FavoriteCategoryIDs []string       `json:"favorite_category_ids"` // top 5
	IsVegetarian        bool           `json:"is_vegetarian"`
	IsVegan             bool           `json:"is_vegan"`
	OrderFrequency      OrderFrequency `json:"order_frequency"`
	AvgOrderValue       float64        `json:"avg_order_value"`
	PreferredTimeSlots  []ScheduleType `json:"preferred_time_slots"` // top 3
	TotalOrders         int            `json:"total_orders"`
	TotalSpent          float64        `json:"total_spent"`
	LastOrderAt         *time.Time     `json:"last_order_at,omitempty"`
	AnalyzedAt          time.Time      `json:"analyzed_at"`
}

// Empty reports whether the profile carries any behavioural signal.
func (p *UserPreferenceProfile) Empty() bool {
	return p.TotalOrders == 0
}

// UserFacts are the derived attributes audience filters and offer
// conditions compare against.
type UserFacts struct {
	UserID              string         `json:"user_id"`
	DeliveredOrders     int            `json:"delivered_orders"`
	TotalSpent          float64        `json:"total_spent"`
	AvgOrderValue       float64        `json:"avg_order_value"`
	OrderFrequency      OrderFrequency `json:"order_frequency"`
	LoyaltyTier         LoyaltyTier    `json:"loyalty_tier"`
	FavoriteCategoryIDs []string       `json:"favorite_category_ids"`
	LastOrderAt         *time.Time     `json:"last_order_at,omitempty"`
	IsNewUser           bool           `json:"is_new_user"`
}

// Recommendation is one scored candidate for a user.
type Recommendation struct {
	Type   string  `json:"type"` // "item" or "offer"
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}
