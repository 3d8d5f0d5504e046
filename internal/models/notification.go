package models

import "time"

// NotificationTemplate is the message shell delivered through a channel.
// Title and Body may contain {name}, {email} and {phone} placeholders.
type NotificationTemplate struct {
	ID      string              `json:"id"`
	Channel NotificationChannel `json:"channel"`
	Title   string              `json:"title"`
	Body    string              `json:"body"`
}

// ScheduledNotification is a recurring notification with a day-of-week and
// time-of-day schedule. NextSendAt of nil means the schedule found no
// upcoming slot and the notification is paused.
type ScheduledNotification struct {
	ID              string             `json:"id"`
	Template        NotificationTemplate `json:"template"`
	Schedule        TimeWindow         `json:"schedule"` // StartMinute is the fire time
	SendImmediately bool               `json:"send_immediately"`
	Status          NotificationStatus `json:"status"`
	Audience        TargetAudienceRule `json:"target_audience"`
	MaxSendCount    *int               `json:"max_send_count,omitempty"`
	SentCount       int                `json:"sent_count"`
	LastSentAt      *time.Time         `json:"last_sent_at,omitempty"`
	NextSendAt      *time.Time         `json:"next_send_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// TargetAudienceRule filters users by their derived facts. Every present
// field must hold for a user to be targeted.
type TargetAudienceRule struct {
	UserFrequency      *OrderFrequency `json:"user_frequency,omitempty"`
	MinOrderValue      *float64        `json:"min_order_value,omitempty"`
	FavoriteCategories []string        `json:"favorite_categories,omitempty"`
	LastOrderDaysAgo   *int            `json:"last_order_days_ago,omitempty"`
	IsNewUser          *bool           `json:"is_new_user,omitempty"`
	LoyaltyTier        *LoyaltyTier    `json:"loyalty_tier,omitempty"`
}

// Matches applies the rule to a user's facts at the given instant.
func (r TargetAudienceRule) Matches(facts UserFacts, now time.Time) bool {
	if r.UserFrequency != nil && facts.OrderFrequency != *r.UserFrequency {
		return false
	}
	if r.MinOrderValue != nil && facts.AvgOrderValue < *r.MinOrderValue {
		return false
	}
	if len(r.FavoriteCategories) > 0 {
		found := false
		for _, want := range r.FavoriteCategories {
			for _, have := range facts.FavoriteCategoryIDs {
				if want == have {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	if r.LastOrderDaysAgo != nil {
		if facts.LastOrderAt == nil {
			return false
		}
		days := int(now.Sub(*facts.LastOrderAt).Hours() / 24)
		if days < *r.LastOrderDaysAgo {
			return false
		}
	}
	if r.IsNewUser != nil && facts.IsNewUser != *r.IsNewUser {
		return false
	}
	if r.LoyaltyTier != nil && facts.LoyaltyTier != *r.LoyaltyTier {
		return false
	}
	return true
}

// NotificationAttempt records one delivery attempt to one user.
type NotificationAttempt struct {
	ID             string              `json:"id"`
	NotificationID string              `json:"notification_id"`
	UserID         string              `json:"user_id"`
	Channel        NotificationChannel `json:"channel"`
	Status         AttemptStatus       `json:"status"`
	Error          string              `json:"error,omitempty"`
	AttemptedAt    time.Time           `json:"attempted_at"`
}

// SendResult summarises one notification's ProcessDue outcome.
type SendResult struct {
	NotificationID string `json:"notification_id"`
	Targeted       int    `json:"targeted"`
	Sent           int    `json:"sent"`
	Failed         int    `json:"failed"`
	Paused         bool   `json:"paused"` // no next slot within the search horizon
}
