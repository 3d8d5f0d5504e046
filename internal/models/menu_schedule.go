package models

import "time"

// MenuSchedule is a named, time-windowed subset of a store's catalog shown
// during a meal period. At most one schedule is "current" for a store at a
// given instant.
type MenuSchedule struct {
	ID          string         `json:"id"`
	StoreID     string         `json:"store_id"`
	Name        string         `json:"name"`
	Type        ScheduleType   `json:"type"`
	Window      TimeWindow     `json:"window"`
	IsActive    bool           `json:"is_active"`
	Items       []ScheduleItem `json:"items"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type ScheduleItem struct {
	ItemID        string `json:"item_id"`
	IsHighlighted bool   `json:"is_highlighted"`
	DisplayOrder  int    `json:"display_order"`
}

// HasItem reports whether the schedule lists the given menu item.
func (s *MenuSchedule) HasItem(itemID string) bool {
	for _, it := range s.Items {
		if it.ItemID == itemID {
			return true
		}
	}
	return false
}
