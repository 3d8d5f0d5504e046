package models

import "time"

type Store struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"` // "active" or "inactive"
	OpenedAt  time.Time `json:"opened_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Store) IsActive() bool {
	return s.Status == StoreStatusActive
}
