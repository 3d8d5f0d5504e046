package models

import "time"

type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	JoinDate time.Time `json:"join_date"`
	IsActive bool      `json:"is_active"`
}
