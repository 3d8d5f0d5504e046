package models

import "time"

type Order struct {
	ID            string      `json:"id"`
	CustomerID    string      `json:"customer_id"`
	StoreID       string      `json:"store_id"`
	Items         []OrderItem `json:"items"`
	TotalAmount   float64     `json:"total_amount"`
	Status        string      `json:"status"` // e.g. "placed", "preparing", "delivered", "cancelled"
	PaymentMethod string      `json:"payment_method"`
	OrderPlacedAt time.Time   `json:"order_placed_at"`
	DeliveredAt   time.Time   `json:"delivered_at"`
}

type OrderItem struct {
	ItemID     string  `json:"item_id"`
	Name       string  `json:"name"`
	CategoryID string  `json:"category_id"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}
