package models

type MenuItem struct {
	ID           string  `json:"id"`
	StoreID      string  `json:"store_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	CategoryID   string  `json:"category_id"`
	IsVegetarian bool    `json:"is_vegetarian"`
	IsVegan      bool    `json:"is_vegan"`
	IsAvailable  bool    `json:"is_available"`
}
