package factories

import (
	"math/rand"
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/lucsky/cuid"
)

var paymentMethods = []string{"card", "cash", "wallet"}

type OrderFactory struct{}

// CreateOrder builds a delivered order for the given user from the store's
// catalog. Items and quantities are sampled from the provided menu.
func (of *OrderFactory) CreateOrder(user *models.User, store *models.Store, menu []*models.MenuItem) *models.Order {
	if len(menu) == 0 {
		return nil
	}

	lineCount := fake.IntBetween(1, 4)
	items := make([]models.OrderItem, 0, lineCount)
	total := 0.0
	for i := 0; i < lineCount; i++ {
		item := menu[rand.Intn(len(menu))]
		qty := fake.IntBetween(1, 3)
		items = append(items, models.OrderItem{
			ItemID:     item.ID,
			Name:       item.Name,
			CategoryID: item.CategoryID,
			Quantity:   qty,
			Price:      item.Price,
		})
		total += item.Price * float64(qty)
	}

	now := time.Now()
	placed := fake.Time().TimeBetween(user.JoinDate, now)

	return &models.Order{
		ID:            cuid.New(),
		CustomerID:    user.ID,
		StoreID:       store.ID,
		Items:         items,
		TotalAmount:   total,
		Status:        models.OrderStatusDelivered,
		PaymentMethod: paymentMethods[rand.Intn(len(paymentMethods))],
		OrderPlacedAt: placed,
		DeliveredAt:   placed.Add(time.Duration(fake.IntBetween(20, 90)) * time.Minute),
	}
}
