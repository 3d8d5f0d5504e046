package factories

import (
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/lucsky/cuid"
)

type StoreFactory struct{}

func (sf *StoreFactory) CreateStore() *models.Store {
	now := time.Now()
	opened := fake.Time().TimeBetween(now.AddDate(-3, 0, 0), now)

	status := models.StoreStatusActive
	if fake.IntBetween(0, 9) == 0 {
		status = models.StoreStatusInactive
	}

	return &models.Store{
		ID:        cuid.New(),
		Name:      fake.Company().Name(),
		Status:    status,
		OpenedAt:  opened,
		UpdatedAt: opened,
	}
}
