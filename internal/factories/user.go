package factories

import (
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
)

var fake = faker.New()

type UserFactory struct{}

func (uf *UserFactory) CreateUser() *models.User {
	now := time.Now()
	return &models.User{
		ID:       cuid.New(),
		Name:     fake.Person().Name(),
		Email:    fake.Internet().Email(),
		Phone:    fake.Phone().Number(),
		JoinDate: fake.Time().TimeBetween(now.AddDate(-2, 0, 0), now),
		IsActive: fake.IntBetween(0, 9) > 0,
	}
}
