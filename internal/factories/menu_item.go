package factories

import (
	"math/rand"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/lucsky/cuid"
)

var menuCategories = []string{
	"starters",
	"mains",
	"pizza",
	"burgers",
	"salads",
	"desserts",
	"drinks",
	"sides",
}

var dishNames = []string{
	"Margherita Pizza", "Pepperoni Pizza", "Classic Cheeseburger", "Veggie Burger",
	"Caesar Salad", "Greek Salad", "Pad Thai", "Chicken Tikka Masala",
	"Beef Ramen", "Falafel Wrap", "Fish and Chips", "Carbonara",
	"Sushi Platter", "Burrito Bowl", "Tomato Soup", "Garlic Bread",
	"Chocolate Brownie", "Cheesecake", "Mango Lassi", "Iced Latte",
}

type MenuItemFactory struct{}

func (mf *MenuItemFactory) CreateMenuItem(storeID string) *models.MenuItem {
	vegetarian := rand.Float64() < 0.3
	vegan := vegetarian && rand.Float64() < 0.4

	return &models.MenuItem{
		ID:           cuid.New(),
		StoreID:      storeID,
		Name:         dishNames[rand.Intn(len(dishNames))],
		Description:  fake.Lorem().Sentence(8),
		Price:        fake.Float64(2, 4, 35),
		CategoryID:   menuCategories[rand.Intn(len(menuCategories))],
		IsVegetarian: vegetarian,
		IsVegan:      vegan,
		IsAvailable:  fake.IntBetween(0, 9) > 0,
	}
}
