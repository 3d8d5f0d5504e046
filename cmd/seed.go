package cmd

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/chrisdamba/foodautomat/internal/factories"
	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/chrisdamba/foodautomat/internal/repositories/postgres"
	"github.com/chrisdamba/foodautomat/internal/schedule"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with generated users, stores, menus and orders",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		if err := seed(cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func seed(cfg *models.Config) error {
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()

	users := postgres.NewUserRepository(pool)
	stores := postgres.NewStoreRepository(pool)
	items := postgres.NewMenuItemRepository(pool)
	orders := postgres.NewOrderRepository(pool)
	rules := postgres.NewOfferRuleRepository(pool)
	schedules := postgres.NewMenuScheduleRepository(pool)
	resolver := schedule.NewResolver(schedules)

	userFactory := &factories.UserFactory{}
	storeFactory := &factories.StoreFactory{}
	itemFactory := &factories.MenuItemFactory{}
	orderFactory := &factories.OrderFactory{}
	offerFactory := &factories.OfferRuleFactory{}

	bar := progressbar.Default(int64(cfg.SeedUsers), "users")
	seedUsers := make([]*models.User, 0, cfg.SeedUsers)
	for i := 0; i < cfg.SeedUsers; i++ {
		seedUsers = append(seedUsers, userFactory.CreateUser())
		bar.Add(1)
	}
	if err := users.BulkCreate(ctx, seedUsers); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	bar = progressbar.Default(int64(cfg.SeedStores), "stores")
	seedStores := make([]*models.Store, 0, cfg.SeedStores)
	menusByStore := make(map[string][]*models.MenuItem, cfg.SeedStores)
	for i := 0; i < cfg.SeedStores; i++ {
		store := storeFactory.CreateStore()
		seedStores = append(seedStores, store)

		menu := make([]*models.MenuItem, 0, cfg.SeedMenuItems)
		for j := 0; j < cfg.SeedMenuItems; j++ {
			menu = append(menu, itemFactory.CreateMenuItem(store.ID))
		}
		menusByStore[store.ID] = menu
		bar.Add(1)
	}
	if err := stores.BulkCreate(ctx, seedStores); err != nil {
		return fmt.Errorf("failed to seed stores: %w", err)
	}
	for _, menu := range menusByStore {
		if err := items.BulkCreate(ctx, menu); err != nil {
			return fmt.Errorf("failed to seed menu items: %w", err)
		}
	}

	bar = progressbar.Default(int64(len(seedStores)), "schedules and offers")
	for _, store := range seedStores {
		if _, err := resolver.InitializeDefaults(ctx, store.ID); err != nil {
			return fmt.Errorf("failed to seed schedules for store %s: %w", store.ID, err)
		}
		rule := offerFactory.CreateOfferRule(store, menusByStore[store.ID])
		if err := rules.Create(ctx, rule); err != nil {
			return fmt.Errorf("failed to seed offer rule: %w", err)
		}
		bar.Add(1)
	}

	bar = progressbar.Default(int64(cfg.SeedOrders), "orders")
	seedOrders := make([]*models.Order, 0, cfg.SeedOrders)
	for i := 0; i < cfg.SeedOrders; i++ {
		user := seedUsers[rand.Intn(len(seedUsers))]
		store := seedStores[rand.Intn(len(seedStores))]
		order := orderFactory.CreateOrder(user, store, menusByStore[store.ID])
		if order == nil {
			continue
		}
		seedOrders = append(seedOrders, order)
		bar.Add(1)
	}
	if err := orders.BulkCreate(ctx, seedOrders); err != nil {
		return fmt.Errorf("failed to seed orders: %w", err)
	}

	log.Printf("Seeded %d users, %d stores, %d orders", len(seedUsers), len(seedStores), len(seedOrders))
	return nil
}
