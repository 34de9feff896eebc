package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shinyyama/shopping-items/internal/config"
	"github.com/shinyyama/shopping-items/internal/db"
	"github.com/shinyyama/shopping-items/internal/repository"
	"github.com/shinyyama/shopping-items/internal/service"
	"github.com/shopspring/decimal"
)

type seedItem struct {
	Name        string
	Description string
	Price       string
	Quantity    int
	Category    string
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	svc := service.NewShoppingItemService(repository.NewShoppingItemRepository(gdb))

	existing, err := svc.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	if len(existing) > 0 && !strings.EqualFold(os.Getenv("FORCE_SEED"), "true") {
		log.Printf("%d active items already exist; skipping seed (set FORCE_SEED=true to override)", len(existing))
		return nil
	}

	for _, it := range buildSeedItems() {
		desc := it.Description
		created, err := svc.Create(ctx, service.CreateShoppingItemInput{
			Name:        &it.Name,
			Description: &desc,
			Price:       decimal.RequireFromString(it.Price),
			Quantity:    it.Quantity,
			Category:    &it.Category,
		})
		if err != nil {
			return fmt.Errorf("create %q: %w", it.Name, err)
		}
		log.Printf("seeded #%d %s (%s)", created.ID, created.Name, created.Category)
	}
	return nil
}

func buildSeedItems() []seedItem {
	return []seedItem{
		{"Milk", "1L whole milk", "1.29", 2, "Dairy"},
		{"Greek Yogurt", "Plain, 500g", "2.49", 1, "Dairy"},
		{"Cheddar", "Mature, 200g block", "3.10", 1, "Dairy"},
		{"Apples", "Braeburn", "0.45", 6, "Produce"},
		{"Bananas", "", "0.25", 5, "Produce"},
		{"Spinach", "Baby leaf, 250g", "1.80", 1, "Produce"},
		{"Sourdough", "Whole loaf", "4.20", 1, "Bakery"},
		{"Croissants", "Pack of 4", "2.99", 1, "Bakery"},
		{"Coffee Beans", "Medium roast, 1kg", "14.50", 1, "Pantry"},
		{"Olive Oil", "Extra virgin, 750ml", "7.95", 1, "Pantry"},
	}
}
