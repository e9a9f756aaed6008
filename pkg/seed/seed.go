// Package seed loads the fixed product catalog and generates randomized
// demo orders.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/example/possales/pkg/models"
	"github.com/example/possales/pkg/orders"
	"github.com/example/possales/pkg/repository"
	"github.com/shopspring/decimal"
)

var (
	ErrProduction = errors.New("refusing to generate sample data in production")
	ErrNoData     = errors.New("sample data needs at least one user and one product")
)

type CatalogEntry struct {
	Name  string
	Size  string
	Price string
}

var Catalog = []CatalogEntry{
	{"Ice Cream", "Small", "4.00"},
	{"Ice Cream", "Medium", "5.00"},
	{"Ice Cream", "Large", "8.00"},
	{"Smoothie", "Small", "10.00"},
	{"Smoothie", "Large", "11.00"},
	{"Shake", "Small", "10.00"},
	{"Shake", "Large", "11.00"},
	{"Water Bottle", "Standard", "3.00"},
	{"Soda", "Standard", "4.00"},
}

// SeedCatalog inserts every Catalog entry whose (name, size) pair is not yet
// present and reports how many were added.
func SeedCatalog(ctx context.Context, store *repository.Store) (int, error) {
	tx, err := store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	added := 0
	for _, entry := range Catalog {
		_, err := tx.Products().FindByVariant(ctx, entry.Name, entry.Size)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("failed to look up %s %s: %w", entry.Size, entry.Name, err)
		}

		product := &models.Product{
			Name:  entry.Name,
			Size:  entry.Size,
			Price: decimal.RequireFromString(entry.Price),
		}
		if err := tx.Products().Create(ctx, product); err != nil {
			return 0, fmt.Errorf("failed to add %s %s: %w", entry.Size, entry.Name, err)
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

type SampleOptions struct {
	Orders     int
	Days       int
	Production bool
	Rand       *rand.Rand
	Now        time.Time
}

// GenerateSample creates completed orders spread over the last Days days,
// each with one to five items of quantity one to ten.
func GenerateSample(ctx context.Context, store *repository.Store, opts SampleOptions) (int, error) {
	if opts.Production {
		return 0, ErrProduction
	}
	if opts.Orders <= 0 {
		return 0, nil
	}
	if opts.Days <= 0 {
		opts.Days = 6
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	users, err := store.Users().List(ctx)
	if err != nil {
		return 0, err
	}
	products, err := store.Products().List(ctx)
	if err != nil {
		return 0, err
	}
	if len(users) == 0 || len(products) == 0 {
		return 0, ErrNoData
	}

	catalog := make(map[uint]models.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}

	tx, err := store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	r := opts.Rand
	for i := 0; i < opts.Orders; i++ {
		cart := make([]orders.CartItem, 1+r.Intn(5))
		for j := range cart {
			cart[j] = orders.CartItem{
				ProductID: products[r.Intn(len(products))].ID,
				Quantity:  1 + r.Intn(10),
			}
		}
		lines, total := orders.Price(cart, catalog)
		gst, final := orders.Totals(total)

		order := &models.Order{
			UserID:      users[r.Intn(len(users))].ID,
			TotalAmount: total,
			GSTAmount:   gst,
			FinalAmount: final,
			OrderTime:   opts.Now.AddDate(0, 0, -r.Intn(opts.Days)).UTC(),
			Status:      models.OrderStatusCompleted,
			Items:       lines,
		}
		if err := tx.Orders().CreateWithItems(ctx, order); err != nil {
			return 0, fmt.Errorf("failed to create sample order: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return opts.Orders, nil
}
