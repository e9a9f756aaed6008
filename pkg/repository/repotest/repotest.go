// Package repotest opens throwaway in-memory SQLite stores for tests.
package repotest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/example/possales/pkg/config"
	"github.com/example/possales/pkg/models"
	"github.com/example/possales/pkg/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated gorm handle backed by a private in-memory database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repository.Open(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func NewStore(t testing.TB) *repository.Store {
	return repository.NewStore(Open(t))
}

func CreateUser(t testing.TB, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func CreateProduct(t testing.TB, db *gorm.DB, name, size, price string) models.Product {
	t.Helper()
	product := models.Product{Name: name, Size: size, Price: decimal.RequireFromString(price)}
	require.NoError(t, db.Create(&product).Error)
	return product
}

// CreateOrder inserts a completed order with a single line item whose
// snapshot price equals final. Amounts are not split into tax here.
func CreateOrder(t testing.TB, db *gorm.DB, userID uint, product models.Product, qty int, final string, at time.Time) models.Order {
	t.Helper()
	amount := decimal.RequireFromString(final)
	order := models.Order{
		UserID:      userID,
		TotalAmount: amount,
		GSTAmount:   decimal.Zero,
		FinalAmount: amount,
		OrderTime:   at.UTC(),
		Status:      models.OrderStatusCompleted,
		Items: []models.OrderItem{
			{ProductID: product.ID, Quantity: qty, ItemPrice: amount},
		},
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}
