package repository

import (
	"context"
	"time"

	"github.com/example/possales/pkg/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductQuantity struct {
	Name          string
	TotalQuantity int64
}

type ProductRevenue struct {
	Name    string
	Revenue decimal.Decimal
}

type OrderAmount struct {
	OrderTime   time.Time
	FinalAmount decimal.Decimal
}

// AnalyticsRepository runs the read-only aggregate queries. Time bounds are
// half-open: from <= order_time < to.
type AnalyticsRepository struct {
	db *gorm.DB
}

func (r *AnalyticsRepository) SumFinalAmount(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("SUM(final_amount)").
		Where("order_time >= ? AND order_time < ?", from.UTC(), to.UTC()).
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// QuantityByProduct sums item quantities per product name, largest first,
// ties ordered by name.
func (r *AnalyticsRepository) QuantityByProduct(ctx context.Context, limit int) ([]ProductQuantity, error) {
	var rows []ProductQuantity
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("products.name AS name, SUM(order_items.quantity) AS total_quantity").
		Joins("JOIN products ON products.id = order_items.product_id").
		Group("products.name").
		Order("total_quantity DESC, products.name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RevenueByProduct sums the item_price snapshots per product name.
func (r *AnalyticsRepository) RevenueByProduct(ctx context.Context) ([]ProductRevenue, error) {
	var rows []ProductRevenue
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("products.name AS name, SUM(order_items.item_price) AS revenue").
		Joins("JOIN products ON products.id = order_items.product_id").
		Group("products.name").
		Order("products.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AnalyticsRepository) OrderAmounts(ctx context.Context, from, to time.Time) ([]OrderAmount, error) {
	var rows []OrderAmount
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("order_time, final_amount").
		Where("order_time >= ? AND order_time < ?", from.UTC(), to.UTC()).
		Order("order_time ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
