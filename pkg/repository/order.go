package repository

import (
	"context"

	"github.com/example/possales/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository struct {
	db *gorm.DB
}

// Create inserts the order row only; items are added with AddItem.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *OrderRepository) AddItem(ctx context.Context, item *models.OrderItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

// CreateWithItems inserts the order together with its Items. Items must
// reference products by ProductID only.
func (r *OrderRepository) CreateWithItems(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("User").Create(order).Error
}

// ListByUser returns the user's orders newest first with items and their
// products preloaded.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("order_time DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) FindForUser(ctx context.Context, orderID, userID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error
	return n, err
}

func (r *OrderRepository) CountItems(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).Count(&n).Error
	return n, err
}
