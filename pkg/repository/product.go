package repository

import (
	"context"

	"github.com/example/possales/pkg/models"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("name, size").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindByIDs returns the products that exist among ids, keyed by id.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	found := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		found[p.ID] = p
	}
	return found, nil
}

func (r *ProductRepository) FindByVariant(ctx context.Context, name, size string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("name = ? AND size = ?", name, size).First(&product).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}
