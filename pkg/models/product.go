package models

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	ID    uint            `gorm:"primaryKey" json:"id"`
	Name  string          `gorm:"type:varchar(50);not null;index:idx_product_variant" json:"name"`
	Size  string          `gorm:"type:varchar(20);not null;index:idx_product_variant" json:"size"`
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

func (Product) TableName() string {
	return "products"
}
