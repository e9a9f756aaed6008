package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending   = "Pending"
	OrderStatusCompleted = "Completed"
)

// Order amounts are derived from its items: FinalAmount is always
// TotalAmount + GSTAmount.
type Order struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	User        *User           `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	GSTAmount   decimal.Decimal `gorm:"column:gst_amount;type:decimal(10,2);not null" json:"gst_amount"`
	FinalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"final_amount"`
	OrderTime   time.Time       `gorm:"not null;index" json:"order_time"`
	Status      string          `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem.ItemPrice is the unit price times quantity at purchase time, not
// a reference to the current catalog price.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Product   *Product        `gorm:"constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	ItemPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"item_price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Product{}, &Order{}, &OrderItem{}}
}
