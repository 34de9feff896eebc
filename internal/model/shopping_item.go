package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShoppingItem rows are never hard-deleted; IsActive=false hides them from
// every read path.
type ShoppingItem struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	Name        string          `gorm:"size:100;not null"`
	Description string          `gorm:"size:500;not null"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity    int             `gorm:"not null"`
	Category    string          `gorm:"size:50;not null;index:idx_shopping_items_category_active"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true;index:idx_shopping_items_category_active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
}

func (ShoppingItem) TableName() string {
	return "shopping_items"
}
