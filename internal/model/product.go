package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item. Stock is real-valued because the deli sells by
// weight; it is mutated only through ledger engine operations.
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255) COLLATE NOCASE;uniqueIndex;not null" json:"name"`
	SalePrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"sale_price"`
	CostPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"cost_price"`
	Stock     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
