package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase is a supplier invoice. Freight and tax are flat per-purchase
// amounts distributed evenly across line count; each line stores its
// allocated share so reports never recompute the split.
type Purchase struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Supplier      string          `gorm:"type:varchar(255);not null" json:"supplier"`
	InvoiceNumber string          `gorm:"type:varchar(100)" json:"invoice_number"`
	Total         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
	Tax           decimal.Decimal `gorm:"column:iva;type:decimal(18,4);not null;default:0" json:"iva"`
	Freight       decimal.Decimal `gorm:"column:shipping;type:decimal(18,4);not null;default:0" json:"shipping"`
	Date          time.Time       `gorm:"index" json:"date"`
	UserID        *uuid.UUID      `gorm:"type:uuid" json:"user_id"`
	Lines         []PurchaseLine  `gorm:"foreignKey:PurchaseID" json:"lines"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PurchaseLine is one product line of a purchase. FreightShare and TaxShare
// are freight/n and tax/n where n is the purchase's line count.
type PurchaseLine struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	PurchaseID   uint            `gorm:"not null;index" json:"purchase_id"`
	ProductID    uint            `gorm:"not null;index" json:"product_id"`
	Product      Product         `gorm:"foreignKey:ProductID" json:"-"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_cost"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	FreightShare decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"freight_share"`
	TaxShare     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"tax_share"`
}

// TableName keeps the historical table name used by the data file.
func (PurchaseLine) TableName() string { return "purchase_details" }
