package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovement kinds. Quantity is signed: positive for entries, negative
// for exits; reversals carry the opposite sign of the movement they undo.
const (
	MovePurchaseIn       = "purchase_in"
	MoveSaleOut          = "sale_out"
	MoveLossOut          = "loss_out"
	MoveSaleReversal     = "sale_reversal"
	MovePurchaseReversal = "purchase_reversal"
	MoveLossReversal     = "loss_reversal"
)

// StockMovement journals every stock change with the resulting level, so the
// inventory-flow report can replay history without re-deriving it from the
// sales, purchases and losses tables.
type StockMovement struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	ProductID  uint            `gorm:"not null;index" json:"product_id"`
	Product    Product         `gorm:"foreignKey:ProductID" json:"-"`
	Kind       string          `gorm:"type:varchar(30);not null;index" json:"kind"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	StockAfter decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"stock_after"`
	RefID      *uint           `gorm:"index" json:"ref_id"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
}
