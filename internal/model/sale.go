package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus constants
const (
	SaleStatusPaid    = "paid"
	SaleStatusPending = "pending"
)

// PaymentMethod constants
const (
	PaymentCash   = "cash"
	PaymentCredit = "credit"
)

// Sale is a point-of-sale transaction. A credit sale always carries a client
// and starts pending; a cash sale is paid on creation. Total is the live
// remaining amount: partial payments reduce it in place, so the remaining
// debt of a client is always the sum of their pending totals.
type Sale struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ClientID      *uint           `gorm:"index" json:"client_id"`
	Client        *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Total         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
	Status        string          `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentMethod string          `gorm:"type:varchar(20);not null" json:"payment_method"`
	Notes         string          `gorm:"type:text" json:"notes"`
	UserID        *uuid.UUID      `gorm:"type:uuid" json:"user_id"`
	Lines         []SaleLine      `gorm:"foreignKey:SaleID" json:"lines"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SaleLine is one product line of a sale. Never mutated after creation.
type SaleLine struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SaleID    uint            `gorm:"not null;index" json:"sale_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Product   Product         `gorm:"foreignKey:ProductID" json:"-"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
}

// TableName keeps the historical table name used by the data file.
func (SaleLine) TableName() string { return "sale_details" }
