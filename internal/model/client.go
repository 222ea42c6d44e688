package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is a credit customer. TotalDebt caches the signed sum of the
// client's transaction log and is owned exclusively by the ledger engine;
// RecomputeDebt can rebuild it from the log at any time.
type Client struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Phone       string          `gorm:"type:varchar(50)" json:"phone"`
	Address     string          `gorm:"type:text" json:"address"`
	Notes       string          `gorm:"type:text" json:"notes"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"credit_limit"`
	TotalDebt   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_debt"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
