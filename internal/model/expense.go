package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is an operating cost entry. It has no side effects beyond the
// cash-flow report.
type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Date        time.Time       `gorm:"index" json:"date"`
	UserID      *uuid.UUID      `gorm:"type:uuid" json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
