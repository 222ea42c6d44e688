package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Loss records product shrinkage (expiry, damage, theft...). Creating one
// decrements stock; deleting one restores it.
type Loss struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Product   Product         `gorm:"foreignKey:ProductID" json:"-"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_cost"`
	TotalCost decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_cost"`
	LossType  string          `gorm:"type:varchar(50)" json:"loss_type"`
	Reason    string          `gorm:"type:text" json:"reason"`
	Date      time.Time       `gorm:"index" json:"date"`
	UserID    *uuid.UUID      `gorm:"type:uuid" json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
}
