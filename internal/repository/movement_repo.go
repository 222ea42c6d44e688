package repository

import (
	"context"
	"time"

	"delipos/internal/model"

	"gorm.io/gorm"
)

// MovementFilter narrows the stock movement journal.
type MovementFilter struct {
	ProductID *uint
	Kind      string
	From      *time.Time
	To        *time.Time
}

// MovementRepository journals stock changes. Create is the only mutator;
// reversals are recorded as new movements, never by editing history.
type MovementRepository interface {
	Create(ctx context.Context, movement *model.StockMovement) error
	List(ctx context.Context, filter MovementFilter) ([]model.StockMovement, error)
}

type movementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) MovementRepository {
	return &movementRepository{db: db}
}

// Create is tx-only: a movement row always commits together with the stock
// change it records.
func (r *movementRepository) Create(ctx context.Context, movement *model.StockMovement) error {
	db, err := TxDB(ctx)
	if err != nil {
		return err
	}
	return db.Create(movement).Error
}

func (r *movementRepository) List(ctx context.Context, filter MovementFilter) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	db := GetDB(ctx, r.db).Model(&model.StockMovement{})
	if filter.ProductID != nil {
		db = db.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Kind != "" {
		db = db.Where("kind = ?", filter.Kind)
	}
	if filter.From != nil {
		db = db.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("created_at <= ?", *filter.To)
	}
	if err := db.Order("created_at asc, id asc").Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}
