package repository

import (
	"context"
	"time"

	"delipos/internal/model"

	"gorm.io/gorm"
)

// PurchaseFilter narrows purchase listings.
type PurchaseFilter struct {
	Supplier string
	From     *time.Time
	To       *time.Time
}

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	CreateLine(ctx context.Context, line *model.PurchaseLine) error
	FindByID(ctx context.Context, id uint) (*model.Purchase, error)
	List(ctx context.Context, filter PurchaseFilter, page, limit int) ([]model.Purchase, int64, error)
	DeleteWithLines(ctx context.Context, id uint) error
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *model.Purchase) error {
	return GetDB(ctx, r.db).Create(purchase).Error
}

func (r *purchaseRepository) CreateLine(ctx context.Context, line *model.PurchaseLine) error {
	return GetDB(ctx, r.db).Create(line).Error
}

func (r *purchaseRepository) FindByID(ctx context.Context, id uint) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := GetDB(ctx, r.db).Preload("Lines").First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) List(ctx context.Context, filter PurchaseFilter, page, limit int) ([]model.Purchase, int64, error) {
	var purchases []model.Purchase
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Purchase{})
	if filter.Supplier != "" {
		db = db.Where("LOWER(supplier) LIKE ?", "%"+filter.Supplier+"%")
	}
	if filter.From != nil {
		db = db.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("date <= ?", *filter.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Lines").Order("date desc, id desc").
		Offset(offset).Limit(limit).Find(&purchases).Error; err != nil {
		return nil, 0, err
	}

	return purchases, total, nil
}

func (r *purchaseRepository) DeleteWithLines(ctx context.Context, id uint) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("purchase_id = ?", id).Delete(&model.PurchaseLine{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Purchase{}).Error
}
