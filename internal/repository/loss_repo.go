package repository

import (
	"context"
	"time"

	"delipos/internal/model"

	"gorm.io/gorm"
)

// LossFilter narrows loss listings.
type LossFilter struct {
	ProductID *uint
	LossType  string
	From      *time.Time
	To        *time.Time
}

type LossRepository interface {
	Create(ctx context.Context, loss *model.Loss) error
	FindByID(ctx context.Context, id uint) (*model.Loss, error)
	List(ctx context.Context, filter LossFilter, page, limit int) ([]model.Loss, int64, error)
	Delete(ctx context.Context, id uint) error
}

type lossRepository struct {
	db *gorm.DB
}

func NewLossRepository(db *gorm.DB) LossRepository {
	return &lossRepository{db: db}
}

func (r *lossRepository) Create(ctx context.Context, loss *model.Loss) error {
	return GetDB(ctx, r.db).Create(loss).Error
}

func (r *lossRepository) FindByID(ctx context.Context, id uint) (*model.Loss, error) {
	var loss model.Loss
	if err := GetDB(ctx, r.db).First(&loss, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &loss, nil
}

func (r *lossRepository) List(ctx context.Context, filter LossFilter, page, limit int) ([]model.Loss, int64, error) {
	var losses []model.Loss
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Loss{})
	if filter.ProductID != nil {
		db = db.Where("product_id = ?", *filter.ProductID)
	}
	if filter.LossType != "" {
		db = db.Where("loss_type = ?", filter.LossType)
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
	if err := db.Order("date desc, id desc").Offset(offset).Limit(limit).Find(&losses).Error; err != nil {
		return nil, 0, err
	}

	return losses, total, nil
}

func (r *lossRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Loss{}).Error
}
