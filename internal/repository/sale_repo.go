package repository

import (
	"context"
	"time"

	"delipos/internal/model"

	"gorm.io/gorm"
)

// SaleFilter narrows sale listings.
type SaleFilter struct {
	ClientID *uint
	Status   string
	From     *time.Time
	To       *time.Time
}

type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	CreateLine(ctx context.Context, line *model.SaleLine) error
	Update(ctx context.Context, sale *model.Sale) error
	FindByID(ctx context.Context, id uint) (*model.Sale, error)
	ListPendingForClient(ctx context.Context, clientID uint) ([]model.Sale, error)
	List(ctx context.Context, filter SaleFilter, page, limit int) ([]model.Sale, int64, error)
	DeleteWithLines(ctx context.Context, id uint) error
}

type saleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *model.Sale) error {
	return GetDB(ctx, r.db).Create(sale).Error
}

func (r *saleRepository) CreateLine(ctx context.Context, line *model.SaleLine) error {
	return GetDB(ctx, r.db).Create(line).Error
}

func (r *saleRepository) Update(ctx context.Context, sale *model.Sale) error {
	return GetDB(ctx, r.db).Save(sale).Error
}

func (r *saleRepository) FindByID(ctx context.Context, id uint) (*model.Sale, error) {
	var sale model.Sale
	if err := GetDB(ctx, r.db).Preload("Lines").First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListPendingForClient returns pending sales oldest-first. Payment
// allocation walks this order; the id tie-break keeps same-instant sales
// in insertion order.
func (r *saleRepository) ListPendingForClient(ctx context.Context, clientID uint) ([]model.Sale, error) {
	var sales []model.Sale
	if err := GetDB(ctx, r.db).
		Where("client_id = ? AND status = ?", clientID, model.SaleStatusPending).
		Order("created_at asc, id asc").
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *saleRepository) List(ctx context.Context, filter SaleFilter, page, limit int) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Sale{})
	if filter.ClientID != nil {
		db = db.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		db = db.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("created_at <= ?", *filter.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Lines").Order("created_at desc, id desc").
		Offset(offset).Limit(limit).Find(&sales).Error; err != nil {
		return nil, 0, err
	}

	return sales, total, nil
}

func (r *saleRepository) DeleteWithLines(ctx context.Context, id uint) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("sale_id = ?", id).Delete(&model.SaleLine{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Sale{}).Error
}
