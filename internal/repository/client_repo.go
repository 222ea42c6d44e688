package repository

import (
	"context"
	"strings"

	"delipos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Client, error)
	FindByName(ctx context.Context, name string) (*model.Client, error)
	Search(ctx context.Context, query string, page, limit int) ([]model.Client, int64, error)
	UpdateDebt(ctx context.Context, id uint, debt decimal.Decimal) error
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Create(client).Error
}

func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Client{}).Error
}

func (r *clientRepository) FindByID(ctx context.Context, id uint) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) FindByName(ctx context.Context, name string) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).Where("name = ?", strings.TrimSpace(name)).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// Search matches a substring of the name or the phone number.
func (r *clientRepository) Search(ctx context.Context, query string, page, limit int) ([]model.Client, int64, error) {
	var clients []model.Client
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Client{})
	if query != "" {
		like := "%" + strings.ToLower(query) + "%"
		db = db.Where("LOWER(name) LIKE ? OR phone LIKE ?", like, "%"+query+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&clients).Error; err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}

// UpdateDebt writes the cached total. Tx-only; nothing outside the ledger
// engine touches this column.
func (r *clientRepository) UpdateDebt(ctx context.Context, id uint, debt decimal.Decimal) error {
	db, err := TxDB(ctx)
	if err != nil {
		return err
	}
	return db.Model(&model.Client{}).Where("id = ?", id).Update("total_debt", debt).Error
}
