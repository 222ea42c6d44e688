package repository

import (
	"context"
	"strings"

	"delipos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByName(ctx context.Context, name string) (*model.Product, error)
	List(ctx context.Context, page, limit int, search string) ([]model.Product, int64, error)
	SearchByPrefix(ctx context.Context, prefix string, limit int) ([]model.Product, error)
	UpdateStock(ctx context.Context, id uint, stock decimal.Decimal) error
	CountReferences(ctx context.Context, id uint) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Save(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Product{}).Error
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByName matches case-insensitively; product names are unique modulo case.
func (r *productRepository) FindByName(ctx context.Context, name string) (*model.Product, error) {
	var product model.Product
	folded := strings.ToLower(strings.TrimSpace(name))
	if err := GetDB(ctx, r.db).Where("LOWER(name) = ?", folded).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, page, limit int, search string) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Product{})
	if search != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]model.Product, error) {
	var products []model.Product
	if err := GetDB(ctx, r.db).
		Where("LOWER(name) LIKE ?", strings.ToLower(prefix)+"%").
		Order("name asc").Limit(limit).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateStock writes the stock level. Tx-only: stock is owned by the ledger
// engine's single stock-mutating primitive.
func (r *productRepository) UpdateStock(ctx context.Context, id uint, stock decimal.Decimal) error {
	db, err := TxDB(ctx)
	if err != nil {
		return err
	}
	return db.Model(&model.Product{}).Where("id = ?", id).Update("stock", stock).Error
}

// CountReferences counts sale and purchase lines pointing at the product.
// A referenced product cannot be deleted.
func (r *productRepository) CountReferences(ctx context.Context, id uint) (int64, error) {
	var saleRefs, purchaseRefs int64
	db := GetDB(ctx, r.db)
	if err := db.Model(&model.SaleLine{}).Where("product_id = ?", id).Count(&saleRefs).Error; err != nil {
		return 0, err
	}
	if err := db.Model(&model.PurchaseLine{}).Where("product_id = ?", id).Count(&purchaseRefs).Error; err != nil {
		return 0, err
	}
	return saleRefs + purchaseRefs, nil
}
