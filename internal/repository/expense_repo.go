package repository

import (
	"context"
	"time"

	"delipos/internal/model"

	"gorm.io/gorm"
)

// ExpenseFilter narrows expense listings.
type ExpenseFilter struct {
	From *time.Time
	To   *time.Time
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *model.Expense) error
	Update(ctx context.Context, expense *model.Expense) error
	FindByID(ctx context.Context, id uint) (*model.Expense, error)
	List(ctx context.Context, filter ExpenseFilter, page, limit int) ([]model.Expense, int64, error)
	Delete(ctx context.Context, id uint) error
}

type expenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	return GetDB(ctx, r.db).Create(expense).Error
}

func (r *expenseRepository) Update(ctx context.Context, expense *model.Expense) error {
	return GetDB(ctx, r.db).Save(expense).Error
}

func (r *expenseRepository) FindByID(ctx context.Context, id uint) (*model.Expense, error) {
	var expense model.Expense
	if err := GetDB(ctx, r.db).First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) List(ctx context.Context, filter ExpenseFilter, page, limit int) ([]model.Expense, int64, error) {
	var expenses []model.Expense
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Expense{})
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
	if err := db.Order("date desc, id desc").Offset(offset).Limit(limit).Find(&expenses).Error; err != nil {
		return nil, 0, err
	}

	return expenses, total, nil
}

func (r *expenseRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Expense{}).Error
}
