package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"delipos/internal/apperr"
	"delipos/internal/model"
	"delipos/internal/repository"
)

// --- DTOs ---

type ExpenseRequest struct {
	Description string     `json:"description" binding:"required"`
	Amount      string     `json:"amount" binding:"required"`
	Date        *time.Time `json:"date"`
}

type ExpenseService interface {
	CreateExpense(ctx context.Context, userID string, req ExpenseRequest) (*model.Expense, error)
	UpdateExpense(ctx context.Context, id uint, req ExpenseRequest) (*model.Expense, error)
	DeleteExpense(ctx context.Context, id uint) error
	GetExpense(ctx context.Context, id uint) (*model.Expense, error)
	ListExpenses(ctx context.Context, filter repository.ExpenseFilter, page, limit int) ([]model.Expense, int64, error)
}

type expenseService struct {
	expenseRepo repository.ExpenseRepository
	txManager   repository.TransactionManager
}

func NewExpenseService(expenseRepo repository.ExpenseRepository, txManager repository.TransactionManager) ExpenseService {
	return &expenseService{expenseRepo: expenseRepo, txManager: txManager}
}

func (s *expenseService) CreateExpense(ctx context.Context, userID string, req ExpenseRequest) (*model.Expense, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, apperr.Validationf("description is required")
	}
	amount, err := parsePositive("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	expense := &model.Expense{
		Description: description,
		Amount:      amount,
		Date:        date,
		UserID:      parseUserID(userID),
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.expenseRepo.Create(txCtx, expense)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return expense, nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, id uint, req ExpenseRequest) (*model.Expense, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, apperr.Validationf("description is required")
	}
	amount, err := parsePositive("amount", req.Amount)
	if err != nil {
		return nil, err
	}

	var expense *model.Expense
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.expenseRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("expense %d: %w", id, apperr.FromDB(err))
		}
		found.Description = description
		found.Amount = amount
		if req.Date != nil {
			found.Date = *req.Date
		}
		if err := s.expenseRepo.Update(txCtx, found); err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		expense = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, id uint) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.expenseRepo.FindByID(txCtx, id); err != nil {
			return fmt.Errorf("expense %d: %w", id, apperr.FromDB(err))
		}
		return s.expenseRepo.Delete(txCtx, id)
	})
}

func (s *expenseService) GetExpense(ctx context.Context, id uint) (*model.Expense, error) {
	expense, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("expense %d: %w", id, apperr.FromDB(err))
	}
	return expense, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, filter repository.ExpenseFilter, page, limit int) ([]model.Expense, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.expenseRepo.List(ctx, filter, page, limit)
}
