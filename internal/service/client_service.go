package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"delipos/internal/apperr"
	"delipos/internal/model"
	"delipos/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateClientRequest struct {
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
	CreditLimit string `json:"credit_limit"`
}

// UpdateClientRequest deliberately has no debt field: total_debt is owned by
// the ledger engine.
type UpdateClientRequest struct {
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
	CreditLimit string `json:"credit_limit"`
}

type ClientService interface {
	CreateClient(ctx context.Context, req CreateClientRequest) (*model.Client, error)
	UpdateClient(ctx context.Context, id uint, req UpdateClientRequest) (*model.Client, error)
	DeleteClient(ctx context.Context, id uint) error
	GetClient(ctx context.Context, id uint) (*model.Client, error)
	SearchClients(ctx context.Context, query string, page, limit int) ([]model.Client, int64, error)
	AvailableCredit(ctx context.Context, id uint) (decimal.Decimal, error)
	CanBuy(ctx context.Context, id uint, amount string) (bool, error)
}

type clientService struct {
	clientRepo repository.ClientRepository
	txManager  repository.TransactionManager
}

func NewClientService(clientRepo repository.ClientRepository, txManager repository.TransactionManager) ClientService {
	return &clientService{clientRepo: clientRepo, txManager: txManager}
}

func (s *clientService) CreateClient(ctx context.Context, req CreateClientRequest) (*model.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}
	creditLimit, err := parseNonNegative("credit_limit", req.CreditLimit)
	if err != nil {
		return nil, err
	}

	client := &model.Client{
		Name:        name,
		Phone:       req.Phone,
		Address:     req.Address,
		Notes:       req.Notes,
		CreditLimit: creditLimit,
		TotalDebt:   decimal.Zero,
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.clientRepo.FindByName(txCtx, name); err == nil {
			return fmt.Errorf("%w: client %q", apperr.ErrDuplicateName, name)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.FromDB(err)
		}
		if err := s.clientRepo.Create(txCtx, client); err != nil {
			return fmt.Errorf("failed to create client: %w", apperr.FromDB(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) UpdateClient(ctx context.Context, id uint, req UpdateClientRequest) (*model.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}
	creditLimit, err := parseNonNegative("credit_limit", req.CreditLimit)
	if err != nil {
		return nil, err
	}

	var client *model.Client
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.clientRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("client %d: %w", id, apperr.FromDB(err))
		}
		if existing, err := s.clientRepo.FindByName(txCtx, name); err == nil && existing.ID != id {
			return fmt.Errorf("%w: client %q", apperr.ErrDuplicateName, name)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.FromDB(err)
		}

		found.Name = name
		found.Phone = req.Phone
		found.Address = req.Address
		found.Notes = req.Notes
		found.CreditLimit = creditLimit
		if err := s.clientRepo.Update(txCtx, found); err != nil {
			return fmt.Errorf("failed to update client: %w", apperr.FromDB(err))
		}
		client = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// DeleteClient refuses while the client still owes money; the history would
// become unaccountable.
func (s *clientService) DeleteClient(ctx context.Context, id uint) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		client, err := s.clientRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("client %d: %w", id, apperr.FromDB(err))
		}
		if client.TotalDebt.IsPositive() {
			return fmt.Errorf("%w: client %q owes %s", apperr.ErrOutstandingDebt, client.Name, client.TotalDebt.String())
		}
		if err := s.clientRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}
		return nil
	})
}

func (s *clientService) GetClient(ctx context.Context, id uint) (*model.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("client %d: %w", id, apperr.FromDB(err))
	}
	return client, nil
}

func (s *clientService) SearchClients(ctx context.Context, query string, page, limit int) ([]model.Client, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.clientRepo.Search(ctx, query, page, limit)
}

// AvailableCredit is max(0, credit_limit - total_debt).
func (s *clientService) AvailableCredit(ctx context.Context, id uint) (decimal.Decimal, error) {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return clampZero(client.CreditLimit.Sub(client.TotalDebt)), nil
}

func (s *clientService) CanBuy(ctx context.Context, id uint, amount string) (bool, error) {
	value, err := parsePositive("amount", amount)
	if err != nil {
		return false, err
	}
	available, err := s.AvailableCredit(ctx, id)
	if err != nil {
		return false, err
	}
	return available.GreaterThanOrEqual(value), nil
}
