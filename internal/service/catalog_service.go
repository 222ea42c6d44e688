package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"delipos/internal/apperr"
	"delipos/internal/model"
	"delipos/internal/repository"

	"gorm.io/gorm"
)

// --- DTOs ---

type CreateProductRequest struct {
	Name      string `json:"name" binding:"required"`
	SalePrice string `json:"sale_price" binding:"required"`
	CostPrice string `json:"cost_price"`
	Stock     string `json:"stock"`
}

type UpdateProductRequest struct {
	Name      string `json:"name" binding:"required"`
	SalePrice string `json:"sale_price" binding:"required"`
	CostPrice string `json:"cost_price"`
}

// ImportOutcome reports what happened to one row of a bulk import.
type ImportOutcome struct {
	Row    int    `json:"row"`
	Name   string `json:"name"`
	Result string `json:"result"` // inserted, updated, rejected
	Reason string `json:"reason,omitempty"`
}

const (
	ImportInserted = "inserted"
	ImportUpdated  = "updated"
	ImportRejected = "rejected"
)

type CatalogService interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, req UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	GetProductByName(ctx context.Context, name string) (*model.Product, error)
	ListProducts(ctx context.Context, page, limit int, search string) ([]model.Product, int64, error)
	SearchByPrefix(ctx context.Context, prefix string, limit int) ([]model.Product, error)
	ImportRows(ctx context.Context, rows [][]string) ([]ImportOutcome, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	txManager   repository.TransactionManager
}

func NewCatalogService(productRepo repository.ProductRepository, txManager repository.TransactionManager) CatalogService {
	return &catalogService{productRepo: productRepo, txManager: txManager}
}

func (s *catalogService) CreateProduct(ctx context.Context, req CreateProductRequest) (*model.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}
	salePrice, err := parsePositive("sale_price", req.SalePrice)
	if err != nil {
		return nil, err
	}
	costPrice, err := parseNonNegative("cost_price", req.CostPrice)
	if err != nil {
		return nil, err
	}
	stock, err := parseNonNegative("stock", req.Stock)
	if err != nil {
		return nil, err
	}

	product := &model.Product{Name: name, SalePrice: salePrice, CostPrice: costPrice, Stock: stock}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.productRepo.FindByName(txCtx, name); err == nil {
			return fmt.Errorf("%w: product %q", apperr.ErrDuplicateName, name)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.FromDB(err)
		}
		if err := s.productRepo.Create(txCtx, product); err != nil {
			return fmt.Errorf("failed to create product: %w", apperr.FromDB(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uint, req UpdateProductRequest) (*model.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}
	salePrice, err := parsePositive("sale_price", req.SalePrice)
	if err != nil {
		return nil, err
	}

	var product *model.Product
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.productRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("product %d: %w", id, apperr.FromDB(err))
		}
		if existing, err := s.productRepo.FindByName(txCtx, name); err == nil && existing.ID != id {
			return fmt.Errorf("%w: product %q", apperr.ErrDuplicateName, name)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.FromDB(err)
		}

		found.Name = name
		found.SalePrice = salePrice
		if req.CostPrice != "" {
			costPrice, err := parseNonNegative("cost_price", req.CostPrice)
			if err != nil {
				return err
			}
			found.CostPrice = costPrice
		}
		if err := s.productRepo.Update(txCtx, found); err != nil {
			return fmt.Errorf("failed to update product: %w", apperr.FromDB(err))
		}
		product = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct refuses to remove a product that sale or purchase history
// still points at.
func (s *catalogService) DeleteProduct(ctx context.Context, id uint) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.productRepo.FindByID(txCtx, id); err != nil {
			return fmt.Errorf("product %d: %w", id, apperr.FromDB(err))
		}
		refs, err := s.productRepo.CountReferences(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to count references: %w", err)
		}
		if refs > 0 {
			return fmt.Errorf("%w: product %d has %d referencing lines", apperr.ErrReferencedEntity, id, refs)
		}
		if err := s.productRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
}

func (s *catalogService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", id, apperr.FromDB(err))
	}
	return product, nil
}

func (s *catalogService) GetProductByName(ctx context.Context, name string) (*model.Product, error) {
	product, err := s.productRepo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("product %q: %w", name, apperr.FromDB(err))
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, page, limit int, search string) ([]model.Product, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.productRepo.List(ctx, page, limit, search)
}

func (s *catalogService) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.productRepo.SearchByPrefix(ctx, prefix, limit)
}

// ImportRows bulk-imports a product table. The first row must be the header
// {name, price, stock}; every following row is upserted on its case-folded
// name and reported individually, so one bad row never sinks the batch.
func (s *catalogService) ImportRows(ctx context.Context, rows [][]string) ([]ImportOutcome, error) {
	if len(rows) == 0 {
		return nil, apperr.Validationf("import is empty")
	}
	if err := validateImportHeader(rows[0]); err != nil {
		return nil, err
	}

	outcomes := make([]ImportOutcome, 0, len(rows)-1)
	seen := make(map[string]bool)
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, counting the header
		outcome := ImportOutcome{Row: rowNum}
		if len(row) < 3 {
			outcome.Result = ImportRejected
			outcome.Reason = "expected 3 columns (name, price, stock)"
			outcomes = append(outcomes, outcome)
			continue
		}

		name := strings.TrimSpace(row[0])
		outcome.Name = name
		folded := strings.ToLower(name)
		if name == "" {
			outcome.Result = ImportRejected
			outcome.Reason = "name is empty"
			outcomes = append(outcomes, outcome)
			continue
		}
		if seen[folded] {
			outcome.Result = ImportRejected
			outcome.Reason = "duplicate name within import"
			outcomes = append(outcomes, outcome)
			continue
		}
		seen[folded] = true

		price, err := parsePositive("price", strings.TrimSpace(row[1]))
		if err != nil {
			outcome.Result = ImportRejected
			outcome.Reason = err.Error()
			outcomes = append(outcomes, outcome)
			continue
		}
		stock, err := parseNonNegative("stock", strings.TrimSpace(row[2]))
		if err != nil {
			outcome.Result = ImportRejected
			outcome.Reason = err.Error()
			outcomes = append(outcomes, outcome)
			continue
		}

		err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			existing, err := s.productRepo.FindByName(txCtx, name)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				outcome.Result = ImportInserted
				return s.productRepo.Create(txCtx, &model.Product{Name: name, SalePrice: price, Stock: stock})
			}
			if err != nil {
				return apperr.FromDB(err)
			}
			existing.SalePrice = price
			existing.Stock = stock
			outcome.Result = ImportUpdated
			return s.productRepo.Update(txCtx, existing)
		})
		if err != nil {
			outcome.Result = ImportRejected
			outcome.Reason = err.Error()
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func validateImportHeader(header []string) error {
	want := []string{"name", "price", "stock"}
	if len(header) < len(want) {
		return apperr.Validationf("header must be {name, price, stock}")
	}
	for i, col := range want {
		if strings.ToLower(strings.TrimSpace(header[i])) != col {
			return apperr.Validationf("header column %d must be %q, got %q", i+1, col, header[i])
		}
	}
	return nil
}
