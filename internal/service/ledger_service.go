package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"delipos/internal/apperr"
	"delipos/internal/model"
	"delipos/internal/repository"
	"delipos/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// noteTimeFormat matches the normalized date format used everywhere the
// engine writes timestamps into free text.
const noteTimeFormat = "2006-01-02 15:04:05"

// --- DTOs ---

type SaleLineRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  string `json:"quantity" binding:"required"` // decimal string
	UnitPrice string `json:"unit_price" binding:"required"`
}

type RecordSaleRequest struct {
	Lines         []SaleLineRequest `json:"lines" binding:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" binding:"required,oneof=cash credit"`
	ClientID      *uint             `json:"client_id"`
	Notes         string            `json:"notes"`
}

type PurchaseLineRequest struct {
	ProductID   *uint  `json:"product_id"`
	ProductName string `json:"product_name"` // used when product_id is absent; product is created if unknown
	Quantity    string `json:"quantity" binding:"required"`
	UnitCost    string `json:"unit_cost" binding:"required"`
}

type RecordPurchaseRequest struct {
	Supplier      string                `json:"supplier" binding:"required"`
	InvoiceNumber string                `json:"invoice_number"`
	Freight       string                `json:"freight"`
	Tax           string                `json:"tax"`
	Date          *time.Time            `json:"date"`
	Lines         []PurchaseLineRequest `json:"lines" binding:"required,min=1,dive"`
}

type RecordLossRequest struct {
	ProductID uint       `json:"product_id" binding:"required"`
	Quantity  string     `json:"quantity" binding:"required"`
	UnitCost  string     `json:"unit_cost"` // defaults to the product's cost price
	LossType  string     `json:"loss_type"`
	Reason    string     `json:"reason"`
	Date      *time.Time `json:"date"`
}

type ApplyPaymentRequest struct {
	ClientID    uint   `json:"client_id"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description"`
}

// PaymentResult summarizes what a payment did.
type PaymentResult struct {
	DebtReduced   decimal.Decimal `json:"debt_reduced"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
	TotalDebt     decimal.Decimal `json:"total_debt"`
	SalesSettled  int             `json:"sales_settled"`
	SalesPartial  int             `json:"sales_partial"`
}

// LedgerService is the orchestrator: the only component allowed to mutate
// more than one table in a single operation. Stock, client.total_debt and
// sale status change only inside its transactions.
type LedgerService interface {
	RecordSale(ctx context.Context, userID string, req RecordSaleRequest) (*model.Sale, error)
	DeleteSale(ctx context.Context, saleID uint) error
	RecordPurchase(ctx context.Context, userID string, req RecordPurchaseRequest) (*model.Purchase, error)
	DeletePurchase(ctx context.Context, purchaseID uint) error
	RecordLoss(ctx context.Context, userID string, req RecordLossRequest) (*model.Loss, error)
	DeleteLoss(ctx context.Context, lossID uint) error
	ApplyPayment(ctx context.Context, req ApplyPaymentRequest) (*PaymentResult, error)
	RecomputeDebt(ctx context.Context, clientID uint) (decimal.Decimal, error)
}

type ledgerService struct {
	productRepo  repository.ProductRepository
	clientRepo   repository.ClientRepository
	saleRepo     repository.SaleRepository
	purchaseRepo repository.PurchaseRepository
	lossRepo     repository.LossRepository
	txRepo       repository.TransactionRepository
	movementRepo repository.MovementRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub

	enforceCreditLimit bool
}

func NewLedgerService(
	productRepo repository.ProductRepository,
	clientRepo repository.ClientRepository,
	saleRepo repository.SaleRepository,
	purchaseRepo repository.PurchaseRepository,
	lossRepo repository.LossRepository,
	txRepo repository.TransactionRepository,
	movementRepo repository.MovementRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
	enforceCreditLimit bool,
) LedgerService {
	return &ledgerService{
		productRepo:        productRepo,
		clientRepo:         clientRepo,
		saleRepo:           saleRepo,
		purchaseRepo:       purchaseRepo,
		lossRepo:           lossRepo,
		txRepo:             txRepo,
		movementRepo:       movementRepo,
		txManager:          txManager,
		hub:                hub,
		enforceCreditLimit: enforceCreditLimit,
	}
}

// --- helpers ---

func parseUserID(userID string) *uuid.UUID {
	if parsed, err := uuid.Parse(userID); err == nil {
		return &parsed
	}
	return nil
}

func parsePositive(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, apperr.Validationf("%s is not numeric: %q", field, value)
	}
	if !d.IsPositive() {
		return decimal.Zero, apperr.Validationf("%s must be greater than 0", field)
	}
	return d, nil
}

func parseNonNegative(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, apperr.Validationf("%s is not numeric: %q", field, value)
	}
	if d.IsNegative() {
		return decimal.Zero, apperr.Validationf("%s must not be negative", field)
	}
	return d, nil
}

func appendNote(notes, note string) string {
	if notes == "" {
		return note
	}
	return notes + "\n" + note
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// adjustStock is the single stock-mutating primitive. It rejects a decrement
// below zero, persists the new level and journals the movement. Callable
// only from inside an engine transaction.
func (s *ledgerService) adjustStock(txCtx context.Context, product *model.Product, delta decimal.Decimal, kind string, refID *uint) error {
	newStock := product.Stock.Add(delta)
	if newStock.IsNegative() {
		return fmt.Errorf("%w: product %d (%s) has %s in stock, requested %s",
			apperr.ErrInsufficientStock, product.ID, product.Name, product.Stock.String(), delta.Neg().String())
	}
	if err := s.productRepo.UpdateStock(txCtx, product.ID, newStock); err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	product.Stock = newStock
	movement := &model.StockMovement{
		ProductID:  product.ID,
		Kind:       kind,
		Quantity:   delta,
		StockAfter: newStock,
		RefID:      refID,
	}
	if err := s.movementRepo.Create(txCtx, movement); err != nil {
		return fmt.Errorf("failed to journal stock movement: %w", err)
	}
	return nil
}

// --- RecordSale ---

func (s *ledgerService) RecordSale(ctx context.Context, userID string, req RecordSaleRequest) (*model.Sale, error) {
	if req.PaymentMethod != model.PaymentCash && req.PaymentMethod != model.PaymentCredit {
		return nil, apperr.Validationf("unknown payment method %q", req.PaymentMethod)
	}
	// payment_method = credit <=> client is set
	if req.PaymentMethod == model.PaymentCredit && req.ClientID == nil {
		return nil, fmt.Errorf("%w", apperr.ErrMissingClient)
	}
	if req.PaymentMethod == model.PaymentCash && req.ClientID != nil {
		return nil, apperr.Validationf("a cash sale cannot carry a client")
	}
	if len(req.Lines) == 0 {
		return nil, apperr.Validationf("a sale needs at least one line")
	}

	type resolvedLine struct {
		productID uint
		quantity  decimal.Decimal
		unitPrice decimal.Decimal
		subtotal  decimal.Decimal
	}
	resolved := make([]resolvedLine, 0, len(req.Lines))
	total := decimal.Zero
	for i, line := range req.Lines {
		qty, err := parsePositive(fmt.Sprintf("line %d quantity", i+1), line.Quantity)
		if err != nil {
			return nil, err
		}
		price, err := parsePositive(fmt.Sprintf("line %d unit price", i+1), line.UnitPrice)
		if err != nil {
			return nil, err
		}
		subtotal := qty.Mul(price)
		total = total.Add(subtotal)
		resolved = append(resolved, resolvedLine{productID: line.ProductID, quantity: qty, unitPrice: price, subtotal: subtotal})
	}

	var sale *model.Sale
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var client *model.Client
		if req.ClientID != nil {
			found, err := s.clientRepo.FindByID(txCtx, *req.ClientID)
			if err != nil {
				return fmt.Errorf("client %d: %w", *req.ClientID, apperr.FromDB(err))
			}
			client = found
			if s.enforceCreditLimit && client.TotalDebt.Add(total).GreaterThan(client.CreditLimit) {
				return fmt.Errorf("%w: debt %s + sale %s exceeds limit %s",
					apperr.ErrCreditLimitExceeded, client.TotalDebt.String(), total.String(), client.CreditLimit.String())
			}
		}

		// Aggregate duplicate product lines before the stock check so a sale
		// listing the same product twice cannot slip past available stock.
		products := make(map[uint]*model.Product)
		aggregated := make(map[uint]decimal.Decimal)
		order := make([]uint, 0, len(resolved))
		for _, line := range resolved {
			if _, seen := products[line.productID]; !seen {
				product, err := s.productRepo.FindByID(txCtx, line.productID)
				if err != nil {
					return fmt.Errorf("product %d: %w", line.productID, apperr.FromDB(err))
				}
				products[line.productID] = product
				order = append(order, line.productID)
			}
			aggregated[line.productID] = aggregated[line.productID].Add(line.quantity)
		}
		for _, productID := range order {
			product := products[productID]
			if aggregated[productID].GreaterThan(product.Stock) {
				return fmt.Errorf("%w: product %d (%s) has %s in stock, requested %s",
					apperr.ErrInsufficientStock, product.ID, product.Name, product.Stock.String(), aggregated[productID].String())
			}
		}

		status := model.SaleStatusPaid
		if req.PaymentMethod == model.PaymentCredit {
			status = model.SaleStatusPending
		}
		sale = &model.Sale{
			ClientID:      req.ClientID,
			Total:         total,
			Status:        status,
			PaymentMethod: req.PaymentMethod,
			Notes:         req.Notes,
			UserID:        parseUserID(userID),
		}
		if err := s.saleRepo.Create(txCtx, sale); err != nil {
			return fmt.Errorf("failed to create sale: %w", apperr.FromDB(err))
		}
		for _, line := range resolved {
			saleLine := &model.SaleLine{
				SaleID:    sale.ID,
				ProductID: line.productID,
				Quantity:  line.quantity,
				UnitPrice: line.unitPrice,
				Subtotal:  line.subtotal,
			}
			if err := s.saleRepo.CreateLine(txCtx, saleLine); err != nil {
				return fmt.Errorf("failed to create sale line: %w", err)
			}
			sale.Lines = append(sale.Lines, *saleLine)
		}
		for _, productID := range order {
			if err := s.adjustStock(txCtx, products[productID], aggregated[productID].Neg(), model.MoveSaleOut, &sale.ID); err != nil {
				return err
			}
		}

		if client != nil {
			debit := &model.ClientTransaction{
				ClientID:    client.ID,
				Type:        model.TxDebit,
				Amount:      total,
				Description: fmt.Sprintf("Credit sale #%d", sale.ID),
				SaleID:      &sale.ID,
			}
			if err := s.txRepo.Append(txCtx, debit); err != nil {
				return fmt.Errorf("failed to append debit: %w", err)
			}
			if err := s.clientRepo.UpdateDebt(txCtx, client.ID, client.TotalDebt.Add(total)); err != nil {
				return fmt.Errorf("failed to update client debt: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish("sale_recorded", map[string]interface{}{
		"sale_id": sale.ID, "total": sale.Total.String(), "status": sale.Status,
	})
	if req.ClientID != nil {
		s.hub.Publish("debt_changed", map[string]interface{}{"client_id": *req.ClientID})
	}
	return sale, nil
}

// --- DeleteSale ---

// DeleteSale reverses a sale: stock comes back for every line, and a pending
// credit sale gets a debit_reversal for its current remaining total, so a
// partially paid then reversed sale never double-counts earlier credits.
func (s *ledgerService) DeleteSale(ctx context.Context, saleID uint) error {
	var clientID *uint
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		sale, err := s.saleRepo.FindByID(txCtx, saleID)
		if err != nil {
			return fmt.Errorf("sale %d: %w", saleID, apperr.FromDB(err))
		}

		for _, line := range sale.Lines {
			product, err := s.productRepo.FindByID(txCtx, line.ProductID)
			if err != nil {
				return fmt.Errorf("product %d: %w", line.ProductID, apperr.FromDB(err))
			}
			if err := s.adjustStock(txCtx, product, line.Quantity, model.MoveSaleReversal, &sale.ID); err != nil {
				return err
			}
		}

		if sale.Status == model.SaleStatusPending && sale.ClientID != nil {
			clientID = sale.ClientID
			client, err := s.clientRepo.FindByID(txCtx, *sale.ClientID)
			if err != nil {
				return fmt.Errorf("client %d: %w", *sale.ClientID, apperr.FromDB(err))
			}
			reversal := &model.ClientTransaction{
				ClientID:    client.ID,
				Type:        model.TxDebitReversal,
				Amount:      sale.Total,
				Description: fmt.Sprintf("Reversal of sale #%d", sale.ID),
				SaleID:      &sale.ID,
			}
			if err := s.txRepo.Append(txCtx, reversal); err != nil {
				return fmt.Errorf("failed to append debit reversal: %w", err)
			}
			if err := s.clientRepo.UpdateDebt(txCtx, client.ID, clampZero(client.TotalDebt.Sub(sale.Total))); err != nil {
				return fmt.Errorf("failed to update client debt: %w", err)
			}
		}

		if err := s.saleRepo.DeleteWithLines(txCtx, sale.ID); err != nil {
			return fmt.Errorf("failed to delete sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.Publish("sale_deleted", map[string]interface{}{"sale_id": saleID})
	if clientID != nil {
		s.hub.Publish("debt_changed", map[string]interface{}{"client_id": *clientID})
	}
	return nil
}

// --- ApplyPayment ---

// ApplyPayment settles the client's pending sales oldest-first. A payment
// larger than the oldest sale rolls over to the next one; a payment smaller
// than it reduces that sale's stored total in place. Whatever is left after
// all pending sales are settled becomes an explicit credit_balance entry,
// never a negative debt.
func (s *ledgerService) ApplyPayment(ctx context.Context, req ApplyPaymentRequest) (*PaymentResult, error) {
	amount, err := parsePositive("amount", req.Amount)
	if err != nil {
		return nil, err
	}

	result := &PaymentResult{}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		client, err := s.clientRepo.FindByID(txCtx, req.ClientID)
		if err != nil {
			return fmt.Errorf("client %d: %w", req.ClientID, apperr.FromDB(err))
		}

		pending, err := s.saleRepo.ListPendingForClient(txCtx, client.ID)
		if err != nil {
			return fmt.Errorf("failed to list pending sales: %w", err)
		}

		remaining := amount
		debtReduced := decimal.Zero
		now := time.Now().Format(noteTimeFormat)

		for i := range pending {
			if !remaining.IsPositive() {
				break
			}
			sale := &pending[i]
			if remaining.GreaterThanOrEqual(sale.Total) {
				remaining = remaining.Sub(sale.Total)
				debtReduced = debtReduced.Add(sale.Total)
				sale.Status = model.SaleStatusPaid
				sale.Notes = appendNote(sale.Notes, "PAID on "+now)
				result.SalesSettled++
			} else {
				newTotal := sale.Total.Sub(remaining)
				sale.Notes = appendNote(sale.Notes,
					fmt.Sprintf("partial %s on %s, balance %s", remaining.String(), now, newTotal.String()))
				sale.Total = newTotal
				debtReduced = debtReduced.Add(remaining)
				remaining = decimal.Zero
				result.SalesPartial++
			}
			if err := s.saleRepo.Update(txCtx, sale); err != nil {
				return fmt.Errorf("failed to update sale %d: %w", sale.ID, err)
			}
		}

		newDebt := clampZero(client.TotalDebt.Sub(debtReduced))
		if err := s.clientRepo.UpdateDebt(txCtx, client.ID, newDebt); err != nil {
			return fmt.Errorf("failed to update client debt: %w", err)
		}

		if debtReduced.IsPositive() {
			credit := &model.ClientTransaction{
				ClientID:    client.ID,
				Type:        model.TxCredit,
				Amount:      debtReduced,
				Description: req.Description,
			}
			if err := s.txRepo.Append(txCtx, credit); err != nil {
				return fmt.Errorf("failed to append credit: %w", err)
			}
		}
		if remaining.IsPositive() {
			// Overpayment: money held for the client, reduces no debt.
			balance := &model.ClientTransaction{
				ClientID:    client.ID,
				Type:        model.TxCreditBalance,
				Amount:      remaining,
				Description: appendNote(req.Description, "credit in favor"),
			}
			if err := s.txRepo.Append(txCtx, balance); err != nil {
				return fmt.Errorf("failed to append credit balance: %w", err)
			}
		}

		// Cache/log disagreement: debt hit zero while sales still show
		// pending. Close them out so I4 holds.
		if newDebt.IsZero() {
			stillPending, err := s.saleRepo.ListPendingForClient(txCtx, client.ID)
			if err != nil {
				return fmt.Errorf("failed to recheck pending sales: %w", err)
			}
			for i := range stillPending {
				sale := &stillPending[i]
				sale.Status = model.SaleStatusPaid
				sale.Notes = appendNote(sale.Notes, "reconciled as paid on "+now)
				if err := s.saleRepo.Update(txCtx, sale); err != nil {
					return fmt.Errorf("failed to reconcile sale %d: %w", sale.ID, err)
				}
				result.SalesSettled++
			}
		}

		result.DebtReduced = debtReduced
		result.CreditBalance = remaining
		result.TotalDebt = newDebt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish("debt_changed", map[string]interface{}{
		"client_id": req.ClientID, "total_debt": result.TotalDebt.String(),
	})
	return result, nil
}

// --- RecordPurchase ---

// RecordPurchase registers a supplier invoice. Freight and tax are split
// evenly across line count, not weighted by value; unknown products are
// created on the fly with a default sale price of 1.3x unit cost.
func (s *ledgerService) RecordPurchase(ctx context.Context, userID string, req RecordPurchaseRequest) (*model.Purchase, error) {
	freight, err := parseNonNegative("freight", req.Freight)
	if err != nil {
		return nil, err
	}
	tax, err := parseNonNegative("tax", req.Tax)
	if err != nil {
		return nil, err
	}
	if len(req.Lines) == 0 {
		return nil, apperr.Validationf("a purchase needs at least one line")
	}

	type resolvedLine struct {
		productID   *uint
		productName string
		quantity    decimal.Decimal
		unitCost    decimal.Decimal
		subtotal    decimal.Decimal
	}
	resolved := make([]resolvedLine, 0, len(req.Lines))
	linesTotal := decimal.Zero
	for i, line := range req.Lines {
		if line.ProductID == nil && line.ProductName == "" {
			return nil, apperr.Validationf("line %d needs a product id or name", i+1)
		}
		qty, err := parsePositive(fmt.Sprintf("line %d quantity", i+1), line.Quantity)
		if err != nil {
			return nil, err
		}
		cost, err := parsePositive(fmt.Sprintf("line %d unit cost", i+1), line.UnitCost)
		if err != nil {
			return nil, err
		}
		subtotal := qty.Mul(cost)
		linesTotal = linesTotal.Add(subtotal)
		resolved = append(resolved, resolvedLine{
			productID: line.ProductID, productName: line.ProductName,
			quantity: qty, unitCost: cost, subtotal: subtotal,
		})
	}

	lineCount := decimal.NewFromInt(int64(len(resolved)))
	freightShare := freight.Div(lineCount)
	taxShare := tax.Div(lineCount)

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	var purchase *model.Purchase
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		purchase = &model.Purchase{
			Supplier:      req.Supplier,
			InvoiceNumber: req.InvoiceNumber,
			Total:         linesTotal.Add(freight).Add(tax),
			Tax:           tax,
			Freight:       freight,
			Date:          date,
			UserID:        parseUserID(userID),
		}
		if err := s.purchaseRepo.Create(txCtx, purchase); err != nil {
			return fmt.Errorf("failed to create purchase: %w", apperr.FromDB(err))
		}

		for _, line := range resolved {
			product, err := s.resolvePurchaseProduct(txCtx, line.productID, line.productName, line.unitCost)
			if err != nil {
				return err
			}
			// Each purchase refreshes the product's cost price.
			product.CostPrice = line.unitCost
			if err := s.productRepo.Update(txCtx, product); err != nil {
				return fmt.Errorf("failed to update product cost: %w", err)
			}

			purchaseLine := &model.PurchaseLine{
				PurchaseID:   purchase.ID,
				ProductID:    product.ID,
				Quantity:     line.quantity,
				UnitCost:     line.unitCost,
				Subtotal:     line.subtotal,
				FreightShare: freightShare,
				TaxShare:     taxShare,
			}
			if err := s.purchaseRepo.CreateLine(txCtx, purchaseLine); err != nil {
				return fmt.Errorf("failed to create purchase line: %w", err)
			}
			purchase.Lines = append(purchase.Lines, *purchaseLine)

			if err := s.adjustStock(txCtx, product, line.quantity, model.MovePurchaseIn, &purchase.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish("purchase_recorded", map[string]interface{}{
		"purchase_id": purchase.ID, "total": purchase.Total.String(),
	})
	return purchase, nil
}

// defaultMarkup derives a sale price for products first seen on a purchase.
var defaultMarkup = decimal.NewFromFloat(1.3)

func (s *ledgerService) resolvePurchaseProduct(txCtx context.Context, productID *uint, name string, unitCost decimal.Decimal) (*model.Product, error) {
	if productID != nil {
		product, err := s.productRepo.FindByID(txCtx, *productID)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", *productID, apperr.FromDB(err))
		}
		return product, nil
	}
	product, err := s.productRepo.FindByName(txCtx, name)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %q: %w", name, apperr.FromDB(err))
	}
	created := &model.Product{
		Name:      name,
		SalePrice: unitCost.Mul(defaultMarkup),
		CostPrice: unitCost,
		Stock:     decimal.Zero,
	}
	if err := s.productRepo.Create(txCtx, created); err != nil {
		return nil, fmt.Errorf("failed to create product %q: %w", name, apperr.FromDB(err))
	}
	return created, nil
}

// --- DeletePurchase ---

// DeletePurchase reverses a purchase. If any purchased units have already
// left stock the decrement would go negative, so the whole reversal fails
// and nothing changes.
func (s *ledgerService) DeletePurchase(ctx context.Context, purchaseID uint) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		purchase, err := s.purchaseRepo.FindByID(txCtx, purchaseID)
		if err != nil {
			return fmt.Errorf("purchase %d: %w", purchaseID, apperr.FromDB(err))
		}
		for _, line := range purchase.Lines {
			product, err := s.productRepo.FindByID(txCtx, line.ProductID)
			if err != nil {
				return fmt.Errorf("product %d: %w", line.ProductID, apperr.FromDB(err))
			}
			if err := s.adjustStock(txCtx, product, line.Quantity.Neg(), model.MovePurchaseReversal, &purchase.ID); err != nil {
				return err
			}
		}
		if err := s.purchaseRepo.DeleteWithLines(txCtx, purchase.ID); err != nil {
			return fmt.Errorf("failed to delete purchase: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.Publish("purchase_deleted", map[string]interface{}{"purchase_id": purchaseID})
	return nil
}

// --- RecordLoss / DeleteLoss ---

func (s *ledgerService) RecordLoss(ctx context.Context, userID string, req RecordLossRequest) (*model.Loss, error) {
	qty, err := parsePositive("quantity", req.Quantity)
	if err != nil {
		return nil, err
	}
	unitCost, err := parseNonNegative("unit_cost", req.UnitCost)
	if err != nil {
		return nil, err
	}
	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	var loss *model.Loss
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err := s.productRepo.FindByID(txCtx, req.ProductID)
		if err != nil {
			return fmt.Errorf("product %d: %w", req.ProductID, apperr.FromDB(err))
		}
		if unitCost.IsZero() {
			unitCost = product.CostPrice
		}
		loss = &model.Loss{
			ProductID: product.ID,
			Quantity:  qty,
			UnitCost:  unitCost,
			TotalCost: qty.Mul(unitCost),
			LossType:  req.LossType,
			Reason:    req.Reason,
			Date:      date,
			UserID:    parseUserID(userID),
		}
		if err := s.lossRepo.Create(txCtx, loss); err != nil {
			return fmt.Errorf("failed to create loss: %w", err)
		}
		return s.adjustStock(txCtx, product, qty.Neg(), model.MoveLossOut, &loss.ID)
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish("stock_changed", map[string]interface{}{"product_id": req.ProductID})
	return loss, nil
}

func (s *ledgerService) DeleteLoss(ctx context.Context, lossID uint) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		loss, err := s.lossRepo.FindByID(txCtx, lossID)
		if err != nil {
			return fmt.Errorf("loss %d: %w", lossID, apperr.FromDB(err))
		}
		product, err := s.productRepo.FindByID(txCtx, loss.ProductID)
		if err != nil {
			return fmt.Errorf("product %d: %w", loss.ProductID, apperr.FromDB(err))
		}
		if err := s.adjustStock(txCtx, product, loss.Quantity, model.MoveLossReversal, &loss.ID); err != nil {
			return err
		}
		if err := s.lossRepo.Delete(txCtx, loss.ID); err != nil {
			return fmt.Errorf("failed to delete loss: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.Publish("stock_changed", map[string]interface{}{})
	return nil
}

// --- RecomputeDebt ---

// RecomputeDebt rebuilds the cached total from the transaction log. A
// maintenance operation: under normal operation the cache never drifts.
func (s *ledgerService) RecomputeDebt(ctx context.Context, clientID uint) (decimal.Decimal, error) {
	var debt decimal.Decimal
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.clientRepo.FindByID(txCtx, clientID); err != nil {
			return fmt.Errorf("client %d: %w", clientID, apperr.FromDB(err))
		}
		sum, err := s.txRepo.SignedSum(txCtx, clientID)
		if err != nil {
			return fmt.Errorf("failed to sum transactions: %w", err)
		}
		debt = clampZero(sum)
		return s.clientRepo.UpdateDebt(txCtx, clientID, debt)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return debt, nil
}
