package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"delipos/internal/apperr"
	"delipos/internal/model"
	"delipos/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Report rows mirror the workbook layouts consumed by the spreadsheet
// collaborator; the engine only produces the data, never the files.

type SalesReportRow struct {
	SaleID    uint            `json:"sale_id"`
	Product   string          `json:"product"`
	Client    string          `json:"client"` // "Cash sale" when the sale has no client
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	SaleTotal decimal.Decimal `json:"sale_total"`
	Status    string          `json:"status"` // Paid / Pending
	Date      string          `json:"date"`
}

type PurchasesReportRow struct {
	PurchaseID uint            `json:"purchase_id"`
	Product    string          `json:"product"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Freight    decimal.Decimal `json:"freight"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	Invoice    string          `json:"invoice"`
	Date       string          `json:"date"`
}

type CashFlowRow struct {
	Date        string          `json:"date"`
	Category    string          `json:"category"` // sale, purchase, expense, loss
	Description string          `json:"description"`
	Income      decimal.Decimal `json:"income"`
	Outflow     decimal.Decimal `json:"outflow"`
	Balance     decimal.Decimal `json:"balance"`
}

type CashFlowSummary struct {
	Income    decimal.Decimal `json:"income"`
	Purchases decimal.Decimal `json:"purchases"`
	Expenses  decimal.Decimal `json:"expenses"`
	Losses    decimal.Decimal `json:"losses"`
	Net       decimal.Decimal `json:"net"`
}

type CashFlowReport struct {
	Rows    []CashFlowRow   `json:"rows"`
	Summary CashFlowSummary `json:"summary"`
}

type InventoryFlowRow struct {
	Date        string          `json:"date"`
	Product     string          `json:"product"`
	Movement    string          `json:"movement"`
	Quantity    decimal.Decimal `json:"quantity"`
	StockAfter  decimal.Decimal `json:"stock_after"`
	ValueAtCost decimal.Decimal `json:"value_at_cost"`
}

type ProductValuation struct {
	ProductID uint            `json:"product_id"`
	Product   string          `json:"product"`
	Stock     decimal.Decimal `json:"stock"`
	CostPrice decimal.Decimal `json:"cost_price"`
	Valuation decimal.Decimal `json:"valuation"`
}

type InventoryFlowReport struct {
	Rows    []InventoryFlowRow `json:"rows"`
	Summary []ProductValuation `json:"summary"`
}

type Totals struct {
	Sales     decimal.Decimal `json:"sales"`
	Purchases decimal.Decimal `json:"purchases"`
	Expenses  decimal.Decimal `json:"expenses"`
	Losses    decimal.Decimal `json:"losses"`
}

type ReportService interface {
	SalesReport(ctx context.Context, from, to *time.Time) ([]SalesReportRow, error)
	PurchasesReport(ctx context.Context, from, to *time.Time) ([]PurchasesReportRow, error)
	CashFlow(ctx context.Context, from, to *time.Time) (*CashFlowReport, error)
	InventoryFlow(ctx context.Context, from, to *time.Time) (*InventoryFlowReport, error)
	TotalsReport(ctx context.Context, from, to *time.Time) (*Totals, error)
	ListSales(ctx context.Context, filter repository.SaleFilter, page, limit int) ([]model.Sale, int64, error)
	ListPurchases(ctx context.Context, filter repository.PurchaseFilter, page, limit int) ([]model.Purchase, int64, error)
	ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]model.ClientTransaction, error)
	ListLosses(ctx context.Context, filter repository.LossFilter, page, limit int) ([]model.Loss, int64, error)
	ListMovements(ctx context.Context, filter repository.MovementFilter) ([]model.StockMovement, error)
}

type reportService struct {
	db           *gorm.DB
	saleRepo     repository.SaleRepository
	purchaseRepo repository.PurchaseRepository
	txRepo       repository.TransactionRepository
	lossRepo     repository.LossRepository
	movementRepo repository.MovementRepository
}

func NewReportService(
	db *gorm.DB,
	saleRepo repository.SaleRepository,
	purchaseRepo repository.PurchaseRepository,
	txRepo repository.TransactionRepository,
	lossRepo repository.LossRepository,
	movementRepo repository.MovementRepository,
) ReportService {
	return &reportService{
		db:           db,
		saleRepo:     saleRepo,
		purchaseRepo: purchaseRepo,
		txRepo:       txRepo,
		lossRepo:     lossRepo,
		movementRepo: movementRepo,
	}
}

const reportTimeFormat = "2006-01-02 15:04:05"

func statusLabel(status string) string {
	if status == model.SaleStatusPaid {
		return "Paid"
	}
	return "Pending"
}

func movementLabel(kind string) string {
	switch kind {
	case model.MovePurchaseIn:
		return "Purchase entry"
	case model.MoveSaleOut:
		return "Sale exit"
	case model.MoveLossOut:
		return "Loss exit"
	case model.MoveSaleReversal:
		return "Sale reversal"
	case model.MovePurchaseReversal:
		return "Purchase reversal"
	case model.MoveLossReversal:
		return "Loss reversal"
	default:
		return kind
	}
}

func dateRange(db *gorm.DB, column string, from, to *time.Time) *gorm.DB {
	if from != nil {
		db = db.Where(column+" >= ?", *from)
	}
	if to != nil {
		db = db.Where(column+" <= ?", *to)
	}
	return db
}

// SalesReport is one row per sale line, joined with product and client names.
func (s *reportService) SalesReport(ctx context.Context, from, to *time.Time) ([]SalesReportRow, error) {
	var lines []struct {
		model.SaleLine
		SaleTotal  decimal.Decimal
		Status     string
		ClientName *string
		CreatedAt  time.Time
		Product    string
	}
	db := s.db.WithContext(ctx).Table("sale_details").
		Select("sale_details.*, sales.total as sale_total, sales.status, sales.created_at, clients.name as client_name, products.name as product").
		Joins("JOIN sales ON sales.id = sale_details.sale_id").
		Joins("JOIN products ON products.id = sale_details.product_id").
		Joins("LEFT JOIN clients ON clients.id = sales.client_id")
	db = dateRange(db, "sales.created_at", from, to)
	if err := db.Order("sales.created_at asc, sale_details.id asc").Scan(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to query sales report: %w", err)
	}

	rows := make([]SalesReportRow, 0, len(lines))
	for _, line := range lines {
		client := "Cash sale"
		if line.ClientName != nil {
			client = *line.ClientName
		}
		rows = append(rows, SalesReportRow{
			SaleID:    line.SaleID,
			Product:   line.Product,
			Client:    client,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			SaleTotal: line.SaleTotal,
			Status:    statusLabel(line.Status),
			Date:      line.CreatedAt.Format(reportTimeFormat),
		})
	}
	return rows, nil
}

// PurchasesReport is one row per purchase line with its allocated freight
// and tax shares.
func (s *reportService) PurchasesReport(ctx context.Context, from, to *time.Time) ([]PurchasesReportRow, error) {
	var lines []struct {
		model.PurchaseLine
		Invoice string
		Date    time.Time
		Product string
	}
	db := s.db.WithContext(ctx).Table("purchase_details").
		Select("purchase_details.*, purchases.invoice_number as invoice, purchases.date, products.name as product").
		Joins("JOIN purchases ON purchases.id = purchase_details.purchase_id").
		Joins("JOIN products ON products.id = purchase_details.product_id")
	db = dateRange(db, "purchases.date", from, to)
	if err := db.Order("purchases.date asc, purchase_details.id asc").Scan(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to query purchases report: %w", err)
	}

	rows := make([]PurchasesReportRow, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, PurchasesReportRow{
			PurchaseID: line.PurchaseID,
			Product:    line.Product,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitCost,
			Freight:    line.FreightShare,
			Tax:        line.TaxShare,
			Total:      line.Subtotal.Add(line.FreightShare).Add(line.TaxShare),
			Invoice:    line.Invoice,
			Date:       line.Date.Format(reportTimeFormat),
		})
	}
	return rows, nil
}

// CashFlow merges paid sales (income) with purchases, expenses and losses
// (outflow) in chronological order and carries a running balance.
func (s *reportService) CashFlow(ctx context.Context, from, to *time.Time) (*CashFlowReport, error) {
	type entry struct {
		at          time.Time
		category    string
		description string
		income      decimal.Decimal
		outflow     decimal.Decimal
	}
	var entries []entry

	var sales []model.Sale
	db := dateRange(s.db.WithContext(ctx).Where("status = ?", model.SaleStatusPaid), "created_at", from, to)
	if err := db.Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to query paid sales: %w", err)
	}
	for _, sale := range sales {
		entries = append(entries, entry{
			at: sale.CreatedAt, category: "sale",
			description: fmt.Sprintf("Sale #%d", sale.ID),
			income:      sale.Total, outflow: decimal.Zero,
		})
	}

	var purchases []model.Purchase
	if err := dateRange(s.db.WithContext(ctx), "date", from, to).Find(&purchases).Error; err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	for _, purchase := range purchases {
		entries = append(entries, entry{
			at: purchase.Date, category: "purchase",
			description: fmt.Sprintf("Purchase #%d (%s)", purchase.ID, purchase.Supplier),
			income:      decimal.Zero, outflow: purchase.Total,
		})
	}

	var expenses []model.Expense
	if err := dateRange(s.db.WithContext(ctx), "date", from, to).Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	for _, expense := range expenses {
		entries = append(entries, entry{
			at: expense.Date, category: "expense",
			description: expense.Description,
			income:      decimal.Zero, outflow: expense.Amount,
		})
	}

	var losses []model.Loss
	if err := dateRange(s.db.WithContext(ctx), "date", from, to).Find(&losses).Error; err != nil {
		return nil, fmt.Errorf("failed to query losses: %w", err)
	}
	for _, loss := range losses {
		entries = append(entries, entry{
			at: loss.Date, category: "loss",
			description: fmt.Sprintf("Loss #%d", loss.ID),
			income:      decimal.Zero, outflow: loss.TotalCost,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })

	report := &CashFlowReport{Rows: make([]CashFlowRow, 0, len(entries))}
	balance := decimal.Zero
	for _, e := range entries {
		balance = balance.Add(e.income).Sub(e.outflow)
		report.Rows = append(report.Rows, CashFlowRow{
			Date:        e.at.Format(reportTimeFormat),
			Category:    e.category,
			Description: e.description,
			Income:      e.income,
			Outflow:     e.outflow,
			Balance:     balance,
		})
		switch e.category {
		case "sale":
			report.Summary.Income = report.Summary.Income.Add(e.income)
		case "purchase":
			report.Summary.Purchases = report.Summary.Purchases.Add(e.outflow)
		case "expense":
			report.Summary.Expenses = report.Summary.Expenses.Add(e.outflow)
		case "loss":
			report.Summary.Losses = report.Summary.Losses.Add(e.outflow)
		}
	}
	report.Summary.Net = balance
	return report, nil
}

// InventoryFlow replays the stock movement journal and values each movement
// at the product's cost price, with a per-product valuation summary.
func (s *reportService) InventoryFlow(ctx context.Context, from, to *time.Time) (*InventoryFlowReport, error) {
	movements, err := s.movementRepo.List(ctx, repository.MovementFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("failed to query stock movements: %w", err)
	}

	var products []model.Product
	if err := s.db.WithContext(ctx).Order("name asc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	byID := make(map[uint]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	report := &InventoryFlowReport{Rows: make([]InventoryFlowRow, 0, len(movements))}
	for _, movement := range movements {
		name := fmt.Sprintf("product #%d", movement.ProductID)
		cost := decimal.Zero
		if product, ok := byID[movement.ProductID]; ok {
			name = product.Name
			cost = product.CostPrice
		}
		report.Rows = append(report.Rows, InventoryFlowRow{
			Date:        movement.CreatedAt.Format(reportTimeFormat),
			Product:     name,
			Movement:    movementLabel(movement.Kind),
			Quantity:    movement.Quantity,
			StockAfter:  movement.StockAfter,
			ValueAtCost: movement.Quantity.Abs().Mul(cost),
		})
	}
	for _, product := range products {
		report.Summary = append(report.Summary, ProductValuation{
			ProductID: product.ID,
			Product:   product.Name,
			Stock:     product.Stock,
			CostPrice: product.CostPrice,
			Valuation: product.Stock.Mul(product.CostPrice),
		})
	}
	return report, nil
}

func (s *reportService) TotalsReport(ctx context.Context, from, to *time.Time) (*Totals, error) {
	totals := &Totals{}
	var sales []model.Sale
	if err := dateRange(s.db.WithContext(ctx).Where("status = ?", model.SaleStatusPaid), "created_at", from, to).Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	for _, sale := range sales {
		totals.Sales = totals.Sales.Add(sale.Total)
	}
	var purchases []model.Purchase
	if err := dateRange(s.db.WithContext(ctx), "date", from, to).Find(&purchases).Error; err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	for _, purchase := range purchases {
		totals.Purchases = totals.Purchases.Add(purchase.Total)
	}
	var expenses []model.Expense
	if err := dateRange(s.db.WithContext(ctx), "date", from, to).Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	for _, expense := range expenses {
		totals.Expenses = totals.Expenses.Add(expense.Amount)
	}
	var losses []model.Loss
	if err := dateRange(s.db.WithContext(ctx), "date", from, to).Find(&losses).Error; err != nil {
		return nil, fmt.Errorf("failed to query losses: %w", err)
	}
	for _, loss := range losses {
		totals.Losses = totals.Losses.Add(loss.TotalCost)
	}
	return totals, nil
}

func (s *reportService) ListSales(ctx context.Context, filter repository.SaleFilter, page, limit int) ([]model.Sale, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.saleRepo.List(ctx, filter, page, limit)
}

func (s *reportService) ListPurchases(ctx context.Context, filter repository.PurchaseFilter, page, limit int) ([]model.Purchase, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.purchaseRepo.List(ctx, filter, page, limit)
}

func (s *reportService) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]model.ClientTransaction, error) {
	if filter.Type != "" && !model.ValidTxType(filter.Type) {
		return nil, apperr.Validationf("unknown transaction type %q", filter.Type)
	}
	return s.txRepo.ListAll(ctx, filter)
}

func (s *reportService) ListLosses(ctx context.Context, filter repository.LossFilter, page, limit int) ([]model.Loss, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.lossRepo.List(ctx, filter, page, limit)
}

func (s *reportService) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]model.StockMovement, error) {
	return s.movementRepo.List(ctx, filter)
}
