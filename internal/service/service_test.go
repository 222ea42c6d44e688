package service_test

import (
	"context"
	"testing"

	"delipos/internal/database"
	"delipos/internal/model"
	"delipos/internal/repository"
	"delipos/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	catalog  service.CatalogService
	clients  service.ClientService
	ledger   service.LedgerService
	reports  service.ReportService
	expenses service.ExpenseService
	txRepo   repository.TransactionRepository
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithPolicy(t, false)
}

func newFixtureWithPolicy(t *testing.T, enforceCreditLimit bool) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	txManager := repository.NewTransactionManager(db)
	productRepo := repository.NewProductRepository(db)
	clientRepo := repository.NewClientRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	lossRepo := repository.NewLossRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	movementRepo := repository.NewMovementRepository(db)

	return &fixture{
		db:      db,
		catalog: service.NewCatalogService(productRepo, txManager),
		clients: service.NewClientService(clientRepo, txManager),
		ledger: service.NewLedgerService(
			productRepo, clientRepo, saleRepo, purchaseRepo, lossRepo,
			txRepo, movementRepo, txManager, nil, enforceCreditLimit,
		),
		reports:  service.NewReportService(db, saleRepo, purchaseRepo, txRepo, lossRepo, movementRepo),
		expenses: service.NewExpenseService(expenseRepo, txManager),
		txRepo:   txRepo,
	}
}

func (f *fixture) createProduct(t *testing.T, name, price, stock string) *model.Product {
	t.Helper()
	product, err := f.catalog.CreateProduct(context.Background(), service.CreateProductRequest{
		Name: name, SalePrice: price, Stock: stock,
	})
	require.NoError(t, err)
	return product
}

func (f *fixture) createClient(t *testing.T, name string) *model.Client {
	t.Helper()
	client, err := f.clients.CreateClient(context.Background(), service.CreateClientRequest{Name: name})
	require.NoError(t, err)
	return client
}

func (f *fixture) creditSale(t *testing.T, clientID uint, productID uint, qty, price string) *model.Sale {
	t.Helper()
	sale, err := f.ledger.RecordSale(context.Background(), "", service.RecordSaleRequest{
		Lines:         []service.SaleLineRequest{{ProductID: productID, Quantity: qty, UnitPrice: price}},
		PaymentMethod: model.PaymentCredit,
		ClientID:      &clientID,
	})
	require.NoError(t, err)
	return sale
}

func (f *fixture) reloadClient(t *testing.T, id uint) *model.Client {
	t.Helper()
	client, err := f.clients.GetClient(context.Background(), id)
	require.NoError(t, err)
	return client
}

func (f *fixture) reloadProduct(t *testing.T, id uint) *model.Product {
	t.Helper()
	product, err := f.catalog.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return product
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.RequireFromString(want)),
		"expected %s, got %s", want, got.String())
}
