package service_test

import (
	"context"
	"testing"

	"delipos/internal/apperr"
	"delipos/internal/model"
	"delipos/internal/repository"
	"delipos/internal/service"

	"github.com/stretchr/testify/require"
)

func TestRecordCashSale(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Salami", "10", "5")

	sale, err := f.ledger.RecordSale(context.Background(), "", service.RecordSaleRequest{
		Lines:         []service.SaleLineRequest{{ProductID: product.ID, Quantity: "2", UnitPrice: "10"}},
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)
	require.Equal(t, model.SaleStatusPaid, sale.Status)
	requireDecimal(t, "20", sale.Total)
	requireDecimal(t, "3", f.reloadProduct(t, product.ID).Stock)
}

func TestRecordCashSaleWithClientRejected(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Cheese", "10", "5")
	client := f.createClient(t, "Ana")

	_, err := f.ledger.RecordSale(context.Background(), "", service.RecordSaleRequest{
		Lines:         []service.SaleLineRequest{{ProductID: product.ID, Quantity: "1", UnitPrice: "10"}},
		PaymentMethod: model.PaymentCash,
		ClientID:      &client.ID,
	})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRecordCreditSaleRequiresClient(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Ham", "10", "5")

	_, err := f.ledger.RecordSale(context.Background(), "", service.RecordSaleRequest{
		Lines:         []service.SaleLineRequest{{ProductID: product.ID, Quantity: "1", UnitPrice: "10"}},
		PaymentMethod: model.PaymentCredit,
	})
	require.ErrorIs(t, err, apperr.ErrMissingClient)
}

func TestCreditSaleThenFullPayment(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Bread", "10", "10")
	client := f.createClient(t, "Bruno")

	sale := f.creditSale(t, client.ID, product.ID, "3", "10")
	require.Equal(t, model.SaleStatusPending, sale.Status)
	requireDecimal(t, "30", f.reloadClient(t, client.ID).TotalDebt)

	result, err := f.ledger.ApplyPayment(context.Background(), service.ApplyPaymentRequest{
		ClientID: client.ID, Amount: "30",
	})
	require.NoError(t, err)
	requireDecimal(t, "30", result.DebtReduced)
	requireDecimal(t, "0", result.CreditBalance)
	requireDecimal(t, "0", result.TotalDebt)
	require.Equal(t, 1, result.SalesSettled)

	requireDecimal(t, "0", f.reloadClient(t, client.ID).TotalDebt)

	txs, err := f.txRepo.ListForClient(context.Background(), client.ID, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, model.TxCredit, txs[0].Type)
	require.Equal(t, model.TxDebit, txs[1].Type)
}

func TestPartialPaymentSettlesOldestFirst(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Olives", "10", "100")
	client := f.createClient(t, "Carla")

	first := f.creditSale(t, client.ID, product.ID, "3", "10")  // 30
	second := f.creditSale(t, client.ID, product.ID, "5", "10") // 50
	requireDecimal(t, "80", f.reloadClient(t, client.ID).TotalDebt)

	result, err := f.ledger.ApplyPayment(context.Background(), service.ApplyPaymentRequest{
		ClientID: client.ID, Amount: "40",
	})
	require.NoError(t, err)
	requireDecimal(t, "40", result.DebtReduced)
	requireDecimal(t, "0", result.CreditBalance)
	requireDecimal(t, "40", result.TotalDebt)
	require.Equal(t, 1, result.SalesSettled)
	require.Equal(t, 1, result.SalesPartial)

	var reloadedFirst, reloadedSecond model.Sale
	require.NoError(t, f.db.First(&reloadedFirst, first.ID).Error)
	require.NoError(t, f.db.First(&reloadedSecond, second.ID).Error)
	require.Equal(t, model.SaleStatusPaid, reloadedFirst.Status)
	require.Contains(t, reloadedFirst.Notes, "PAID on")
	require.Equal(t, model.SaleStatusPending, reloadedSecond.Status)
	requireDecimal(t, "40", reloadedSecond.Total)
	require.Contains(t, reloadedSecond.Notes, "partial 10 on")
}

func TestOverpaymentBecomesCreditBalance(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Mortadella", "10", "100")
	client := f.createClient(t, "Dora")

	f.creditSale(t, client.ID, product.ID, "3", "10") // 30

	result, err := f.ledger.ApplyPayment(context.Background(), service.ApplyPaymentRequest{
		ClientID: client.ID, Amount: "50",
	})
	require.NoError(t, err)
	requireDecimal(t, "30", result.DebtReduced)
	requireDecimal(t, "20", result.CreditBalance)
	requireDecimal(t, "0", result.TotalDebt)

	txs, err := f.txRepo.ListAll(context.Background(), repository.TransactionFilter{ClientID: &client.ID})
	require.NoError(t, err)
	require.Len(t, txs, 3)
	byType := map[string]model.ClientTransaction{}
	for _, tx := range txs {
		byType[tx.Type] = tx
	}
	requireDecimal(t, "30", byType[model.TxCredit].Amount)
	requireDecimal(t, "20", byType[model.TxCreditBalance].Amount)

	// The rebuilt total must agree with the cache: held money is not debt.
	debt, err := f.ledger.RecomputeDebt(context.Background(), client.ID)
	require.NoError(t, err)
	requireDecimal(t, "0", debt)
}

func TestPaymentToClientWithNoPendingSales(t *testing.T) {
	f := newFixture(t)
	client := f.createClient(t, "Elsa")

	result, err := f.ledger.ApplyPayment(context.Background(), service.ApplyPaymentRequest{
		ClientID: client.ID, Amount: "25",
	})
	require.NoError(t, err)
	requireDecimal(t, "0", result.DebtReduced)
	requireDecimal(t, "25", result.CreditBalance)
	requireDecimal(t, "0", result.TotalDebt)
}

func TestSaleRejectsOverAggregatedStock(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Prosciutto", "10", "5")

	// Two lines of the same product must be checked against stock together.
	_, err := f.ledger.RecordSale(context.Background(), "", service.RecordSaleRequest{
		Lines: []service.SaleLineRequest{
			{ProductID: product.ID, Quantity: "3", UnitPrice: "10"},
			{ProductID: product.ID, Quantity: "3", UnitPrice: "10"},
		},
		PaymentMethod: model.PaymentCash,
	})
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	requireDecimal(t, "5", f.reloadProduct(t, product.ID).Stock)
}

func TestDeletePartiallyPaidSaleReversesRemainder(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Provolone", "10", "100")
	client := f.createClient(t, "Franca")

	sale := f.creditSale(t, client.ID, product.ID, "8", "10") // 80
	_, err := f.ledger.ApplyPayment(context.Background(), service.ApplyPaymentRequest{
		ClientID: client.ID, Amount: "40",
	})
	require.NoError(t, err)
	requireDecimal(t, "40", f.reloadClient(t, client.ID).TotalDebt)

	require.NoError(t, f.ledger.DeleteSale(context.Background(), sale.ID))

	// Reversal covers only the unpaid remainder, never the original total.
	txs, err := f.txRepo.ListAll(context.Background(), repository.TransactionFilter{
		ClientID: &client.ID, Type: model.TxDebitReversal,
	})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	requireDecimal(t, "40", txs[0].Amount)
	requireDecimal(t, "0", f.reloadClient(t, client.ID).TotalDebt)
	requireDecimal(t, "100", f.reloadProduct(t, product.ID).Stock)

	debt, err := f.ledger.RecomputeDebt(context.Background(), client.ID)
	require.NoError(t, err)
	requireDecimal(t, "0", debt)
}

func TestDeleteSaleRestoresStockForCashSale(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Butter", "10", "10")

	sale, err := f.ledger.RecordSale(context.Background(), "", service.RecordSaleRequest{
		Lines:         []service.SaleLineRequest{{ProductID: product.ID, Quantity: "4", UnitPrice: "10"}},
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)
	requireDecimal(t, "6", f.reloadProduct(t, product.ID).Stock)

	require.NoError(t, f.ledger.DeleteSale(context.Background(), sale.ID))
	requireDecimal(t, "10", f.reloadProduct(t, product.ID).Stock)
}

func TestRecordPurchaseCreatesUnknownProduct(t *testing.T) {
	f := newFixture(t)

	purchase, err := f.ledger.RecordPurchase(context.Background(), "", service.RecordPurchaseRequest{
		Supplier: "Distribuidora Sur",
		Freight:  "10",
		Tax:      "6",
		Lines: []service.PurchaseLineRequest{
			{ProductName: "Queso Azul", Quantity: "4", UnitCost: "20"},
			{ProductName: "Aceitunas Verdes", Quantity: "2", UnitCost: "5"},
		},
	})
	require.NoError(t, err)
	requireDecimal(t, "106", purchase.Total) // 90 lines + 10 freight + 6 tax
	require.Len(t, purchase.Lines, 2)
	requireDecimal(t, "5", purchase.Lines[0].FreightShare)
	requireDecimal(t, "3", purchase.Lines[0].TaxShare)

	created, err := f.catalog.GetProductByName(context.Background(), "Queso Azul")
	require.NoError(t, err)
	requireDecimal(t, "26", created.SalePrice) // 20 * 1.3
	requireDecimal(t, "20", created.CostPrice)
	requireDecimal(t, "4", created.Stock)
}

func TestRecordPurchaseRefreshesCostPrice(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Jamon Crudo", "30", "0")

	_, err := f.ledger.RecordPurchase(context.Background(), "", service.RecordPurchaseRequest{
		Supplier: "Frigorifico Norte",
		Lines:    []service.PurchaseLineRequest{{ProductID: &product.ID, Quantity: "10", UnitCost: "18"}},
	})
	require.NoError(t, err)

	reloaded := f.reloadProduct(t, product.ID)
	requireDecimal(t, "18", reloaded.CostPrice)
	requireDecimal(t, "10", reloaded.Stock)
}

func TestDeletePurchaseFailsWhenStockAlreadyGone(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Lomito", "10", "0")

	purchase, err := f.ledger.RecordPurchase(context.Background(), "", service.RecordPurchaseRequest{
		Supplier: "Frigorifico Norte",
		Lines:    []service.PurchaseLineRequest{{ProductID: &product.ID, Quantity: "10", UnitCost: "8"}},
	})
	require.NoError(t, err)

	_, err = f.ledger.RecordLoss(context.Background(), "", service.RecordLossRequest{
		ProductID: product.ID, Quantity: "8", LossType: "spoilage",
	})
	require.NoError(t, err)
	requireDecimal(t, "2", f.reloadProduct(t, product.ID).Stock)

	// Only 2 units remain; reversing 10 would go negative, so nothing changes.
	err = f.ledger.DeletePurchase(context.Background(), purchase.ID)
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)

	requireDecimal(t, "2", f.reloadProduct(t, product.ID).Stock)
	var count int64
	require.NoError(t, f.db.Model(&model.Purchase{}).Where("id = ?", purchase.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestDeleteLossRestoresStock(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Ricota", "10", "10")

	loss, err := f.ledger.RecordLoss(context.Background(), "", service.RecordLossRequest{
		ProductID: product.ID, Quantity: "3", LossType: "breakage",
	})
	require.NoError(t, err)
	requireDecimal(t, "7", f.reloadProduct(t, product.ID).Stock)

	require.NoError(t, f.ledger.DeleteLoss(context.Background(), loss.ID))
	requireDecimal(t, "10", f.reloadProduct(t, product.ID).Stock)
}

func TestCreditLimitEnforcedWhenConfigured(t *testing.T) {
	f := newFixtureWithPolicy(t, true)
	product := f.createProduct(t, "Fiambre Surtido", "10", "100")

	client, err := f.clients.CreateClient(context.Background(), service.CreateClientRequest{
		Name: "Gaston", CreditLimit: "50",
	})
	require.NoError(t, err)

	f.creditSale(t, client.ID, product.ID, "4", "10") // debt 40, within limit

	_, err = f.ledger.RecordSale(context.Background(), "", service.RecordSaleRequest{
		Lines:         []service.SaleLineRequest{{ProductID: product.ID, Quantity: "2", UnitPrice: "10"}},
		PaymentMethod: model.PaymentCredit,
		ClientID:      &client.ID,
	})
	require.ErrorIs(t, err, apperr.ErrCreditLimitExceeded)
	requireDecimal(t, "40", f.reloadClient(t, client.ID).TotalDebt)
}

func TestRecomputeDebtMatchesCacheAfterMixedHistory(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Pan de Campo", "10", "100")
	client := f.createClient(t, "Hilda")

	f.creditSale(t, client.ID, product.ID, "5", "10") // 50
	sale := f.creditSale(t, client.ID, product.ID, "2", "10")
	_, err := f.ledger.ApplyPayment(context.Background(), service.ApplyPaymentRequest{ClientID: client.ID, Amount: "30"})
	require.NoError(t, err)
	require.NoError(t, f.ledger.DeleteSale(context.Background(), sale.ID))

	cached := f.reloadClient(t, client.ID).TotalDebt
	recomputed, err := f.ledger.RecomputeDebt(context.Background(), client.ID)
	require.NoError(t, err)
	require.True(t, cached.Equal(recomputed), "cache %s != log %s", cached, recomputed)
}

func TestStockMovementsJournalEveryChange(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Dulce de Leche", "10", "0")

	_, err := f.ledger.RecordPurchase(context.Background(), "", service.RecordPurchaseRequest{
		Supplier: "La Serenisima",
		Lines:    []service.PurchaseLineRequest{{ProductID: &product.ID, Quantity: "10", UnitCost: "5"}},
	})
	require.NoError(t, err)
	_, err = f.ledger.RecordSale(context.Background(), "", service.RecordSaleRequest{
		Lines:         []service.SaleLineRequest{{ProductID: product.ID, Quantity: "4", UnitPrice: "10"}},
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)

	movements, err := f.reports.ListMovements(context.Background(), repository.MovementFilter{ProductID: &product.ID})
	require.NoError(t, err)
	require.Len(t, movements, 2)
	require.Equal(t, model.MovePurchaseIn, movements[0].Kind)
	requireDecimal(t, "10", movements[0].StockAfter)
	require.Equal(t, model.MoveSaleOut, movements[1].Kind)
	requireDecimal(t, "-4", movements[1].Quantity)
	requireDecimal(t, "6", movements[1].StockAfter)
}
