package repository_test

import (
	"context"
	"testing"

	"delipos/internal/database"
	"delipos/internal/model"
	"delipos/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedClient(t *testing.T, db *gorm.DB) *model.Client {
	t.Helper()
	client := &model.Client{Name: t.Name()}
	require.NoError(t, db.Create(client).Error)
	return client
}

func appendTx(t *testing.T, tm repository.TransactionManager, repo repository.TransactionRepository, tx *model.ClientTransaction) {
	t.Helper()
	require.NoError(t, tm.RunInTx(context.Background(), func(txCtx context.Context) error {
		return repo.Append(txCtx, tx)
	}))
}

func TestAppendRequiresTransaction(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db)
	repo := repository.NewTransactionRepository(db)

	err := repo.Append(context.Background(), &model.ClientTransaction{
		ClientID: client.ID,
		Type:     model.TxDebit,
		Amount:   decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, repository.ErrNoTransaction)
}

func TestAppendStampsAreStrictlyIncreasing(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db)
	repo := repository.NewTransactionRepository(db)
	tm := repository.NewTransactionManager(db)

	for i := 0; i < 50; i++ {
		appendTx(t, tm, repo, &model.ClientTransaction{
			ClientID: client.ID,
			Type:     model.TxDebit,
			Amount:   decimal.NewFromInt(1),
		})
	}

	txs, err := repo.ListForClient(context.Background(), client.ID, 0)
	require.NoError(t, err)
	require.Len(t, txs, 50)

	// ListForClient returns newest first; walking down must never repeat
	// or reorder a stamp even when appends land within the same tick.
	for i := 1; i < len(txs); i++ {
		require.True(t, txs[i].CreatedAt.Before(txs[i-1].CreatedAt),
			"stamp %d (%v) not before stamp %d (%v)", i, txs[i].CreatedAt, i-1, txs[i-1].CreatedAt)
	}
}

func TestSignedSumIgnoresHeldCredit(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db)
	repo := repository.NewTransactionRepository(db)
	tm := repository.NewTransactionManager(db)

	entries := []struct {
		txType string
		amount int64
	}{
		{model.TxDebit, 100},
		{model.TxCredit, 30},
		{model.TxDebitReversal, 20},
		{model.TxCreditBalance, 15},
	}
	for _, e := range entries {
		appendTx(t, tm, repo, &model.ClientTransaction{
			ClientID: client.ID,
			Type:     e.txType,
			Amount:   decimal.NewFromInt(e.amount),
		})
	}

	sum, err := repo.SignedSum(context.Background(), client.ID)
	require.NoError(t, err)
	require.True(t, sum.Equal(decimal.NewFromInt(50)), "expected 50, got %s", sum)
}

func TestFindDebitForSale(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db)
	repo := repository.NewTransactionRepository(db)
	tm := repository.NewTransactionManager(db)

	saleID := uint(7)
	appendTx(t, tm, repo, &model.ClientTransaction{
		ClientID: client.ID, Type: model.TxDebit,
		Amount: decimal.NewFromInt(40), SaleID: &saleID,
	})
	appendTx(t, tm, repo, &model.ClientTransaction{
		ClientID: client.ID, Type: model.TxCredit, Amount: decimal.NewFromInt(40),
	})

	found, err := repo.FindDebitForSale(context.Background(), saleID)
	require.NoError(t, err)
	require.Equal(t, model.TxDebit, found.Type)
	require.NotNil(t, found.SaleID)
	require.Equal(t, saleID, *found.SaleID)

	_, err = repo.FindDebitForSale(context.Background(), 999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
