package repository

import (
	"context"
	"sync"
	"time"

	"delipos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionFilter narrows ListAll results.
type TransactionFilter struct {
	ClientID *uint
	Type     string
	From     *time.Time
	To       *time.Time
	Limit    int
}

// TransactionRepository is the append-only client transaction log. Append is
// the only mutator; corrections are expressed as new entries.
type TransactionRepository interface {
	Append(ctx context.Context, tx *model.ClientTransaction) error
	ListForClient(ctx context.Context, clientID uint, limit int) ([]model.ClientTransaction, error)
	ListAll(ctx context.Context, filter TransactionFilter) ([]model.ClientTransaction, error)
	SignedSum(ctx context.Context, clientID uint) (decimal.Decimal, error)
	FindDebitForSale(ctx context.Context, saleID uint) (*model.ClientTransaction, error)
}

type transactionRepository struct {
	db *gorm.DB

	mu   sync.Mutex
	last time.Time
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// stamp returns a local time that never goes backwards across appends, so
// created_at stays monotonic even if the wall clock is adjusted. Equal stamps
// are still possible across restarts; the insertion id breaks those ties.
func (r *transactionRepository) stamp() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if !now.After(r.last) {
		now = r.last.Add(time.Microsecond)
	}
	r.last = now
	return now
}

// Append is tx-only: log entries are born inside the engine operation that
// justifies them, never on their own.
func (r *transactionRepository) Append(ctx context.Context, tx *model.ClientTransaction) error {
	db, err := TxDB(ctx)
	if err != nil {
		return err
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = r.stamp()
	}
	return db.Create(tx).Error
}

func (r *transactionRepository) ListForClient(ctx context.Context, clientID uint, limit int) ([]model.ClientTransaction, error) {
	var txs []model.ClientTransaction
	db := GetDB(ctx, r.db).
		Where("client_id = ?", clientID).
		Order("created_at desc, id desc")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *transactionRepository) ListAll(ctx context.Context, filter TransactionFilter) ([]model.ClientTransaction, error) {
	var txs []model.ClientTransaction
	db := GetDB(ctx, r.db).Model(&model.ClientTransaction{})
	if filter.ClientID != nil {
		db = db.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Type != "" {
		db = db.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		db = db.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("created_at <= ?", *filter.To)
	}
	db = db.Order("created_at desc, id desc")
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}
	if err := db.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// SignedSum folds the client's whole log: debits add, credits and debit
// reversals subtract, credit_balance entries are held money and count for
// nothing. The cached client.total_debt must always equal this value
// clamped at zero.
func (r *transactionRepository) SignedSum(ctx context.Context, clientID uint) (decimal.Decimal, error) {
	var txs []model.ClientTransaction
	if err := GetDB(ctx, r.db).
		Select("type", "amount").
		Where("client_id = ?", clientID).
		Find(&txs).Error; err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, tx := range txs {
		switch model.TxSign(tx.Type) {
		case 1:
			sum = sum.Add(tx.Amount)
		case -1:
			sum = sum.Sub(tx.Amount)
		}
	}
	return sum, nil
}

func (r *transactionRepository) FindDebitForSale(ctx context.Context, saleID uint) (*model.ClientTransaction, error) {
	var tx model.ClientTransaction
	if err := GetDB(ctx, r.db).
		Where("sale_id = ? AND type = ?", saleID, model.TxDebit).
		Order("created_at desc, id desc").
		First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}
