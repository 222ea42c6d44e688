package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type contextKey string

const txKey contextKey = "ledger_tx"

// ErrNoTransaction is returned by engine-owned mutators invoked outside
// RunInTx. Stock, cached debt and the transaction log may only change
// inside an atomic engine operation.
var ErrNoTransaction = errors.New("operation requires an engine transaction")

// TransactionManager runs a function inside one database transaction,
// injected through the context. Every ledger engine operation is exactly one
// RunInTx unit: all of its mutations commit or none do.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey, tx)
		return fn(txCtx)
	})
}

// GetDB returns the transaction handle carried by ctx, or the root handle
// when the caller runs outside a transaction. Read paths use this.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}

// TxDB is the strict variant of GetDB for engine-owned mutations: it fails
// with ErrNoTransaction when ctx is not inside RunInTx, so the ownership
// rule cannot be bypassed by calling a repository directly.
func TxDB(ctx context.Context) (*gorm.DB, error) {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if !ok {
		return nil, ErrNoTransaction
	}
	return tx.WithContext(ctx), nil
}
