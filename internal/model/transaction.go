package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientTransaction types. Amounts are stored as absolute values; the sign
// is implied by the type.
const (
	TxDebit         = "debit"          // increases debt (credit sale)
	TxCredit        = "credit"         // decreases debt (payment)
	TxDebitReversal = "debit_reversal" // cancels an earlier debit (deleted sale)
	TxCreditBalance = "credit_balance" // money held for the client beyond their debt
)

// TxSign returns +1 for types that add to debt and -1 for types that
// subtract. A credit_balance entry is money held for the client, not debt,
// so it contributes 0 like an unknown type.
func TxSign(txType string) int {
	switch txType {
	case TxDebit:
		return 1
	case TxCredit, TxDebitReversal:
		return -1
	default:
		return 0
	}
}

// ValidTxType reports whether txType is one of the closed set.
func ValidTxType(txType string) bool {
	switch txType {
	case TxDebit, TxCredit, TxDebitReversal, TxCreditBalance:
		return true
	}
	return false
}

// ClientTransaction is one entry of the append-only per-client ledger log.
// Entries are never rewritten; corrections are expressed as new entries.
// The ordering key is (client_id, created_at, id).
type ClientTransaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ClientID    uint            `gorm:"not null;index:idx_client_tx_order,priority:1" json:"client_id"`
	Type        string          `gorm:"type:varchar(20);not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Description string          `gorm:"type:text" json:"description"`
	SaleID      *uint           `gorm:"index" json:"sale_id"`
	CreatedAt   time.Time       `gorm:"index:idx_client_tx_order,priority:2" json:"created_at"`
}
