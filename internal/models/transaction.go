package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of money for a transaction.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Opposite returns the type a reversal of t is recorded with.
func (t TransactionType) Opposite() TransactionType {
	if t == Income {
		return Expense
	}
	return Income
}

// Signed returns the balance effect of amount moving in direction t.
func (t TransactionType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t == Income {
		return amount
	}
	return amount.Neg()
}

// TransactionSource records which part of the ledger emitted a transaction.
type TransactionSource string

const (
	SourceManual    TransactionSource = "manual"
	SourceInitial   TransactionSource = "initial"
	SourceDebt      TransactionSource = "debt"
	SourcePaluwagan TransactionSource = "paluwagan"
)

// Transaction is one income or expense entry tied to exactly one account.
// AccountName is a snapshot taken when the transaction was written; renaming
// the account later does not update it.
type Transaction struct {
	ID          string            `json:"id"`
	Type        TransactionType   `json:"type"`
	Amount      decimal.Decimal   `json:"amount"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	AccountID   string            `json:"accountId"`
	AccountName string            `json:"accountName"`
	Date        Date              `json:"date"`
	Source      TransactionSource `json:"source"`
	SourceID    string            `json:"sourceId,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Effect is the signed amount this transaction contributes to its account balance.
func (t *Transaction) Effect() decimal.Decimal {
	return t.Type.Signed(t.Amount)
}

// Managed reports whether the transaction belongs to a debt or paluwagan
// schedule and must be undone from there.
func (t *Transaction) Managed() bool {
	return t.Source == SourceDebt || t.Source == SourcePaluwagan
}
