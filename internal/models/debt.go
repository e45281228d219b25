package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtType tells whether the user owes the counterparty or is owed by them.
type DebtType string

const (
	DebtOwe  DebtType = "owe"
	DebtOwed DebtType = "owed"
)

func (t DebtType) Valid() bool {
	return t == DebtOwe || t == DebtOwed
}

// SettlementType is the transaction type emitted when an installment of this
// debt is paid through an account.
func (t DebtType) SettlementType() TransactionType {
	if t == DebtOwe {
		return Expense
	}
	return Income
}

// PaymentSchedule is one installment of a debt. AccountID is set only when the
// installment was settled through an account.
type PaymentSchedule struct {
	DueDate   Date            `json:"dueDate"`
	Amount    decimal.Decimal `json:"amount"`
	IsPaid    bool            `json:"isPaid"`
	PaidAt    Date            `json:"paidAt"`
	AccountID string          `json:"accountId,omitempty"`
}

// Debt tracks money owed to or by a counterparty and its installment schedule.
type Debt struct {
	ID               string            `json:"id"`
	Type             DebtType          `json:"type"`
	Name             string            `json:"name"`
	CounterpartyName string            `json:"counterpartyName"`
	Description      string            `json:"description,omitempty"`
	TotalAmount      decimal.Decimal   `json:"totalAmount"`
	PaymentSchedule  []PaymentSchedule `json:"paymentSchedule"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}
