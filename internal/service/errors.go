package service

import (
	"errors"
	"fmt"

	"github.com/Dan9191/family-ledger/internal/models"
	"github.com/Dan9191/family-ledger/internal/store"
	"github.com/shopspring/decimal"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotYetAvailable   = errors.New("payout not yet available")
	ErrNotFound          = store.ErrNotFound
	ErrStoreWrite        = errors.New("store write failed")
)

// ValidationError is returned before any write when input is unusable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InsufficientFundsError names the account that would go negative.
// MaxAmount is set when the caller can still succeed with a smaller amount.
type InsufficientFundsError struct {
	AccountID   string
	AccountName string
	Balance     decimal.Decimal
	Required    decimal.Decimal
	MaxAmount   *decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	msg := fmt.Sprintf("insufficient funds in %s: balance %s, required %s",
		e.AccountName, e.Balance.StringFixed(2), e.Required.StringFixed(2))
	if e.MaxAmount != nil {
		msg += fmt.Sprintf(", at most %s allowed", e.MaxAmount.StringFixed(2))
	}
	return msg
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

type NotYetAvailableError struct {
	Number     int
	PayoutDate models.Date
}

func (e *NotYetAvailableError) Error() string {
	return fmt.Sprintf("payout for number %d is not available until %s", e.Number, e.PayoutDate)
}

func (e *NotYetAvailableError) Is(target error) bool {
	return target == ErrNotYetAvailable
}

// StoreWriteError wraps a failed commit. The batch was rolled back as a whole.
type StoreWriteError struct {
	Op  string
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StoreWriteError) Unwrap() error {
	return e.Err
}

func (e *StoreWriteError) Is(target error) bool {
	return target == ErrStoreWrite
}
