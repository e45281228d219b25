package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Dan9191/family-ledger/internal/models"
	"github.com/Dan9191/family-ledger/internal/repository"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// TransactionInput carries the user editable fields of a transaction.
// A zero Date means today.
type TransactionInput struct {
	AccountID   string                 `json:"accountId"`
	Type        models.TransactionType `json:"type"`
	Amount      decimal.Decimal        `json:"amount"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Date        models.Date            `json:"date"`
}

func (s *Service) normalizeTransaction(in TransactionInput) (TransactionInput, error) {
	if in.AccountID == "" {
		return in, invalid("accountId", "is required")
	}
	if !in.Type.Valid() {
		return in, invalid("type", "must be income or expense")
	}
	if err := validateAmount("amount", in.Amount); err != nil {
		return in, err
	}
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return in, invalid("description", "is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return in, invalid("category", "is required")
	}
	category, ok := models.ResolveCategory(in.Type, in.Category)
	if !ok {
		return in, invalid("category", "%q is not a known %s category", in.Category, in.Type)
	}
	in.Category = category
	if in.Date.IsZero() {
		in.Date = s.Today()
	}
	return in, nil
}

// CreateTransaction records a manual income or expense and applies its effect
// to the account balance in one batch. Expenses may not exceed the balance.
func (s *Service) CreateTransaction(ctx context.Context, uid string, in TransactionInput) (*models.Transaction, error) {
	in, err := s.normalizeTransaction(in)
	if err != nil {
		return nil, err
	}

	l := s.newLedger(uid)
	tx, err := l.post(ctx, posting{
		accountID:   in.AccountID,
		txType:      in.Type,
		amount:      in.Amount,
		description: in.Description,
		category:    in.Category,
		source:      models.SourceManual,
		date:        in.Date,
	})
	if err != nil {
		return nil, err
	}
	if err := l.commit(ctx, "create transaction"); err != nil {
		return nil, err
	}

	s.log.Infof("Transaction created for user %s: %s %s", uid, tx.Type, tx.Amount.StringFixed(2))
	return tx, nil
}

func (s *Service) GetTransaction(ctx context.Context, uid, id string) (*models.Transaction, error) {
	return s.repo.GetTransaction(ctx, uid, id)
}

// ListTransactions pages through transactions newest first.
func (s *Service) ListTransactions(ctx context.Context, uid string, f repository.TransactionFilter) ([]models.Transaction, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, invalid("type", "must be income or expense")
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	return s.repo.ListTransactions(ctx, uid, f)
}

func managedError() error {
	return invalid("source", "is managed by its debt or paluwagan schedule; unmark the entry instead")
}

// EditTransaction replaces the editable fields of a manual transaction. The
// original effect is reversed and the new effect applied; when the account
// changes each side is charged to its own account.
func (s *Service) EditTransaction(ctx context.Context, uid, id string, in TransactionInput) (*models.Transaction, error) {
	orig, err := s.repo.GetTransaction(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if orig.Managed() {
		return nil, managedError()
	}
	in, err = s.normalizeTransaction(in)
	if err != nil {
		return nil, err
	}

	l := s.newLedger(uid)
	if _, err := l.account(ctx, orig.AccountID); err != nil {
		return nil, err
	}
	l.adjust(orig.AccountID, orig.Effect().Neg())
	newAcc, err := l.account(ctx, in.AccountID)
	if err != nil {
		return nil, err
	}

	updated := *orig
	updated.Type = in.Type
	updated.Amount = in.Amount
	updated.Description = in.Description
	updated.Category = in.Category
	updated.Date = in.Date
	if in.AccountID != orig.AccountID {
		updated.AccountID = newAcc.ID
		updated.AccountName = newAcc.Name
	}
	updated.UpdatedAt = l.now
	l.adjust(newAcc.ID, updated.Effect())

	if err := l.checkFunds(); err != nil {
		var fe *InsufficientFundsError
		if errors.As(err, &fe) && fe.AccountID == newAcc.ID && updated.Type == models.Expense {
			limit := newAcc.Balance
			if newAcc.ID == orig.AccountID {
				limit = limit.Add(orig.Effect().Neg())
			}
			if limit.IsNegative() {
				limit = decimal.Zero
			}
			fe.MaxAmount = &limit
		}
		return nil, err
	}
	if err := s.repo.StageTransaction(l.batch, uid, &updated); err != nil {
		return nil, err
	}
	if err := l.commit(ctx, "edit transaction"); err != nil {
		return nil, err
	}

	s.log.Infof("Transaction %s edited for user %s", id, uid)
	return &updated, nil
}

// DeleteTransaction removes a manual transaction as if it never happened.
// Deleting income is refused when the account would go negative.
func (s *Service) DeleteTransaction(ctx context.Context, uid, id string) error {
	orig, err := s.repo.GetTransaction(ctx, uid, id)
	if err != nil {
		return err
	}
	if orig.Managed() {
		return managedError()
	}

	l := s.newLedger(uid)
	if _, err := l.account(ctx, orig.AccountID); err != nil {
		return err
	}
	l.adjust(orig.AccountID, orig.Effect().Neg())
	s.repo.StageTransactionDelete(l.batch, uid, id)
	if err := l.commit(ctx, "delete transaction"); err != nil {
		return err
	}

	s.log.Infof("Transaction %s deleted for user %s", id, uid)
	return nil
}
