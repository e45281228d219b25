package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dan9191/family-ledger/internal/models"
	"github.com/shopspring/decimal"
)

type CreateAccountInput struct {
	Name           string             `json:"name"`
	Type           models.AccountType `json:"type"`
	OpeningBalance decimal.Decimal    `json:"openingBalance"`
}

type UpdateAccountInput struct {
	Name string             `json:"name"`
	Type models.AccountType `json:"type"`
}

func validateAccount(name string, t models.AccountType) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "is required")
	}
	if !t.Valid() {
		return "", invalid("type", "must be one of cash, bank, credit, ewallet")
	}
	return name, nil
}

func validateAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return invalid(field, "must be greater than zero")
	}
	if !amount.Equal(amount.Round(2)) {
		return invalid(field, "must have at most two decimal places")
	}
	return nil
}

// CreateAccount creates a new account for the user. A positive opening
// balance is recorded as an initial income transaction in the same batch.
func (s *Service) CreateAccount(ctx context.Context, uid string, in CreateAccountInput) (*models.Account, error) {
	name, err := validateAccount(in.Name, in.Type)
	if err != nil {
		return nil, err
	}
	if in.OpeningBalance.IsNegative() {
		return nil, invalid("openingBalance", "must not be negative")
	}
	if !in.OpeningBalance.IsZero() {
		if err := validateAmount("openingBalance", in.OpeningBalance); err != nil {
			return nil, err
		}
	}

	l := s.newLedger(uid)
	account := &models.Account{
		ID:        s.newID(),
		Name:      name,
		Type:      in.Type,
		Balance:   decimal.Zero,
		CreatedAt: l.now,
		UpdatedAt: l.now,
	}
	if err := s.repo.StageAccount(l.batch, uid, account); err != nil {
		return nil, err
	}
	l.track(account)

	if in.OpeningBalance.IsPositive() {
		if _, err := l.post(ctx, posting{
			accountID:   account.ID,
			txType:      models.Income,
			amount:      in.OpeningBalance,
			description: "Opening balance",
			category:    models.CategoryInitialBalance,
			source:      models.SourceInitial,
		}); err != nil {
			return nil, err
		}
	}
	if err := l.commit(ctx, "create account"); err != nil {
		return nil, err
	}

	s.log.Infof("Account created for user %s: %s", uid, account.ID)
	return account, nil
}

func (s *Service) GetAccount(ctx context.Context, uid, id string) (*models.Account, error) {
	return s.repo.GetAccount(ctx, uid, id)
}

func (s *Service) ListAccounts(ctx context.Context, uid string) ([]models.Account, error) {
	return s.repo.ListAccounts(ctx, uid)
}

// UpdateAccount renames or retypes an account. Transactions keep the
// account name they were written with.
func (s *Service) UpdateAccount(ctx context.Context, uid, id string, in UpdateAccountInput) (*models.Account, error) {
	name, err := validateAccount(in.Name, in.Type)
	if err != nil {
		return nil, err
	}
	account, err := s.repo.GetAccount(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	account.Name = name
	account.Type = in.Type
	account.UpdatedAt = s.timestamp()
	if err := s.repo.UpdateAccountDetails(ctx, uid, account); err != nil {
		return nil, err
	}
	s.log.Infof("Account %s updated for user %s", id, uid)
	return account, nil
}

// DeleteAccount removes the account only. Its transactions stay in place and
// keep referring to the deleted account ID.
func (s *Service) DeleteAccount(ctx context.Context, uid, id string) error {
	if _, err := s.repo.GetAccount(ctx, uid, id); err != nil {
		return err
	}
	if err := s.repo.DeleteAccount(ctx, uid, id); err != nil {
		return &StoreWriteError{Op: "delete account", Err: err}
	}
	s.log.Infof("Account %s deleted for user %s", id, uid)
	return nil
}

// AdjustBalance applies a signed delta to an account balance with the store's
// atomic increment, outside any batch and without posting a transaction.
// It is the primitive for out-of-band corrections; ledger operations stage
// their deltas through the unit of work instead. Callers validate funds
// beforehand.
func (s *Service) AdjustBalance(ctx context.Context, uid, accountID string, delta decimal.Decimal) error {
	if err := s.repo.IncrementBalance(ctx, uid, accountID, delta); err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}
	return nil
}
