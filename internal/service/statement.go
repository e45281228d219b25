package service

import (
	"context"

	"github.com/Dan9191/family-ledger/internal/export"
	"github.com/Dan9191/family-ledger/internal/models"
	"github.com/Dan9191/family-ledger/internal/repository"
)

// Statement collects every transaction of an account with running balances.
func (s *Service) Statement(ctx context.Context, uid, accountID string) (*export.Statement, error) {
	account, err := s.repo.GetAccount(ctx, uid, accountID)
	if err != nil {
		return nil, err
	}

	var all []models.Transaction
	f := repository.TransactionFilter{AccountID: accountID, Limit: maxPageSize}
	for {
		page, err := s.repo.ListTransactions(ctx, uid, f)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < f.Limit {
			break
		}
		f.StartAfter = page[len(page)-1].ID
	}
	return export.NewStatement(*account, all, s.Today()), nil
}
