package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/family-ledger/internal/config"
	"github.com/Dan9191/family-ledger/internal/models"
	"github.com/Dan9191/family-ledger/internal/repository"
	"github.com/Dan9191/family-ledger/internal/schedule"
	"github.com/Dan9191/family-ledger/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service handles business logic
type Service struct {
	repo  *repository.Repository
	log   *logrus.Logger
	loc   *time.Location
	now   func() time.Time
	newID func() string
}

// NewService initializes a new service
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config) *Service {
	loc := time.UTC
	if cfg != nil && cfg.Location != nil {
		loc = cfg.Location
	}
	return &Service{
		repo:  repo,
		log:   log,
		loc:   loc,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Today is the current calendar date in the configured time zone.
func (s *Service) Today() models.Date {
	return schedule.Today(s.now(), s.loc)
}

// timestamp is second precision so stored RFC 3339 strings sort chronologically.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

// commit applies b and translates store failures. accounts are the accounts
// whose balances the batch touches, keyed by ID.
func (s *Service) commit(ctx context.Context, uid, op string, b *store.Batch, accounts map[string]*models.Account) error {
	err := s.repo.Commit(ctx, b)
	if err == nil {
		return nil
	}

	var cond *store.ConditionError
	if errors.As(err, &cond) {
		for id, acc := range accounts {
			if s.repo.AccountPath(uid, id) != cond.Path {
				continue
			}
			balance := acc.Balance
			if fresh, gerr := s.repo.GetAccount(ctx, uid, id); gerr == nil {
				balance = fresh.Balance
			}
			return &InsufficientFundsError{
				AccountID:   id,
				AccountName: acc.Name,
				Balance:     balance,
				Required:    balance.Sub(cond.Result),
			}
		}
	}
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	s.log.WithFields(logrus.Fields{"user": uid, "op": op}).Errorf("Commit failed: %v", err)
	return &StoreWriteError{Op: op, Err: err}
}
