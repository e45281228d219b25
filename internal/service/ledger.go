package service

import (
	"context"
	"time"

	"github.com/Dan9191/family-ledger/internal/models"
	"github.com/Dan9191/family-ledger/internal/store"
	"github.com/shopspring/decimal"
)

// posting is one transaction a settlement writes against an account.
type posting struct {
	accountID   string
	txType      models.TransactionType
	amount      decimal.Decimal
	description string
	category    string
	source      models.TransactionSource
	sourceID    string
	date        models.Date
}

// ledger is the unit of work of one settlement. It collects document writes
// and per-account balance deltas, checks funds against the balances it read,
// and commits everything as a single batch with guarded increments.
type ledger struct {
	s        *Service
	uid      string
	batch    *store.Batch
	accounts map[string]*models.Account
	deltas   map[string]decimal.Decimal
	order    []string
	now      time.Time
	today    models.Date
}

func (s *Service) newLedger(uid string) *ledger {
	return &ledger{
		s:        s,
		uid:      uid,
		batch:    store.NewBatch(),
		accounts: make(map[string]*models.Account),
		deltas:   make(map[string]decimal.Decimal),
		now:      s.timestamp(),
		today:    s.Today(),
	}
}

// account loads an account once per unit of work.
func (l *ledger) account(ctx context.Context, id string) (*models.Account, error) {
	if a, ok := l.accounts[id]; ok {
		return a, nil
	}
	a, err := l.s.repo.GetAccount(ctx, l.uid, id)
	if err != nil {
		return nil, err
	}
	l.track(a)
	return a, nil
}

// track registers an account that is written in this same batch.
func (l *ledger) track(a *models.Account) {
	if _, ok := l.accounts[a.ID]; !ok {
		l.order = append(l.order, a.ID)
	}
	l.accounts[a.ID] = a
}

// adjust adds delta to the pending change of a tracked account.
func (l *ledger) adjust(accountID string, delta decimal.Decimal) {
	l.deltas[accountID] = l.deltas[accountID].Add(delta)
}

// post stages a new transaction and its balance effect.
func (l *ledger) post(ctx context.Context, p posting) (*models.Transaction, error) {
	acc, err := l.account(ctx, p.accountID)
	if err != nil {
		return nil, err
	}
	date := p.date
	if date.IsZero() {
		date = l.today
	}
	tx := &models.Transaction{
		ID:          l.s.newID(),
		Type:        p.txType,
		Amount:      p.amount,
		Description: p.description,
		Category:    p.category,
		AccountID:   acc.ID,
		AccountName: acc.Name,
		Date:        date,
		Source:      p.source,
		SourceID:    p.sourceID,
		CreatedAt:   l.now,
		UpdatedAt:   l.now,
	}
	if err := l.s.repo.StageTransaction(l.batch, l.uid, tx); err != nil {
		return nil, err
	}
	l.adjust(acc.ID, tx.Effect())
	return tx, nil
}

// checkFunds fails for the first account whose balance would drop below zero.
func (l *ledger) checkFunds() error {
	for _, id := range l.order {
		a := l.accounts[id]
		delta := l.deltas[id]
		if a.Balance.Add(delta).IsNegative() {
			return &InsufficientFundsError{
				AccountID:   id,
				AccountName: a.Name,
				Balance:     a.Balance,
				Required:    delta.Neg(),
			}
		}
	}
	return nil
}

// commit checks funds, stages the aggregated balance increments and applies
// the batch. Tracked accounts are updated in memory on success.
func (l *ledger) commit(ctx context.Context, op string) error {
	if err := l.checkFunds(); err != nil {
		return err
	}
	for _, id := range l.order {
		if d := l.deltas[id]; !d.IsZero() {
			l.s.repo.StageBalanceDelta(l.batch, l.uid, id, d)
		}
	}
	if err := l.s.commit(ctx, l.uid, op, l.batch, l.accounts); err != nil {
		return err
	}
	for _, id := range l.order {
		a := l.accounts[id]
		a.Balance = a.Balance.Add(l.deltas[id])
	}
	return nil
}
