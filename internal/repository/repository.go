package repository

import (
	"context"
	"fmt"

	"github.com/Dan9191/family-ledger/internal/models"
	"github.com/Dan9191/family-ledger/internal/store"
	"github.com/shopspring/decimal"
)

// Repository maps ledger models onto store documents
type Repository struct {
	store store.Store
}

// NewRepository initializes a new repository
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

// TransactionFilter narrows ListTransactions
type TransactionFilter struct {
	AccountID  string
	Type       models.TransactionType
	Limit      int
	StartAfter string
}

// Commit applies a batch built with the Stage* helpers
func (r *Repository) Commit(ctx context.Context, b *store.Batch) error {
	return r.store.Commit(ctx, b)
}

// IncrementBalance applies delta to an account balance on the store side
func (r *Repository) IncrementBalance(ctx context.Context, uid, accountID string, delta decimal.Decimal) error {
	if err := r.store.Increment(ctx, store.AccountPath(uid, accountID), "balance", delta); err != nil {
		return fmt.Errorf("failed to adjust balance of account %s: %w", accountID, err)
	}
	return nil
}

// GetAccount retrieves an account by ID
func (r *Repository) GetAccount(ctx context.Context, uid, id string) (*models.Account, error) {
	account := &models.Account{}
	if err := r.get(ctx, store.AccountPath(uid, id), account); err != nil {
		return nil, fmt.Errorf("account %s: %w", id, err)
	}
	return account, nil
}

// ListAccounts retrieves all accounts of a user ordered by name
func (r *Repository) ListAccounts(ctx context.Context, uid string) ([]models.Account, error) {
	snaps, err := r.store.Query(ctx, store.AccountsCollection(uid), store.Query{OrderBy: "name"})
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	accounts := make([]models.Account, 0, len(snaps))
	for _, s := range snaps {
		var a models.Account
		if err := s.Decode(&a); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// StageAccount adds a full write of the account to b
func (r *Repository) StageAccount(b *store.Batch, uid string, a *models.Account) error {
	return stage(b, store.AccountPath(uid, a.ID), a)
}

// UpdateAccountDetails rewrites name and type without touching the balance field
func (r *Repository) UpdateAccountDetails(ctx context.Context, uid string, a *models.Account) error {
	doc := store.Document{
		"name":      a.Name,
		"type":      string(a.Type),
		"updatedAt": a.UpdatedAt,
	}
	doc, err := store.Encode(doc)
	if err != nil {
		return err
	}
	if err := r.store.Update(ctx, store.AccountPath(uid, a.ID), doc); err != nil {
		return fmt.Errorf("failed to update account %s: %w", a.ID, err)
	}
	return nil
}

// StageBalanceDelta adds a balance increment to b. Withdrawals are guarded so
// the balance cannot go below zero even if it changed since it was read.
func (r *Repository) StageBalanceDelta(b *store.Batch, uid, accountID string, delta decimal.Decimal) {
	path := store.AccountPath(uid, accountID)
	if delta.IsNegative() {
		b.IncrementNonNegative(path, "balance", delta)
		return
	}
	b.Increment(path, "balance", delta)
}

// DeleteAccount removes the account document only
func (r *Repository) DeleteAccount(ctx context.Context, uid, id string) error {
	if err := r.store.Delete(ctx, store.AccountPath(uid, id)); err != nil {
		return fmt.Errorf("failed to delete account %s: %w", id, err)
	}
	return nil
}

// AccountPath exposes the document path so callers can match guard failures
func (r *Repository) AccountPath(uid, id string) string {
	return store.AccountPath(uid, id)
}

// GetTransaction retrieves a transaction by ID
func (r *Repository) GetTransaction(ctx context.Context, uid, id string) (*models.Transaction, error) {
	tx := &models.Transaction{}
	if err := r.get(ctx, store.TransactionPath(uid, id), tx); err != nil {
		return nil, fmt.Errorf("transaction %s: %w", id, err)
	}
	return tx, nil
}

// ListTransactions retrieves transactions newest first
func (r *Repository) ListTransactions(ctx context.Context, uid string, f TransactionFilter) ([]models.Transaction, error) {
	q := store.Query{
		OrderBy:    "date",
		Desc:       true,
		Limit:      f.Limit,
		StartAfter: f.StartAfter,
	}
	if f.AccountID != "" {
		q.Where = append(q.Where, store.Filter{Field: "accountId", Value: f.AccountID})
	}
	if f.Type != "" {
		q.Where = append(q.Where, store.Filter{Field: "type", Value: string(f.Type)})
	}

	snaps, err := r.store.Query(ctx, store.TransactionsCollection(uid), q)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	txs := make([]models.Transaction, 0, len(snaps))
	for _, s := range snaps {
		var t models.Transaction
		if err := s.Decode(&t); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, nil
}

func (r *Repository) StageTransaction(b *store.Batch, uid string, t *models.Transaction) error {
	return stage(b, store.TransactionPath(uid, t.ID), t)
}

func (r *Repository) StageTransactionDelete(b *store.Batch, uid, id string) {
	b.Delete(store.TransactionPath(uid, id))
}

// GetDebt retrieves a debt by ID
func (r *Repository) GetDebt(ctx context.Context, uid, id string) (*models.Debt, error) {
	debt := &models.Debt{}
	if err := r.get(ctx, store.DebtPath(uid, id), debt); err != nil {
		return nil, fmt.Errorf("debt %s: %w", id, err)
	}
	return debt, nil
}

// ListDebts retrieves all debts of a user, newest first
func (r *Repository) ListDebts(ctx context.Context, uid string) ([]models.Debt, error) {
	snaps, err := r.store.Query(ctx, store.DebtsCollection(uid), store.Query{OrderBy: "createdAt", Desc: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	debts := make([]models.Debt, 0, len(snaps))
	for _, s := range snaps {
		var d models.Debt
		if err := s.Decode(&d); err != nil {
			return nil, err
		}
		debts = append(debts, d)
	}
	return debts, nil
}

func (r *Repository) StageDebt(b *store.Batch, uid string, d *models.Debt) error {
	return stage(b, store.DebtPath(uid, d.ID), d)
}

func (r *Repository) DeleteDebt(ctx context.Context, uid, id string) error {
	if err := r.store.Delete(ctx, store.DebtPath(uid, id)); err != nil {
		return fmt.Errorf("failed to delete debt %s: %w", id, err)
	}
	return nil
}

// GetPaluwagan retrieves a paluwagan by ID
func (r *Repository) GetPaluwagan(ctx context.Context, uid, id string) (*models.Paluwagan, error) {
	p := &models.Paluwagan{}
	if err := r.get(ctx, store.PaluwaganPath(uid, id), p); err != nil {
		return nil, fmt.Errorf("paluwagan %s: %w", id, err)
	}
	return p, nil
}

// ListPaluwagans retrieves all paluwagans of a user, newest first
func (r *Repository) ListPaluwagans(ctx context.Context, uid string) ([]models.Paluwagan, error) {
	snaps, err := r.store.Query(ctx, store.PaluwagansCollection(uid), store.Query{OrderBy: "createdAt", Desc: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list paluwagans: %w", err)
	}
	out := make([]models.Paluwagan, 0, len(snaps))
	for _, s := range snaps {
		var p models.Paluwagan
		if err := s.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *Repository) StagePaluwagan(b *store.Batch, uid string, p *models.Paluwagan) error {
	return stage(b, store.PaluwaganPath(uid, p.ID), p)
}

func (r *Repository) DeletePaluwagan(ctx context.Context, uid, id string) error {
	if err := r.store.Delete(ctx, store.PaluwaganPath(uid, id)); err != nil {
		return fmt.Errorf("failed to delete paluwagan %s: %w", id, err)
	}
	return nil
}

// GetProfile retrieves the users/{uid} document
func (r *Repository) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	p := &models.UserProfile{}
	if err := r.get(ctx, store.UserPath(uid), p); err != nil {
		return nil, fmt.Errorf("profile %s: %w", uid, err)
	}
	return p, nil
}

// SaveProfile merges the profile into users/{uid}
func (r *Repository) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	doc, err := store.Encode(p)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, store.UserPath(p.ID), doc, true); err != nil {
		return fmt.Errorf("failed to save profile %s: %w", p.ID, err)
	}
	return nil
}

// ListReminderProfiles retrieves every profile that opted into reminders
func (r *Repository) ListReminderProfiles(ctx context.Context) ([]models.UserProfile, error) {
	snaps, err := r.store.Query(ctx, store.UsersCollection(), store.Query{
		Where: []store.Filter{{Field: "remindersEnabled", Value: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	out := make([]models.UserProfile, 0, len(snaps))
	for _, s := range snaps {
		var p models.UserProfile
		if err := s.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *Repository) get(ctx context.Context, path string, v interface{}) error {
	snap, err := r.store.Get(ctx, path)
	if err != nil {
		return err
	}
	return snap.Decode(v)
}

func stage(b *store.Batch, path string, v interface{}) error {
	doc, err := store.Encode(v)
	if err != nil {
		return err
	}
	b.Set(path, doc, false)
	return nil
}
