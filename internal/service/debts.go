package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dan9191/family-ledger/internal/models"
	"github.com/Dan9191/family-ledger/internal/schedule"
	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentSingle   PaymentType = "single"
	PaymentMultiple PaymentType = "multiple"
)

// CreateDebtInput describes a new debt. Multiple payments fall due weekly
// starting at FirstDueDate, which defaults to today.
type CreateDebtInput struct {
	Type             models.DebtType `json:"type"`
	Name             string          `json:"name"`
	CounterpartyName string          `json:"counterpartyName"`
	Description      string          `json:"description"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	PaymentType      PaymentType     `json:"paymentType"`
	NumberOfPayments int             `json:"numberOfPayments"`
	FirstDueDate     models.Date     `json:"firstDueDate"`
}

type UpdateDebtInput struct {
	Name             string `json:"name"`
	CounterpartyName string `json:"counterpartyName"`
	Description      string `json:"description"`
}

func validateDebtNames(name, counterparty string) (string, string, error) {
	name = strings.TrimSpace(name)
	counterparty = strings.TrimSpace(counterparty)
	if name == "" {
		return "", "", invalid("name", "is required")
	}
	if counterparty == "" {
		return "", "", invalid("counterpartyName", "is required")
	}
	return name, counterparty, nil
}

// installments splits total into n equal payments. The split must be exact
// to the cent.
func installments(total decimal.Decimal, n int) (decimal.Decimal, error) {
	each := total.Div(decimal.NewFromInt(int64(n)))
	if !each.Equal(each.Round(2)) || !each.Mul(decimal.NewFromInt(int64(n))).Equal(total) {
		return decimal.Zero, invalid("numberOfPayments", "%s cannot be split evenly into %d payments", total.StringFixed(2), n)
	}
	return each, nil
}

func (s *Service) CreateDebt(ctx context.Context, uid string, in CreateDebtInput) (*models.Debt, error) {
	if !in.Type.Valid() {
		return nil, invalid("type", "must be owe or owed")
	}
	name, counterparty, err := validateDebtNames(in.Name, in.CounterpartyName)
	if err != nil {
		return nil, err
	}
	if err := validateAmount("totalAmount", in.TotalAmount); err != nil {
		return nil, err
	}

	first := in.FirstDueDate
	if first.IsZero() {
		first = s.Today()
	}
	var entries []models.PaymentSchedule
	switch in.PaymentType {
	case PaymentSingle, "":
		entries = []models.PaymentSchedule{{DueDate: first, Amount: in.TotalAmount}}
	case PaymentMultiple:
		if in.NumberOfPayments < 2 {
			return nil, invalid("numberOfPayments", "must be at least 2 for multiple payments")
		}
		each, err := installments(in.TotalAmount, in.NumberOfPayments)
		if err != nil {
			return nil, err
		}
		for _, due := range schedule.Weekly(first, in.NumberOfPayments) {
			entries = append(entries, models.PaymentSchedule{DueDate: due, Amount: each})
		}
	default:
		return nil, invalid("paymentType", "must be single or multiple")
	}

	now := s.timestamp()
	debt := &models.Debt{
		ID:               s.newID(),
		Type:             in.Type,
		Name:             name,
		CounterpartyName: counterparty,
		Description:      strings.TrimSpace(in.Description),
		TotalAmount:      in.TotalAmount,
		PaymentSchedule:  entries,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	l := s.newLedger(uid)
	if err := s.repo.StageDebt(l.batch, uid, debt); err != nil {
		return nil, err
	}
	if err := l.commit(ctx, "create debt"); err != nil {
		return nil, err
	}

	s.log.Infof("Debt created for user %s: %s", uid, debt.ID)
	return debt, nil
}

func (s *Service) GetDebt(ctx context.Context, uid, id string) (*models.Debt, error) {
	return s.repo.GetDebt(ctx, uid, id)
}

func (s *Service) ListDebts(ctx context.Context, uid string) ([]models.Debt, error) {
	return s.repo.ListDebts(ctx, uid)
}

// UpdateDebt edits descriptive fields. Amounts and the schedule are fixed
// once created.
func (s *Service) UpdateDebt(ctx context.Context, uid, id string, in UpdateDebtInput) (*models.Debt, error) {
	name, counterparty, err := validateDebtNames(in.Name, in.CounterpartyName)
	if err != nil {
		return nil, err
	}
	debt, err := s.repo.GetDebt(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	debt.Name = name
	debt.CounterpartyName = counterparty
	debt.Description = strings.TrimSpace(in.Description)

	l := s.newLedger(uid)
	debt.UpdatedAt = l.now
	if err := s.repo.StageDebt(l.batch, uid, debt); err != nil {
		return nil, err
	}
	if err := l.commit(ctx, "update debt"); err != nil {
		return nil, err
	}
	s.log.Infof("Debt %s updated for user %s", id, uid)
	return debt, nil
}

// DeleteDebt removes the debt. Transactions already posted by its
// settlements remain in the ledger.
func (s *Service) DeleteDebt(ctx context.Context, uid, id string) error {
	if _, err := s.repo.GetDebt(ctx, uid, id); err != nil {
		return err
	}
	if err := s.repo.DeleteDebt(ctx, uid, id); err != nil {
		return &StoreWriteError{Op: "delete debt", Err: err}
	}
	s.log.Infof("Debt %s deleted for user %s", id, uid)
	return nil
}

func debtDescription(d *models.Debt) string {
	if d.Type == models.DebtOwe {
		return fmt.Sprintf("Debt payment to %s", d.CounterpartyName)
	}
	return fmt.Sprintf("Debt payment from %s", d.CounterpartyName)
}

func debtEntries(d *models.Debt) []entry {
	desc := debtDescription(d)
	out := make([]entry, len(d.PaymentSchedule))
	for i := range d.PaymentSchedule {
		p := &d.PaymentSchedule[i]
		out[i] = entry{
			key:         i,
			due:         p.DueDate,
			amount:      p.Amount,
			txType:      d.Type.SettlementType(),
			description: desc,
			isPaid:      &p.IsPaid,
			accountID:   &p.AccountID,
			paidAt:      &p.PaidAt,
		}
	}
	return out
}

// SettleDebt marks unpaid installments paid. Through an account, an owe debt
// posts expenses and needs the funds; an owed debt posts income.
func (s *Service) SettleDebt(ctx context.Context, uid, id string, in SettleInput) (*models.Debt, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	debt, err := s.repo.GetDebt(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	selected, err := pick(in.Entries, debtEntries(debt))
	if err != nil {
		return nil, err
	}
	if err := requireStatus(selected, false); err != nil {
		return nil, err
	}

	l := s.newLedger(uid)
	if err := l.settle(ctx, selected, in, models.CategoryDebtPayment, models.SourceDebt, debt.ID); err != nil {
		return nil, err
	}
	debt.UpdatedAt = l.now
	if err := s.repo.StageDebt(l.batch, uid, debt); err != nil {
		return nil, err
	}
	if err := l.commit(ctx, "settle debt"); err != nil {
		return nil, err
	}

	s.log.Infof("Debt %s: %d installment(s) settled for user %s (%s)", id, len(selected), uid, in.Mode)
	return debt, nil
}

// UnmarkDebt flips paid installments back to unpaid, reversing the ones that
// were settled through an account.
func (s *Service) UnmarkDebt(ctx context.Context, uid, id string, in UnmarkInput) (*models.Debt, error) {
	debt, err := s.repo.GetDebt(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	selected, err := pick(in.Entries, debtEntries(debt))
	if err != nil {
		return nil, err
	}
	if err := requireStatus(selected, true); err != nil {
		return nil, err
	}

	l := s.newLedger(uid)
	if err := l.unmark(ctx, selected, models.CategoryDebtPayment, models.SourceDebt, debt.ID); err != nil {
		return nil, err
	}
	debt.UpdatedAt = l.now
	if err := s.repo.StageDebt(l.batch, uid, debt); err != nil {
		return nil, err
	}
	if err := l.commit(ctx, "unmark debt"); err != nil {
		return nil, err
	}

	s.log.Infof("Debt %s: %d installment(s) unmarked for user %s", id, len(selected), uid)
	return debt, nil
}
