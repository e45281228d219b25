package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dan9191/family-ledger/internal/models"
	"github.com/Dan9191/family-ledger/internal/schedule"
	"github.com/shopspring/decimal"
)

// SlotInput assigns one number of the pool. Numbers left out are held by
// other members.
type SlotInput struct {
	Number    int    `json:"number"`
	IsOwner   bool   `json:"isOwner"`
	OwnerName string `json:"ownerName"`
}

// PaluwaganInput is used for both create and update. A zero StartDate means today.
type PaluwaganInput struct {
	Name            string          `json:"name"`
	AmountPerNumber decimal.Decimal `json:"amountPerNumber"`
	TotalNumbers    int             `json:"totalNumbers"`
	StartDate       models.Date     `json:"startDate"`
	Organizer       string          `json:"organizer"`
	Description     string          `json:"description"`
	Slots           []SlotInput     `json:"slots"`
}

func (s *Service) normalizePaluwagan(in PaluwaganInput) (PaluwaganInput, map[int]SlotInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, nil, invalid("name", "is required")
	}
	if err := validateAmount("amountPerNumber", in.AmountPerNumber); err != nil {
		return in, nil, err
	}
	if in.TotalNumbers < 2 {
		return in, nil, invalid("totalNumbers", "must be at least 2")
	}
	if in.StartDate.IsZero() {
		in.StartDate = s.Today()
	}
	in.Organizer = strings.TrimSpace(in.Organizer)
	in.Description = strings.TrimSpace(in.Description)

	slots := make(map[int]SlotInput, len(in.Slots))
	owned := 0
	for _, slot := range in.Slots {
		if slot.Number < 1 || slot.Number > in.TotalNumbers {
			return in, nil, invalid("slots", "number %d is outside 1..%d", slot.Number, in.TotalNumbers)
		}
		if _, dup := slots[slot.Number]; dup {
			return in, nil, invalid("slots", "number %d is listed twice", slot.Number)
		}
		slot.OwnerName = strings.TrimSpace(slot.OwnerName)
		slots[slot.Number] = slot
		if slot.IsOwner {
			owned++
		}
	}
	if owned == 0 {
		return in, nil, invalid("slots", "must include at least one number you hold")
	}
	return in, slots, nil
}

// buildSchedules regenerates payouts and contributions. Number i pays out and
// week i falls due on the i-th Sunday on or after the start date.
func buildSchedules(p *models.Paluwagan, slots map[int]SlotInput) {
	dates := schedule.PayoutDates(p.StartDate, p.TotalNumbers)
	p.PayoutPerNumber = p.AmountPerNumber.Mul(decimal.NewFromInt(int64(p.TotalNumbers)))

	p.Numbers = make([]models.PaluwaganNumber, len(dates))
	for i, d := range dates {
		slot := slots[i+1]
		p.Numbers[i] = models.PaluwaganNumber{
			Number:     i + 1,
			PayoutDate: d,
			IsOwner:    slot.IsOwner,
			OwnerName:  slot.OwnerName,
		}
	}

	contribution := p.AmountPerNumber.Mul(decimal.NewFromInt(int64(p.OwnedCount())))
	p.WeeklyPayments = make([]models.WeeklyPayment, len(dates))
	for i, d := range dates {
		p.WeeklyPayments[i] = models.WeeklyPayment{
			WeekNumber: i + 1,
			DueDate:    d,
			Amount:     contribution,
		}
	}
}

// slotsChanged reports whether slots assign numbers differently from p.
func slotsChanged(p *models.Paluwagan, slots map[int]SlotInput) bool {
	for _, n := range p.Numbers {
		slot := slots[n.Number]
		if slot.IsOwner != n.IsOwner || slot.OwnerName != n.OwnerName {
			return true
		}
	}
	return false
}

func (s *Service) CreatePaluwagan(ctx context.Context, uid string, in PaluwaganInput) (*models.Paluwagan, error) {
	in, slots, err := s.normalizePaluwagan(in)
	if err != nil {
		return nil, err
	}

	l := s.newLedger(uid)
	p := &models.Paluwagan{
		ID:              s.newID(),
		Name:            in.Name,
		AmountPerNumber: in.AmountPerNumber,
		StartDate:       in.StartDate,
		TotalNumbers:    in.TotalNumbers,
		Organizer:       in.Organizer,
		Description:     in.Description,
		CreatedAt:       l.now,
		UpdatedAt:       l.now,
	}
	buildSchedules(p, slots)
	if err := s.repo.StagePaluwagan(l.batch, uid, p); err != nil {
		return nil, err
	}
	if err := l.commit(ctx, "create paluwagan"); err != nil {
		return nil, err
	}

	s.log.Infof("Paluwagan created for user %s: %s", uid, p.ID)
	return p, nil
}

// UpdatePaluwagan edits a pool. Changing the amount, size, start date or slot
// assignment regenerates both schedules, which is refused once anything was
// recorded as paid.
func (s *Service) UpdatePaluwagan(ctx context.Context, uid, id string, in PaluwaganInput) (*models.Paluwagan, error) {
	in, slots, err := s.normalizePaluwagan(in)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetPaluwagan(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	regenerate := !in.AmountPerNumber.Equal(p.AmountPerNumber) ||
		in.TotalNumbers != p.TotalNumbers ||
		!in.StartDate.Equal(p.StartDate) ||
		slotsChanged(p, slots)
	if regenerate && p.HasSettledEntries() {
		return nil, invalid("schedule", "cannot change amount, numbers, start date or slots after payments were recorded")
	}

	l := s.newLedger(uid)
	p.Name = in.Name
	p.Organizer = in.Organizer
	p.Description = in.Description
	p.UpdatedAt = l.now
	if regenerate {
		p.AmountPerNumber = in.AmountPerNumber
		p.TotalNumbers = in.TotalNumbers
		p.StartDate = in.StartDate
		buildSchedules(p, slots)
	}
	if err := s.repo.StagePaluwagan(l.batch, uid, p); err != nil {
		return nil, err
	}
	if err := l.commit(ctx, "update paluwagan"); err != nil {
		return nil, err
	}

	s.log.Infof("Paluwagan %s updated for user %s (regenerated=%t)", id, uid, regenerate)
	return p, nil
}

func (s *Service) GetPaluwagan(ctx context.Context, uid, id string) (*models.Paluwagan, error) {
	return s.repo.GetPaluwagan(ctx, uid, id)
}

func (s *Service) ListPaluwagans(ctx context.Context, uid string) ([]models.Paluwagan, error) {
	return s.repo.ListPaluwagans(ctx, uid)
}

// DeletePaluwagan removes the pool; posted transactions remain.
func (s *Service) DeletePaluwagan(ctx context.Context, uid, id string) error {
	if _, err := s.repo.GetPaluwagan(ctx, uid, id); err != nil {
		return err
	}
	if err := s.repo.DeletePaluwagan(ctx, uid, id); err != nil {
		return &StoreWriteError{Op: "delete paluwagan", Err: err}
	}
	s.log.Infof("Paluwagan %s deleted for user %s", id, uid)
	return nil
}

func weekEntries(p *models.Paluwagan) []entry {
	out := make([]entry, len(p.WeeklyPayments))
	for i := range p.WeeklyPayments {
		w := &p.WeeklyPayments[i]
		out[i] = entry{
			key:         w.WeekNumber,
			due:         w.DueDate,
			amount:      w.Amount,
			txType:      models.Expense,
			description: fmt.Sprintf("Paluwagan contribution: %s week %d", p.Name, w.WeekNumber),
			isPaid:      &w.IsPaid,
			accountID:   &w.AccountID,
		}
	}
	return out
}

func payoutEntries(p *models.Paluwagan) []entry {
	out := make([]entry, len(p.Numbers))
	for i := range p.Numbers {
		n := &p.Numbers[i]
		out[i] = entry{
			key:         n.Number,
			due:         n.PayoutDate,
			amount:      p.PayoutPerNumber,
			txType:      models.Income,
			description: fmt.Sprintf("Paluwagan payout: %s #%d", p.Name, n.Number),
			isPaid:      &n.IsPaid,
			accountID:   &n.AccountID,
		}
	}
	return out
}

// SettleWeeks records contributions. Through an account each week is an expense.
func (s *Service) SettleWeeks(ctx context.Context, uid, id string, in SettleInput) (*models.Paluwagan, error) {
	return s.settlePaluwagan(ctx, uid, id, in, weekEntries, nil)
}

// SettlePayouts records payouts received for numbers the user holds. A payout
// cannot be settled before its payout date.
func (s *Service) SettlePayouts(ctx context.Context, uid, id string, in SettleInput) (*models.Paluwagan, error) {
	return s.settlePaluwagan(ctx, uid, id, in, payoutEntries, func(p *models.Paluwagan, selected []entry, today models.Date) error {
		for _, e := range selected {
			if !p.Numbers[e.key-1].IsOwner {
				return invalid("entries", "number %d is not held by you", e.key)
			}
		}
		for _, e := range selected {
			if !schedule.PayoutAvailable(e.due, today) {
				return &NotYetAvailableError{Number: e.key, PayoutDate: e.due}
			}
		}
		return nil
	})
}

func (s *Service) UnmarkWeeks(ctx context.Context, uid, id string, in UnmarkInput) (*models.Paluwagan, error) {
	return s.unmarkPaluwagan(ctx, uid, id, in, weekEntries)
}

// UnmarkPayouts reverses received payouts; money taken back out of an account
// needs the funds.
func (s *Service) UnmarkPayouts(ctx context.Context, uid, id string, in UnmarkInput) (*models.Paluwagan, error) {
	return s.unmarkPaluwagan(ctx, uid, id, in, payoutEntries)
}

func (s *Service) settlePaluwagan(ctx context.Context, uid, id string, in SettleInput,
	entries func(*models.Paluwagan) []entry,
	precheck func(*models.Paluwagan, []entry, models.Date) error,
) (*models.Paluwagan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.repo.GetPaluwagan(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	selected, err := pick(in.Entries, entries(p))
	if err != nil {
		return nil, err
	}
	if err := requireStatus(selected, false); err != nil {
		return nil, err
	}

	l := s.newLedger(uid)
	if precheck != nil {
		if err := precheck(p, selected, l.today); err != nil {
			return nil, err
		}
	}
	if err := l.settle(ctx, selected, in, models.CategoryPaluwagan, models.SourcePaluwagan, p.ID); err != nil {
		return nil, err
	}
	p.UpdatedAt = l.now
	if err := s.repo.StagePaluwagan(l.batch, uid, p); err != nil {
		return nil, err
	}
	if err := l.commit(ctx, "settle paluwagan"); err != nil {
		return nil, err
	}

	s.log.Infof("Paluwagan %s: %d entries settled for user %s (%s)", id, len(selected), uid, in.Mode)
	return p, nil
}

func (s *Service) unmarkPaluwagan(ctx context.Context, uid, id string, in UnmarkInput, entries func(*models.Paluwagan) []entry) (*models.Paluwagan, error) {
	p, err := s.repo.GetPaluwagan(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	selected, err := pick(in.Entries, entries(p))
	if err != nil {
		return nil, err
	}
	if err := requireStatus(selected, true); err != nil {
		return nil, err
	}

	l := s.newLedger(uid)
	if err := l.unmark(ctx, selected, models.CategoryPaluwagan, models.SourcePaluwagan, p.ID); err != nil {
		return nil, err
	}
	p.UpdatedAt = l.now
	if err := s.repo.StagePaluwagan(l.batch, uid, p); err != nil {
		return nil, err
	}
	if err := l.commit(ctx, "unmark paluwagan"); err != nil {
		return nil, err
	}

	s.log.Infof("Paluwagan %s: %d entries unmarked for user %s", id, len(selected), uid)
	return p, nil
}
