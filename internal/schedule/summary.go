package schedule

import (
	"github.com/Dan9191/family-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// DebtSummary is the derived view of a debt.
type DebtSummary struct {
	Remaining   decimal.Decimal `json:"remaining"`
	Paid        decimal.Decimal `json:"paid"`
	PaidCount   int             `json:"paidCount"`
	TotalCount  int             `json:"totalCount"`
	NextDueDate *models.Date    `json:"nextDueDate,omitempty"`
	Status      Status          `json:"status"`
	Progress    int             `json:"progress"`
}

// SummarizeDebt computes remaining amount, next due date, status and progress.
func SummarizeDebt(d *models.Debt, today models.Date) DebtSummary {
	s := DebtSummary{
		Remaining:  decimal.Zero,
		Paid:       decimal.Zero,
		TotalCount: len(d.PaymentSchedule),
	}
	var unpaid []models.Date
	for _, p := range d.PaymentSchedule {
		if p.IsPaid {
			s.PaidCount++
			s.Paid = s.Paid.Add(p.Amount)
			continue
		}
		s.Remaining = s.Remaining.Add(p.Amount)
		unpaid = append(unpaid, p.DueDate)
	}
	if next, ok := Earliest(unpaid); ok {
		s.NextDueDate = &next
	}
	s.Status = Classify(today, unpaid)
	s.Progress = Progress(s.PaidCount, s.TotalCount)
	return s
}

// PaluwaganSummary is the derived view of a paluwagan from the user's side.
type PaluwaganSummary struct {
	PayoutsReceived  int             `json:"payoutsReceived"`
	OwnedNumbers     int             `json:"ownedNumbers"`
	TotalReceived    decimal.Decimal `json:"totalReceived"`
	TotalContributed decimal.Decimal `json:"totalContributed"`
	NetPosition      decimal.Decimal `json:"netPosition"`
	WeeksPaid        int             `json:"weeksPaid"`
	TotalWeeks       int             `json:"totalWeeks"`
	NextDueDate      *models.Date    `json:"nextDueDate,omitempty"`
	NextPayoutDate   *models.Date    `json:"nextPayoutDate,omitempty"`
	AvailablePayouts []int           `json:"availablePayouts"`
	Status           Status          `json:"status"`
	Progress         int             `json:"progress"`
}

// SummarizePaluwagan computes the net position (payouts received minus
// contributions paid), contribution status and progress.
func SummarizePaluwagan(p *models.Paluwagan, today models.Date) PaluwaganSummary {
	s := PaluwaganSummary{
		TotalContributed: decimal.Zero,
		TotalWeeks:       len(p.WeeklyPayments),
		AvailablePayouts: []int{},
	}

	var pendingPayouts []models.Date
	for _, n := range p.Numbers {
		if !n.IsOwner {
			continue
		}
		s.OwnedNumbers++
		if n.IsPaid {
			s.PayoutsReceived++
			continue
		}
		if PayoutAvailable(n.PayoutDate, today) {
			s.AvailablePayouts = append(s.AvailablePayouts, n.Number)
		} else {
			pendingPayouts = append(pendingPayouts, n.PayoutDate)
		}
	}
	s.TotalReceived = p.PayoutPerNumber.Mul(decimal.NewFromInt(int64(s.PayoutsReceived)))

	var unpaid []models.Date
	for _, w := range p.WeeklyPayments {
		if w.IsPaid {
			s.WeeksPaid++
			s.TotalContributed = s.TotalContributed.Add(w.Amount)
			continue
		}
		unpaid = append(unpaid, w.DueDate)
	}
	s.NetPosition = s.TotalReceived.Sub(s.TotalContributed)

	if next, ok := Earliest(unpaid); ok {
		s.NextDueDate = &next
	}
	if next, ok := Earliest(pendingPayouts); ok {
		s.NextPayoutDate = &next
	}
	s.Status = Classify(today, unpaid)
	s.Progress = Progress(s.WeeksPaid, s.TotalWeeks)
	return s
}

// PayoutAvailable reports whether a payout scheduled for payoutDate may be
// settled today.
func PayoutAvailable(payoutDate, today models.Date) bool {
	return !payoutDate.After(today)
}
