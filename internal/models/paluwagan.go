package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaluwaganNumber is one slot of the pool. The holder of a slot receives the
// full pool once, on PayoutDate.
type PaluwaganNumber struct {
	Number     int    `json:"number"`
	PayoutDate Date   `json:"payoutDate"`
	IsPaid     bool   `json:"isPaid"`
	IsOwner    bool   `json:"isOwner"`
	OwnerName  string `json:"ownerName,omitempty"`
	AccountID  string `json:"accountId,omitempty"`
}

// WeeklyPayment is the user's contribution for one cycle: AmountPerNumber
// times the number of slots the user holds.
type WeeklyPayment struct {
	WeekNumber int             `json:"weekNumber"`
	DueDate    Date            `json:"dueDate"`
	IsPaid     bool            `json:"isPaid"`
	Amount     decimal.Decimal `json:"amount"`
	AccountID  string          `json:"accountId,omitempty"`
}

// Paluwagan is a rotating savings pool. PayoutPerNumber always equals
// AmountPerNumber * TotalNumbers.
type Paluwagan struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	AmountPerNumber decimal.Decimal   `json:"amountPerNumber"`
	PayoutPerNumber decimal.Decimal   `json:"payoutPerNumber"`
	StartDate       Date              `json:"startDate"`
	TotalNumbers    int               `json:"totalNumbers"`
	Organizer       string            `json:"organizer"`
	Description     string            `json:"description,omitempty"`
	Numbers         []PaluwaganNumber `json:"numbers"`
	WeeklyPayments  []WeeklyPayment   `json:"weeklyPayments"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// OwnedCount returns how many slots the user holds.
func (p *Paluwagan) OwnedCount() int {
	n := 0
	for _, num := range p.Numbers {
		if num.IsOwner {
			n++
		}
	}
	return n
}

// HasSettledEntries reports whether any payout or contribution is marked paid.
func (p *Paluwagan) HasSettledEntries() bool {
	for _, num := range p.Numbers {
		if num.IsPaid {
			return true
		}
	}
	for _, w := range p.WeeklyPayments {
		if w.IsPaid {
			return true
		}
	}
	return false
}
