package service

import (
	"context"

	"github.com/Dan9191/family-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// SettleMode selects whether settling a schedule entry moves money.
type SettleMode string

const (
	ModeMarkOnly      SettleMode = "markOnly"
	ModeAffectAccount SettleMode = "affectAccount"
)

// SettleInput selects schedule entries by key: installment index for debts,
// week number for contributions, slot number for payouts.
type SettleInput struct {
	Entries   []int      `json:"entries"`
	Mode      SettleMode `json:"mode"`
	AccountID string     `json:"accountId,omitempty"`
}

func (in SettleInput) validate() error {
	switch in.Mode {
	case ModeMarkOnly:
	case ModeAffectAccount:
		if in.AccountID == "" {
			return invalid("accountId", "is required when settling through an account")
		}
	default:
		return invalid("mode", "must be markOnly or affectAccount")
	}
	return nil
}

type UnmarkInput struct {
	Entries []int `json:"entries"`
}

// entry is a view over one schedule item that settle and unmark flip in place.
type entry struct {
	key         int
	due         models.Date
	amount      decimal.Decimal
	txType      models.TransactionType
	description string
	isPaid      *bool
	accountID   *string
	paidAt      *models.Date
}

// pick resolves keys against all, rejecting empty, duplicate or unknown selections.
func pick(keys []int, all []entry) ([]entry, error) {
	if len(keys) == 0 {
		return nil, invalid("entries", "must select at least one entry")
	}
	index := make(map[int]int, len(all))
	for i, e := range all {
		index[e.key] = i
	}
	seen := make(map[int]bool, len(keys))
	out := make([]entry, 0, len(keys))
	for _, k := range keys {
		if seen[k] {
			return nil, invalid("entries", "entry %d is selected twice", k)
		}
		seen[k] = true
		i, ok := index[k]
		if !ok {
			return nil, invalid("entries", "entry %d does not exist", k)
		}
		out = append(out, all[i])
	}
	return out, nil
}

// requireStatus keeps a batch uniform: settling takes only unpaid entries,
// unmarking only paid ones.
func requireStatus(selected []entry, paid bool) error {
	for _, e := range selected {
		if *e.isPaid == paid {
			continue
		}
		if paid {
			return invalid("entries", "entry %d is not paid", e.key)
		}
		return invalid("entries", "entry %d is already paid", e.key)
	}
	return nil
}

// settle marks selected entries paid and, through an account, posts one
// transaction per entry.
func (l *ledger) settle(ctx context.Context, selected []entry, in SettleInput, category string, source models.TransactionSource, sourceID string) error {
	var accountID string
	if in.Mode == ModeAffectAccount {
		acc, err := l.account(ctx, in.AccountID)
		if err != nil {
			return err
		}
		accountID = acc.ID
		for _, e := range selected {
			if _, err := l.post(ctx, posting{
				accountID:   accountID,
				txType:      e.txType,
				amount:      e.amount,
				description: e.description,
				category:    category,
				source:      source,
				sourceID:    sourceID,
			}); err != nil {
				return err
			}
		}
	}
	for _, e := range selected {
		*e.isPaid = true
		*e.accountID = accountID
		if e.paidAt != nil {
			*e.paidAt = l.today
		}
	}
	return nil
}

// unmark flips selected entries back to unpaid. Entries settled through an
// account get an opposite-type reversal on that same account.
func (l *ledger) unmark(ctx context.Context, selected []entry, category string, source models.TransactionSource, sourceID string) error {
	for _, e := range selected {
		if *e.accountID != "" {
			if _, err := l.post(ctx, posting{
				accountID:   *e.accountID,
				txType:      e.txType.Opposite(),
				amount:      e.amount,
				description: reversalDescription(e.description),
				category:    category,
				source:      source,
				sourceID:    sourceID,
			}); err != nil {
				return err
			}
		}
		*e.isPaid = false
		*e.accountID = ""
		if e.paidAt != nil {
			*e.paidAt = models.Date{}
		}
	}
	return nil
}

func reversalDescription(desc string) string {
	return "Reversal of " + desc
}
