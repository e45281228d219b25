package email

import (
	"strings"
	"testing"

	"github.com/Dan9191/family-ledger/internal/models"
	"github.com/Dan9191/family-ledger/internal/reminder"
	"github.com/shopspring/decimal"
)

func TestDigestBody(t *testing.T) {
	d := reminder.Digest{
		Today: models.MustParseDate("2026-10-15"),
		Items: []reminder.Item{
			{Kind: reminder.KindInstallment, Name: "Loan", Detail: "pay Juan", DueDate: models.MustParseDate("2026-10-10"), Amount: decimal.NewFromInt(250), Overdue: true},
			{Kind: reminder.KindPayout, Name: "Office pool", Detail: "number 1", DueDate: models.MustParseDate("2026-10-11"), Amount: decimal.NewFromInt(2000)},
		},
	}

	body := digestBody("Ana", d)
	for _, want := range []string{
		"Hi Ana,",
		"Debt installments:\n  - Loan (pay Juan): PHP 250.00, 2026-10-10 OVERDUE",
		"Payouts ready to collect:\n  - Office pool (number 1): PHP 2000.00, 2026-10-11",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "Paluwagan contributions") {
		t.Error("body lists an empty section")
	}
	if got := digestSubject(d); got != "Overdue payments need your attention" {
		t.Errorf("subject = %q", got)
	}
}
