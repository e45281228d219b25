// Package export renders account statements as XML and XLSX.
package export

import (
	"sort"

	"github.com/Dan9191/family-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// Line is one transaction with the account balance right after it.
type Line struct {
	Transaction models.Transaction
	Balance     decimal.Decimal
}

type Statement struct {
	Account     models.Account
	GeneratedOn models.Date
	Lines       []Line
	Closing     decimal.Decimal
}

// NewStatement orders txs oldest first and computes the running balance.
// Balances start from zero, so Closing equals the account balance whenever
// the ledger is consistent.
func NewStatement(account models.Account, txs []models.Transaction, today models.Date) *Statement {
	sorted := make([]models.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	st := &Statement{Account: account, GeneratedOn: today, Closing: decimal.Zero}
	for _, tx := range sorted {
		st.Closing = st.Closing.Add(tx.Effect())
		st.Lines = append(st.Lines, Line{Transaction: tx, Balance: st.Closing})
	}
	return st
}
