package models

import "strings"

// Categories attached to transactions that settlements write on the user's behalf.
const (
	CategoryInitialBalance = "Initial Balance"
	CategoryDebtPayment    = "Debt Payment"
	CategoryPaluwagan      = "Paluwagan"
)

var IncomeCategories = []string{
	"Salary",
	"Business",
	"Freelance",
	"Investment",
	"Allowance",
	"Gift",
	"Other Income",
}

var ExpenseCategories = []string{
	"Food",
	"Groceries",
	"Transportation",
	"Utilities",
	"Rent",
	"Bills",
	"Shopping",
	"Health",
	"Education",
	"Entertainment",
	"Family",
	"Other Expense",
}

var systemCategories = []string{
	CategoryInitialBalance,
	CategoryDebtPayment,
	CategoryPaluwagan,
}

// ResolveCategory maps a user supplied category to its canonical spelling for
// transaction type t. The match is case-insensitive and ignores surrounding space.
func ResolveCategory(t TransactionType, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	candidates := ExpenseCategories
	if t == Income {
		candidates = IncomeCategories
	}
	for _, list := range [][]string{candidates, systemCategories} {
		for _, c := range list {
			if strings.EqualFold(c, name) {
				return c, true
			}
		}
	}
	return "", false
}
