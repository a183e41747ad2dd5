// Package dashboard composes the pure aggregation functions in core into the
// views a household dashboard shows.
package dashboard

import (
	"github.com/shopspring/decimal"
	"mycash/internal/core"
)

// Input is the raw ledger plus the active filters.
type Input struct {
	Transactions []core.Transaction
	Accounts     []core.BankAccount
	Cards        []core.CreditCard
	Members      []core.FamilyMember
	Filters      core.TransactionFilters
}

// Snapshot holds every aggregate derived from one Input.
type Snapshot struct {
	Filters      core.TransactionFilters
	Members      []core.FamilyMember
	Transactions []core.Transaction
	TotalBalance decimal.Decimal
	Income       decimal.Decimal
	Expenses     decimal.Decimal
	SavingsRate  decimal.Decimal
	ByCategory   []core.CategoryTotal
	Shares       []core.CategoryShare
}

// Build filters the ledger once and derives every aggregate from that view.
// Total balance ignores filters since it describes accounts and cards.
func Build(in Input) Snapshot {
	filtered := core.ApplyFilters(in.Transactions, in.Filters)
	income := core.IncomeForPeriod(filtered)
	expenses := core.ExpensesForPeriod(filtered)

	return Snapshot{
		Filters:      in.Filters,
		Members:      in.Members,
		Transactions: filtered,
		TotalBalance: core.TotalBalance(in.Accounts, in.Cards),
		Income:       income,
		Expenses:     expenses,
		SavingsRate:  core.SavingsRate(income, expenses),
		ByCategory:   core.ExpensesByCategory(filtered),
		Shares:       core.CategoryPercentage(filtered),
	}
}
