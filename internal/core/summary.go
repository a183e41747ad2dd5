package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryTotal is the sum and count of completed expenses in one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
	Count    int
}

// CategoryShare expresses a category's expenses as a percentage of period income.
type CategoryShare struct {
	Category   string
	Amount     decimal.Decimal
	Percentage decimal.Decimal
}

// TotalBalance is the sum of bank balances minus outstanding card bills.
// It is a point-in-time snapshot and ignores transaction filters.
func TotalBalance(accounts []BankAccount, cards []CreditCard) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	for _, c := range cards {
		total = total.Sub(c.CurrentBill)
	}
	return total
}

// IncomeForPeriod sums completed income transactions.
func IncomeForPeriod(transactions []Transaction) decimal.Decimal {
	return sumRealized(transactions, Income)
}

// ExpensesForPeriod sums completed expense transactions.
func ExpensesForPeriod(transactions []Transaction) decimal.Decimal {
	return sumRealized(transactions, Expense)
}

func sumRealized(transactions []Transaction, typ TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, t := range transactions {
		if t.Type == typ && t.Realized() {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// SavingsRate is (income - expenses) / income × 100, and 0 without income.
func SavingsRate(income, expenses decimal.Decimal) decimal.Decimal {
	return Percent(income.Sub(expenses), income)
}

// ExpensesByCategory groups completed expenses by exact category name,
// ordered by amount descending. Ties keep first-seen order.
func ExpensesByCategory(transactions []Transaction) []CategoryTotal {
	index := map[string]int{}
	out := []CategoryTotal{}
	for _, t := range transactions {
		if t.Type != Expense || !t.Realized() {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryTotal{Category: t.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
		out[i].Count++
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Amount.GreaterThan(out[b].Amount)
	})
	return out
}

// CategoryPercentage divides each category total by the income of the same
// transactions. Without income there is no base and the result is empty.
func CategoryPercentage(transactions []Transaction) []CategoryShare {
	income := IncomeForPeriod(transactions)
	if income.IsZero() {
		return []CategoryShare{}
	}
	totals := ExpensesByCategory(transactions)
	out := make([]CategoryShare, len(totals))
	for i, c := range totals {
		out[i] = CategoryShare{
			Category:   c.Category,
			Amount:     c.Amount,
			Percentage: Percent(c.Amount, income),
		}
	}
	return out
}
