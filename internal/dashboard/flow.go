package dashboard

import (
	"time"

	"github.com/shopspring/decimal"
	"mycash/internal/core"
)

// MonthFlow is one point of the income/expense chart.
type MonthFlow struct {
	Month    time.Month
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// MonthlyFlow returns twelve points, January through December of year, each
// summing the completed transactions dated in that month.
func MonthlyFlow(transactions []core.Transaction, year int) []MonthFlow {
	out := make([]MonthFlow, 12)
	for i := range out {
		out[i] = MonthFlow{Month: time.Month(i + 1), Income: decimal.Zero, Expenses: decimal.Zero}
	}
	for _, t := range transactions {
		if !t.Realized() || t.Date.Year() != year {
			continue
		}
		p := &out[t.Date.Month()-1]
		switch t.Type {
		case core.Income:
			p.Income = p.Income.Add(t.Amount)
		case core.Expense:
			p.Expenses = p.Expenses.Add(t.Amount)
		}
	}
	return out
}
