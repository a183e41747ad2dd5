package dashboard

import (
	"sort"

	"mycash/internal/core"
)

// DefaultUpcomingLimit is how many upcoming expenses the widget lists.
const DefaultUpcomingLimit = 5

type AccountKind string

const (
	KindCard        AccountKind = "credit_card"
	KindBankAccount AccountKind = "bank_account"
	KindUnspecified AccountKind = "unspecified"
	KindMissing     AccountKind = "missing"
)

// AccountLabel is a display name for whatever a transaction was paid with.
type AccountLabel struct {
	Kind  AccountKind
	Label string
}

// UpcomingExpense pairs an unpaid expense with the account it will be paid from.
type UpcomingExpense struct {
	Transaction core.Transaction
	Account     AccountLabel
}

// UpcomingExpenses returns unpaid, non-cancelled expenses ordered by date
// ascending, at most limit of them. A limit below 1 uses DefaultUpcomingLimit.
func UpcomingExpenses(transactions []core.Transaction, limit int) []core.Transaction {
	if limit < 1 {
		limit = DefaultUpcomingLimit
	}
	out := make([]core.Transaction, 0, limit)
	for _, t := range transactions {
		if t.Type == core.Expense && !t.IsPaid && t.Status != core.Cancelled {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// WithAccounts resolves the account label of each upcoming expense.
func WithAccounts(transactions []core.Transaction, accounts []core.BankAccount, cards []core.CreditCard) []UpcomingExpense {
	out := make([]UpcomingExpense, len(transactions))
	for i, t := range transactions {
		out[i] = UpcomingExpense{Transaction: t, Account: ResolveAccount(t.AccountID, accounts, cards)}
	}
	return out
}

// ResolveAccount looks the id up among cards first, then bank accounts.
func ResolveAccount(accountID string, accounts []core.BankAccount, cards []core.CreditCard) AccountLabel {
	if accountID == "" {
		return AccountLabel{Kind: KindUnspecified, Label: "Unspecified"}
	}
	for _, c := range cards {
		if c.ID == accountID {
			digits := c.LastDigits
			if digits == "" {
				digits = "****"
			}
			return AccountLabel{Kind: KindCard, Label: "Credit " + c.Bank + " **** " + digits}
		}
	}
	for _, a := range accounts {
		if a.ID == accountID {
			return AccountLabel{Kind: KindBankAccount, Label: a.Bank + " account"}
		}
	}
	return AccountLabel{Kind: KindMissing, Label: "Not found"}
}
