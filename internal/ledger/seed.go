package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"mycash/internal/core"
)

// Dataset is a full snapshot of ledger records.
type Dataset struct {
	Members      []core.FamilyMember
	Accounts     []core.BankAccount
	Cards        []core.CreditCard
	Transactions []core.Transaction
	Goals        []core.Goal
}

type seedTx struct {
	typ       core.TransactionType
	amount    string
	desc      string
	category  string
	daysAgo   int
	account   string
	member    string
	recurring bool
	paid      bool
}

var demoTransactions = []seedTx{
	{core.Income, "15000", "Salary - Lucas", "Salary", 5, "account_1", "member_1", true, true},
	{core.Income, "12000", "Salary - Ana", "Salary", 5, "account_2", "member_2", true, true},
	{core.Income, "3500", "Freelance - Web project", "Freelance", 15, "account_1", "member_1", false, true},
	{core.Expense, "2500", "Rent", "Housing", 3, "account_1", "", true, true},
	{core.Expense, "800", "Electricity bill", "Housing", 10, "card_1", "", true, true},
	{core.Expense, "350", "Water bill", "Housing", 12, "account_1", "", true, true},
	{core.Expense, "450", "Internet and phone", "Housing", 8, "card_1", "", true, true},
	{core.Expense, "1200", "Supermarket - weekly", "Food", 2, "card_1", "", true, true},
	{core.Expense, "350", "Restaurant - birthday", "Food", 7, "card_2", "", false, true},
	{core.Expense, "180", "Food delivery", "Food", 14, "card_1", "", false, true},
	{core.Expense, "600", "Fuel - month", "Transport", 1, "card_1", "member_1", true, true},
	{core.Expense, "150", "Ride home from work", "Transport", 16, "card_2", "member_2", false, true},
	{core.Expense, "450", "Parking - monthly", "Transport", 20, "account_1", "member_1", true, true},
	{core.Expense, "1200", "Health plan - family", "Health", 1, "account_1", "", true, true},
	{core.Expense, "350", "Doctor appointment", "Health", 25, "card_2", "member_3", false, true},
	{core.Expense, "180", "Pharmacy", "Health", 30, "card_1", "", false, true},
	{core.Expense, "1800", "School tuition - Pedro", "Education", 5, "account_1", "member_3", true, true},
	{core.Expense, "600", "English course", "Education", 12, "card_1", "member_1", true, true},
	{core.Expense, "500", "Cinema - family", "Leisure", 18, "card_2", "", false, true},
	{core.Expense, "1200", "Weekend trip", "Leisure", 45, "card_1", "", false, true},
	{core.Expense, "300", "Clothes - Ana", "Clothing", 22, "card_2", "member_2", false, true},
	{core.Expense, "250", "Books - Pedro", "Education", 28, "card_1", "member_3", false, true},
	{core.Expense, "400", "Birthday present", "Other", 35, "card_2", "", false, true},
	{core.Expense, "850", "Car maintenance", "Transport", 50, "card_1", "member_1", false, true},
	{core.Expense, "280", "Streaming subscriptions", "Leisure", 65, "card_1", "", true, true},
	{core.Expense, "320", "Gym", "Health", 70, "card_1", "member_1", true, true},
	// scheduled bills for the coming days
	{core.Expense, "2500", "Rent - next month", "Housing", -10, "account_1", "", true, false},
	{core.Expense, "3500", "Credit card bill - Nubank", "Other", -7, "card_1", "", false, false},
	{core.Expense, "1800", "School tuition - Pedro", "Education", -4, "account_1", "member_3", true, false},
	{core.Expense, "120", "Gas bill", "Housing", -2, "", "", true, false},
}

// DemoDataset returns a household of three people with accounts, cards and
// about two months of history, with dates relative to now.
func DemoDataset(now time.Time) Dataset {
	daysAgo := func(n int) time.Time { return now.AddDate(0, 0, -n) }
	dec := decimal.RequireFromString

	ds := Dataset{
		Members: []core.FamilyMember{
			{ID: "member_1", Name: "Lucas Marte", Role: "Father", Email: "lucasmarte@example.com", MonthlyIncome: dec("15000")},
			{ID: "member_2", Name: "Ana Marte", Role: "Mother", Email: "anamarte@example.com", MonthlyIncome: dec("12000")},
			{ID: "member_3", Name: "Pedro Marte", Role: "Son", Email: "pedromarte@example.com", MonthlyIncome: decimal.Zero},
		},
		Accounts: []core.BankAccount{
			{ID: "account_1", Name: "Checking", Bank: "Itaú", HolderID: "member_1", Balance: dec("12500.50"), AccountType: "checking", AccountNumber: "12345-6", Agency: "1234"},
			{ID: "account_2", Name: "Savings", Bank: "Bradesco", HolderID: "member_2", Balance: dec("8500"), AccountType: "savings"},
			{ID: "account_3", Name: "Joint account", Bank: "Nubank", HolderID: "member_1", Balance: dec("3200.75"), AccountType: "checking"},
		},
		Cards: []core.CreditCard{
			{ID: "card_1", Name: "Black", Bank: "Nubank", HolderID: "member_1", Limit: dec("10000"), CurrentBill: dec("3500"), ClosingDay: 10, DueDay: 17, LastDigits: "1234", Theme: core.ThemeBlack},
			{ID: "card_2", Name: "Lime", Bank: "Inter", HolderID: "member_2", Limit: dec("8000"), CurrentBill: dec("2200.50"), ClosingDay: 5, DueDay: 12, LastDigits: "5678", Theme: core.ThemeLime},
			{ID: "card_3", Name: "Platinum", Bank: "Itaú", HolderID: "member_1", Limit: dec("15000"), CurrentBill: dec("7800"), ClosingDay: 15, DueDay: 22, LastDigits: "9012", Theme: core.ThemeWhite},
		},
	}

	ds.Goals = []core.Goal{
		{ID: "goal_1", Title: "Emergency fund", Description: "Six months of expenses", TargetAmount: dec("50000"), CurrentAmount: dec("24200.25"), Deadline: core.DateOf(daysAgo(-180)), Category: "Reserve", CreatedAt: daysAgo(365)},
		{ID: "goal_2", Title: "Trip to Europe", Description: "Flights and hotels", TargetAmount: dec("25000"), CurrentAmount: dec("8500"), Deadline: core.DateOf(daysAgo(-270)), Category: "Travel", CreatedAt: daysAgo(180)},
		{ID: "goal_3", Title: "New laptop", Description: "Work machine", TargetAmount: dec("15000"), CurrentAmount: dec("15000"), Deadline: core.DateOf(daysAgo(-30)), Category: "Work", MemberID: "member_1", IsCompleted: true, CreatedAt: daysAgo(90)},
		{ID: "goal_4", Title: "Fixed income investment", Description: "12-month deposit", TargetAmount: dec("100000"), CurrentAmount: dec("35000"), Deadline: core.DateOf(daysAgo(-360)), Category: "Investment", CreatedAt: daysAgo(730)},
	}
	for i := range ds.Goals {
		ds.Goals[i].UpdatedAt = now
	}

	created := daysAgo(365)
	for i := range ds.Members {
		ds.Members[i].CreatedAt, ds.Members[i].UpdatedAt = created, created
	}
	for i := range ds.Accounts {
		ds.Accounts[i].CreatedAt, ds.Accounts[i].UpdatedAt = created, now
	}
	for i := range ds.Cards {
		ds.Cards[i].CreatedAt, ds.Cards[i].UpdatedAt = created, now
	}

	for i, s := range demoTransactions {
		status := core.Completed
		if !s.paid {
			status = core.Pending
		}
		at := daysAgo(s.daysAgo)
		stamp := at
		if s.daysAgo < 0 {
			stamp = now
		}
		ds.Transactions = append(ds.Transactions, core.Transaction{
			ID:           fmt.Sprintf("trans_%d", i+1),
			Type:         s.typ,
			Amount:       dec(s.amount),
			Description:  s.desc,
			Category:     s.category,
			Date:         core.DateOf(at),
			AccountID:    s.account,
			MemberID:     s.member,
			Installments: 1,
			Status:       status,
			IsRecurring:  s.recurring,
			IsPaid:       s.paid,
			CreatedAt:    stamp,
			UpdatedAt:    stamp,
		})
	}
	return ds
}

// Seed writes ds into an empty store. A store that already holds members is
// left untouched and Seed reports false.
func Seed(ctx context.Context, store Store, ds Dataset) (bool, error) {
	existing, err := store.ListMembers(ctx)
	if err != nil {
		return false, fmt.Errorf("check existing members: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}
	for _, m := range ds.Members {
		if err := store.CreateMember(ctx, m); err != nil {
			return false, fmt.Errorf("seed member %s: %w", m.ID, err)
		}
	}
	for _, a := range ds.Accounts {
		if err := store.CreateBankAccount(ctx, a); err != nil {
			return false, fmt.Errorf("seed bank account %s: %w", a.ID, err)
		}
	}
	for _, c := range ds.Cards {
		if err := store.CreateCreditCard(ctx, c); err != nil {
			return false, fmt.Errorf("seed credit card %s: %w", c.ID, err)
		}
	}
	for _, t := range ds.Transactions {
		if err := store.CreateTransaction(ctx, t); err != nil {
			return false, fmt.Errorf("seed transaction %s: %w", t.ID, err)
		}
	}
	for _, g := range ds.Goals {
		if err := store.CreateGoal(ctx, g); err != nil {
			return false, fmt.Errorf("seed goal %s: %w", g.ID, err)
		}
	}
	return true, nil
}
