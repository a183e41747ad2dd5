package dashboard

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"mycash/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func txn(id string, typ core.TransactionType, amount string, category string, date core.Date) core.Transaction {
	return core.Transaction{
		ID:          id,
		Type:        typ,
		Amount:      dec(amount),
		Description: "tx " + id,
		Category:    category,
		Date:        date,
		Status:      core.Completed,
		IsPaid:      true,
	}
}

func TestBuild(t *testing.T) {
	d := core.NewDate(2025, 1, 10)
	txns := []core.Transaction{
		txn("1", core.Income, "1000", "Salary", d),
		txn("2", core.Expense, "300", "Food", d),
		txn("3", core.Expense, "200", "Food", d),
		txn("4", core.Expense, "900", "Travel", core.NewDate(2025, 2, 1)),
	}
	in := Input{
		Transactions: txns,
		Accounts:     []core.BankAccount{{Balance: dec("5000")}},
		Cards:        []core.CreditCard{{CurrentBill: dec("1200")}},
		Filters: core.TransactionFilters{
			DateRange: core.DateRange{EndDate: core.NewDate(2025, 1, 31)},
		},
	}

	s := Build(in)

	if len(s.Transactions) != 3 {
		t.Fatalf("filtered %d transactions, want 3", len(s.Transactions))
	}
	if !s.TotalBalance.Equal(dec("3800")) {
		t.Errorf("TotalBalance = %s, want 3800", s.TotalBalance)
	}
	if !s.Income.Equal(dec("1000")) || !s.Expenses.Equal(dec("500")) {
		t.Errorf("income/expenses = %s/%s", s.Income, s.Expenses)
	}
	if !s.SavingsRate.Equal(dec("50")) {
		t.Errorf("SavingsRate = %s, want 50", s.SavingsRate)
	}
	if len(s.ByCategory) != 1 || s.ByCategory[0].Category != "Food" || s.ByCategory[0].Count != 2 {
		t.Errorf("ByCategory = %+v", s.ByCategory)
	}
	if len(s.Shares) != 1 || !s.Shares[0].Percentage.Equal(dec("50")) {
		t.Errorf("Shares = %+v", s.Shares)
	}
	if len(txns) != 4 || txns[3].ID != "4" {
		t.Errorf("input slice was modified")
	}
}

func TestUpcomingExpenses(t *testing.T) {
	mk := func(id string, day int, paid bool, status core.TransactionStatus, typ core.TransactionType) core.Transaction {
		tx := txn(id, typ, "10", "Bills", core.NewDate(2025, 3, day))
		tx.IsPaid = paid
		tx.Status = status
		return tx
	}
	txns := []core.Transaction{
		mk("late", 20, false, core.Pending, core.Expense),
		mk("paid", 1, true, core.Completed, core.Expense),
		mk("first", 2, false, core.Pending, core.Expense),
		mk("income", 1, false, core.Pending, core.Income),
		mk("cancelled", 1, false, core.Cancelled, core.Expense),
		mk("second", 5, false, core.Completed, core.Expense),
		mk("tie-a", 9, false, core.Pending, core.Expense),
		mk("tie-b", 9, false, core.Pending, core.Expense),
		mk("third", 7, false, core.Pending, core.Expense),
	}

	got := UpcomingExpenses(txns, 0)
	want := []string{"first", "second", "third", "tie-a", "tie-b"}
	if len(got) != len(want) {
		t.Fatalf("got %d items, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}

	if got := UpcomingExpenses(txns, 2); len(got) != 2 {
		t.Fatalf("limit 2 returned %d", len(got))
	}
	if got := UpcomingExpenses(txns, 100); len(got) != 6 {
		t.Fatalf("limit 100 returned %d, want all 6 unpaid expenses", len(got))
	}
}

func TestResolveAccount(t *testing.T) {
	accounts := []core.BankAccount{{ID: "account_1", Bank: "Itaú"}}
	cards := []core.CreditCard{
		{ID: "card_1", Bank: "Nubank", LastDigits: "1234"},
		{ID: "card_2", Bank: "Inter"},
	}

	tests := []struct {
		id    string
		kind  AccountKind
		label string
	}{
		{"", KindUnspecified, "Unspecified"},
		{"card_1", KindCard, "Credit Nubank **** 1234"},
		{"card_2", KindCard, "Credit Inter **** ****"},
		{"account_1", KindBankAccount, "Itaú account"},
		{"ghost", KindMissing, "Not found"},
	}
	for _, tt := range tests {
		got := ResolveAccount(tt.id, accounts, cards)
		if got.Kind != tt.kind || got.Label != tt.label {
			t.Errorf("ResolveAccount(%q) = %+v, want %s %q", tt.id, got, tt.kind, tt.label)
		}
	}

	upcoming := WithAccounts([]core.Transaction{{ID: "x", AccountID: "card_1"}}, accounts, cards)
	if upcoming[0].Account.Label != "Credit Nubank **** 1234" {
		t.Errorf("WithAccounts = %+v", upcoming)
	}
}

func TestCardUsageAndAvailable(t *testing.T) {
	tests := []struct {
		limit, bill, usage, available string
	}{
		{"10000", "3500", "35", "6500"},
		{"8000", "2200.50", "27.50625", "5799.5"},
		{"0", "100", "0", "-100"},
		{"1000", "1500", "150", "-500"},
	}
	for _, tt := range tests {
		c := core.CreditCard{Limit: dec(tt.limit), CurrentBill: dec(tt.bill)}
		if got := CardUsage(c); !got.Equal(dec(tt.usage)) {
			t.Errorf("CardUsage(%s/%s) = %s, want %s", tt.bill, tt.limit, got, tt.usage)
		}
		if got := CardAvailable(c); !got.Equal(dec(tt.available)) {
			t.Errorf("CardAvailable(%s/%s) = %s, want %s", tt.bill, tt.limit, got, tt.available)
		}
	}
}

func TestGrowth(t *testing.T) {
	tests := []struct {
		current, previous, want string
	}{
		{"150", "100", "50"},
		{"50", "100", "-50"},
		{"100", "100", "0"},
		{"10", "0", "100"},
		{"0", "0", "0"},
		{"-5", "0", "0"},
		{"-50", "-100", "50"},
	}
	for _, tt := range tests {
		if got := Growth(dec(tt.current), dec(tt.previous)); !got.Equal(dec(tt.want)) {
			t.Errorf("Growth(%s, %s) = %s, want %s", tt.current, tt.previous, got, tt.want)
		}
	}
}

func TestMonthlyFlow(t *testing.T) {
	pending := txn("p", core.Expense, "999", "X", core.NewDate(2025, 3, 1))
	pending.Status = core.Pending
	txns := []core.Transaction{
		txn("1", core.Income, "1000", "Salary", core.NewDate(2025, 1, 5)),
		txn("2", core.Expense, "200", "Food", core.NewDate(2025, 1, 31)),
		txn("3", core.Expense, "300", "Food", core.NewDate(2025, 12, 1)),
		txn("4", core.Income, "700", "Salary", core.NewDate(2024, 12, 1)),
		pending,
	}

	flow := MonthlyFlow(txns, 2025)
	if len(flow) != 12 {
		t.Fatalf("got %d points", len(flow))
	}
	if flow[0].Month != time.January || !flow[0].Income.Equal(dec("1000")) || !flow[0].Expenses.Equal(dec("200")) {
		t.Errorf("January = %+v", flow[0])
	}
	if !flow[2].Expenses.IsZero() {
		t.Errorf("pending expense counted in March: %+v", flow[2])
	}
	if !flow[11].Expenses.Equal(dec("300")) || !flow[11].Income.IsZero() {
		t.Errorf("December = %+v", flow[11])
	}
}

func TestSortAndPaginate(t *testing.T) {
	var txns []core.Transaction
	for i := 1; i <= 12; i++ {
		txns = append(txns, txn(fmt.Sprint(i), core.Expense, "1", "X", core.NewDate(2025, 1, i)))
	}
	txns = append(txns, txn("12b", core.Expense, "1", "X", core.NewDate(2025, 1, 12)))

	sorted := SortByDateDesc(txns)
	if sorted[0].ID != "12" || sorted[1].ID != "12b" || sorted[len(sorted)-1].ID != "1" {
		t.Fatalf("sorted = %s %s ... %s", sorted[0].ID, sorted[1].ID, sorted[len(sorted)-1].ID)
	}
	if txns[0].ID != "1" {
		t.Fatal("SortByDateDesc modified its input")
	}

	p := Paginate(sorted, 1, 0)
	if p.PerPage != DefaultPerPage || p.Total != 13 || p.TotalPages != 3 || len(p.Items) != 5 {
		t.Fatalf("page 1 = %+v", p)
	}
	p = Paginate(sorted, 3, 5)
	if len(p.Items) != 3 || p.Items[2].ID != "1" {
		t.Fatalf("page 3 = %+v", p)
	}
	p = Paginate(sorted, 99, 5)
	if p.Page != 3 {
		t.Fatalf("page beyond end clamped to %d, want 3", p.Page)
	}
	p = Paginate(nil, 2, 5)
	if p.Page != 1 || p.TotalPages != 1 || len(p.Items) != 0 {
		t.Fatalf("empty page = %+v", p)
	}
}

func TestMemo(t *testing.T) {
	m := NewMemo(8, time.Minute)
	calls := 0
	build := func() (Snapshot, error) {
		calls++
		return Snapshot{Income: decimal.NewFromInt(int64(calls))}, nil
	}
	f := core.TransactionFilters{SearchText: "  Food "}
	same := core.TransactionFilters{SearchText: "food", TransactionType: core.AllTypes}

	if _, hit, _ := m.Get(1, f, build); hit {
		t.Fatal("first lookup should miss")
	}
	s, hit, _ := m.Get(1, same, build)
	if !hit || calls != 1 || !s.Income.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("equivalent filters should hit: hit=%v calls=%d", hit, calls)
	}
	if _, hit, _ := m.Get(2, f, build); hit || calls != 2 {
		t.Fatalf("new version should miss: hit=%v calls=%d", hit, calls)
	}

	if n := m.Invalidate(); n != 2 {
		t.Fatalf("Invalidate() = %d, want 2", n)
	}

	boom := errors.New("boom")
	if _, _, err := m.Get(3, f, func() (Snapshot, error) { return Snapshot{}, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if m.Cache().Size() != 0 {
		t.Fatal("failed builds must not be cached")
	}
}
